// Package pubsub publishes the reconciliation loop's formatted ladders to
// an optional downstream NATS subject, one per instrument. It is a publish
// path only, never persistence.
package pubsub

import (
	"encoding/json"
	"fmt"

	"github.com/BullionBear/depthsync/internal/depth"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/BullionBear/depthsync/internal/natsconn"
	"github.com/BullionBear/depthsync/pkg/logger"
	"github.com/nats-io/nats.go"
)

// LadderMessage is the JSON payload published for each instrument update.
type LadderMessage struct {
	Instrument string        `json:"instrument"`
	Buy        []depth.Level `json:"buy"`
	Sell       []depth.Level `json:"sell"`
}

// Publisher publishes ladder messages to a single NATS connection, using
// the subject template configured in its connection string.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the NATS URI described by cfg and returns a
// Publisher bound to its subject parameter.
func NewPublisher(cfg *natsconn.Config) (*Publisher, error) {
	conn, err := nats.Connect(cfg.ToNATSURL())
	if err != nil {
		return nil, fmt.Errorf("pubsub: connect to nats: %w", err)
	}
	subject := cfg.GetParam("subject", "depthsync.ladder")
	return &Publisher{conn: conn, subject: subject}, nil
}

// Publish sends ladder on "<subject>.<instrument>".
func (p *Publisher) Publish(inst instrument.Instrument, buy, sell []depth.Level) error {
	payload, err := json.Marshal(LadderMessage{
		Instrument: inst.String(),
		Buy:        buy,
		Sell:       sell,
	})
	if err != nil {
		return fmt.Errorf("pubsub: marshal ladder: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", p.subject, inst.RawSymbol)
	if err := p.conn.Publish(subject, payload); err != nil {
		logger.Log.Error().Err(err).Str("subject", subject).Msg("failed to publish ladder")
		return err
	}
	return nil
}

// Close drains and closes the underlying NATS connection.
func (p *Publisher) Close() {
	p.conn.Drain()
}
