// Package ingest drives one WebSocket connection to an exchange: it
// subscribes to the depth and trade streams for a set of instruments,
// decodes frames via the exchange adapter, and forwards parsed updates to
// the reconciliation queue.
package ingest

import (
	"context"
	"time"

	"github.com/BullionBear/depthsync/internal/adapter"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/BullionBear/depthsync/internal/mdqueue"
	"github.com/BullionBear/depthsync/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Task owns one WebSocket connection. Redundant connections (--num-conn)
// are realised by starting several Tasks against the same adapter,
// instrument set, and queue: duplicate messages across connections are
// harmless because of the sequence-id idempotence in depthbook.Book.
type Task struct {
	id      string
	adapter adapter.Adapter
	insts   []instrument.Instrument
	aliases func() map[string]instrument.Instrument
	queue   *mdqueue.Queue
}

// New builds an ingestion task. aliases is called for every text frame to
// build the wire-symbol -> Instrument map passed to that HandleResponse
// call; it is a function rather than a fixed map so each frame sees the
// cache's current contents.
func New(a adapter.Adapter, insts []instrument.Instrument, aliases func() map[string]instrument.Instrument, queue *mdqueue.Queue) *Task {
	return &Task{
		id:      uuid.NewString(),
		adapter: a,
		insts:   insts,
		aliases: aliases,
		queue:   queue,
	}
}

// Run connects, subscribes, and loops reading frames until ctx is
// cancelled, the connection fails, or the reconciliation queue is closed.
// It does not reconnect, and cmd/depthsync only logs a task's exit; it
// does not start a replacement.
func (t *Task) Run(ctx context.Context) error {
	log := logger.Log.With().Str("task", t.id).Str("exchange", string(t.adapter.Exchange())).Logger()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, t.adapter.ConnectURI(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	envelope, err := t.adapter.Subscribe(t.insts, []adapter.Stream{adapter.StreamDepth, adapter.StreamTrade})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(envelope)); err != nil {
		return err
	}
	log.Info().Int("instruments", len(t.insts)).Msg("ingestion task subscribed")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("websocket read failed, task terminating")
			return err
		}

		switch msgType {
		case websocket.PingMessage:
			if err := conn.WriteMessage(websocket.PongMessage, []byte(t.adapter.Pong())); err != nil {
				log.Warn().Err(err).Msg("failed to reply to ping")
			}
			continue
		case websocket.TextMessage:
			if err := t.handleFrame(log, frame); err != nil {
				return err
			}
		}
	}
}

func (t *Task) handleFrame(log zerolog.Logger, frame []byte) error {
	msg, ok, err := t.adapter.HandleResponse(frame, t.aliases())
	if err != nil {
		log.Debug().Err(err).Msg("dropping unparseable frame")
		return nil
	}
	if !ok {
		return nil
	}

	sent, err := t.queue.TrySend(msg)
	if err != nil {
		log.Warn().Err(err).Msg("reconciliation queue closed, task terminating")
		return err
	}
	if !sent {
		log.Warn().Str("instrument", msg.Instrument().String()).Msg("reconciliation queue full, dropping message")
	}
	return nil
}
