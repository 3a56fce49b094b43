// Package adapter defines the exchange adapter contract: the abstraction
// boundary between the reconciliation core and exchange-specific wire
// encoding, REST endpoints, and subscription envelopes. Concrete exchanges
// implement this interface under
// internal/exchange/<name>.
package adapter

import (
	"context"

	"github.com/BullionBear/depthsync/internal/depthbook"
	"github.com/BullionBear/depthsync/internal/instrument"
)

// Stream names the two live feeds an ingestion task subscribes to.
type Stream int

const (
	StreamDepth Stream = iota
	StreamTrade
)

// HTTPApi is the REST facet of an exchange adapter.
type HTTPApi interface {
	// InstrumentInfo returns every tradable instrument with its precision
	// filters, used to populate the book registry and alias map at startup.
	InstrumentInfo(ctx context.Context) ([]instrument.Instrument, error)

	// RequestDepthSnapshot fetches a point-in-time ladder for inst, tagged
	// with its last-update id.
	RequestDepthSnapshot(ctx context.Context, inst instrument.Instrument) (depthbook.Snapshot, error)
}

// StreamApi is the WebSocket facet of an exchange adapter.
type StreamApi interface {
	// ConnectURI returns the WebSocket endpoint to dial.
	ConnectURI() string

	// Pong returns the text reply to a heartbeat ping frame.
	Pong() string

	// Subscribe builds a single subscription envelope for insts across
	// streams.
	Subscribe(insts []instrument.Instrument, streams []Stream) (string, error)

	// HandleResponse decodes one text frame into an MDResponse. aliases
	// translates the wire symbol embedded in the frame to an Instrument.
	// A nil, false, nil return means the frame carried nothing the core
	// needs (e.g. a subscription ack); a non-nil error means the frame
	// failed to parse and was logged and dropped without mutating any book.
	HandleResponse(frame []byte, aliases map[string]instrument.Instrument) (depthbook.MDResponse, bool, error)
}

// Adapter is the full capability an exchange must provide: both facets
// plus the exchange tag they operate under.
type Adapter interface {
	HTTPApi
	StreamApi
	Exchange() instrument.Exchange
}
