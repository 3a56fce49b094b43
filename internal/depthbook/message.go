package depthbook

import (
	"time"

	"github.com/BullionBear/depthsync/internal/depth"
	"github.com/BullionBear/depthsync/internal/instrument"
)

// MessageKind tags the variant carried by an MDResponse.
type MessageKind int

const (
	KindTrade MessageKind = iota
	KindSnapshot
	KindDelta
	KindPing
)

// Trade carries a single executed trade. The core accepts and discards
// trades — the hook exists so an adapter can forward them, but there is no
// depth semantics attached.
type Trade struct {
	Instrument instrument.Instrument
	Info       depth.Level
	First      SequenceID
	Last       SequenceID
}

// Snapshot is a point-in-time full ladder tagged with its last update id.
type Snapshot struct {
	Instrument  instrument.Instrument
	Buy         []depth.Level
	Sell        []depth.Level
	Last        SequenceID
	MessageTime time.Time
}

// Delta is an incremental update. FirstID/LastID delimit the ids this delta
// covers; LastStreamID is the previous delta's LastID, the continuity
// witness used to detect gaps.
type Delta struct {
	Instrument   instrument.Instrument
	Buy          []depth.Level
	Sell         []depth.Level
	FirstID      SequenceID
	LastID       SequenceID
	LastStreamID SequenceID
}

// MDResponse is the tagged union an exchange adapter decodes wire frames
// into and the ingestion task forwards to the reconciliation queue.
type MDResponse struct {
	Kind     MessageKind
	Trade    Trade
	Snapshot Snapshot
	Delta    Delta
}

// Instrument returns the instrument a message pertains to. Ping carries
// none and returns the zero value.
func (m MDResponse) Instrument() instrument.Instrument {
	switch m.Kind {
	case KindTrade:
		return m.Trade.Instrument
	case KindSnapshot:
		return m.Snapshot.Instrument
	case KindDelta:
		return m.Delta.Instrument
	default:
		return instrument.Instrument{}
	}
}
