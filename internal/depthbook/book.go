// Package depthbook implements the per-instrument reconciliation state
// machine: it merges an out-of-band snapshot with a continuous stream of
// deltas under a sequence-id discipline, detects staleness, and applies
// deltas to the two depth.Side ladders via the merge-diff algorithm.
package depthbook

import (
	"fmt"

	"github.com/BullionBear/depthsync/internal/depth"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/rs/zerolog"
)

func sequenceIDComparator(a, b interface{}) int {
	x, y := a.(SequenceID), b.(SequenceID)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// Book is one instrument's depth-book reconciliation state machine. It is
// owned exclusively by the single reconciliation loop goroutine and
// requires no internal synchronisation.
type Book struct {
	Instrument instrument.Instrument

	buy  depth.Side
	sell depth.Side

	// scheduled buffers out-of-order or pre-snapshot deltas, keyed by
	// FirstID, with ascending iteration order.
	scheduled *treemap.Map

	snapshotRequested bool
	lastApplied       SequenceID
	skipLimit         SequenceID
	depthLimit        int
	precision         depth.Precision

	log zerolog.Logger
}

// NewBook creates a fresh book for inst: LastApplied 0, no snapshot
// in flight, an empty schedule.
func NewBook(inst instrument.Instrument, depthLimit int, skipLimit SequenceID, log zerolog.Logger) *Book {
	return &Book{
		Instrument: inst,
		buy:        depth.NewSide(depth.Buy, nil, inst.Precision),
		sell:       depth.NewSide(depth.Sell, nil, inst.Precision),
		scheduled:  treemap.NewWith(sequenceIDComparator),
		depthLimit: depthLimit,
		skipLimit:  skipLimit,
		precision:  inst.Precision,
		log:        log.With().Str("instrument", inst.String()).Logger(),
	}
}

// Buy returns a copy of the current buy ladder.
func (b *Book) Buy() []depth.Level {
	out := make([]depth.Level, len(b.buy.Levels))
	copy(out, b.buy.Levels)
	return out
}

// Sell returns a copy of the current sell ladder.
func (b *Book) Sell() []depth.Level {
	out := make([]depth.Level, len(b.sell.Levels))
	copy(out, b.sell.Levels)
	return out
}

// LastApplied returns the last sequence id folded into the book.
func (b *Book) LastApplied() SequenceID { return b.lastApplied }

// SnapshotRequested reports whether a snapshot fetch is currently in flight.
func (b *Book) SnapshotRequested() bool { return b.snapshotRequested }

// Apply dispatches an MDResponse to the appropriate handler. It is the sole
// mutating entry point into a Book.
func (b *Book) Apply(msg MDResponse) error {
	switch msg.Kind {
	case KindDelta:
		return b.applyDelta(msg.Delta)
	case KindSnapshot:
		return b.applySnapshot(msg.Snapshot)
	case KindTrade:
		// The core preserves the hook but has no depth semantics for
		// trades; this must never mutate book state.
		return ErrTradeUnhandled
	default:
		return fmt.Errorf("depthbook: message kind %v has no book semantics", msg.Kind)
	}
}

// applyDelta inserts the delta into the schedule keyed by FirstID, then
// drains whatever in the schedule is now contiguous.
func (b *Book) applyDelta(d Delta) error {
	b.scheduled.Put(d.FirstID, d)
	return b.tryApplyScheduled()
}

// applySnapshot replaces both ladders with the snapshot and re-aligns the
// schedule against it.
func (b *Book) applySnapshot(s Snapshot) error {
	b.snapshotRequested = false

	if b.lastApplied.Add(b.skipLimit) >= s.Last {
		b.log.Debug().
			Uint64("snapshotLast", uint64(s.Last)).
			Uint64("lastApplied", uint64(b.lastApplied)).
			Msg("snapshot obsolete, book already current")
		return nil
	}

	b.buy = depth.NewSide(depth.Buy, s.Buy, b.precision)
	b.sell = depth.NewSide(depth.Sell, s.Sell, b.precision)
	if b.depthLimit > 0 {
		if len(b.buy.Levels) > b.depthLimit {
			b.buy.Levels = b.buy.Levels[:b.depthLimit]
		}
		if len(b.sell.Levels) > b.depthLimit {
			b.sell.Levels = b.sell.Levels[:b.depthLimit]
		}
	}

	continuity, err := b.findFirstID(s.Last)
	if err != nil {
		b.snapshotRequested = true
		return ErrDepthStale
	}
	b.lastApplied = continuity

	return b.tryApplyScheduled()
}

// findFirstID scans scheduled in ascending key order, skipping deltas whose
// LastID is behind snapID, and returns the LastStreamID of the first delta
// whose range covers snapID. A delta whose key (FirstID) exceeds snapID
// before any covering delta is found means the snapshot lies in a gap
// between buffered deltas.
func (b *Book) findFirstID(snapID SequenceID) (SequenceID, error) {
	it := b.scheduled.Iterator()
	for it.Next() {
		key := it.Key().(SequenceID)
		d := it.Value().(Delta)
		if d.LastID < snapID {
			continue
		}
		if key <= snapID && snapID <= d.LastID {
			return d.LastStreamID, nil
		}
		return 0, ErrDepthStale
	}
	return 0, ErrDepthStale
}

// tryApplyScheduled repeatedly pops the smallest scheduled delta and feeds
// it to tryApplyDelta. A StaleUpdate is recorded and draining continues;
// any other error stops the drain and propagates immediately.
func (b *Book) tryApplyScheduled() error {
	var soft error
	for {
		key, value := b.scheduled.Min()
		if key == nil {
			return soft
		}
		b.scheduled.Remove(key)
		d := value.(Delta)

		if err := b.tryApplyDelta(d); err != nil {
			if err == ErrStaleUpdate {
				soft = err
				continue
			}
			return err
		}
	}
}

// tryApplyDelta compares d's continuity witness against LastApplied.
func (b *Book) tryApplyDelta(d Delta) error {
	switch {
	case d.LastStreamID < b.lastApplied:
		return ErrStaleUpdate
	case d.LastStreamID == b.lastApplied:
		b.addDiff(d)
		return nil
	default:
		b.scheduled.Put(d.FirstID, d)
		if b.isStaleDepth(d.FirstID) {
			if b.snapshotRequested {
				return ErrWaitSnapshot
			}
			b.snapshotRequested = true
			return ErrDepthStale
		}
		return ErrMissedUpdate
	}
}

// addDiff applies d to both ladders via the side merge-diff algorithm and
// advances LastApplied.
func (b *Book) addDiff(d Delta) {
	b.buy.UpdateDiff(d.Buy, b.depthLimit)
	b.sell.UpdateDiff(d.Sell, b.depthLimit)
	b.lastApplied = d.LastID
}

// isStaleDepth reports whether id lies beyond the staleness horizon.
func (b *Book) isStaleDepth(id SequenceID) bool {
	return b.lastApplied.Add(b.skipLimit) < id
}
