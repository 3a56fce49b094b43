package depthbook

import (
	"errors"
	"testing"

	"github.com/BullionBear/depthsync/internal/depth"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/rs/zerolog"
)

func testInstrument() instrument.Instrument {
	return instrument.Instrument{
		Base:      "BTC",
		Margin:    "USDT",
		Feed:      instrument.Spot,
		Exchange:  "binance",
		RawSymbol: "BTCUSDT",
		Precision: depth.Precision{PriceTick: 0.01, QtyTick: 0.01},
	}
}

func newTestBook() *Book {
	return NewBook(testInstrument(), 4, 100, zerolog.Nop())
}

func lvl(price, qty float32) depth.Level {
	return depth.Level{Price: depth.Price(price), Qty: depth.Qty(qty)}
}

func deltaMsg(first, last, lastStream SequenceID, buy, sell []depth.Level) MDResponse {
	return MDResponse{
		Kind: KindDelta,
		Delta: Delta{
			Instrument:   testInstrument(),
			Buy:          buy,
			Sell:         sell,
			FirstID:      first,
			LastID:       last,
			LastStreamID: lastStream,
		},
	}
}

func snapshotMsg(last SequenceID, buy, sell []depth.Level) MDResponse {
	return MDResponse{
		Kind: KindSnapshot,
		Snapshot: Snapshot{
			Instrument: testInstrument(),
			Buy:        buy,
			Sell:       sell,
			Last:       last,
		},
	}
}

func assertLadder(t *testing.T, got []depth.Level, want []depth.Level, prec depth.Precision) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ladder length mismatch: got %+v, want %+v", got, want)
	}
	for i := range got {
		if !got[i].Equal(want[i], prec) {
			t.Fatalf("ladder[%d] mismatch: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

// A delta that lands beyond the staleness horizon triggers a snapshot
// request; while that snapshot is in flight, a second out-of-horizon delta
// only confirms the wait rather than requesting a second snapshot. Once the
// snapshot arrives it resolves the gap, and draining the buffered deltas
// against it surfaces the stale predecessor as a soft diagnostic even
// though the drain itself succeeds.
func TestSnapshotResolvesBufferedGapAndDrainsStalePredecessor(t *testing.T) {
	book := newTestBook()

	d1 := deltaMsg(350, 352, 349,
		[]depth.Level{lvl(21, 10), lvl(20, 10)},
		[]depth.Level{lvl(19.98, 100), lvl(19.99, 100)})
	if err := book.Apply(d1); !errors.Is(err, ErrDepthStale) {
		t.Fatalf("delta1: expected DepthStale, got %v", err)
	}

	d2 := deltaMsg(353, 360, 352,
		[]depth.Level{lvl(212, 10), lvl(211, 5)},
		[]depth.Level{lvl(209.98, 10), lvl(209.99, 10)})
	if err := book.Apply(d2); !errors.Is(err, ErrWaitSnapshot) {
		t.Fatalf("delta2: expected WaitSnapshot, got %v", err)
	}

	snap := snapshotMsg(353,
		[]depth.Level{lvl(211, 10), lvl(210, 100)},
		[]depth.Level{lvl(209.98, 100), lvl(209.99, 100)})
	err := book.Apply(snap)
	if !errors.Is(err, ErrStaleUpdate) {
		t.Fatalf("snapshot: expected the drained StaleUpdate from delta1, got %v", err)
	}
	if book.LastApplied() != 360 {
		t.Fatalf("expected LastApplied 360 after draining delta2, got %d", book.LastApplied())
	}

	prec := testInstrument().Precision
	assertLadder(t, book.Buy(), []depth.Level{lvl(212, 10), lvl(211, 5), lvl(210, 100)}, prec)
	assertLadder(t, book.Sell(), []depth.Level{lvl(209.98, 10), lvl(209.99, 10)}, prec)
}

// Re-applying a delta whose range is already covered by LastApplied must
// leave the book untouched: no ladder mutation, no LastApplied movement,
// just the stale-update diagnostic.
func TestReplayOfAppliedDeltaIsNoop(t *testing.T) {
	book := newTestBook()
	book.Apply(deltaMsg(400, 402, 399,
		[]depth.Level{lvl(20, 10)}, []depth.Level{lvl(19.99, 100)}))
	book.Apply(deltaMsg(403, 410, 402,
		[]depth.Level{lvl(201, 5)}, []depth.Level{lvl(199.99, 10)}))
	book.Apply(snapshotMsg(403,
		[]depth.Level{lvl(201, 10), lvl(200, 100)},
		[]depth.Level{lvl(199.98, 100), lvl(199.99, 100)}))

	buyBefore := book.Buy()
	sellBefore := book.Sell()
	lastBefore := book.LastApplied()

	replay := deltaMsg(403, 410, 402,
		[]depth.Level{lvl(201, 5)}, []depth.Level{lvl(199.99, 10)})
	if err := book.Apply(replay); !errors.Is(err, ErrStaleUpdate) {
		t.Fatalf("expected StaleUpdate on replay, got %v", err)
	}
	if book.LastApplied() != lastBefore {
		t.Fatalf("LastApplied changed on replay: %d -> %d", lastBefore, book.LastApplied())
	}
	assertLadder(t, book.Buy(), buyBefore, testInstrument().Precision)
	assertLadder(t, book.Sell(), sellBefore, testInstrument().Precision)
}

// A delta contiguous with LastApplied applies immediately without needing
// a snapshot at all.
func TestContiguousDeltaAppliesDirectly(t *testing.T) {
	book := newTestBook()
	book.lastApplied = 100

	d := deltaMsg(101, 110, 100,
		[]depth.Level{lvl(10, 5)}, []depth.Level{lvl(11, 5)})
	if err := book.Apply(d); err != nil {
		t.Fatalf("expected contiguous delta to apply cleanly, got %v", err)
	}
	if book.LastApplied() != 110 {
		t.Fatalf("expected LastApplied 110, got %d", book.LastApplied())
	}
}

// A gap within the staleness horizon is buffered and reported as
// MissedUpdate, not an immediate snapshot request.
func TestGapWithinHorizonIsMissedUpdate(t *testing.T) {
	book := newTestBook()
	book.lastApplied = 100

	d := deltaMsg(105, 110, 104,
		[]depth.Level{lvl(10, 5)}, []depth.Level{lvl(11, 5)})
	if err := book.Apply(d); !errors.Is(err, ErrMissedUpdate) {
		t.Fatalf("expected MissedUpdate, got %v", err)
	}
	if book.LastApplied() != 100 {
		t.Fatalf("LastApplied must not advance on a gap, got %d", book.LastApplied())
	}
	if book.SnapshotRequested() {
		t.Fatal("a within-horizon gap must not request a snapshot")
	}
}

// At most one in-flight snapshot: once requested, further out-of-horizon
// deltas yield WaitSnapshot rather than a second DepthStale.
func TestAtMostOneInFlightSnapshot(t *testing.T) {
	book := newTestBook()

	d1 := deltaMsg(500, 510, 499, nil, nil)
	if err := book.Apply(d1); !errors.Is(err, ErrDepthStale) {
		t.Fatalf("expected first gap to request a snapshot, got %v", err)
	}
	if !book.SnapshotRequested() {
		t.Fatal("expected SnapshotRequested to be set")
	}

	d2 := deltaMsg(600, 610, 599, nil, nil)
	if err := book.Apply(d2); !errors.Is(err, ErrWaitSnapshot) {
		t.Fatalf("expected WaitSnapshot while a snapshot is in flight, got %v", err)
	}
}

// Trade messages never mutate book state.
func TestTradeMessageIsUnhandled(t *testing.T) {
	book := newTestBook()
	msg := MDResponse{Kind: KindTrade, Trade: Trade{Instrument: testInstrument()}}
	if err := book.Apply(msg); !errors.Is(err, ErrTradeUnhandled) {
		t.Fatalf("expected ErrTradeUnhandled, got %v", err)
	}
	if book.LastApplied() != 0 {
		t.Fatalf("trade must not advance LastApplied, got %d", book.LastApplied())
	}
}
