package reconcile

import (
	"context"
	"testing"

	"github.com/BullionBear/depthsync/internal/adapter"
	"github.com/BullionBear/depthsync/internal/depth"
	"github.com/BullionBear/depthsync/internal/depthbook"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/BullionBear/depthsync/internal/mdqueue"
	evbus "github.com/asaskevich/EventBus"
	"github.com/rs/zerolog"
)

type fakeAdapter struct {
	snapshot depthbook.Snapshot
	calls    int
}

func (f *fakeAdapter) InstrumentInfo(ctx context.Context) ([]instrument.Instrument, error) {
	return nil, nil
}

func (f *fakeAdapter) RequestDepthSnapshot(ctx context.Context, inst instrument.Instrument) (depthbook.Snapshot, error) {
	f.calls++
	return f.snapshot, nil
}

func (f *fakeAdapter) ConnectURI() string { return "" }
func (f *fakeAdapter) Pong() string       { return "" }
func (f *fakeAdapter) Subscribe(insts []instrument.Instrument, streams []adapter.Stream) (string, error) {
	return "", nil
}
func (f *fakeAdapter) HandleResponse(frame []byte, aliases map[string]instrument.Instrument) (depthbook.MDResponse, bool, error) {
	return depthbook.MDResponse{}, false, nil
}
func (f *fakeAdapter) Exchange() instrument.Exchange { return "fake" }

func testInst() instrument.Instrument {
	return instrument.Instrument{
		RawSymbol: "BTCUSDT",
		Feed:      instrument.Spot,
		Exchange:  "fake",
		Precision: depth.Precision{PriceTick: 0.01, QtyTick: 0.01},
	}
}

func TestLoopFetchesSnapshotOnDepthStale(t *testing.T) {
	inst := testInst()
	registry := depthbook.NewRegistry([]instrument.Instrument{inst}, 4, 100, zerolog.Nop())
	queue := mdqueue.New(4)
	fa := &fakeAdapter{snapshot: depthbook.Snapshot{
		Instrument: inst,
		Buy:        []depth.Level{{Price: 100, Qty: 1}},
		Sell:       []depth.Level{{Price: 101, Qty: 1}},
		Last:       500,
	}}
	loop := New(registry, queue, map[instrument.Exchange]adapter.Adapter{"fake": fa}, evbus.New())

	// A delta with a gap far beyond the horizon triggers DepthStale, which
	// the loop should translate into a snapshot fetch fed back to the queue.
	gap := depthbook.MDResponse{
		Kind: depthbook.KindDelta,
		Delta: depthbook.Delta{
			Instrument:   inst,
			FirstID:      600,
			LastID:       610,
			LastStreamID: 599,
		},
	}
	loop.handle(context.Background(), gap)

	if fa.calls != 1 {
		t.Fatalf("expected exactly one snapshot fetch, got %d", fa.calls)
	}

	fedBack, ok := queue.Recv()
	if !ok {
		t.Fatal("expected the snapshot to be fed back into the queue")
	}
	if fedBack.Kind != depthbook.KindSnapshot {
		t.Fatalf("expected a Snapshot message fed back, got kind %v", fedBack.Kind)
	}
}

func TestLoopIgnoresUnknownInstrument(t *testing.T) {
	registry := depthbook.NewRegistry(nil, 4, 100, zerolog.Nop())
	queue := mdqueue.New(4)
	loop := New(registry, queue, nil, evbus.New())

	loop.handle(context.Background(), depthbook.MDResponse{
		Kind:  depthbook.KindDelta,
		Delta: depthbook.Delta{Instrument: testInst()},
	})
	// Should not panic and should leave the queue untouched.
	if sent, _ := queue.TrySend(depthbook.MDResponse{}); !sent {
		t.Fatal("expected queue to still have room")
	}
}
