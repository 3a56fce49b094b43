// Package reconcile implements the single-consumer reconciliation loop
//: it owns the book registry, applies every queued
// MDResponse, and on DepthStale fetches a fresh snapshot and feeds it back
// into the same queue so ordering with any intervening deltas is preserved.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BullionBear/depthsync/internal/adapter"
	"github.com/BullionBear/depthsync/internal/depthbook"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/BullionBear/depthsync/internal/mdqueue"
	"github.com/BullionBear/depthsync/pkg/logger"
	evbus "github.com/asaskevich/EventBus"
)

// LadderUpdatedTopic is the EventBus topic on which the instrument and
// copies of its buy and sell ladders are published every time a book
// successfully applies an update. The optional NATS sink in cmd/depthsync
// subscribes to it; the HTTP surface reads the registry directly instead.
const LadderUpdatedTopic = "depthsync:ladder_updated"

// Loop is the single consumer of the reconciliation queue.
type Loop struct {
	registry *depthbook.Registry
	queue    *mdqueue.Queue
	adapters map[instrument.Exchange]adapter.Adapter
	bus      evbus.Bus
}

// New builds a reconciliation loop over registry, consuming from queue and
// dispatching HTTP snapshot fetches through adapters (keyed by exchange).
func New(registry *depthbook.Registry, queue *mdqueue.Queue, adapters map[instrument.Exchange]adapter.Adapter, bus evbus.Bus) *Loop {
	return &Loop{registry: registry, queue: queue, adapters: adapters, bus: bus}
}

// Run blocks, consuming from the queue until it is closed. ctx is checked
// after each received message, so a cancellation is noticed when the next
// message arrives.
func (l *Loop) Run(ctx context.Context) {
	for {
		msg, ok := l.queue.Recv()
		if !ok {
			logger.Log.Info().Msg("reconciliation queue closed, loop exiting")
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		l.handle(ctx, msg)
	}
}

func (l *Loop) handle(ctx context.Context, msg depthbook.MDResponse) {
	inst := msg.Instrument()
	err := l.registry.Update(msg)

	switch {
	case err == nil:
		l.publish(inst)
	case errors.Is(err, depthbook.ErrDepthStale):
		l.requestSnapshot(ctx, inst)
	case errors.Is(err, depthbook.ErrWaitSnapshot),
		errors.Is(err, depthbook.ErrMissedUpdate),
		errors.Is(err, depthbook.ErrStaleUpdate),
		errors.Is(err, depthbook.ErrTradeUnhandled):
		logger.Log.Debug().Str("instrument", inst.String()).Err(err).Msg("diagnostic outcome")
	case errors.Is(err, depthbook.ErrUnknownInstrument):
		logger.Log.Error().Str("instrument", inst.String()).Msg("update for unregistered instrument")
	default:
		logger.Log.Error().Str("instrument", inst.String()).Err(err).Msg("unexpected apply error")
	}
}

// requestSnapshot fetches a fresh snapshot for inst via its exchange's
// HTTP adapter and feeds the result back into the same queue — the
// cyclic feedback avoids mutating the book
// directly from this goroutine's caller and keeps the queue's FIFO
// ordering intact against any deltas queued in the meantime.
func (l *Loop) requestSnapshot(ctx context.Context, inst instrument.Instrument) {
	a, ok := l.adapters[inst.Exchange]
	if !ok {
		logger.Log.Error().Str("exchange", string(inst.Exchange)).Msg("no adapter registered for exchange")
		return
	}

	snap, err := a.RequestDepthSnapshot(ctx, inst)
	if err != nil {
		// Terminal HTTP failure: the book stays DepthStale and the next
		// out-of-horizon delta will retrigger the request.
		logger.Log.Error().Str("instrument", inst.String()).Err(err).Msg("snapshot fetch failed")
		return
	}

	msg := depthbook.MDResponse{Kind: depthbook.KindSnapshot, Snapshot: snap}
	sent, err := l.queue.TrySend(msg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("queue closed while feeding back snapshot")
		return
	}
	if !sent {
		logger.Log.Warn().Str("instrument", inst.String()).Msg("queue full, dropped snapshot feedback")
	}
}

func (l *Loop) publish(inst instrument.Instrument) {
	book, ok := l.registry.Get(inst)
	if !ok {
		return
	}
	logger.Log.Info().Str("instrument", inst.String()).Str("ladder", FormatLadder(book)).Msg("book updated")
	if l.bus != nil {
		l.bus.Publish(LadderUpdatedTopic, inst, book.Buy(), book.Sell())
	}
}

// FormatLadder renders a book as sells descending above a separator, buys
// descending below.
func FormatLadder(book *depthbook.Book) string {
	sells := book.Sell()
	buys := book.Buy()

	out := ""
	for i := len(sells) - 1; i >= 0; i-- {
		out += fmt.Sprintf("ASK %v @ %v\n", sells[i].Price, sells[i].Qty)
	}
	out += "---\n"
	for _, b := range buys {
		out += fmt.Sprintf("BID %v @ %v\n", b.Price, b.Qty)
	}
	return out
}

// ScheduleWarmupSnapshots requests an initial snapshot for every instrument
// in the registry shortly after startup, rather than waiting for the first
// observed gap. The sweep runs once, after the given delay; it does not
// repeat.
func (l *Loop) ScheduleWarmupSnapshots(ctx context.Context, after time.Duration) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(after):
		}
		for _, inst := range l.registry.Instruments() {
			l.requestSnapshot(ctx, inst)
		}
	}()
}
