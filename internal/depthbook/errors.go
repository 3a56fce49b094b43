package depthbook

import "errors"

// Sentinel outcomes of Apply. Only DepthStale requires caller action
// (fetch a snapshot); the rest are diagnostic and the reconciliation loop
// simply continues.
var (
	// ErrDepthStale means the book has missed enough ids that a snapshot
	// must be fetched and fed back.
	ErrDepthStale = errors.New("depthbook: depth stale, snapshot required")

	// ErrWaitSnapshot means a snapshot is already in flight; the caller
	// should do nothing and wait for it to arrive.
	ErrWaitSnapshot = errors.New("depthbook: awaiting in-flight snapshot")

	// ErrMissedUpdate means a delta arrived with a gap that is not yet
	// beyond the staleness horizon; it is buffered pending either its
	// predecessor or a snapshot.
	ErrMissedUpdate = errors.New("depthbook: missed update, buffered")

	// ErrStaleUpdate means a delta (or buffered delta) covers ids already
	// applied; it is discarded without mutating the book.
	ErrStaleUpdate = errors.New("depthbook: stale update discarded")

	// ErrUnknownInstrument means the registry has no book for the
	// message's instrument.
	ErrUnknownInstrument = errors.New("depthbook: unknown instrument")

	// ErrTradeUnhandled is returned for Trade messages: the core preserves
	// the hook but has no depth semantics for trades, so applying one is
	// always a no-op distinguishable from a successful depth update.
	ErrTradeUnhandled = errors.New("depthbook: trade message has no depth semantics")
)
