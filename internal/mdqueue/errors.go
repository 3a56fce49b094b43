package mdqueue

import "errors"

// ErrClosed is returned by TrySend once the queue has been closed.
var ErrClosed = errors.New("mdqueue: queue closed")
