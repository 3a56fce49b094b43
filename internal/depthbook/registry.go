package depthbook

import (
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/rs/zerolog"
)

// Registry maps each subscribed instrument to its Book. It is populated
// once at startup from the instrument list and never mutated thereafter;
// Update only ever delegates to an existing Book.
type Registry struct {
	books map[instrument.Key]*Book
}

// NewRegistry builds a book for every instrument in insts.
func NewRegistry(insts []instrument.Instrument, depthLimit int, skipLimit SequenceID, log zerolog.Logger) *Registry {
	books := make(map[instrument.Key]*Book, len(insts))
	for _, inst := range insts {
		books[inst.Key()] = NewBook(inst, depthLimit, skipLimit, log)
	}
	return &Registry{books: books}
}

// Update routes msg to the book for its instrument, returning
// ErrUnknownInstrument if no such book was registered at startup.
func (r *Registry) Update(msg MDResponse) error {
	book, ok := r.books[msg.Instrument().Key()]
	if !ok {
		return ErrUnknownInstrument
	}
	return book.Apply(msg)
}

// Get returns the book for inst, if one was registered.
func (r *Registry) Get(inst instrument.Instrument) (*Book, bool) {
	book, ok := r.books[inst.Key()]
	return book, ok
}

// Instruments returns every instrument the registry tracks a book for.
func (r *Registry) Instruments() []instrument.Instrument {
	out := make([]instrument.Instrument, 0, len(r.books))
	for _, book := range r.books {
		out = append(out, book.Instrument)
	}
	return out
}
