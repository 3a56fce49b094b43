// Package api exposes a small read-only HTTP surface over the book
// registry: GET /books/:exchange/:symbol returns the current bounded
// ladder as JSON, using the same route-group style as the rest of this
// module's HTTP surfaces. This publishes the ladder; it is not a matching
// engine.
package api

import (
	"net/http"

	"github.com/BullionBear/depthsync/internal/depth"
	"github.com/BullionBear/depthsync/internal/depthbook"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/gin-gonic/gin"
)

// BookResponse is the JSON shape returned for a single instrument's ladder.
type BookResponse struct {
	Exchange    string        `json:"exchange"`
	Symbol      string        `json:"symbol"`
	Buy         []depth.Level `json:"buy"`
	Sell        []depth.Level `json:"sell"`
	LastApplied uint64        `json:"last_applied"`
}

// RegisterBooks wires GET /books/:exchange/:symbol onto rg.
func RegisterBooks(rg *gin.RouterGroup, registry *depthbook.Registry) {
	rg.GET("/books/:exchange/:symbol", func(c *gin.Context) {
		inst, ok := lookupByPath(registry, c.Param("exchange"), c.Param("symbol"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown instrument"})
			return
		}
		book, ok := registry.Get(inst)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown instrument"})
			return
		}
		c.JSON(http.StatusOK, BookResponse{
			Exchange:    string(inst.Exchange),
			Symbol:      inst.RawSymbol,
			Buy:         book.Buy(),
			Sell:        book.Sell(),
			LastApplied: uint64(book.LastApplied()),
		})
	})
}

// lookupByPath finds the registered instrument matching exchange/symbol.
// The registry has no secondary index since it's small and immutable
// after startup, so a linear scan is fine here.
func lookupByPath(registry *depthbook.Registry, exchange, symbol string) (instrument.Instrument, bool) {
	for _, inst := range registry.Instruments() {
		if string(inst.Exchange) == exchange && inst.RawSymbol == symbol {
			return inst, true
		}
	}
	return instrument.Instrument{}, false
}
