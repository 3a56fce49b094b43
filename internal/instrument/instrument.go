// Package instrument defines the tradable-instrument identity that books,
// adapters, and the registry key off of.
package instrument

import (
	"fmt"

	"github.com/BullionBear/depthsync/internal/depth"
)

// Feed distinguishes the contract family an instrument belongs to.
type Feed int

const (
	Spot Feed = iota
	Perp
	Option
	Future
)

func (f Feed) String() string {
	switch f {
	case Spot:
		return "SPOT"
	case Perp:
		return "PERP"
	case Option:
		return "OPTION"
	case Future:
		return "FUTURE"
	default:
		return "UNKNOWN"
	}
}

// Exchange names a venue an instrument is quoted on.
type Exchange string

// Instrument identifies a tradable contract. Equality and hashing are
// derived from (RawSymbol, Feed, Exchange); Base and Margin are descriptive.
type Instrument struct {
	Base       string
	Margin     string
	Feed       Feed
	Exchange   Exchange
	RawSymbol  string
	Precision  depth.Precision
	FutureDate uint64 // only meaningful when Feed == Future
}

// Key is the map/hash identity of an instrument: (raw_symbol, feed, exchange).
type Key struct {
	RawSymbol string
	Feed      Feed
	Exchange  Exchange
}

func (i Instrument) Key() Key {
	return Key{RawSymbol: i.RawSymbol, Feed: i.Feed, Exchange: i.Exchange}
}

func (i Instrument) String() string {
	return fmt.Sprintf("%s:%s:%s", i.Exchange, i.RawSymbol, i.Feed)
}
