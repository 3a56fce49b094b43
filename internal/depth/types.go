// Package depth implements the tick-relative price/quantity arithmetic and
// the ordered-ladder merge-diff algorithm that the reconciliation engine
// runs on each side of a book.
package depth

// Price and Qty are 32-bit floats compared under tick-relative equality
// rather than exact or decimal equality: the engine never needs more
// precision than an exchange's published tick size.
type Price float32

// Qty is a level's size. A qty tick-equivalent to zero marks deletion.
type Qty float32

// Precision carries the per-instrument tick sizes that price and quantity
// equality are evaluated against.
type Precision struct {
	PriceTick Price
	QtyTick   Qty
}

func absPrice(p Price) Price {
	if p < 0 {
		return -p
	}
	return p
}

func absQty(q Qty) Qty {
	if q < 0 {
		return -q
	}
	return q
}

// sameTickPrice reports whether the difference between two prices falls
// within tick/4 of zero: the engine's sole equality rule for prices.
func sameTickPrice(diff, tick Price) bool {
	return absPrice(diff)*4 < tick
}

// sameTickQty reports the equivalent equality rule for quantities.
func sameTickQty(diff, tick Qty) bool {
	return absQty(diff)*4 < tick
}

// IsZeroQty reports whether qty is tick-equivalent to zero, i.e. whether a
// level carrying it should be dropped on emission.
func IsZeroQty(q Qty, tick Qty) bool {
	return sameTickQty(q, tick)
}

// Level is a single (price, qty) pair on a book side.
type Level struct {
	Price Price
	Qty   Qty
}

// Equal reports whether two levels match under tick-relative equality on
// both price and quantity.
func (l Level) Equal(other Level, prec Precision) bool {
	return sameTickPrice(other.Price-l.Price, prec.PriceTick) &&
		sameTickQty(other.Qty-l.Qty, prec.QtyTick)
}
