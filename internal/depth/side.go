package depth

// SideKind distinguishes the two ladders of a book. Buy levels are kept in
// strictly decreasing price order, Sell levels in strictly increasing order.
type SideKind int

const (
	Buy SideKind = iota
	Sell
)

// DefaultDepthLimit is the maximum retained length of a side's ladder.
const DefaultDepthLimit = 20

type ordering int

const (
	orderLess ordering = iota
	orderEqual
	orderGreater
)

// Side is an ordered ladder of price levels for one side of a book.
type Side struct {
	Kind      SideKind
	Levels    []Level
	Precision Precision
}

// NewSide builds a side from an already-ordered set of levels, typically
// taken straight from a snapshot or delta.
func NewSide(kind SideKind, levels []Level, prec Precision) Side {
	out := make([]Level, len(levels))
	copy(out, levels)
	return Side{Kind: kind, Levels: out, Precision: prec}
}

// cmp orders two levels the way the side is supposed to be ordered: Equal
// when tick-equivalent in price, otherwise Less/Greater according to the
// side's direction.
func (s Side) cmp(x, y Level) ordering {
	diff := x.Price - y.Price
	if sameTickPrice(diff, s.Precision.PriceTick) {
		return orderEqual
	}
	if s.Kind == Buy {
		if x.Price > y.Price {
			return orderLess
		}
		return orderGreater
	}
	// Sell: lower price sorts first.
	if x.Price < y.Price {
		return orderLess
	}
	return orderGreater
}

// GetLevelID performs a linear scan for the first level tick-equivalent to
// price, returning false if the ladder has fewer than two levels (mirroring
// the trade-path helper, which needs at least two levels to infer a tick
// size from neighbouring entries).
func (s Side) GetLevelID(price Price) (int, bool) {
	if len(s.Levels) < 2 {
		return 0, false
	}
	tick := absPrice(s.Levels[1].Price - s.Levels[0].Price)
	for idx, lvl := range s.Levels {
		if absPrice(lvl.Price-price)*4 < tick {
			return idx, true
		}
	}
	return 0, false
}

// UpdateDiff merges the current ladder with an incoming diff via a two-cursor
// merge over both already-ordered sequences, drops zero-quantity levels on
// emission, and truncates the result to depthLimit.
func (s *Side) UpdateDiff(incoming []Level, depthLimit int) {
	a := s.Levels
	b := incoming

	merged := make([]Level, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch s.cmp(a[i], b[j]) {
		case orderLess:
			merged = emit(merged, a[i], s.Precision.QtyTick)
			i++
		case orderEqual:
			merged = emit(merged, b[j], s.Precision.QtyTick)
			i++
			j++
		case orderGreater:
			merged = emit(merged, b[j], s.Precision.QtyTick)
			j++
		}
	}
	for ; i < len(a); i++ {
		merged = emit(merged, a[i], s.Precision.QtyTick)
	}
	for ; j < len(b); j++ {
		merged = emit(merged, b[j], s.Precision.QtyTick)
	}

	if depthLimit > 0 && len(merged) > depthLimit {
		merged = merged[:depthLimit]
	}
	s.Levels = merged
}

// emit appends lvl unless its quantity is tick-equivalent to zero, in which
// case the level is deletion and dropped rather than inserted.
func emit(levels []Level, lvl Level, qtyTick Qty) []Level {
	if IsZeroQty(lvl.Qty, qtyTick) {
		return levels
	}
	return append(levels, lvl)
}
