package binance

import (
	"context"
	"fmt"

	"github.com/BullionBear/depthsync/internal/depth"
	"github.com/BullionBear/depthsync/internal/depthbook"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/shopspring/decimal"
)

const (
	filterPriceFilter = "PRICE_FILTER"
	filterLotSize     = "LOT_SIZE"
	statusTrading     = "TRADING"
)

// InstrumentInfo fetches Binance's exchangeInfo and narrows every TRADING
// spot symbol down to an Instrument with its PRICE_FILTER/LOT_SIZE tick
// sizes.
func (a *Adapter) InstrumentInfo(ctx context.Context) ([]instrument.Instrument, error) {
	var resp restExchangeInfo
	if err := a.get(ctx, a.cfg.ExchangeInfo, &resp); err != nil {
		return nil, err
	}

	out := make([]instrument.Instrument, 0, len(resp.Symbols))
	for _, sym := range resp.Symbols {
		if sym.Status != statusTrading {
			continue
		}
		prec, err := symbolPrecision(sym)
		if err != nil {
			continue
		}
		out = append(out, instrument.Instrument{
			Base:      sym.BaseAsset,
			Margin:    sym.QuoteAsset,
			Feed:      instrument.Spot,
			Exchange:  instrument.Exchange(a.cfg.Exchange),
			RawSymbol: sym.Symbol,
			Precision: prec,
		})
	}
	return out, nil
}

func symbolPrecision(sym restSymbol) (depth.Precision, error) {
	var priceTick, qtyTick string
	for _, f := range sym.Filters {
		switch f.FilterType {
		case filterPriceFilter:
			priceTick = f.TickSize
		case filterLotSize:
			qtyTick = f.StepSize
		}
	}
	if priceTick == "" || qtyTick == "" {
		return depth.Precision{}, fmt.Errorf("binance: symbol %s missing price/lot filters", sym.Symbol)
	}
	pt, err := parseTick(priceTick)
	if err != nil {
		return depth.Precision{}, err
	}
	qt, err := parseTick(qtyTick)
	if err != nil {
		return depth.Precision{}, err
	}
	return depth.Precision{PriceTick: depth.Price(pt), QtyTick: depth.Qty(qt)}, nil
}

// RequestDepthSnapshot fetches a full-depth snapshot for inst.
func (a *Adapter) RequestDepthSnapshot(ctx context.Context, inst instrument.Instrument) (depthbook.Snapshot, error) {
	var resp restDepthResponse
	path := fmt.Sprintf("%s?symbol=%s&limit=%d", a.cfg.Snapshot, inst.RawSymbol, snapshotLimit(a.depthLimit))
	if err := a.get(ctx, path, &resp); err != nil {
		return depthbook.Snapshot{}, err
	}

	bids, err := parseWireLevels(resp.Bids)
	if err != nil {
		return depthbook.Snapshot{}, fmt.Errorf("binance: snapshot bids: %w", err)
	}
	asks, err := parseWireLevels(resp.Asks)
	if err != nil {
		return depthbook.Snapshot{}, fmt.Errorf("binance: snapshot asks: %w", err)
	}

	return depthbook.Snapshot{
		Instrument: inst,
		Buy:        bids,
		Sell:       asks,
		Last:       depthbook.SequenceID(resp.LastUpdateID),
	}, nil
}

// snapshotLimit rounds depthLimit up to a Binance-accepted REST depth limit
// (5, 10, 20, 50, 100, 500, 1000, 5000).
func snapshotLimit(depthLimit int) int {
	for _, step := range []int{5, 10, 20, 50, 100, 500, 1000, 5000} {
		if depthLimit <= step {
			return step
		}
	}
	return 5000
}

// parseWireLevels narrows decimal-precision wire strings to the core's f32
// Price/Qty at the wire boundary only; decimal is never used for in-core
// arithmetic.
func parseWireLevels(raw [][]string) ([]depth.Level, error) {
	out := make([]depth.Level, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("malformed level %v", pair)
		}
		price, qty, err := parseLevelStrings(pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		out = append(out, depth.Level{Price: price, Qty: qty})
	}
	return out, nil
}

func parseLevelStrings(priceStr, qtyStr string) (depth.Price, depth.Qty, error) {
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return 0, 0, fmt.Errorf("parse price %q: %w", priceStr, err)
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return 0, 0, fmt.Errorf("parse qty %q: %w", qtyStr, err)
	}
	p, _ := price.Float64()
	q, _ := qty.Float64()
	return depth.Price(float32(p)), depth.Qty(float32(q)), nil
}

func depthLevel(price depth.Price, qty depth.Qty) depth.Level {
	return depth.Level{Price: price, Qty: qty}
}

func parseTick(s string) (float32, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse tick %q: %w", s, err)
	}
	f, _ := d.Float64()
	return float32(f), nil
}
