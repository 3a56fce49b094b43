package binance

import (
	"testing"
)

func TestParseTick(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float32
		wantErr bool
	}{
		{name: "whole tick", input: "1.00000000", want: 1.0},
		{name: "fractional tick", input: "0.00010000", want: 0.0001},
		{name: "integer string", input: "5", want: 5.0},
		{name: "malformed", input: "not-a-number", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTick(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevelStrings(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		qty     string
		wantErr bool
		wantP   float32
		wantQ   float32
	}{
		{name: "ordinary level", price: "27412.50", qty: "1.23400000", wantP: 27412.50, wantQ: 1.234},
		{name: "zero qty", price: "100.00", qty: "0.00000000", wantP: 100, wantQ: 0},
		{name: "bad price", price: "abc", qty: "1.0", wantErr: true},
		{name: "bad qty", price: "1.0", qty: "xyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, q, err := parseLevelStrings(tt.price, tt.qty)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for price=%q qty=%q", tt.price, tt.qty)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if float32(p) != tt.wantP {
				t.Errorf("price: got %v, want %v", p, tt.wantP)
			}
			if float32(q) != tt.wantQ {
				t.Errorf("qty: got %v, want %v", q, tt.wantQ)
			}
		})
	}
}

func TestParseWireLevels(t *testing.T) {
	t.Run("valid pairs preserve order", func(t *testing.T) {
		raw := [][]string{
			{"100.00", "1.0"},
			{"99.50", "2.0"},
		}
		levels, err := parseWireLevels(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(levels) != 2 {
			t.Fatalf("expected 2 levels, got %d", len(levels))
		}
		if float32(levels[0].Price) != 100.00 || float32(levels[1].Price) != 99.50 {
			t.Fatalf("unexpected levels: %+v", levels)
		}
	})

	t.Run("malformed pair length", func(t *testing.T) {
		_, err := parseWireLevels([][]string{{"100.00"}})
		if err == nil {
			t.Fatal("expected error for a pair missing a quantity")
		}
	})

	t.Run("malformed numeric field", func(t *testing.T) {
		_, err := parseWireLevels([][]string{{"100.00", "nope"}})
		if err == nil {
			t.Fatal("expected error for a non-numeric quantity")
		}
	})

	t.Run("empty input yields empty slice", func(t *testing.T) {
		levels, err := parseWireLevels(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(levels) != 0 {
			t.Fatalf("expected no levels, got %+v", levels)
		}
	})
}

func TestSnapshotLimit(t *testing.T) {
	tests := []struct {
		name       string
		depthLimit int
		want       int
	}{
		{name: "below smallest step", depthLimit: 1, want: 5},
		{name: "exact step", depthLimit: 20, want: 20},
		{name: "between steps rounds up", depthLimit: 21, want: 50},
		{name: "at largest step", depthLimit: 5000, want: 5000},
		{name: "beyond largest step clamps", depthLimit: 50000, want: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snapshotLimit(tt.depthLimit)
			if got != tt.want {
				t.Errorf("snapshotLimit(%d) = %d, want %d", tt.depthLimit, got, tt.want)
			}
		})
	}
}

func restSymbolFixture(priceTick, lotStep string) restSymbol {
	sym := restSymbol{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT", Status: statusTrading}
	if priceTick != "" {
		sym.Filters = append(sym.Filters, struct {
			FilterType string `json:"filterType"`
			TickSize   string `json:"tickSize"`
			StepSize   string `json:"stepSize"`
		}{FilterType: filterPriceFilter, TickSize: priceTick})
	}
	if lotStep != "" {
		sym.Filters = append(sym.Filters, struct {
			FilterType string `json:"filterType"`
			TickSize   string `json:"tickSize"`
			StepSize   string `json:"stepSize"`
		}{FilterType: filterLotSize, StepSize: lotStep})
	}
	return sym
}

func TestSymbolPrecision(t *testing.T) {
	t.Run("price and lot filters present", func(t *testing.T) {
		prec, err := symbolPrecision(restSymbolFixture("0.01000000", "0.00001000"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if float32(prec.PriceTick) != 0.01 {
			t.Errorf("PriceTick = %v, want 0.01", prec.PriceTick)
		}
		if float32(prec.QtyTick) != 0.00001 {
			t.Errorf("QtyTick = %v, want 0.00001", prec.QtyTick)
		}
	})

	t.Run("missing lot size filter errors", func(t *testing.T) {
		if _, err := symbolPrecision(restSymbolFixture("0.01000000", "")); err == nil {
			t.Fatal("expected error when LOT_SIZE filter is absent")
		}
	})

	t.Run("missing price filter errors", func(t *testing.T) {
		if _, err := symbolPrecision(restSymbolFixture("", "0.00001000")); err == nil {
			t.Fatal("expected error when PRICE_FILTER filter is absent")
		}
	})

	t.Run("malformed tick size errors", func(t *testing.T) {
		if _, err := symbolPrecision(restSymbolFixture("garbage", "0.00001000")); err == nil {
			t.Fatal("expected error for a non-numeric tick size")
		}
	})
}
