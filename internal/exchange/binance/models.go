package binance

import (
	jsoniter "github.com/json-iterator/go"
)

func jsoniterConfig() jsoniter.API {
	return jsoniter.ConfigCompatibleWithStandardLibrary
}

// restDepthResponse is Binance's full-depth REST response
// (GET /api/v3/depth).
type restDepthResponse struct {
	LastUpdateID uint64     `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// restSymbol is one entry of Binance's exchangeInfo response, narrowed to
// the fields instrument identity and precision need.
type restSymbol struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
	Status     string `json:"status"`
	Filters    []struct {
		FilterType string `json:"filterType"`
		TickSize   string `json:"tickSize"`
		StepSize   string `json:"stepSize"`
	} `json:"filters"`
}

// restExchangeInfo is Binance's GET /api/v3/exchangeInfo response.
type restExchangeInfo struct {
	Symbols []restSymbol `json:"symbols"`
}

// wsDepthUpdate is one depthUpdate stream frame.
type wsDepthUpdate struct {
	EventType     string     `json:"e"`
	EventTime     int64      `json:"E"`
	Symbol        string     `json:"s"`
	FirstUpdateID uint64     `json:"U"`
	FinalUpdateID uint64     `json:"u"`
	PrevFinalID   uint64     `json:"pu"`
	Bids          [][]string `json:"b"`
	Asks          [][]string `json:"a"`
}

// wsAggTrade is one aggTrade stream frame. The depth core accepts and
// discards these; the adapter still decodes them so the hook is exercised.
type wsAggTrade struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	TradeID   uint64 `json:"a"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	FirstID   uint64 `json:"f"`
	LastID    uint64 `json:"l"`
}

// wsSubscribeRequest is the single subscription envelope sent after connect.
type wsSubscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// wsEnvelope is decoded first to discover which concrete frame shape a
// message carries: a subscribe ack ("result"/"id"), or an event ("e").
type wsEnvelope struct {
	EventType string      `json:"e"`
	Result    interface{} `json:"result"`
	ID        *int        `json:"id"`
}
