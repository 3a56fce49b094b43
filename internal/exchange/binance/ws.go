package binance

import (
	"fmt"
	"strings"
	"time"

	"github.com/BullionBear/depthsync/internal/adapter"
	"github.com/BullionBear/depthsync/internal/depthbook"
	"github.com/BullionBear/depthsync/internal/instrument"
)

// pongText is Binance's expected payload reply to a ping frame.
const pongText = "pong"

// ConnectURI returns the combined-stream WebSocket endpoint. Individual
// stream paths are appended by Subscribe's envelope, not the URI itself,
// matching Binance's /stream?streams= or raw /ws subscribe-by-message style.
func (a *Adapter) ConnectURI() string {
	return a.cfg.WssApi
}

// Pong returns the heartbeat reply text.
func (a *Adapter) Pong() string { return pongText }

// Subscribe builds the single combined-stream subscription envelope for
// every instrument across the requested streams.
func (a *Adapter) Subscribe(insts []instrument.Instrument, streams []adapter.Stream) (string, error) {
	params := make([]string, 0, len(insts)*len(streams))
	for _, inst := range insts {
		symbol := strings.ToLower(inst.RawSymbol)
		for _, s := range streams {
			switch s {
			case adapter.StreamDepth:
				params = append(params, fmt.Sprintf("%s%s", symbol, a.cfg.DeltaStream))
			case adapter.StreamTrade:
				params = append(params, fmt.Sprintf("%s%s", symbol, a.cfg.TradesStream))
			}
		}
	}

	req := wsSubscribeRequest{
		Method: "SUBSCRIBE",
		Params: params,
		ID:     int(time.Now().UnixNano() % 1_000_000),
	}
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("binance: marshal subscribe envelope: %w", err)
	}
	return string(data), nil
}

// HandleResponse decodes one text frame. It returns ok=false for frames
// that carry nothing the depth core needs (subscribe acks), and an error
// for frames that fail to parse — callers log and drop those without
// touching any book.
func (a *Adapter) HandleResponse(frame []byte, aliases map[string]instrument.Instrument) (depthbook.MDResponse, bool, error) {
	var env wsEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return depthbook.MDResponse{}, false, fmt.Errorf("binance: decode frame: %w", err)
	}

	switch env.EventType {
	case "depthUpdate":
		return a.handleDepthUpdate(frame, aliases)
	case "aggTrade":
		return a.handleAggTrade(frame, aliases)
	case "":
		// No event-type field: either a subscribe ack ({"result":null,"id":N})
		// or an unrecognised frame. Neither carries depth semantics.
		return depthbook.MDResponse{}, false, nil
	default:
		return depthbook.MDResponse{}, false, nil
	}
}

func (a *Adapter) handleDepthUpdate(frame []byte, aliases map[string]instrument.Instrument) (depthbook.MDResponse, bool, error) {
	var ev wsDepthUpdate
	if err := json.Unmarshal(frame, &ev); err != nil {
		return depthbook.MDResponse{}, false, fmt.Errorf("binance: decode depthUpdate: %w", err)
	}
	inst, ok := aliases[ev.Symbol]
	if !ok {
		return depthbook.MDResponse{}, false, fmt.Errorf("binance: depthUpdate for unknown symbol %s", ev.Symbol)
	}

	bids, err := parseWireLevels(ev.Bids)
	if err != nil {
		return depthbook.MDResponse{}, false, fmt.Errorf("binance: depthUpdate bids: %w", err)
	}
	asks, err := parseWireLevels(ev.Asks)
	if err != nil {
		return depthbook.MDResponse{}, false, fmt.Errorf("binance: depthUpdate asks: %w", err)
	}

	return depthbook.MDResponse{
		Kind: depthbook.KindDelta,
		Delta: depthbook.Delta{
			Instrument:   inst,
			Buy:          bids,
			Sell:         asks,
			FirstID:      depthbook.SequenceID(ev.FirstUpdateID),
			LastID:       depthbook.SequenceID(ev.FinalUpdateID),
			LastStreamID: depthbook.SequenceID(ev.PrevFinalID),
		},
	}, true, nil
}

func (a *Adapter) handleAggTrade(frame []byte, aliases map[string]instrument.Instrument) (depthbook.MDResponse, bool, error) {
	var ev wsAggTrade
	if err := json.Unmarshal(frame, &ev); err != nil {
		return depthbook.MDResponse{}, false, fmt.Errorf("binance: decode aggTrade: %w", err)
	}
	inst, ok := aliases[ev.Symbol]
	if !ok {
		return depthbook.MDResponse{}, false, fmt.Errorf("binance: aggTrade for unknown symbol %s", ev.Symbol)
	}

	price, qty, err := parseLevelStrings(ev.Price, ev.Quantity)
	if err != nil {
		return depthbook.MDResponse{}, false, fmt.Errorf("binance: aggTrade level: %w", err)
	}

	return depthbook.MDResponse{
		Kind: depthbook.KindTrade,
		Trade: depthbook.Trade{
			Instrument: inst,
			Info:       depthLevel(price, qty),
			First:      depthbook.SequenceID(ev.FirstID),
			Last:       depthbook.SequenceID(ev.LastID),
		},
	}, true, nil
}
