package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleTOML = `
[[exchanges]]
exchange = "binance"
http_api = "https://api.binance.com"
exchange_info = "/api/v3/exchangeInfo"
snapshot = "/api/v3/depth"
wss_api = "wss://stream.binance.com:9443/stream"
delta_stream = "@depth"
trades_stream = "@aggTrade"
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "endpoints.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTemp(t, sampleTOML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Exchanges) != 1 {
		t.Fatalf("expected 1 exchange, got %d", len(cfg.Exchanges))
	}
	ex, ok := cfg.Find("binance")
	if !ok {
		t.Fatalf("expected to find binance exchange")
	}
	if ex.HTTPApi != "https://api.binance.com" {
		t.Errorf("http_api = %q", ex.HTTPApi)
	}
}

func TestLoadMissingField(t *testing.T) {
	path := writeTemp(t, `
[[exchanges]]
exchange = "binance"
http_api = "https://api.binance.com"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing fields")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadDuplicateExchange(t *testing.T) {
	path := writeTemp(t, sampleTOML+sampleTOML)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate exchange tag")
	}
}
