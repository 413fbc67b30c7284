package config

import (
	"strings"
	"testing"
	"time"
)

func setPaperCreds(t *testing.T) {
	t.Helper()
	t.Setenv("ALPACA_MODE", "paper")
	t.Setenv("ALPACA_API_KEY_ID_PAPER", "pk-test")
	t.Setenv("ALPACA_API_SECRET_KEY_PAPER", "ps-test")
}

func TestLoadDefaults(t *testing.T) {
	setPaperCreds(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AlpacaBaseURL != "https://paper-api.alpaca.markets" {
		t.Errorf("base url = %s", cfg.AlpacaBaseURL)
	}
	if cfg.AlpacaAPIKey != "pk-test" || cfg.AlpacaAPISecret != "ps-test" {
		t.Errorf("credentials not taken from paper pair: %q %q", cfg.AlpacaAPIKey, cfg.AlpacaAPISecret)
	}
	if cfg.RiskPerTrade != 0.01 {
		t.Errorf("RiskPerTrade = %v, want 0.01", cfg.RiskPerTrade)
	}
	if cfg.RSIOversold != 30 || cfg.RSIOverbought != 70 {
		t.Errorf("rsi thresholds = %v/%v, want 30/70", cfg.RSIOversold, cfg.RSIOverbought)
	}
	if cfg.TakeProfitPct != 5.0 || cfg.StopLossPct != 2.0 {
		t.Errorf("tp/sl = %v/%v, want 5/2", cfg.TakeProfitPct, cfg.StopLossPct)
	}
	if cfg.Strategy != "rsi" {
		t.Errorf("Strategy = %q, want rsi", cfg.Strategy)
	}
	if cfg.ScreenerStocks != 50 || cfg.ScreenerCrypto != 50 {
		t.Errorf("screener sizes = %d/%d, want 50/50", cfg.ScreenerStocks, cfg.ScreenerCrypto)
	}
	if cfg.ScreenerTimeout != 20*time.Second {
		t.Errorf("ScreenerTimeout = %v, want 20s", cfg.ScreenerTimeout)
	}
	if cfg.TelegramConfigured() {
		t.Errorf("telegram should not be configured by default")
	}
}

func TestLoadLiveMode(t *testing.T) {
	t.Setenv("ALPACA_MODE", "live")
	t.Setenv("ALPACA_API_KEY_ID_LIVE", "lk")
	t.Setenv("ALPACA_API_SECRET_KEY_LIVE", "ls")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AlpacaBaseURL != "https://api.alpaca.markets" {
		t.Errorf("base url = %s", cfg.AlpacaBaseURL)
	}
	if cfg.AlpacaAPIKey != "lk" {
		t.Errorf("key = %q, want live pair", cfg.AlpacaAPIKey)
	}
}

func TestLoadMissingCreds(t *testing.T) {
	t.Setenv("ALPACA_MODE", "paper")
	t.Setenv("ALPACA_API_KEY_ID_PAPER", "")
	t.Setenv("ALPACA_API_SECRET_KEY_PAPER", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error on missing credentials")
	}
}

func TestLoadBadMode(t *testing.T) {
	t.Setenv("ALPACA_MODE", "demo")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "ALPACA_MODE") {
		t.Fatalf("expected mode error, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setPaperCreds(t)
	t.Setenv("RISK_PER_TRADE", "0.02")
	t.Setenv("STRATEGY", "Bollinger")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RiskPerTrade != 0.02 {
		t.Errorf("RiskPerTrade = %v, want 0.02", cfg.RiskPerTrade)
	}
	if cfg.Strategy != "bollinger" {
		t.Errorf("Strategy = %q, want bollinger (lowered)", cfg.Strategy)
	}
	if !cfg.TelegramConfigured() || cfg.TelegramChatID != -100200 {
		t.Errorf("telegram not picked up: %+v", cfg)
	}
}

func TestLoadBadThresholds(t *testing.T) {
	setPaperCreds(t)
	t.Setenv("RSI_OVERSOLD", "80")
	t.Setenv("RSI_OVERBOUGHT", "70")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when oversold >= overbought")
	}
}

func TestLoadBadTimeoutFallsBack(t *testing.T) {
	setPaperCreds(t)
	// viper молча вернёт 0 на нечитаемой длительности — Load поднимает до дефолта
	t.Setenv("SCREENER_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScreenerTimeout != 20*time.Second {
		t.Errorf("ScreenerTimeout = %v, want fallback 20s", cfg.ScreenerTimeout)
	}
}
