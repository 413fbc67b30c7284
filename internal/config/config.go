package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ModePaper = "paper"
	ModeLive  = "live"

	paperBaseURL = "https://paper-api.alpaca.markets"
	liveBaseURL  = "https://api.alpaca.markets"

	defaultScreenerTimeout = 20 * time.Second
)

type Config struct {
	// Alpaca
	Mode            string // paper|live, .env: ALPACA_MODE
	AlpacaAPIKey    string // выбирается парой по режиму: ALPACA_API_KEY_ID_PAPER / _LIVE
	AlpacaAPISecret string
	AlpacaBaseURL   string

	// Telegram
	TelegramBotToken string
	TelegramChatID   int64

	// Риск / стратегия
	RiskPerTrade  float64 // доля капитала на сделку, .env: RISK_PER_TRADE (0.01)
	RSIOversold   float64 // .env: RSI_OVERSOLD (30)
	RSIOverbought float64 // .env: RSI_OVERBOUGHT (70)
	TakeProfitPct float64 // .env: TAKE_PROFIT_PCT (5.0)
	StopLossPct   float64 // .env: STOP_LOSS_PCT (2.0)
	Strategy      string  // .env: STRATEGY (rsi|bollinger)

	// Скринер
	ScreenerStocks  int           // .env: SCREENER_STOCKS (50)
	ScreenerCrypto  int           // .env: SCREENER_CRYPTO (50)
	ScreenerTimeout time.Duration // .env: SCREENER_TIMEOUT (20s)
	ScreenerWorkers int           // .env: SCREENER_WORKERS (4)

	// Журнал сделок, пустой DSN = журнал выключен
	DatabaseDSN string

	// Трейсинг, пустой host = выключен
	JaegerHost string
	JaegerPort int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("alpaca.mode", ModePaper)
	v.SetDefault("risk_per_trade", 0.01)
	v.SetDefault("rsi.oversold", 30.0)
	v.SetDefault("rsi.overbought", 70.0)
	v.SetDefault("take_profit_pct", 5.0)
	v.SetDefault("stop_loss_pct", 2.0)
	v.SetDefault("strategy", "rsi")
	v.SetDefault("screener.stocks", 50)
	v.SetDefault("screener.crypto", 50)
	v.SetDefault("screener.timeout", defaultScreenerTimeout)
	v.SetDefault("screener.workers", 4)
	v.SetDefault("jaeger.port", 6831)

	// Необязательный yaml поверх дефолтов, переменные окружения всё равно главнее.
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Mode:             strings.ToLower(v.GetString("alpaca.mode")),
		TelegramBotToken: v.GetString("telegram.bot_token"),
		TelegramChatID:   v.GetInt64("telegram.chat_id"),
		RiskPerTrade:     v.GetFloat64("risk_per_trade"),
		RSIOversold:      v.GetFloat64("rsi.oversold"),
		RSIOverbought:    v.GetFloat64("rsi.overbought"),
		TakeProfitPct:    v.GetFloat64("take_profit_pct"),
		StopLossPct:      v.GetFloat64("stop_loss_pct"),
		Strategy:         strings.ToLower(v.GetString("strategy")),
		ScreenerStocks:   v.GetInt("screener.stocks"),
		ScreenerCrypto:   v.GetInt("screener.crypto"),
		ScreenerTimeout:  v.GetDuration("screener.timeout"),
		ScreenerWorkers:  v.GetInt("screener.workers"),
		DatabaseDSN:      v.GetString("database.dsn"),
		JaegerHost:       v.GetString("jaeger.host"),
		JaegerPort:       v.GetInt("jaeger.port"),
	}

	switch cfg.Mode {
	case ModePaper:
		cfg.AlpacaAPIKey = v.GetString("alpaca.api_key_id_paper")
		cfg.AlpacaAPISecret = v.GetString("alpaca.api_secret_key_paper")
		cfg.AlpacaBaseURL = paperBaseURL
	case ModeLive:
		cfg.AlpacaAPIKey = v.GetString("alpaca.api_key_id_live")
		cfg.AlpacaAPISecret = v.GetString("alpaca.api_secret_key_live")
		cfg.AlpacaBaseURL = liveBaseURL
	default:
		return nil, fmt.Errorf("ALPACA_MODE must be paper or live, got %q", cfg.Mode)
	}

	if cfg.AlpacaAPIKey == "" || cfg.AlpacaAPISecret == "" {
		return nil, fmt.Errorf("alpaca api key/secret not set for mode %s", cfg.Mode)
	}
	if cfg.RiskPerTrade <= 0 {
		return nil, fmt.Errorf("RISK_PER_TRADE must be > 0")
	}
	if cfg.RSIOversold >= cfg.RSIOverbought {
		return nil, fmt.Errorf("RSI_OVERSOLD must be < RSI_OVERBOUGHT")
	}
	if cfg.ScreenerWorkers <= 0 {
		cfg.ScreenerWorkers = 1
	}
	// мусор в SCREENER_TIMEOUT не должен оставить http-клиент без таймаута
	if cfg.ScreenerTimeout <= 0 {
		cfg.ScreenerTimeout = defaultScreenerTimeout
	}

	return cfg, nil
}

// TelegramConfigured — заданы ли оба параметра телеграма. Их отсутствие не
// ошибка: бот работает дальше, уведомления уходят в stdout.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}
