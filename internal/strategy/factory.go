package strategy

import "alpaca_bot/internal/config"

func New(cfg *config.Config) Strategy {
	switch cfg.Strategy {
	case "bollinger":
		return NewBollinger(BollingerConfig{
			TakeProfit: cfg.TakeProfitPct,
			StopLoss:   cfg.StopLossPct,
		})

	case "rsi", "":
		fallthrough
	default:
		return NewRSI(RSIConfig{
			Oversold:   cfg.RSIOversold,
			Overbought: cfg.RSIOverbought,
			TakeProfit: cfg.TakeProfitPct,
			StopLoss:   cfg.StopLossPct,
		})
	}
}
