package strategy

import (
	"alpaca_bot/internal/models"
	"alpaca_bot/pkg/logger"
)

// RSI — базовая стратегия: покупаем перепроданность, выходим по
// тейк-профиту / стоп-лоссу / перекупленности. Все сравнения с NaN дают
// false, поэтому отсутствующие значения сами сворачиваются в HOLD.
type RSI struct {
	oversold   float64
	overbought float64
	takeProfit float64 // % от цены входа
	stopLoss   float64 // % от цены входа
}

type RSIConfig struct {
	Oversold   float64
	Overbought float64
	TakeProfit float64
	StopLoss   float64
}

func NewRSI(cfg RSIConfig) *RSI {
	return &RSI{
		oversold:   cfg.Oversold,
		overbought: cfg.Overbought,
		takeProfit: cfg.TakeProfit,
		stopLoss:   cfg.StopLoss,
	}
}

func (s *RSI) Name() string { return "rsi" }

func (s *RSI) DecideAction(snap models.AssetSnapshot, pos *models.Position) Action {
	if pos != nil {
		// порядок выходов фиксированный: тейк -> стоп -> перекупленность
		entry := pos.AvgEntryPrice

		if snap.Close >= entry*(1+s.takeProfit/100) {
			logger.Info("[STRATEGY] %s: тейк-профит, close=%.4f entry=%.4f", snap.Symbol, snap.Close, entry)
			return ActionSell
		}
		if snap.Close <= entry*(1-s.stopLoss/100) {
			logger.Info("[STRATEGY] %s: стоп-лосс, close=%.4f entry=%.4f", snap.Symbol, snap.Close, entry)
			return ActionSell
		}
		if snap.RSI14 > s.overbought {
			logger.Info("[STRATEGY] %s: RSI перекуплен, rsi14=%.2f > %.2f", snap.Symbol, snap.RSI14, s.overbought)
			return ActionSell
		}

		return ActionHold
	}

	if snap.RSI14 < s.oversold {
		logger.Info("[STRATEGY] %s: RSI перепродан, rsi14=%.2f < %.2f", snap.Symbol, snap.RSI14, s.oversold)
		return ActionBuy
	}

	return ActionHold
}
