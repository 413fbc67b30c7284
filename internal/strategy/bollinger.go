package strategy

import (
	"alpaca_bot/internal/models"
	"alpaca_bot/pkg/logger"
)

// Bollinger — возврат к среднему: вход под нижней полосой, выход над
// верхней. Тейк и стоп имеют приоритет над полосами, как и в RSI.
type Bollinger struct {
	takeProfit float64
	stopLoss   float64
}

type BollingerConfig struct {
	TakeProfit float64
	StopLoss   float64
}

func NewBollinger(cfg BollingerConfig) *Bollinger {
	return &Bollinger{
		takeProfit: cfg.TakeProfit,
		stopLoss:   cfg.StopLoss,
	}
}

func (s *Bollinger) Name() string { return "bollinger" }

func (s *Bollinger) DecideAction(snap models.AssetSnapshot, pos *models.Position) Action {
	if pos != nil {
		entry := pos.AvgEntryPrice

		if snap.Close >= entry*(1+s.takeProfit/100) {
			logger.Info("[STRATEGY] %s: тейк-профит, close=%.4f entry=%.4f", snap.Symbol, snap.Close, entry)
			return ActionSell
		}
		if snap.Close <= entry*(1-s.stopLoss/100) {
			logger.Info("[STRATEGY] %s: стоп-лосс, close=%.4f entry=%.4f", snap.Symbol, snap.Close, entry)
			return ActionSell
		}
		if snap.Close > snap.BBHigh {
			logger.Info("[STRATEGY] %s: выше верхней полосы, close=%.4f bb_high=%.4f", snap.Symbol, snap.Close, snap.BBHigh)
			return ActionSell
		}

		return ActionHold
	}

	if snap.Close < snap.BBLow {
		logger.Info("[STRATEGY] %s: ниже нижней полосы, close=%.4f bb_low=%.4f", snap.Symbol, snap.Close, snap.BBLow)
		return ActionBuy
	}

	return ActionHold
}
