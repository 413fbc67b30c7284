package screener

import (
	"math"

	"github.com/markcheno/go-talib"
)

type indicatorSet struct {
	ma14, ma50   float64
	rsi14, rsi50 float64
	bbHigh       float64
	bbLow        float64
}

// computeIndicators считает срез по ряду дневных закрытий. Семантика как у
// pandas: не хватает истории на окно — в поле NaN, никаких ошибок.
// talib отдаёт валидные значения c индекса period-1 (SMA/BBands) либо
// period (RSI), поэтому границы по длине разные.
func computeIndicators(closes []float64) indicatorSet {
	nan := math.NaN()
	ind := indicatorSet{ma14: nan, ma50: nan, rsi14: nan, rsi50: nan, bbHigh: nan, bbLow: nan}

	if len(closes) >= 14 {
		ind.ma14 = last(talib.Sma(closes, 14))
	}
	if len(closes) > 14 {
		ind.rsi14 = last(talib.Rsi(closes, 14))
	}
	if len(closes) >= 50 {
		ind.ma50 = last(talib.Sma(closes, 50))
	}
	if len(closes) > 50 {
		ind.rsi50 = last(talib.Rsi(closes, 50))
	}
	if len(closes) >= 20 {
		upper, _, lower := talib.BBands(closes, 20, 2, 2, talib.SMA)
		ind.bbHigh = last(upper)
		ind.bbLow = last(lower)
	}

	return ind
}

func last(xs []float64) float64 {
	return xs[len(xs)-1]
}
