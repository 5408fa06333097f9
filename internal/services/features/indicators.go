package features

import (
	"math"

	"github.com/markcheno/go-talib"

	"StockX/internal/domain/models"
)

const (
	smaPeriod        = 20
	rsiPeriod        = 14
	volatilityWindow = 20
)

// LatestIndicators computes the most recent SMA(20), RSI(14) and annualized
// 20-day volatility. Indicators without enough history are left nil.
func LatestIndicators(bars []models.PriceBar) models.Indicators {
	closes := models.Closes(bars)
	var out models.Indicators

	if len(closes) >= smaPeriod {
		out.SMA20 = lastFinite(talib.Sma(closes, smaPeriod))
	}
	if len(closes) > rsiPeriod {
		out.RSI14 = lastFinite(talib.Rsi(closes, rsiPeriod))
	}
	out.Volatility = RealizedVolatility(ComputeLogReturns(bars), volatilityWindow, TradingDaysPerYear)
	return out
}

func lastFinite(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v = math.Round(v*100) / 100
	return &v
}
