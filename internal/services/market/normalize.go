package market

import (
	"math"
	"sort"
	"strings"

	"StockX/internal/domain/models"
	"StockX/pkg/util"
)

// normalizeBars drops bars without a usable close, truncates dates to the
// trading day, sorts ascending and keeps the last bar seen for each day.
func normalizeBars(in []models.PriceBar) []models.PriceBar {
	out := make([]models.PriceBar, 0, len(in))
	for _, b := range in {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		b.Date = util.StartOfDay(b.Date)
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	deduped := out[:0]
	for _, b := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(b.Date) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}

// isNoData reports whether an upstream error means the symbol has no data,
// which feeds surface as an empty result rather than a failure.
func isNoData(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"not found", "no data", "delisted", "no price data", "404"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
