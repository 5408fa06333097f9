package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockX/internal/domain/models"
)

// Period is a lookback span of daily bars. The zero value means the full
// available history.
type Period struct {
	Days int
}

// PeriodMax requests the full available history.
func PeriodMax() Period { return Period{} }

// PeriodDays requests the last n calendar days.
func PeriodDays(n int) Period { return Period{Days: n} }

func (p Period) IsMax() bool { return p.Days <= 0 }

// String renders the period as a range label ("max" or "<n>d").
func (p Period) String() string {
	if p.IsMax() {
		return "max"
	}
	return strconv.Itoa(p.Days) + "d"
}

// Cutoff returns the earliest date included by p relative to now.
// It returns the zero time for max.
func (p Period) Cutoff(now time.Time) time.Time {
	if p.IsMax() {
		return time.Time{}
	}
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -p.Days)
}

// YahooRange maps p to the smallest Yahoo range label that covers it.
func (p Period) YahooRange() string {
	switch {
	case p.IsMax():
		return "max"
	case p.Days <= 5:
		return "5d"
	case p.Days <= 31:
		return "1mo"
	case p.Days <= 92:
		return "3mo"
	case p.Days <= 184:
		return "6mo"
	case p.Days <= 366:
		return "1y"
	case p.Days <= 732:
		return "2y"
	case p.Days <= 1830:
		return "5y"
	case p.Days <= 3660:
		return "10y"
	default:
		return "max"
	}
}

// ParsePeriod accepts "max", "ytd" and "<n><unit>" with unit one of
// d, wk, mo, y.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "max":
		return PeriodMax(), nil
	case "ytd":
		now := time.Now().UTC()
		return PeriodDays(now.YearDay()), nil
	}

	unitStart := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if unitStart <= 0 {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	n, err := strconv.Atoi(s[:unitStart])
	if err != nil || n <= 0 {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	switch s[unitStart:] {
	case "d":
		return PeriodDays(n), nil
	case "wk":
		return PeriodDays(n * 7), nil
	case "mo":
		return PeriodDays(n * 366 / 12), nil
	case "y":
		return PeriodDays(n * 366), nil
	default:
		return Period{}, fmt.Errorf("invalid period unit in %q", s)
	}
}

// TrimBars keeps the bars dated on or after cutoff. bars must be sorted.
func TrimBars(bars []models.PriceBar, cutoff time.Time) []models.PriceBar {
	if cutoff.IsZero() {
		return bars
	}
	for i, b := range bars {
		if !b.Date.Before(cutoff) {
			return bars[i:]
		}
	}
	return bars[:0]
}
