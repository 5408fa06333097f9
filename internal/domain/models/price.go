package models

import "time"

// PriceBar is one daily observation for a symbol. Close is the value the
// model trains on; the remaining fields are informational.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open,omitempty"`
	High   float64   `json:"high,omitempty"`
	Low    float64   `json:"low,omitempty"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}

// Closes extracts the close series in bar order.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Quote is the latest close of a symbol. Price is nil when the feed failed.
type Quote struct {
	Symbol string   `json:"symbol"`
	Price  *float64 `json:"price"`
	Error  string   `json:"error,omitempty"`
}

// HistoryPoint is a single entry of the history endpoint.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// Indicators summarises the most recent technical indicator values.
type Indicators struct {
	SMA20      *float64 `json:"sma_20,omitempty"`
	RSI14      *float64 `json:"rsi_14,omitempty"`
	Volatility float64  `json:"volatility"`
}

type PriceHistory struct {
	Symbol     string         `json:"symbol"`
	Range      string         `json:"range"`
	History    []HistoryPoint `json:"history"`
	Indicators Indicators     `json:"indicators"`
}
