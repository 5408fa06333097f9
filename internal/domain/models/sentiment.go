package models

import "time"

// Article is a raw news item returned by a NewsFeed.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// SentimentSample is one scored piece of text. It is never persisted.
type SentimentSample struct {
	Text        string    `json:"text"`
	Polarity    float64   `json:"polarity"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// SentimentSignal is the per-call aggregate for a symbol.
type SentimentSignal struct {
	Symbol          string            `json:"symbol"`
	WindowDays      int               `json:"window_days"`
	AveragePolarity float64           `json:"sentiment"`
	SampleCount     int               `json:"headline_count"`
	Headlines       []string          `json:"headlines"`
	Samples         []SentimentSample `json:"-"`
}

// NeutralSignal is the fail-open result for a symbol.
func NeutralSignal(symbol string, windowDays int) SentimentSignal {
	return SentimentSignal{Symbol: symbol, WindowDays: windowDays, Headlines: []string{}}
}

// NewsQuery describes a keyword search over a date window.
type NewsQuery struct {
	Symbol   string
	Query    string
	From     time.Time
	To       time.Time
	Language string
	SortBy   string
	PageSize int
}
