package progress

import (
	"sync"

	"StockX/internal/domain/models"
)

// Hub fans training progress out to per-symbol subscribers. Slow subscribers
// miss updates instead of blocking training.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan models.TrainingProgress]struct{}
	last   map[string]models.TrainingProgress
	buffer int
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[string]map[chan models.TrainingProgress]struct{}),
		last:   make(map[string]models.TrainingProgress),
		buffer: 32,
	}
}

// Publish implements repository.ProgressSink.
func (h *Hub) Publish(p models.TrainingProgress) {
	h.mu.Lock()
	h.last[p.Symbol] = p
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[p.Symbol] {
		select {
		case ch <- p:
		default:
		}
	}
}

// Subscribe returns a channel of updates for symbol and a func that
// unsubscribes and closes it.
func (h *Hub) Subscribe(symbol string) (<-chan models.TrainingProgress, func()) {
	ch := make(chan models.TrainingProgress, h.buffer)

	h.mu.Lock()
	if h.subs[symbol] == nil {
		h.subs[symbol] = make(map[chan models.TrainingProgress]struct{})
	}
	h.subs[symbol][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[symbol], ch)
			if len(h.subs[symbol]) == 0 {
				delete(h.subs, symbol)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Last returns the most recent update seen for symbol.
func (h *Hub) Last(symbol string) (models.TrainingProgress, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.last[symbol]
	return p, ok
}
