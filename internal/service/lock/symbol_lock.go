package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockX/pkg/cache"
	"StockX/pkg/logger"
)

// SymbolLock serializes writers per symbol. Inside one process a keyed
// channel mutex is used. When a shared cache is configured the holder also
// takes a lease there, so replicas sharing Redis never train the same symbol
// at once. The lease carries a per-holder token and is renewed every ttl/3
// while held, so a run longer than ttl keeps it.
type SymbolLock struct {
	mu    sync.Mutex
	local map[string]*slot

	shared cache.Service
	ttl    time.Duration
	poll   time.Duration
	logger *logger.Logger
}

type slot struct {
	ch   chan struct{}
	refs int
}

type Option func(*SymbolLock)

// WithShared enables the distributed advisory lock with the given TTL.
func WithShared(c cache.Service, ttl time.Duration) Option {
	return func(l *SymbolLock) {
		l.shared = c
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithPollInterval sets how often a contended shared lock is retried.
func WithPollInterval(d time.Duration) Option {
	return func(l *SymbolLock) {
		if d > 0 {
			l.poll = d
		}
	}
}

func WithLogger(lgr *logger.Logger) Option {
	return func(l *SymbolLock) {
		l.logger = lgr
	}
}

func New(opts ...Option) *SymbolLock {
	l := &SymbolLock{
		local:  make(map[string]*slot),
		ttl:    30 * time.Minute,
		poll:   250 * time.Millisecond,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock blocks until symbol is free or ctx is done. The returned func releases
// the lock and is safe to call more than once.
func (l *SymbolLock) Lock(ctx context.Context, symbol string) (func(), error) {
	s := l.acquireSlot(symbol)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(symbol, s, false)
		return nil, ctx.Err()
	}

	var held *lease
	if l.shared != nil {
		var err error
		if held, err = l.lockShared(ctx, symbol); err != nil {
			l.releaseSlot(symbol, s, true)
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if held != nil {
				held.release()
			}
			l.releaseSlot(symbol, s, true)
		})
	}, nil
}

// lease is one holder's claim on the shared lock.
type lease struct {
	l      *SymbolLock
	symbol string
	key    string
	token  string
	stop   chan struct{}
	done   chan struct{}
}

func (l *SymbolLock) lockShared(ctx context.Context, symbol string) (*lease, error) {
	ls := &lease{
		l:      l,
		symbol: symbol,
		key:    sharedKey(symbol),
		token:  uuid.NewString(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for {
		ok, err := l.shared.TryLock(ctx, ls.key, ls.token, l.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			go ls.renew()
			return ls, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

func (ls *lease) renew() {
	defer close(ls.done)
	t := time.NewTicker(ls.l.ttl / 3)
	defer t.Stop()
	for {
		select {
		case <-ls.stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			ok, err := ls.l.shared.RefreshLock(ctx, ls.key, ls.token, ls.l.ttl)
			cancel()
			switch {
			case err != nil:
				ls.l.logger.Warn("renew shared lock", logger.String("symbol", ls.symbol), logger.Error(err))
			case !ok:
				ls.l.logger.Error("shared lock lost", logger.String("symbol", ls.symbol))
				return
			}
		}
	}
}

// release stops renewal and deletes the key if this holder still owns it.
func (ls *lease) release() {
	close(ls.stop)
	<-ls.done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ok, err := ls.l.shared.Unlock(ctx, ls.key, ls.token)
	switch {
	case err != nil:
		ls.l.logger.Warn("release shared lock", logger.String("symbol", ls.symbol), logger.Error(err))
	case !ok:
		ls.l.logger.Warn("shared lock already expired", logger.String("symbol", ls.symbol))
	}
}

func (l *SymbolLock) acquireSlot(symbol string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.local[symbol]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.local[symbol] = s
	}
	s.refs++
	return s
}

func (l *SymbolLock) releaseSlot(symbol string, s *slot, held bool) {
	if held {
		<-s.ch
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.local, symbol)
	}
}

func sharedKey(symbol string) string {
	return cache.Key("lock", "train", symbol)
}
