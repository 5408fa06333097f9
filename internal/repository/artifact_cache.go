package repository

import (
	"context"
	"time"

	"StockX/internal/domain/models"
	domrepo "StockX/internal/domain/repository"
	"StockX/internal/service/cache"
)

// CachedArtifactStore keeps decoded models in process for ttl. Put replaces
// the cached entry so the next Get sees the new model.
type CachedArtifactStore struct {
	next  domrepo.ArtifactStore
	cache *cache.TTLCache[*models.TrainedModel]
	ttl   time.Duration
}

func NewCachedArtifactStore(next domrepo.ArtifactStore, ttl time.Duration) *CachedArtifactStore {
	return &CachedArtifactStore{next: next, cache: cache.NewTTLCache[*models.TrainedModel](), ttl: ttl}
}

func (s *CachedArtifactStore) Put(ctx context.Context, m *models.TrainedModel) error {
	s.cache.Delete(m.Symbol)
	if err := s.next.Put(ctx, m); err != nil {
		return err
	}
	s.cache.Set(m.Symbol, m, s.ttl)
	return nil
}

func (s *CachedArtifactStore) Get(ctx context.Context, symbol string) (*models.TrainedModel, error) {
	if m, ok := s.cache.Get(symbol); ok {
		return m, nil
	}
	m, err := s.next.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.cache.Set(symbol, m, s.ttl)
	return m, nil
}

func (s *CachedArtifactStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}
