package application

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// PlayTimeService caches per-game play time and decides, per game,
// whether the cached record is still current. A cached record is
// reused only when its last-played stamp is known and not older than
// the backend's; an unknown backend stamp always forces a refetch.
type PlayTimeService struct {
	catalog ports.CatalogClient
	repo    ports.PlayTimeRepository
	logger  zerolog.Logger

	mu     sync.Mutex
	cache  map[domain.GameID]domain.GameTimeRecord
	loaded bool
	dirty  bool
}

func NewPlayTimeService(catalog ports.CatalogClient, repo ports.PlayTimeRepository) *PlayTimeService {
	return &PlayTimeService{
		catalog: catalog,
		repo:    repo,
		logger:  log.With().Str("component", "playtime").Logger(),
	}
}

// GameTime returns the play-time record for one game, serving the
// cached record when fresh against remoteLastPlayed and fetching from
// the backend (keyed by slug) otherwise. Fetched records replace the
// cached entry and mark the cache dirty until the next Flush.
func (s *PlayTimeService) GameTime(ctx context.Context, id domain.GameID, slug domain.GameSlug, remoteLastPlayed *int64) (domain.GameTimeRecord, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.GameTimeRecord{}, err
	}

	s.mu.Lock()
	cached, ok := s.cache[id]
	s.mu.Unlock()
	if ok && cached.Fresh(remoteLastPlayed) {
		return cached, nil
	}

	minutes, lastPlayed, err := s.catalog.GameTime(ctx, slug)
	if err != nil {
		return domain.GameTimeRecord{}, err
	}

	record := domain.GameTimeRecord{
		GameID:       id,
		TotalMinutes: minutes,
		LastPlayed:   lastPlayed,
	}
	s.mu.Lock()
	s.cache[id] = record
	s.dirty = true
	s.mu.Unlock()
	return record, nil
}

// Cached returns the cached record without consulting the backend.
func (s *PlayTimeService) Cached(ctx context.Context, id domain.GameID) (domain.GameTimeRecord, bool) {
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.GameTimeRecord{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.cache[id]
	return record, ok
}

// Flush persists the cache if any record changed since the last flush.
// Called once after an import batch completes rather than per game.
func (s *PlayTimeService) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.loaded || !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := make(map[domain.GameID]domain.GameTimeRecord, len(s.cache))
	for id, record := range s.cache {
		snapshot[id] = record
	}
	s.mu.Unlock()

	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("failed to flush play-time cache")
		return err
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}

func (s *PlayTimeService) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	cache, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if cache == nil {
		cache = map[domain.GameID]domain.GameTimeRecord{}
	}
	s.cache = cache
	s.loaded = true
	return nil
}
