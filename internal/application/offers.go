package application

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// OfferService is the offer cache: a persistent mapping from offer id
// to offer metadata, serving cached entries and batching fetches for
// misses. Entries persist indefinitely within a schema version; offer
// metadata changes rarely enough that staleness is tolerated.
type OfferService struct {
	catalog ports.CatalogClient
	repo    ports.OfferRepository
	logger  zerolog.Logger

	mu     sync.Mutex
	cache  map[domain.OfferID]domain.OfferRecord
	loaded bool
}

func NewOfferService(catalog ports.CatalogClient, repo ports.OfferRepository) *OfferService {
	return &OfferService{
		catalog: catalog,
		repo:    repo,
		logger:  log.With().Str("component", "offers").Logger(),
	}
}

// Resolve returns offer records for the given ids, serving cached
// entries and fetching the rest concurrently. A fetch that yields no
// usable data is logged and skipped without failing the batch. After
// any fetch activity the cache is flushed to durable storage.
func (s *OfferService) Resolve(ctx context.Context, ids []domain.OfferID) (map[domain.OfferID]domain.OfferRecord, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	offers := make(map[domain.OfferID]domain.OfferRecord, len(ids))
	var missing []domain.OfferID
	s.mu.Lock()
	for _, id := range ids {
		if record, ok := s.cache[id]; ok {
			offers[id] = record
		} else {
			missing = append(missing, id)
		}
	}
	s.mu.Unlock()

	if len(missing) == 0 {
		return offers, nil
	}

	type fetchResult struct {
		requested domain.OfferID
		record    domain.OfferRecord
		err       error
	}
	results := make([]fetchResult, len(missing))

	var wg sync.WaitGroup
	for i, id := range missing {
		wg.Add(1)
		go func(i int, id domain.OfferID) {
			defer wg.Done()
			record, err := s.catalog.Offer(ctx, id)
			results[i] = fetchResult{requested: id, record: record, err: err}
		}(i, id)
	}
	wg.Wait()

	s.mu.Lock()
	for _, result := range results {
		if result.err != nil {
			s.logger.Error().Err(result.err).Str("offer_id", string(result.requested)).Msg("offer fetch failed")
			continue
		}
		// Key by the backend's own reported id, not the requested one.
		s.cache[result.record.OfferID] = result.record
		offers[result.record.OfferID] = result.record
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("failed to flush offer cache")
	}
	return offers, nil
}

// Get serves a single cached record without fetching.
func (s *OfferService) Get(ctx context.Context, id domain.OfferID) (domain.OfferRecord, bool) {
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.OfferRecord{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.cache[id]
	return record, ok
}

// BySlug finds a cached record by game slug.
func (s *OfferService) BySlug(ctx context.Context, slug domain.GameSlug) (domain.OfferRecord, bool) {
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.OfferRecord{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.cache {
		if record.GameSlug == slug {
			return record, true
		}
	}
	return domain.OfferRecord{}, false
}

func (s *OfferService) ensureLoaded(ctx context.Context) error {
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
		cache = map[domain.OfferID]domain.OfferRecord{}
	}
	s.cache = cache
	s.loaded = true
	return nil
}

func (s *OfferService) snapshotLocked() map[domain.OfferID]domain.OfferRecord {
	snapshot := make(map[domain.OfferID]domain.OfferRecord, len(s.cache))
	for id, record := range s.cache {
		snapshot[id] = record
	}
	return snapshot
}
