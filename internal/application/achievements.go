package application

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// AchievementsService resolves unlocked achievements per game. Results
// are held in memory for the lifetime of the service since unlock sets
// only grow and a session-scoped snapshot is acceptable.
type AchievementsService struct {
	catalog ports.CatalogClient
	offers  *OfferService
	library *LibraryService
	logger  zerolog.Logger

	mu       sync.Mutex
	unlocked map[domain.GameID][]domain.Achievement
}

func NewAchievementsService(catalog ports.CatalogClient, offers *OfferService, library *LibraryService) *AchievementsService {
	return &AchievementsService{
		catalog:  catalog,
		offers:   offers,
		library:  library,
		logger:   log.With().Str("component", "achievements").Logger(),
		unlocked: map[domain.GameID][]domain.Achievement{},
	}
}

// Prepare resolves unlocked achievements for the given games
// concurrently. Per-game failures are logged and leave that game
// unresolved; the rest of the batch is unaffected.
func (s *AchievementsService) Prepare(ctx context.Context, ids []domain.GameID) {
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id domain.GameID) {
			defer wg.Done()
			if _, err := s.Unlocked(ctx, id); err != nil {
				s.logger.Error().Err(err).Str("game_id", string(id)).Msg("achievement fetch failed")
			}
		}(id)
	}
	wg.Wait()
}

// Unlocked returns the game's unlocked achievements, fetching on first
// use. A game without an achievement set yields an empty list.
func (s *AchievementsService) Unlocked(ctx context.Context, id domain.GameID) ([]domain.Achievement, error) {
	s.mu.Lock()
	cached, ok := s.unlocked[id]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	identity, err := s.library.Identity(ctx)
	if err != nil {
		return nil, err
	}

	offer := id.OfferID()
	sets, err := s.catalog.Achievements(ctx, offer, identity.PersonaID)
	if err != nil {
		return nil, err
	}

	setID, err := s.setID(ctx, id, offer, identity.PersonaID)
	if err != nil {
		return nil, err
	}

	achievements := sets[setID]
	if achievements == nil {
		achievements = []domain.Achievement{}
	}
	s.mu.Lock()
	s.unlocked[id] = achievements
	s.mu.Unlock()
	return achievements, nil
}

// setID resolves which achievement set belongs to the game: the cached
// offer's explicit override when present, the backend's mapping
// otherwise.
func (s *AchievementsService) setID(ctx context.Context, id domain.GameID, offer domain.OfferID, personaID string) (string, error) {
	if record, ok := s.offers.Get(ctx, offer); ok && record.AchievementSetOverride != "" {
		return record.AchievementSetOverride, nil
	}
	return s.catalog.AchievementSetID(ctx, offer, personaID)
}
