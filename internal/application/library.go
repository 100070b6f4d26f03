package application

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// Subscription tiers the backend's vault-game listings are keyed by.
const (
	SubscriptionTierStandard = "standard"
	SubscriptionTierPremium  = "premium"
)

var subscriptionTiers = map[string]string{
	"EA Play":     SubscriptionTierStandard,
	"EA Play Pro": SubscriptionTierPremium,
}

// LibrarySettings flags one game's placement in the account's library.
type LibrarySettings struct {
	GameID   domain.GameID
	Favorite bool
	Hidden   bool
}

// LibraryService answers questions about the authenticated account's
// library: owned games, play times, friends, subscriptions, and
// per-game library settings. The account identity is resolved once and
// held for the lifetime of the service.
type LibraryService struct {
	catalog  ports.CatalogClient
	offers   *OfferService
	playTime *PlayTimeService
	logger   zerolog.Logger

	mu       sync.Mutex
	identity *domain.Identity
}

func NewLibraryService(catalog ports.CatalogClient, offers *OfferService, playTime *PlayTimeService) *LibraryService {
	return &LibraryService{
		catalog:  catalog,
		offers:   offers,
		playTime: playTime,
		logger:   log.With().Str("component", "library").Logger(),
	}
}

// Identity resolves and caches the authenticated account.
func (s *LibraryService) Identity(ctx context.Context) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		return *s.identity, nil
	}

	identity, err := s.catalog.Identity(ctx)
	if err != nil {
		return domain.Identity{}, err
	}
	s.identity = &identity
	return identity, nil
}

// OwnedGames lists the account's base-game entitlements with display
// names resolved through the offer cache. Entitlements whose offer
// cannot be resolved are listed under their slug so the library stays
// complete.
func (s *LibraryService) OwnedGames(ctx context.Context) ([]domain.Game, error) {
	entitlements, err := s.baseEntitlements(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]domain.OfferID, 0, len(entitlements))
	for _, entitlement := range entitlements {
		ids = append(ids, entitlement.OfferID)
	}
	offers, err := s.offers.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	games := make([]domain.Game, 0, len(entitlements))
	for _, entitlement := range entitlements {
		title := string(entitlement.GameSlug)
		if record, ok := offers[entitlement.OfferID]; ok && record.DisplayName != "" {
			title = record.DisplayName
		}
		games = append(games, domain.Game{ID: entitlement.GameID(), Title: title})
	}
	return games, nil
}

// GameTimes resolves play-time records for the given games in one
// batch: a single last-played round trip decides per game whether the
// cached record is still current, then stale records are refetched
// concurrently. Per-game fetch failures are logged and the game is
// omitted; the cache is flushed once at the end.
func (s *LibraryService) GameTimes(ctx context.Context, ids []domain.GameID) (map[domain.GameID]domain.GameTimeRecord, error) {
	slugByID := make(map[domain.GameID]domain.GameSlug, len(ids))
	slugs := make([]domain.GameSlug, 0, len(ids))
	for _, id := range ids {
		record, ok := s.offers.Get(ctx, id.OfferID())
		if !ok || record.GameSlug == "" {
			s.logger.Warn().Str("game_id", string(id)).Msg("no cached offer for game, skipping play time")
			continue
		}
		slugByID[id] = record.GameSlug
		slugs = append(slugs, record.GameSlug)
	}

	lastPlayed, err := s.catalog.LastPlayed(ctx, slugs)
	if err != nil {
		return nil, err
	}

	type result struct {
		id     domain.GameID
		record domain.GameTimeRecord
		err    error
	}
	results := make([]result, 0, len(slugByID))
	var wg sync.WaitGroup
	var resultsMu sync.Mutex
	for id, slug := range slugByID {
		var remote *int64
		if stamp, ok := lastPlayed[slug]; ok {
			remote = &stamp
		}
		wg.Add(1)
		go func(id domain.GameID, slug domain.GameSlug, remote *int64) {
			defer wg.Done()
			record, err := s.playTime.GameTime(ctx, id, slug, remote)
			resultsMu.Lock()
			results = append(results, result{id: id, record: record, err: err})
			resultsMu.Unlock()
		}(id, slug, remote)
	}
	wg.Wait()

	records := make(map[domain.GameID]domain.GameTimeRecord, len(results))
	for _, r := range results {
		if r.err != nil {
			s.logger.Error().Err(r.err).Str("game_id", string(r.id)).Msg("play-time fetch failed")
			continue
		}
		records[r.id] = r.record
	}

	if err := s.playTime.Flush(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("play-time flush failed")
	}
	return records, nil
}

func (s *LibraryService) Friends(ctx context.Context) ([]domain.Friend, error) {
	return s.catalog.Friends(ctx)
}

// Subscriptions lists the account's subscription tiers with ownership
// status.
func (s *LibraryService) Subscriptions(ctx context.Context) ([]domain.Subscription, error) {
	identity, err := s.Identity(ctx)
	if err != nil {
		return nil, err
	}
	return s.catalog.Subscriptions(ctx, identity.UserID)
}

// SubscriptionGames lists the vault games of a subscription. Unknown
// subscription names yield no games.
func (s *LibraryService) SubscriptionGames(ctx context.Context, sub domain.Subscription) ([]domain.SubscriptionGame, error) {
	tier, ok := subscriptionTiers[sub.Name]
	if !ok {
		s.logger.Warn().Str("subscription", sub.Name).Msg("unknown subscription tier")
		return nil, nil
	}
	return s.catalog.SubscriptionGames(ctx, tier)
}

// GameLibrarySettings resolves favorite/hidden flags for the given
// games. Subscription-sourced ids are matched by their bare offer id,
// since the backend keys its sets by offer.
func (s *LibraryService) GameLibrarySettings(ctx context.Context, ids []domain.GameID) (map[domain.GameID]LibrarySettings, error) {
	identity, err := s.Identity(ctx)
	if err != nil {
		return nil, err
	}

	favorites, err := s.catalog.FavoriteGames(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	hidden, err := s.catalog.HiddenGames(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	settings := make(map[domain.GameID]LibrarySettings, len(ids))
	for _, id := range ids {
		offer := id.OfferID()
		_, favorite := favorites[offer]
		_, hide := hidden[offer]
		settings[id] = LibrarySettings{GameID: id, Favorite: favorite, Hidden: hide}
	}
	return settings, nil
}

func (s *LibraryService) baseEntitlements(ctx context.Context) ([]domain.Entitlement, error) {
	entitlements, err := s.catalog.Entitlements(ctx)
	if err != nil {
		return nil, err
	}
	base := entitlements[:0]
	for _, entitlement := range entitlements {
		if entitlement.GameType == domain.GameTypeBase {
			base = append(base, entitlement)
		}
	}
	return base, nil
}
