package ports

import (
	"context"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

// CatalogClient issues authenticated queries against the remote game
// catalog. Implementations surface the error taxonomy from
// internal/domain: per-call transient failures propagate unchanged,
// contract violations come back as domain.ErrMalformedResponse.
type CatalogClient interface {
	Identity(ctx context.Context) (domain.Identity, error)
	Entitlements(ctx context.Context) ([]domain.Entitlement, error)

	// Offer fetches the metadata pair for one offer id. The returned
	// record carries the backend's own reported offer id, which may
	// differ from the requested one.
	Offer(ctx context.Context, id domain.OfferID) (domain.OfferRecord, error)

	// AchievementSetID resolves the achievement set attached to an
	// offer, or "" when the offer has none.
	AchievementSetID(ctx context.Context, offer domain.OfferID, personaID string) (string, error)

	// Achievements returns unlocked achievements grouped by set id.
	Achievements(ctx context.Context, offer domain.OfferID, personaID string) (map[string][]domain.Achievement, error)

	// GameTime returns total minutes played and the last session end as
	// a Unix timestamp, nil when the game was never played.
	GameTime(ctx context.Context, slug domain.GameSlug) (int, *int64, error)

	// LastPlayed resolves last-session-end timestamps for many slugs in
	// one round trip. Slugs the backend has no sessions for are absent
	// from the result.
	LastPlayed(ctx context.Context, slugs []domain.GameSlug) (map[domain.GameSlug]int64, error)

	Friends(ctx context.Context) ([]domain.Friend, error)

	FavoriteGames(ctx context.Context, userID string) (map[domain.OfferID]struct{}, error)
	HiddenGames(ctx context.Context, userID string) (map[domain.OfferID]struct{}, error)

	Subscriptions(ctx context.Context, userID string) ([]domain.Subscription, error)
	SubscriptionGames(ctx context.Context, tier string) ([]domain.SubscriptionGame, error)
}
