package ports

import (
	"context"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

// OfferRepository persists the offer cache across process restarts.
// Load tolerates a missing or corrupt store by returning an empty map.
type OfferRepository interface {
	Load(ctx context.Context) (map[domain.OfferID]domain.OfferRecord, error)
	Save(ctx context.Context, offers map[domain.OfferID]domain.OfferRecord) error
}

// PlayTimeRepository persists play-time records keyed by game id.
type PlayTimeRepository interface {
	Load(ctx context.Context) (map[domain.GameID]domain.GameTimeRecord, error)
	Save(ctx context.Context, records map[domain.GameID]domain.GameTimeRecord) error
}

// AuthStateRepository persists the last successful token-acquisition
// timestamp, kept for session-loss diagnostics.
type AuthStateRepository interface {
	// LastAuthSuccess returns 0 when no timestamp was recorded yet.
	LastAuthSuccess(ctx context.Context) (int64, error)
	SaveLastAuthSuccess(ctx context.Context, unix int64) error
}
