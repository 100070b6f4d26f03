package toml

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// offerSchemaVersion stamps the cached offer shape. A mismatch drops
// the whole cache so records written by an older shape are refetched
// instead of silently served stale.
const offerSchemaVersion = 2

type offersFileSchema struct {
	Version int           `toml:"version"`
	Offers  []offerSchema `toml:"offers"`
}

type offerSchema struct {
	ID                     string `toml:"id"`
	DisplayName            string `toml:"display_name"`
	ContentID              string `toml:"content_id"`
	GameSlug               string `toml:"game_slug"`
	InstallCheck           string `toml:"install_check,omitempty"`
	AchievementSetOverride string `toml:"achievement_set_override,omitempty"`
	MultiplayerID          string `toml:"multiplayer_id,omitempty"`
}

type OfferRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.OfferRepository = (*OfferRepository)(nil)

func NewOfferRepository(cfg *viper.Viper) (*OfferRepository, error) {
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, offersFileName)
	return &OfferRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *OfferRepository) Load(ctx context.Context) (map[domain.OfferID]domain.OfferRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file offersFileSchema
	if err := readFile(r.path, &file); err != nil {
		return nil, err
	}
	if len(file.Offers) > 0 && file.Version != offerSchemaVersion {
		log.Warn().Int("version", file.Version).Msg("offer cache schema changed, dropping cached offers")
		return map[domain.OfferID]domain.OfferRecord{}, nil
	}

	offers := make(map[domain.OfferID]domain.OfferRecord, len(file.Offers))
	for _, entry := range file.Offers {
		if entry.ID == "" {
			continue
		}
		offers[domain.OfferID(entry.ID)] = domain.OfferRecord{
			OfferID:                domain.OfferID(entry.ID),
			DisplayName:            entry.DisplayName,
			ContentID:              entry.ContentID,
			GameSlug:               domain.GameSlug(entry.GameSlug),
			InstallCheck:           entry.InstallCheck,
			AchievementSetOverride: entry.AchievementSetOverride,
			MultiplayerID:          entry.MultiplayerID,
		}
	}
	return offers, nil
}

func (r *OfferRepository) Save(ctx context.Context, offers map[domain.OfferID]domain.OfferRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := offersFileSchema{Version: offerSchemaVersion}
	for id, record := range offers {
		file.Offers = append(file.Offers, offerSchema{
			ID:                     string(id),
			DisplayName:            record.DisplayName,
			ContentID:              record.ContentID,
			GameSlug:               string(record.GameSlug),
			InstallCheck:           record.InstallCheck,
			AchievementSetOverride: record.AchievementSetOverride,
			MultiplayerID:          record.MultiplayerID,
		})
	}
	sort.Slice(file.Offers, func(i, j int) bool { return file.Offers[i].ID < file.Offers[j].ID })

	return writeFile(r.path, file)
}
