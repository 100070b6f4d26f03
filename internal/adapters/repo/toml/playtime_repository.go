package toml

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

const playTimeSchemaVersion = 1

type playTimeFileSchema struct {
	Version int              `toml:"version"`
	Games   []playTimeSchema `toml:"games"`
}

type playTimeSchema struct {
	GameID       string `toml:"game_id"`
	TotalMinutes int    `toml:"total_minutes"`
	LastPlayed   *int64 `toml:"last_played,omitempty"`
}

type PlayTimeRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.PlayTimeRepository = (*PlayTimeRepository)(nil)

func NewPlayTimeRepository(cfg *viper.Viper) (*PlayTimeRepository, error) {
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, playTimeFileName)
	return &PlayTimeRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *PlayTimeRepository) Load(ctx context.Context) (map[domain.GameID]domain.GameTimeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file playTimeFileSchema
	if err := readFile(r.path, &file); err != nil {
		return nil, err
	}
	if len(file.Games) > 0 && file.Version != playTimeSchemaVersion {
		log.Warn().Int("version", file.Version).Msg("play time cache schema changed, dropping cached records")
		return map[domain.GameID]domain.GameTimeRecord{}, nil
	}

	records := make(map[domain.GameID]domain.GameTimeRecord, len(file.Games))
	for _, entry := range file.Games {
		if entry.GameID == "" {
			continue
		}
		records[domain.GameID(entry.GameID)] = domain.GameTimeRecord{
			GameID:       domain.GameID(entry.GameID),
			TotalMinutes: entry.TotalMinutes,
			LastPlayed:   entry.LastPlayed,
		}
	}
	purgeLegacyKeys(records)
	return records, nil
}

// purgeLegacyKeys drops pre-migration entries keyed by bare offer id:
// for every suffixed key, the entry under its bare base key is removed.
func purgeLegacyKeys(records map[domain.GameID]domain.GameTimeRecord) {
	for id := range records {
		if base, _, ok := strings.Cut(string(id), "@"); ok {
			delete(records, domain.GameID(base))
		}
	}
}

func (r *PlayTimeRepository) Save(ctx context.Context, records map[domain.GameID]domain.GameTimeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := playTimeFileSchema{Version: playTimeSchemaVersion}
	for id, record := range records {
		file.Games = append(file.Games, playTimeSchema{
			GameID:       string(id),
			TotalMinutes: record.TotalMinutes,
			LastPlayed:   record.LastPlayed,
		})
	}
	sort.Slice(file.Games, func(i, j int) bool { return file.Games[i].GameID < file.Games[j].GameID })

	return writeFile(r.path, file)
}
