package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

func testConfig(t *testing.T) *viper.Viper {
	t.Helper()
	cfg := viper.New()
	cfg.Set(cacheDirKey, t.TempDir())
	return cfg
}

func TestOfferRepositoryRoundTrip(t *testing.T) {
	repo, err := NewOfferRepository(testConfig(t))
	require.NoError(t, err)

	offers := map[domain.OfferID]domain.OfferRecord{
		"Origin.OFR.50.0001672": {
			OfferID:                "Origin.OFR.50.0001672",
			DisplayName:            "Battlefield 1",
			ContentID:              "196216",
			GameSlug:               "battlefield-1",
			InstallCheck:           `[HKEY_LOCAL_MACHINE\SOFTWARE\EA Games\BF1]\Install Dir`,
			AchievementSetOverride: "50563_69263_50844",
		},
		"OFB-EAST:12345": {
			OfferID:  "OFB-EAST:12345",
			GameSlug: "apex-legends",
		},
	}

	require.NoError(t, repo.Save(context.Background(), offers))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, offers, loaded)
}

func TestOfferRepositoryEmptyWhenMissing(t *testing.T) {
	repo, err := NewOfferRepository(testConfig(t))
	require.NoError(t, err)

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestOfferRepositoryDropsOnVersionMismatch(t *testing.T) {
	cfg := testConfig(t)
	repo, err := NewOfferRepository(cfg)
	require.NoError(t, err)

	stale := "version = 1\n\n[[offers]]\nid = \"Origin.OFR.50.0001672\"\ndisplay_name = \"Battlefield 1\"\ncontent_id = \"196216\"\ngame_slug = \"battlefield-1\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.GetString(cacheDirKey), offersFileName), []byte(stale), 0o600))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestOfferRepositoryToleratesCorruptFile(t *testing.T) {
	cfg := testConfig(t)
	repo, err := NewOfferRepository(cfg)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.GetString(cacheDirKey), offersFileName), []byte("{ not toml"), 0o600))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestPlayTimeRepositoryRoundTrip(t *testing.T) {
	repo, err := NewPlayTimeRepository(testConfig(t))
	require.NoError(t, err)

	lastPlayed := int64(1709222423)
	records := map[domain.GameID]domain.GameTimeRecord{
		"Origin.OFR.50.0001672@steam": {
			GameID:       "Origin.OFR.50.0001672@steam",
			TotalMinutes: 91,
			LastPlayed:   &lastPlayed,
		},
		"OFB-EAST:12345": {
			GameID: "OFB-EAST:12345",
		},
	}

	require.NoError(t, repo.Save(context.Background(), records))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestPlayTimeRepositoryPurgesLegacyKeys(t *testing.T) {
	repo, err := NewPlayTimeRepository(testConfig(t))
	require.NoError(t, err)

	records := map[domain.GameID]domain.GameTimeRecord{
		"Origin.OFR.50.0001672":       {GameID: "Origin.OFR.50.0001672", TotalMinutes: 10},
		"Origin.OFR.50.0001672@steam": {GameID: "Origin.OFR.50.0001672@steam", TotalMinutes: 91},
		"OFB-EAST:12345":              {GameID: "OFB-EAST:12345", TotalMinutes: 5},
	}
	require.NoError(t, repo.Save(context.Background(), records))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)

	// The suffixed entry shadows its bare-key predecessor; unrelated
	// bare keys survive.
	assert.NotContains(t, loaded, domain.GameID("Origin.OFR.50.0001672"))
	assert.Contains(t, loaded, domain.GameID("Origin.OFR.50.0001672@steam"))
	assert.Contains(t, loaded, domain.GameID("OFB-EAST:12345"))
}

func TestPlayTimeRepositoryDropsOnVersionMismatch(t *testing.T) {
	cfg := testConfig(t)
	repo, err := NewPlayTimeRepository(cfg)
	require.NoError(t, err)

	stale := "version = 0\n\n[[games]]\ngame_id = \"Origin.OFR.50.0001672@steam\"\ntotal_minutes = 91\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.GetString(cacheDirKey), playTimeFileName), []byte(stale), 0o600))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAuthStateRepositoryRoundTrip(t *testing.T) {
	repo, err := NewAuthStateRepository(testConfig(t))
	require.NoError(t, err)

	unix, err := repo.LastAuthSuccess(context.Background())
	require.NoError(t, err)
	assert.Zero(t, unix, "no state recorded yet")

	require.NoError(t, repo.SaveLastAuthSuccess(context.Background(), 1700000000))

	unix, err = repo.LastAuthSuccess(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), unix)
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.toml")

	require.NoError(t, writeFile(path, map[string]string{"key": "first"}))
	require.NoError(t, writeFile(path, map[string]string{"key": "second"}))

	var loaded map[string]string
	require.NoError(t, readFile(path, &loaded))
	assert.Equal(t, map[string]string{"key": "second"}, loaded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
