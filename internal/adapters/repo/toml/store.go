// Package toml persists the integration's durable state (offer cache,
// play-time cache, auth state) as versioned TOML files. Each store is
// independently loadable and tolerant of being empty or corrupt:
// unreadable content degrades to an empty store with a logged warning.
package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	configName   = "config"
	configType   = "toml"
	cacheDirKey  = "cache.dir"
	cacheDirName = ".galaxy-ead"

	cacheFileMode = 0o600
	cacheDirMode  = 0o700

	offersFileName    = "offers.toml"
	playTimeFileName  = "playtime.toml"
	authStateFileName = "auth_state.toml"
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// resolveCacheDir reads the cache directory from config, defaulting to
// ~/.galaxy-ead.
func resolveCacheDir(cfg *viper.Viper) (string, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	defaultDir := filepath.Join(homeDir, cacheDirName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(defaultDir)
	cfg.SetDefault(cacheDirKey, defaultDir)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return "", fmt.Errorf("read config file: %w", err)
		}
	}

	cacheDir := cfg.GetString(cacheDirKey)
	if cacheDir == "" {
		return "", errors.New("cache dir is empty")
	}
	absDir, err := filepath.Abs(cacheDir)
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Clean(absDir), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// readFile decodes the store at path into v. A missing file leaves v
// zero; a corrupt file is dropped with a warning, never fatal.
func readFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	if err := toml.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("dropping corrupt cache file")
	}
	return nil
}

// writeFile atomically replaces the store at path with the encoding of v.
func writeFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), cacheDirMode); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp cache file: %w", err)
	}

	if err := tempFile.Chmod(cacheFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp cache file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	cleanup = false
	return nil
}
