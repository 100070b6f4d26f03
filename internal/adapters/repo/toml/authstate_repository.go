package toml

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

type authStateFileSchema struct {
	LastAuthSuccess int64 `toml:"last_auth_success,omitempty"`
}

type AuthStateRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.AuthStateRepository = (*AuthStateRepository)(nil)

func NewAuthStateRepository(cfg *viper.Viper) (*AuthStateRepository, error) {
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, authStateFileName)
	return &AuthStateRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *AuthStateRepository) LastAuthSuccess(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file authStateFileSchema
	if err := readFile(r.path, &file); err != nil {
		return 0, err
	}
	return file.LastAuthSuccess, nil
}

func (r *AuthStateRepository) SaveLastAuthSuccess(ctx context.Context, unix int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return writeFile(r.path, authStateFileSchema{LastAuthSuccess: unix})
}
