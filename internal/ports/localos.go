package ports

import (
	"context"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

// ProcessEnumerator lists the executable image paths of currently
// running processes. Best effort: a process whose image path cannot be
// read is omitted, not fatal.
type ProcessEnumerator interface {
	RunningExecutables(ctx context.Context) ([]string, error)
}

// KeyValueReader reads a value from a registry-style keyed store.
// Returns domain.ErrValueNotFound when the key or value is absent.
type KeyValueReader interface {
	Value(hive, keyPath, valueName string) (string, error)
}

// ManifestSource loads the install manifest describing locally detected
// software units. A missing or unreadable manifest surfaces as
// domain.ErrManifestParse.
type ManifestSource interface {
	Load(ctx context.Context) ([]domain.ManifestEntry, error)
}
