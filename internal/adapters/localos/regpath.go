package localos

import (
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

// StaticKeyValueReader serves values from a fixed map, keyed by
// "hive\key\value". Used on platforms without a registry and in tests.
type StaticKeyValueReader map[string]string

func (r StaticKeyValueReader) Value(hive, keyPath, valueName string) (string, error) {
	if value, ok := r[hive+`\`+keyPath+`\`+valueName]; ok {
		return value, nil
	}
	return "", domain.ErrValueNotFound
}

// NullKeyValueReader reports every entry as absent. The default on
// platforms where no registry-style store exists.
type NullKeyValueReader struct{}

func (NullKeyValueReader) Value(string, string, string) (string, error) {
	return "", domain.ErrValueNotFound
}
