package localos

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// Software-id families the manifest may report for units this
// integration manages.
var softwareIDPrefixes = []string{"Origin", "OFB", "DR"}

type manifestFile struct {
	InstallInfos []manifestEntry `json:"installInfos"`
}

type manifestEntry struct {
	SoftwareID     string `json:"softwareId"`
	BaseSlug       string `json:"baseSlug"`
	OfferID        string `json:"offerId"`
	ExecutablePath string `json:"executablePath"`
	ExecuteCheck   string `json:"executeCheck"`
	DetailedState  struct {
		InstallStatus int `json:"installStatus"`
	} `json:"detailedState"`
}

// FileManifest reads the decrypted install manifest from disk.
type FileManifest struct {
	path string
}

var _ ports.ManifestSource = (*FileManifest)(nil)

func NewFileManifest(path string) *FileManifest {
	return &FileManifest{path: path}
}

func (m *FileManifest) Load(ctx context.Context) ([]domain.ManifestEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", m.path, domain.ErrManifestParse)
	}

	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", m.path, domain.ErrManifestParse)
	}

	entries := make([]domain.ManifestEntry, 0, len(file.InstallInfos))
	for _, info := range file.InstallInfos {
		if !managedSoftwareID(info.SoftwareID) {
			continue
		}
		entries = append(entries, domain.ManifestEntry{
			SoftwareID:     info.SoftwareID,
			BaseSlug:       domain.GameSlug(info.BaseSlug),
			OfferID:        domain.OfferID(info.OfferID),
			ExecutablePath: info.ExecutablePath,
			ExecuteCheck:   info.ExecuteCheck,
			InstallStatus:  info.DetailedState.InstallStatus,
		})
	}
	return entries, nil
}

func managedSoftwareID(softwareID string) bool {
	for _, prefix := range softwareIDPrefixes {
		if len(softwareID) >= len(prefix) && softwareID[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
