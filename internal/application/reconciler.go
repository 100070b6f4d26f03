package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// Reconciler derives the local installation snapshot from the install
// manifest, the process table and the registry-style install checks,
// and reports minimal state transitions between consecutive snapshots.
//
// Every input degrades rather than fails: an unreadable manifest yields
// an empty snapshot (everything transitions to None), a failed process
// scan disables running detection for the pass.
type Reconciler struct {
	manifest  ports.ManifestSource
	processes ports.ProcessEnumerator
	registry  ports.KeyValueReader
	offers    *OfferService
	logger    zerolog.Logger

	mu       sync.Mutex
	previous []domain.LocalGame
}

func NewReconciler(manifest ports.ManifestSource, processes ports.ProcessEnumerator, registry ports.KeyValueReader, offers *OfferService) *Reconciler {
	return &Reconciler{
		manifest:  manifest,
		processes: processes,
		registry:  registry,
		offers:    offers,
		logger:    log.With().Str("component", "reconciler").Logger(),
	}
}

// Refresh computes a fresh snapshot and returns it together with the
// transitions since the previous snapshot. The first call reports every
// detected game as a transition.
func (r *Reconciler) Refresh(ctx context.Context) ([]domain.LocalGame, []domain.LocalGame) {
	snapshot := r.snapshot(ctx)

	r.mu.Lock()
	changes := domain.DiffStates(r.previous, snapshot)
	r.previous = snapshot
	r.mu.Unlock()
	return snapshot, changes
}

// Snapshot returns the last computed snapshot without refreshing.
func (r *Reconciler) Snapshot() []domain.LocalGame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.LocalGame(nil), r.previous...)
}

func (r *Reconciler) snapshot(ctx context.Context) []domain.LocalGame {
	entries, err := r.manifest.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrManifestParse) {
			r.logger.Warn().Err(err).Msg("manifest unreadable, treating as no local installs")
			return nil
		}
		r.logger.Error().Err(err).Msg("manifest load failed")
		return nil
	}

	running, err := r.processes.RunningExecutables(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("process scan failed, running detection disabled for this pass")
		running = nil
	}

	var snapshot []domain.LocalGame
	seen := map[domain.GameID]struct{}{}
	for _, entry := range entries {
		game, ok := r.classify(ctx, entry, running)
		if !ok {
			continue
		}
		if _, dup := seen[game.GameID]; dup {
			continue
		}
		seen[game.GameID] = struct{}{}
		snapshot = append(snapshot, game)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].GameID < snapshot[j].GameID })
	return snapshot
}

// classify maps one manifest entry to its local state. Entries that
// cannot be tied to an offer, or whose install-check spec cannot be
// parsed, are excluded from the snapshot; everything else is reported,
// with None for installs that are incomplete or fail their check.
func (r *Reconciler) classify(ctx context.Context, entry domain.ManifestEntry, running []string) (domain.LocalGame, bool) {
	offerID := entry.OfferID
	if offerID == "" {
		record, ok := r.offers.BySlug(ctx, entry.BaseSlug)
		if !ok {
			r.logger.Debug().Str("slug", string(entry.BaseSlug)).Msg("no cached offer for manifest entry")
			return domain.LocalGame{}, false
		}
		offerID = record.OfferID
	}

	state := domain.StateNone
	if entry.InstallStatus == domain.InstallStatusReady {
		executable, installed, err := r.installPath(ctx, entry, offerID)
		if err != nil {
			r.logger.Debug().Err(err).Str("offer_id", string(offerID)).Msg("skipping unparsable install check")
			return domain.LocalGame{}, false
		}
		if installed {
			state = domain.StateInstalled
			if isRunning(executable, running) {
				state = domain.StateRunning
			}
		}
	}
	return domain.LocalGame{GameID: domain.GameID(offerID), State: state}, true
}

// installPath verifies the entry's install check and returns the
// executable path used for running detection. The cached offer's
// install-check spec takes precedence over the manifest's; an absent
// value means not installed, and a spec that cannot be parsed is
// reported as an error so the entry is dropped rather than classified.
func (r *Reconciler) installPath(ctx context.Context, entry domain.ManifestEntry, offerID domain.OfferID) (string, bool, error) {
	spec := entry.ExecuteCheck
	if record, ok := r.offers.Get(ctx, offerID); ok && record.InstallCheck != "" {
		spec = record.InstallCheck
	}

	if strings.HasPrefix(spec, "[") {
		keyPath, err := domain.ParseKeyPath(spec)
		if err != nil {
			return "", false, err
		}
		value, err := r.registry.Value(keyPath.Hive, keyPath.Key, keyPath.Value)
		if err != nil {
			if !errors.Is(err, domain.ErrValueNotFound) {
				r.logger.Warn().Err(err).Str("offer_id", string(offerID)).Msg("install check lookup failed")
			}
			return "", false, nil
		}
		return value, true, nil
	}

	path := entry.ExecutablePath
	if path == "" {
		return "", false, nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", false, nil
	}
	return path, true, nil
}

// isRunning matches the executable's base name, up to its first dot,
// as a substring of any running process image path. Approximate on
// purpose: manifest paths and process paths rarely agree on case-free
// normalization, but the bare image name is stable.
func isRunning(executable string, running []string) bool {
	name, _, _ := strings.Cut(filepath.Base(executable), ".")
	if name == "" {
		return false
	}
	for _, exe := range running {
		if strings.Contains(exe, name) {
			return true
		}
	}
	return false
}
