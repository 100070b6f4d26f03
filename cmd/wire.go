package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	authadapter "github.com/BellezaEmporium/galaxy-integration-ead/internal/adapters/auth"
	catalogadapter "github.com/BellezaEmporium/galaxy-integration-ead/internal/adapters/catalog"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/adapters/localos"
	statusadapter "github.com/BellezaEmporium/galaxy-integration-ead/internal/adapters/render/status"
	tomlrepo "github.com/BellezaEmporium/galaxy-integration-ead/internal/adapters/repo/toml"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/application"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

const (
	manifestPathKey  = "manifest.path"
	minIntervalKey   = "reconcile.min_interval"
	catalogURLKey    = "catalog.base_url"
	catalogSchemaKey = "catalog.schema"
	authURLKey       = "auth.url"

	defaultMinInterval = time.Minute
)

type app struct {
	session      *authadapter.SessionManager
	offers       *application.OfferService
	playTime     *application.PlayTimeService
	library      *application.LibraryService
	achievements *application.AchievementsService
	reconciler   *application.Reconciler
	scheduler    *application.Scheduler
	cookiesPath  string
	renderStatus func(statusadapter.Report, statusadapter.RenderOptions) string
	now          func() time.Time
}

func wireApp() (*app, error) {
	cfg := viper.New()
	cfg.SetDefault(minIntervalKey, defaultMinInterval)
	cfg.SetDefault(catalogSchemaKey, string(catalogadapter.SchemaCurrent))

	offerRepo, err := tomlrepo.NewOfferRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire offer repository: %w", err)
	}
	playTimeRepo, err := tomlrepo.NewPlayTimeRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire play-time repository: %w", err)
	}
	authStateRepo, err := tomlrepo.NewAuthStateRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire auth-state repository: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cookiesPath := filepath.Join(homeDir, ".galaxy-ead", "cookies.json")

	session := authadapter.NewSessionManager(authadapter.Config{
		AuthURL: cfg.GetString(authURLKey),
	}, authadapter.NewCookieStore(), authStateRepo, ports.SystemClock{})
	session.SetObserver(sessionEvents{cookiesPath: cookiesPath})

	catalog := catalogadapter.NewClient(catalogadapter.Config{
		GraphQLURL: cfg.GetString(catalogURLKey),
		Schema:     catalogadapter.Schema(cfg.GetString(catalogSchemaKey)),
	}, session)

	offers := application.NewOfferService(catalog, offerRepo)
	playTime := application.NewPlayTimeService(catalog, playTimeRepo)
	library := application.NewLibraryService(catalog, offers, playTime)
	achievements := application.NewAchievementsService(catalog, offers, library)

	reconciler := application.NewReconciler(
		localos.NewFileManifest(cfg.GetString(manifestPathKey)),
		localos.NewProcessScanner(),
		localos.NullKeyValueReader{},
		offers,
	)
	scheduler := application.NewScheduler(
		reconciler,
		logNotifier{},
		ports.SystemClock{},
		cfg.GetDuration(minIntervalKey),
	)

	return &app{
		session:      session,
		offers:       offers,
		playTime:     playTime,
		library:      library,
		achievements: achievements,
		reconciler:   reconciler,
		scheduler:    scheduler,
		cookiesPath:  cookiesPath,
		renderStatus: statusadapter.Render,
		now:          time.Now,
	}, nil
}

// sessionEvents receives session callbacks: lost sessions are logged,
// cookie updates are persisted so the next invocation can reuse them.
type sessionEvents struct {
	cookiesPath string
}

func (e sessionEvents) SessionLost() {
	log.Warn().Msg("session lost, run `ead login` again")
}

func (e sessionEvents) CookiesUpdated(cookies []domain.Cookie) {
	if err := saveCookies(e.cookiesPath, cookies); err != nil {
		log.Warn().Err(err).Msg("failed to persist session cookies")
	}
}

// logNotifier reports local-game transitions to the log.
type logNotifier struct{}

func (logNotifier) LocalGameChanged(game domain.LocalGame) {
	log.Info().
		Str("game_id", string(game.GameID)).
		Str("state", game.State.String()).
		Msg("local game transition")
}
