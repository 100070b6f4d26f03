package application

import (
	"context"
	"sync"
	"time"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

// fakeCatalog implements ports.CatalogClient with overridable hooks;
// unhooked operations return zero values.
type fakeCatalog struct {
	mu sync.Mutex

	identityFn      func() (domain.Identity, error)
	entitlementsFn  func() ([]domain.Entitlement, error)
	offerFn         func(domain.OfferID) (domain.OfferRecord, error)
	offerCalls      []domain.OfferID
	setIDFn         func(domain.OfferID) (string, error)
	achievementsFn  func(domain.OfferID) (map[string][]domain.Achievement, error)
	gameTimeFn      func(domain.GameSlug) (int, *int64, error)
	gameTimeCalls   []domain.GameSlug
	lastPlayedFn    func([]domain.GameSlug) (map[domain.GameSlug]int64, error)
	lastPlayedCalls int
	friendsFn       func() ([]domain.Friend, error)
	favoritesFn     func() (map[domain.OfferID]struct{}, error)
	hiddenFn        func() (map[domain.OfferID]struct{}, error)
	subsFn          func() ([]domain.Subscription, error)
	subGamesFn      func(string) ([]domain.SubscriptionGame, error)
	subGamesCalls   []string
}

func (c *fakeCatalog) Identity(context.Context) (domain.Identity, error) {
	if c.identityFn != nil {
		return c.identityFn()
	}
	return domain.Identity{UserID: "user-1", PersonaID: "persona-1", DisplayName: "tester"}, nil
}

func (c *fakeCatalog) Entitlements(context.Context) ([]domain.Entitlement, error) {
	if c.entitlementsFn != nil {
		return c.entitlementsFn()
	}
	return nil, nil
}

func (c *fakeCatalog) Offer(_ context.Context, id domain.OfferID) (domain.OfferRecord, error) {
	c.mu.Lock()
	c.offerCalls = append(c.offerCalls, id)
	c.mu.Unlock()
	if c.offerFn != nil {
		return c.offerFn(id)
	}
	return domain.OfferRecord{OfferID: id}, nil
}

func (c *fakeCatalog) offerCallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.offerCalls)
}

func (c *fakeCatalog) AchievementSetID(_ context.Context, offer domain.OfferID, _ string) (string, error) {
	if c.setIDFn != nil {
		return c.setIDFn(offer)
	}
	return "", nil
}

func (c *fakeCatalog) Achievements(_ context.Context, offer domain.OfferID, _ string) (map[string][]domain.Achievement, error) {
	if c.achievementsFn != nil {
		return c.achievementsFn(offer)
	}
	return map[string][]domain.Achievement{}, nil
}

func (c *fakeCatalog) GameTime(_ context.Context, slug domain.GameSlug) (int, *int64, error) {
	c.mu.Lock()
	c.gameTimeCalls = append(c.gameTimeCalls, slug)
	c.mu.Unlock()
	if c.gameTimeFn != nil {
		return c.gameTimeFn(slug)
	}
	return 0, nil, nil
}

func (c *fakeCatalog) gameTimeCallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.gameTimeCalls)
}

func (c *fakeCatalog) LastPlayed(_ context.Context, slugs []domain.GameSlug) (map[domain.GameSlug]int64, error) {
	c.mu.Lock()
	c.lastPlayedCalls++
	c.mu.Unlock()
	if c.lastPlayedFn != nil {
		return c.lastPlayedFn(slugs)
	}
	return map[domain.GameSlug]int64{}, nil
}

func (c *fakeCatalog) Friends(context.Context) ([]domain.Friend, error) {
	if c.friendsFn != nil {
		return c.friendsFn()
	}
	return nil, nil
}

func (c *fakeCatalog) FavoriteGames(context.Context, string) (map[domain.OfferID]struct{}, error) {
	if c.favoritesFn != nil {
		return c.favoritesFn()
	}
	return map[domain.OfferID]struct{}{}, nil
}

func (c *fakeCatalog) HiddenGames(context.Context, string) (map[domain.OfferID]struct{}, error) {
	if c.hiddenFn != nil {
		return c.hiddenFn()
	}
	return map[domain.OfferID]struct{}{}, nil
}

func (c *fakeCatalog) Subscriptions(context.Context, string) ([]domain.Subscription, error) {
	if c.subsFn != nil {
		return c.subsFn()
	}
	return nil, nil
}

func (c *fakeCatalog) SubscriptionGames(_ context.Context, tier string) ([]domain.SubscriptionGame, error) {
	c.mu.Lock()
	c.subGamesCalls = append(c.subGamesCalls, tier)
	c.mu.Unlock()
	if c.subGamesFn != nil {
		return c.subGamesFn(tier)
	}
	return nil, nil
}

type fakeOfferRepo struct {
	mu        sync.Mutex
	stored    map[domain.OfferID]domain.OfferRecord
	saveCount int
}

func (r *fakeOfferRepo) Load(context.Context) (map[domain.OfferID]domain.OfferRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loaded := make(map[domain.OfferID]domain.OfferRecord, len(r.stored))
	for id, record := range r.stored {
		loaded[id] = record
	}
	return loaded, nil
}

func (r *fakeOfferRepo) Save(_ context.Context, offers map[domain.OfferID]domain.OfferRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = offers
	r.saveCount++
	return nil
}

type fakePlayTimeRepo struct {
	mu        sync.Mutex
	stored    map[domain.GameID]domain.GameTimeRecord
	saveCount int
}

func (r *fakePlayTimeRepo) Load(context.Context) (map[domain.GameID]domain.GameTimeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loaded := make(map[domain.GameID]domain.GameTimeRecord, len(r.stored))
	for id, record := range r.stored {
		loaded[id] = record
	}
	return loaded, nil
}

func (r *fakePlayTimeRepo) Save(_ context.Context, records map[domain.GameID]domain.GameTimeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = records
	r.saveCount++
	return nil
}

// fakeManifest serves fixed entries. For overlap tests it can announce
// entry on a channel and block until released.
type fakeManifest struct {
	entries []domain.ManifestEntry
	err     error
	entered chan struct{}
	block   chan struct{}
}

func (m *fakeManifest) Load(context.Context) ([]domain.ManifestEntry, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	return m.entries, m.err
}

type fakeProcesses struct {
	executables []string
	err         error
}

func (p *fakeProcesses) RunningExecutables(context.Context) ([]string, error) {
	return p.executables, p.err
}

type fakeKeyValueReader map[string]string

func (r fakeKeyValueReader) Value(hive, keyPath, valueName string) (string, error) {
	if value, ok := r[hive+`\`+keyPath+`\`+valueName]; ok {
		return value, nil
	}
	return "", domain.ErrValueNotFound
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []domain.LocalGame
}

func (n *recordingNotifier) LocalGameChanged(game domain.LocalGame) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, game)
}

func (n *recordingNotifier) all() []domain.LocalGame {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.LocalGame(nil), n.changes...)
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
