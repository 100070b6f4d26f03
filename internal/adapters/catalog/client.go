package catalog

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

const (
	defaultGraphQLURL = "https://service-aggregation-layer.juno.ea.com/graphql"
	defaultGatewayURL = "https://gateway.ea.com"

	maxResponseBytes = 4 << 20

	subscriptionGroup = "Origin Membership"

	achievementsQueryHash = "aaf7932f6324d96ea026751365825bb4605776ed6023f29cb1e620477691b727"
)

// Schema selects the backend response-shape variant.
type Schema string

const (
	SchemaCurrent Schema = "current"
	SchemaLegacy  Schema = "legacy"
)

// Doer performs an authenticated GET; the session manager satisfies it.
type Doer interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*http.Response, error)
}

type Config struct {
	GraphQLURL string
	// LegacyURL overrides the randomized api{1-4}.origin.com host used
	// by the pre-migration endpoints. Intended for tests.
	LegacyURL  string
	GatewayURL string
	Schema     Schema
}

func (c *Config) applyDefaults() {
	if c.GraphQLURL == "" {
		c.GraphQLURL = defaultGraphQLURL
	}
	if c.GatewayURL == "" {
		c.GatewayURL = defaultGatewayURL
	}
	if c.Schema == "" {
		c.Schema = SchemaCurrent
	}
}

// Client is the remote catalog client. One implementation serves both
// backend variants; the schema adapter only switches response parsing
// and legacy host selection.
type Client struct {
	cfg    Config
	doer   Doer
	logger zerolog.Logger
}

var _ ports.CatalogClient = (*Client)(nil)

func NewClient(cfg Config, doer Doer) *Client {
	cfg.applyDefaults()
	return &Client{
		cfg:    cfg,
		doer:   doer,
		logger: log.With().Str("component", "catalog").Logger(),
	}
}

func (c *Client) legacyHost() string {
	if c.cfg.LegacyURL != "" {
		return c.cfg.LegacyURL
	}
	return fmt.Sprintf("https://api%d.origin.com", rand.Intn(4)+1)
}

func (c *Client) Identity(ctx context.Context) (domain.Identity, error) {
	body, err := c.query(ctx, "query{ me { player { pd psd displayName } } }")
	if err != nil {
		return domain.Identity{}, err
	}

	var parsed identityResponse
	if err := c.decode(body, &parsed, "identity"); err != nil {
		return domain.Identity{}, err
	}
	player := parsed.Data.Me.Player
	if player == nil || player.PD == "" {
		return domain.Identity{}, c.malformed(body, "identity")
	}
	return domain.Identity{
		UserID:      string(player.PD),
		PersonaID:   string(player.PSD),
		DisplayName: player.DisplayName,
	}, nil
}

func (c *Client) Entitlements(ctx context.Context) ([]domain.Entitlement, error) {
	body, err := c.query(ctx, `query{me{ownedGameProducts(locale:"en" entitlementEnabled:true storefronts:[EA,STEAM,EPIC] type:[DIGITAL_FULL_GAME,PACKAGED_FULL_GAME] platforms:[PC] paging:{limit:9999}){items{originOfferId product{gameSlug baseItem {gameType} gameProductUser{ownershipMethods entitlementId}}}}}}`)
	if err != nil {
		return nil, err
	}

	var parsed entitlementsResponse
	if err := c.decode(body, &parsed, "entitlements"); err != nil {
		return nil, err
	}

	items := parsed.Data.Me.OwnedGameProducts.Items
	entitlements := make([]domain.Entitlement, 0, len(items))
	for _, item := range items {
		if item.OriginOfferID == "" {
			continue
		}
		ent := domain.Entitlement{OfferID: domain.OfferID(item.OriginOfferID)}
		if item.Product != nil {
			ent.GameSlug = domain.GameSlug(item.Product.GameSlug)
			ent.GameType = item.Product.BaseItem.GameType
			ent.OwnershipMethods = item.Product.GameProductUser.OwnershipMethods
			ent.EntitlementID = string(item.Product.GameProductUser.EntitlementID)
		}
		entitlements = append(entitlements, ent)
	}
	return entitlements, nil
}

func (c *Client) Offer(ctx context.Context, id domain.OfferID) (domain.OfferRecord, error) {
	body, err := c.query(ctx, fmt.Sprintf(
		`query {legacyOffers(offerIds: ["%s"], locale: "en") { offerId: id contentId basePlatform primaryMasterTitleId achievementSetOverride multiplayerId installCheckOverride displayName displayType metadataInstallLocation softwarePlatform softwareId} gameProducts(offerIds: ["%s"], locale: "en") { items { name originOfferId baseItem { title } gameSlug}}}`,
		id, id))
	if err != nil {
		return domain.OfferRecord{}, err
	}

	var parsed offerResponse
	if err := c.decode(body, &parsed, "offer"); err != nil {
		return domain.OfferRecord{}, err
	}
	if len(parsed.Data.LegacyOffers) == 0 || len(parsed.Data.GameProducts.Items) == 0 {
		return domain.OfferRecord{}, c.malformed(body, "offer "+string(id))
	}

	legacy := parsed.Data.LegacyOffers[0]
	product := parsed.Data.GameProducts.Items[0]

	// The cache key comes from the response's own reported offer id,
	// which may differ from the one requested.
	return domain.OfferRecord{
		OfferID:                domain.OfferID(product.OriginOfferID),
		DisplayName:            legacy.DisplayName,
		ContentID:              string(legacy.ContentID),
		GameSlug:               domain.GameSlug(product.GameSlug),
		InstallCheck:           legacy.InstallCheckOverride,
		AchievementSetOverride: legacy.AchievementSetOverride,
		MultiplayerID:          legacy.MultiplayerID,
	}, nil
}

func (c *Client) AchievementSetID(ctx context.Context, offer domain.OfferID, personaID string) (string, error) {
	body, err := c.query(ctx, fmt.Sprintf(`query {achievements(offerId:"%s",playerPsd:"%s"){id}}`, offer, personaID))
	if err != nil {
		return "", err
	}

	var parsed achievementsResponse
	if err := c.decode(body, &parsed, "achievement set"); err != nil {
		return "", err
	}
	if len(parsed.Data.Achievements) == 0 {
		return "", nil
	}
	return parsed.Data.Achievements[0].ID, nil
}

func (c *Client) Achievements(ctx context.Context, offer domain.OfferID, personaID string) (map[string][]domain.Achievement, error) {
	variables := fmt.Sprintf(`{"offerId":"%s","playerPsd":"%s","locale":"en","showHidden":true}`, offer, personaID)
	extensions := fmt.Sprintf(`{"persistedQuery":{"version":1,"sha256Hash":"%s"}}`, achievementsQueryHash)
	endpoint := fmt.Sprintf("%s?operationName=ownedGameAchievements&variables=%s&extensions=%s",
		c.cfg.GraphQLURL, url.QueryEscape(variables), url.QueryEscape(extensions))

	body, err := c.get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var parsed achievementsResponse
	if err := c.decode(body, &parsed, "achievements"); err != nil {
		return nil, err
	}

	sets := make(map[string][]domain.Achievement, len(parsed.Data.Achievements))
	for _, set := range parsed.Data.Achievements {
		unlocked := []domain.Achievement{}
		for _, entry := range set.Achievements {
			// Only awarded achievements count as unlocked.
			if entry.AwardCount != 1 {
				continue
			}
			unlockTime, err := parseBackendTime(entry.Date)
			if err != nil {
				c.logger.Error().Str("date", entry.Date).Msg("cannot parse achievement unlock date")
				return nil, c.malformed(body, "achievements "+string(offer))
			}
			unlocked = append(unlocked, domain.Achievement{
				ID:         entry.ID,
				Name:       entry.Name,
				UnlockTime: unlockTime,
			})
		}
		sets[set.ID] = unlocked
	}
	return sets, nil
}

func (c *Client) GameTime(ctx context.Context, slug domain.GameSlug) (int, *int64, error) {
	body, err := c.query(ctx, fmt.Sprintf(`query {me {recentGames(gameSlugs:["%s"]){items {lastSessionEndDate totalPlayTimeSeconds}}}}`, slug))
	if err != nil {
		return 0, nil, err
	}

	var parsed recentGamesResponse
	if err := c.decode(body, &parsed, "game time"); err != nil {
		return 0, nil, err
	}

	items := parsed.Data.Me.RecentGames.Items
	if len(items) == 0 {
		// The backend's way of saying the game was never played.
		return 0, nil, nil
	}

	// Play time is reported in seconds.
	minutes := int(math.Round(float64(items[0].TotalPlayTimeSeconds) / 60))
	lastPlayed, err := parseBackendTime(items[0].LastSessionEndDate)
	if err != nil {
		return 0, nil, c.malformed(body, "game time "+string(slug))
	}
	return minutes, &lastPlayed, nil
}

func (c *Client) LastPlayed(ctx context.Context, slugs []domain.GameSlug) (map[domain.GameSlug]int64, error) {
	quoted := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		quoted = append(quoted, fmt.Sprintf("%q", string(slug)))
	}
	body, err := c.query(ctx, fmt.Sprintf(`query {me {recentGames(gameSlugs:[%s]){items {gameSlug lastSessionEndDate}}}}`, strings.Join(quoted, ",")))
	if err != nil {
		return nil, err
	}

	var parsed recentGamesResponse
	if err := c.decode(body, &parsed, "last played"); err != nil {
		return nil, err
	}

	lastPlayed := make(map[domain.GameSlug]int64, len(parsed.Data.Me.RecentGames.Items))
	for _, item := range parsed.Data.Me.RecentGames.Items {
		unix, err := parseBackendTime(item.LastSessionEndDate)
		if err != nil {
			return nil, c.malformed(body, "last played")
		}
		lastPlayed[domain.GameSlug(item.GameSlug)] = unix
	}
	return lastPlayed, nil
}

func (c *Client) Friends(ctx context.Context) ([]domain.Friend, error) {
	body, err := c.query(ctx, "query{me {friends {items {player {pd psd displayName}}}}}")
	if err != nil {
		return nil, err
	}

	var parsed friendsResponse
	if err := c.decode(body, &parsed, "friends"); err != nil {
		return nil, err
	}

	friends := make([]domain.Friend, 0, len(parsed.Data.Me.Friends.Items))
	for _, item := range parsed.Data.Me.Friends.Items {
		friends = append(friends, domain.Friend{
			UserID:      string(item.Player.PD),
			DisplayName: item.Player.DisplayName,
		})
	}
	return friends, nil
}

func (c *Client) FavoriteGames(ctx context.Context, userID string) (map[domain.OfferID]struct{}, error) {
	return c.privacySetting(ctx, userID, "FAVORITEGAMES")
}

func (c *Client) HiddenGames(ctx context.Context, userID string) (map[domain.OfferID]struct{}, error) {
	return c.privacySetting(ctx, userID, "HIDDENGAMES")
}

func (c *Client) privacySetting(ctx context.Context, userID, category string) (map[domain.OfferID]struct{}, error) {
	endpoint := fmt.Sprintf("%s/atom/users/%s/privacySettings/%s", c.legacyHost(), userID, category)
	body, err := c.get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var parsed privacySettingsPayload
	if err := xml.Unmarshal(body, &parsed); err != nil {
		c.logger.Error().Err(err).Str("payload", string(body)).Msg("cannot parse backend response")
		return nil, fmt.Errorf("parse %s: %w", category, domain.ErrMalformedResponse)
	}

	payload := strings.TrimPrefix(parsed.Payload, "1.0|")
	offers := map[domain.OfferID]struct{}{}
	if payload == "" {
		// No games tagged.
		return offers, nil
	}
	for _, id := range strings.Split(payload, ";") {
		if id != "" {
			offers[domain.OfferID(id)] = struct{}{}
		}
	}
	return offers, nil
}

const (
	subscriptionNameStandard = "EA Play"
	subscriptionNamePremium  = "EA Play Pro"

	SubscriptionTierStandard = "standard"
	SubscriptionTierPremium  = "premium"
)

func (c *Client) Subscriptions(ctx context.Context, userID string) ([]domain.Subscription, error) {
	uris, err := c.subscriptionURIs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var tier string
	var endTime *int64
	for _, uri := range uris {
		foundTier, foundEnd, err := c.activeSubscription(ctx, uri)
		if err != nil {
			return nil, err
		}
		if foundTier != "" {
			tier, endTime = foundTier, foundEnd
			break
		}
	}

	standard := domain.Subscription{Name: subscriptionNameStandard}
	premium := domain.Subscription{Name: subscriptionNamePremium}
	switch tier {
	case "":
	case SubscriptionTierStandard:
		standard.Owned = true
		standard.EndTime = endTime
	case SubscriptionTierPremium:
		premium.Owned = true
		premium.EndTime = endTime
	default:
		c.logger.Error().Str("tier", tier).Msg("unknown subscription tier")
		return nil, fmt.Errorf("subscription tier %q: %w", tier, domain.ErrMalformedResponse)
	}
	return []domain.Subscription{standard, premium}, nil
}

func (c *Client) subscriptionURIs(ctx context.Context, userID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/proxy/subscription/pids/%s/subscriptionsv2/groups/%s",
		c.cfg.GatewayURL, userID, url.PathEscape(subscriptionGroup))
	body, err := c.get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var parsed subscriptionURIsResponse
	if err := c.decode(body, &parsed, "subscription uris"); err != nil {
		return nil, err
	}

	uris := make([]string, 0, len(parsed.SubscriptionURI))
	for _, path := range parsed.SubscriptionURI {
		uris = append(uris, fmt.Sprintf("%s/proxy/subscription/pids/%s%s", c.cfg.GatewayURL, userID, path))
	}
	return uris, nil
}

// activeSubscription returns the tier and end time of an enabled
// subscription, or "" when the entry is not active. The two backend
// variants report different shapes for the same endpoint.
func (c *Client) activeSubscription(ctx context.Context, uri string) (string, *int64, error) {
	body, err := c.get(ctx, uri, nil)
	if err != nil {
		return "", nil, err
	}

	if c.cfg.Schema == SchemaLegacy {
		var entries []legacySubscriptionEntry
		if err := c.decode(body, &entries, "subscription detail"); err != nil {
			return "", nil, err
		}
		for _, entry := range entries {
			if !strings.EqualFold(entry.Status, "enabled") {
				continue
			}
			end, err := parseBillingTime(entry.End)
			if err != nil {
				return "", nil, c.malformed(body, "subscription detail")
			}
			return strings.ToLower(entry.Level), end, nil
		}
		return "", nil, nil
	}

	var parsed subscriptionDetailResponse
	if err := c.decode(body, &parsed, "subscription detail"); err != nil {
		return "", nil, err
	}
	sub := parsed.Subscription
	if sub == nil || !strings.EqualFold(sub.Status, "enabled") {
		c.logger.Debug().Str("payload", string(body)).Msg("no enabled subscription in response")
		return "", nil, nil
	}
	end, err := parseBillingTime(sub.NextBillingDate)
	if err != nil {
		return "", nil, c.malformed(body, "subscription detail")
	}
	return strings.ToLower(sub.SubscriptionLevel), end, nil
}

func (c *Client) SubscriptionGames(ctx context.Context, tier string) ([]domain.SubscriptionGame, error) {
	endpoint := fmt.Sprintf("%s/ecommerce2/vaultInfo/%s/tiers/%s",
		c.legacyHost(), url.PathEscape(subscriptionGroup), url.PathEscape(tier))
	header := http.Header{"Accept": {"application/vnd.origin.v3+json; x-cache/force-write"}}
	body, err := c.get(ctx, endpoint, header)
	if err != nil {
		return nil, err
	}

	var parsed vaultGamesResponse
	if err := c.decode(body, &parsed, "subscription games"); err != nil {
		return nil, err
	}

	games := make([]domain.SubscriptionGame, 0, len(parsed.Game))
	for _, game := range parsed.Game {
		// The id of a vault game may not match the id of the same game
		// in the user library; the suffix keeps the two apart.
		games = append(games, domain.SubscriptionGame{
			ID:    domain.GameID(game.OfferID + domain.SuffixSubscription),
			Title: game.DisplayName,
		})
	}
	return games, nil
}

func (c *Client) query(ctx context.Context, queryText string) ([]byte, error) {
	endpoint := c.cfg.GraphQLURL + "?query=" + url.QueryEscape(queryText)
	return c.get(ctx, endpoint, nil)
}

func (c *Client) get(ctx context.Context, endpoint string, header http.Header) ([]byte, error) {
	resp, err := c.doer.Get(ctx, endpoint, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", domain.ErrTransientBackend)
	}
	return body, nil
}

func (c *Client) decode(body []byte, v any, what string) error {
	if err := json.Unmarshal(body, v); err != nil {
		return c.malformed(body, what)
	}
	return nil
}

func (c *Client) malformed(body []byte, what string) error {
	c.logger.Error().Str("payload", string(body)).Msgf("cannot parse backend response for %s", what)
	return fmt.Errorf("parse %s: %w", what, domain.ErrMalformedResponse)
}
