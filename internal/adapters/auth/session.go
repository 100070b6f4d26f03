package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

const (
	defaultAuthURL     = "https://accounts.ea.com/connect/auth"
	defaultClientID    = "JUNO_PC_CLIENT"
	defaultDisplay     = "junoWeb/login"
	defaultRedirectURI = "nucleus:rest"

	defaultTimeout = 30 * time.Second

	sessionCookieName = "utag_main"
	sessionFieldMax   = 10
)

type Config struct {
	AuthURL     string
	ClientID    string
	Display     string
	RedirectURI string
	HTTPClient  *http.Client
}

func (c *Config) applyDefaults() {
	if c.AuthURL == "" {
		c.AuthURL = defaultAuthURL
	}
	if c.ClientID == "" {
		c.ClientID = defaultClientID
	}
	if c.Display == "" {
		c.Display = defaultDisplay
	}
	if c.RedirectURI == "" {
		c.RedirectURI = defaultRedirectURI
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
}

// SessionManager owns the bearer token lifecycle: acquisition from the
// authorization endpoint, transparent refresh-and-retry on expiry, and
// session-lost signalling when refresh fails for non-transient reasons.
// Methods are never invoked concurrently for the same session; the
// internal mutex only guards token reads from request paths.
type SessionManager struct {
	cfg        Config
	client     *http.Client
	authClient *http.Client
	cookies    *CookieStore
	state      ports.AuthStateRepository
	clock      ports.Clock
	logger     zerolog.Logger

	mu          sync.Mutex
	token       string
	acquiredAt  time.Time
	lastSuccess int64
	observer    ports.SessionObserver
}

func NewSessionManager(cfg Config, cookies *CookieStore, state ports.AuthStateRepository, clock ports.Clock) *SessionManager {
	cfg.applyDefaults()
	if cookies == nil {
		cookies = NewCookieStore()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	// The token lives in the redirect target; the redirect itself must
	// not be followed.
	authClient := *cfg.HTTPClient
	authClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &SessionManager{
		cfg:        cfg,
		client:     cfg.HTTPClient,
		authClient: &authClient,
		cookies:    cookies,
		state:      state,
		clock:      clock,
		logger:     log.With().Str("component", "session").Logger(),
	}
}

// SetObserver registers the session observer and routes cookie-store
// changes to it.
func (m *SessionManager) SetObserver(o ports.SessionObserver) {
	m.mu.Lock()
	m.observer = o
	m.mu.Unlock()
	m.cookies.SetListener(o.CookiesUpdated)
}

func (m *SessionManager) Cookies() *CookieStore { return m.cookies }

// RestoreAuthState loads the last-successful-acquisition timestamp kept
// for session-loss diagnostics.
func (m *SessionManager) RestoreAuthState(ctx context.Context) {
	if m.state == nil {
		return
	}
	unix, err := m.state.LastAuthSuccess(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to load auth state")
		return
	}
	m.mu.Lock()
	m.lastSuccess = unix
	m.mu.Unlock()
}

// Authenticate installs the cookies into the store and performs the
// initial token acquisition.
func (m *SessionManager) Authenticate(ctx context.Context, cookies []domain.Cookie) error {
	m.cookies.Update(cookies)
	return m.acquireToken(ctx, nil)
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

// Get performs an authorized GET. On an access-denied or
// authentication-required response it refreshes the token once and
// retries; a second failure propagates.
func (m *SessionManager) Get(ctx context.Context, rawURL string, header http.Header) (*http.Response, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token == "" {
		return nil, fmt.Errorf("no access token: %w", domain.ErrAccessDenied)
	}

	resp, err := m.authorizedGet(ctx, rawURL, header)
	if errors.Is(err, domain.ErrAccessDenied) || errors.Is(err, domain.ErrAuthenticationRequired) {
		if refreshErr := m.Refresh(ctx); refreshErr != nil {
			return nil, refreshErr
		}
		return m.authorizedGet(ctx, rawURL, header)
	}
	return resp, err
}

// Refresh re-acquires the token. When one is already held it is offered
// back as a token-exchange parameter, avoiding the interactive flow on
// providers that support it. Transient failures propagate unchanged;
// anything else clears the token, fires the session-lost event and
// surfaces as access denied.
func (m *SessionManager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	var extra url.Values
	if token != "" {
		extra = url.Values{"accessToken": {token}}
	}

	err := m.acquireToken(ctx, extra)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTransientBackend) {
		m.logger.Warn().Err(err).Msg("failed to refresh token for independent reasons")
		return err
	}

	m.logger.Error().Err(err).Msg("failed to refresh token")
	m.mu.Lock()
	m.token = ""
	observer := m.observer
	m.mu.Unlock()
	if observer != nil {
		observer.SessionLost()
	}
	return fmt.Errorf("refresh token: %w", domain.ErrAccessDenied)
}

func (m *SessionManager) authorizedGet(ctx context.Context, rawURL string, header http.Header) (*http.Response, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	// Provider variants read the token from synonymous headers.
	req.Header.Set("AuthToken", token)
	req.Header.Set("X-AuthToken", token)
	if cookie := m.cookies.Header(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authorized get %s: %w", rawURL, domain.ErrTransientBackend)
	}
	if err := statusError(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("authorized get %s: status %d: %w", rawURL, resp.StatusCode, err)
	}
	return resp, nil
}

func (m *SessionManager) acquireToken(ctx context.Context, extra url.Values) error {
	endpoint, err := url.Parse(m.cfg.AuthURL)
	if err != nil {
		return fmt.Errorf("parse auth url: %w", err)
	}
	q := endpoint.Query()
	q.Set("client_id", m.cfg.ClientID)
	q.Set("display", m.cfg.Display)
	q.Set("response_type", "token")
	q.Set("redirectUri", m.cfg.RedirectURI)
	for key, values := range extra {
		for _, value := range values {
			q.Set(key, value)
		}
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build auth request: %w", err)
	}
	if cookie := m.cookies.Header(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := m.authClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request: %w", domain.ErrTransientBackend)
	}
	defer resp.Body.Close()
	m.ingestResponseCookies(resp)
	// Error statuses never carry a usable redirect; a denied refresh
	// must not be mistaken for a probe response.
	if err := statusError(resp.StatusCode); err != nil {
		return fmt.Errorf("auth request: status %d: %w", resp.StatusCode, err)
	}

	location := resp.Header.Get("Location")
	switch {
	case strings.Contains(location, "access_token"):
		token, ok := parseAccessToken(location)
		if !ok {
			m.logger.Error().Str("location", location).Msg("cannot parse access token from redirect")
			return fmt.Errorf("parse access token: %w", domain.ErrMalformedResponse)
		}
		m.mu.Lock()
		m.token = token
		m.acquiredAt = m.clock.Now()
		m.mu.Unlock()
		return nil

	case strings.Contains(location, "error=login_required"):
		m.logSessionDetails()
		return fmt.Errorf("interactive login required: %w", domain.ErrAuthenticationRequired)

	default:
		// Some providers answer a probe with neither a token nor the
		// login-required marker. No state change; keep the timestamp
		// for diagnostics.
		m.recordAuthSuccess(ctx)
		return nil
	}
}

// parseAccessToken extracts the token from a redirect target of the
// shape "...#access_token=<value>&<extra params>".
func parseAccessToken(location string) (string, bool) {
	fragment := location
	if _, after, ok := strings.Cut(location, "#"); ok {
		fragment = after
	}
	_, rest, ok := strings.Cut(fragment, "access_token=")
	if !ok {
		return "", false
	}
	token, _, _ := strings.Cut(rest, "&")
	if token == "" {
		return "", false
	}
	return token, true
}

func (m *SessionManager) recordAuthSuccess(ctx context.Context) {
	unix := m.clock.Now().Unix()
	m.mu.Lock()
	m.lastSuccess = unix
	m.mu.Unlock()
	if m.state == nil {
		return
	}
	if err := m.state.SaveLastAuthSuccess(ctx, unix); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist auth state")
	}
}

// logSessionDetails emits the session-duration cookie fields before a
// login-required failure is raised, for auth-loss investigation.
func (m *SessionManager) logSessionDetails() {
	value, ok := m.cookies.Get(sessionCookieName)
	if !ok {
		m.logger.Warn().Msg("failed to get session duration: no utag_main cookie")
		return
	}

	fields := map[string]string{}
	for _, field := range strings.Split(value, "$") {
		if key, val, ok := strings.Cut(field, ":"); ok {
			fields[key] = val
		}
	}

	m.mu.Lock()
	lastSuccess := m.lastSuccess
	m.mu.Unlock()

	m.logger.Info().
		Int64("now", m.clock.Now().Unix()).
		Str("st", truncate(fields["_st"], sessionFieldMax)).
		Str("ses_id", truncate(fields["ses_id"], sessionFieldMax)).
		Int64("lats", lastSuccess).
		Msg("session details")
}

func (m *SessionManager) ingestResponseCookies(resp *http.Response) {
	raw := resp.Cookies()
	if len(raw) == 0 {
		return
	}
	cookies := make([]domain.Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, domain.Cookie{Name: c.Name, Value: c.Value})
	}
	m.cookies.Update(cookies)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func statusError(code int) error {
	switch {
	case code < 400:
		return nil
	case code == http.StatusUnauthorized:
		return domain.ErrAuthenticationRequired
	case code == http.StatusForbidden:
		return domain.ErrAccessDenied
	case code == http.StatusRequestTimeout,
		code == http.StatusTooManyRequests,
		code >= 500:
		return domain.ErrTransientBackend
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
