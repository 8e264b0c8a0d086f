package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/ticktick-mcp/internal/config"
	"github.com/teemow/ticktick-mcp/internal/logging"
)

const (
	// DefaultExpiryBuffer is subtracted from the stored expiry when deciding
	// whether a token is still usable. It covers the race where a token is
	// valid when checked but expires mid-flight during the request it
	// authorizes.
	DefaultExpiryBuffer = 60 * time.Second

	stateLength = 32
)

const stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultScopes are requested when the caller does not specify any.
var DefaultScopes = []string{"tasks:read", "tasks:write"}

// Endpoint returns the OAuth endpoint pair for a region.
func Endpoint(region config.Region) oauth2.Endpoint {
	if region == config.RegionChina {
		return oauth2.Endpoint{
			AuthURL:  "https://dida365.com/oauth/authorize",
			TokenURL: "https://dida365.com/oauth/token",
		}
	}
	return oauth2.Endpoint{
		AuthURL:  "https://ticktick.com/oauth/authorize",
		TokenURL: "https://ticktick.com/oauth/token",
	}
}

// Manager owns the OAuth authorization-code-grant lifecycle against a
// regional endpoint pair. Construct it once at process start and inject it
// wherever a token is needed.
type Manager struct {
	cfg         config.OAuth
	endpoint    oauth2.Endpoint
	store       *FileStore
	client      *http.Client
	logger      *slog.Logger
	now         func() time.Time
	refreshHook RefreshHook
}

// RefreshHook observes the outcome of automatic token refreshes triggered
// inside ValidAccessToken. err is nil when the refresh succeeded and the
// replacement token was persisted.
type RefreshHook func(ctx context.Context, err error)

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient overrides the HTTP client used for token endpoint calls.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.client = client
	}
}

// WithEndpoint overrides the regional OAuth endpoint pair. Used in tests to
// point the manager at a mock token endpoint.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(m *Manager) {
		m.endpoint = endpoint
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithRefreshHook registers a callback invoked after every automatic
// refresh attempt.
func WithRefreshHook(hook RefreshHook) Option {
	return func(m *Manager) {
		m.refreshHook = hook
	}
}

// NewManager creates a Manager from an immutable OAuth config.
func NewManager(cfg config.OAuth, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		endpoint: Endpoint(cfg.Region),
		store:    NewFileStore(cfg.TokenPath),
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying token file store.
func (m *Manager) Store() *FileStore {
	return m.store
}

// AuthorizationURL builds the regional authorization endpoint URL. When
// scopes is empty the default read+write scopes are requested; when state is
// empty a fresh random state is generated. The state is returned alongside
// the URL and is not retained; correlating it across the redirect is the
// caller's job.
func (m *Manager) AuthorizationURL(scopes []string, state string) (string, string, error) {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	if state == "" {
		var err error
		state, err = generateState()
		if err != nil {
			return "", "", fmt.Errorf("failed to generate state: %w", err)
		}
	}

	conf := &oauth2.Config{
		ClientID:    m.cfg.ClientID,
		RedirectURL: m.cfg.RedirectURI,
		Endpoint:    m.endpoint,
		Scopes:      scopes,
	}

	return conf.AuthCodeURL(state), state, nil
}

// generateState maps cryptographically random bytes onto an alphanumeric
// alphabet.
func generateState() (string, error) {
	buf := make([]byte, stateLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = stateAlphabet[int(b)%len(stateAlphabet)]
	}
	return string(buf), nil
}

// ExchangeCode exchanges an authorization code for tokens. It does not
// persist the result; StoreToken is a separate, explicit step.
func (m *Manager) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {m.cfg.RedirectURI},
	}

	tokens, err := m.tokenRequest(ctx, form)
	if err != nil {
		return nil, &ExchangeError{Message: err.Error()}
	}

	m.logger.Debug("exchanged authorization code",
		logging.Operation("exchange_code"),
		slog.String("access_token", logging.SanitizeToken(tokens.AccessToken)))
	return tokens, nil
}

// Refresh obtains a fresh token pair using a refresh token. Like
// ExchangeCode it never persists.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	tokens, err := m.tokenRequest(ctx, form)
	if err != nil {
		return nil, &RefreshError{Message: err.Error()}
	}

	m.logger.Debug("refreshed token",
		logging.Operation("refresh_token"),
		slog.String("access_token", logging.SanitizeToken(tokens.AccessToken)))
	return tokens, nil
}

// tokenRequest POSTs a form-encoded grant to the token endpoint and decodes
// the response. Non-2xx responses are mapped to an error carrying the
// provider's message.
func (m *Manager) tokenRequest(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s", providerErrorMessage(resp.StatusCode, body))
	}

	var tokens TokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokens, nil
}

// providerErrorMessage extracts a human-readable message from an OAuth error
// body, preferring error_description over error, with an HTTP status
// fallback when the body is empty or unparsable.
func providerErrorMessage(statusCode int, body []byte) string {
	var payload struct {
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.ErrorDescription != "" {
			return payload.ErrorDescription
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

// StoreToken converts a TokenResponse to a StoredToken (relative expiry to
// absolute) and persists it as the sole record.
func (m *Manager) StoreToken(tokens *TokenResponse) (*StoredToken, error) {
	now := m.now()
	stored := &StoredToken{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    now.UnixMilli() + tokens.ExpiresIn*1000,
		TokenType:    tokens.TokenType,
		StoredAt:     now.UnixMilli(),
	}

	if err := m.store.Save(stored); err != nil {
		return nil, err
	}

	return stored, nil
}

// LoadToken returns the stored token, or nil when logged out.
func (m *Manager) LoadToken() (*StoredToken, error) {
	return m.store.Load()
}

// ClearToken empties the token file. Logout leaves a zero-byte file behind
// rather than deleting it.
func (m *Manager) ClearToken() error {
	return m.store.Clear()
}

// Expired reports whether the token is expired relative to now, with the
// boundary inclusive: now == expiresAt - buffer counts as expired.
func Expired(token *StoredToken, buffer time.Duration, now time.Time) bool {
	return !now.Before(token.ExpiryTime().Add(-buffer))
}

// TokenExpired applies the default buffered expiry check.
func (m *Manager) TokenExpired(token *StoredToken) bool {
	return Expired(token, DefaultExpiryBuffer, m.now())
}

// AuthStatus computes the derived authentication view. An absent token
// reports isExpired=true as the safe signal.
func (m *Manager) AuthStatus() (*Status, error) {
	token, err := m.LoadToken()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return &Status{IsAuthenticated: false, IsExpired: true}, nil
	}

	expiresIn := (token.ExpiresAt - m.now().UnixMilli()) / 1000
	if expiresIn < 0 {
		expiresIn = 0
	}

	return &Status{
		IsAuthenticated: true,
		IsExpired:       m.TokenExpired(token),
		ExpiresAt:       token.ExpiryTime().UTC().Format(time.RFC3339),
		ExpiresIn:       expiresIn,
	}, nil
}

// ValidAccessToken is the single entry point used by every API call path.
// It returns the stored access token, refreshing and persisting it first
// when the buffered expiry check trips. Refresh and persistence happen
// transactionally: the new token is only returned once stored. A failed
// refresh surfaces a RefreshFailedError and leaves the stale token in
// place; credentials are never destroyed on a transient failure.
func (m *Manager) ValidAccessToken(ctx context.Context) (string, error) {
	token, err := m.LoadToken()
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", &NotAuthenticatedError{}
	}

	if !m.TokenExpired(token) {
		return token.AccessToken, nil
	}

	m.logger.Info("access token expired, refreshing",
		logging.Operation("refresh_token"),
		logging.Region(string(m.cfg.Region)))

	tokens, err := m.Refresh(ctx, token.RefreshToken)
	if err != nil {
		m.observeRefresh(ctx, err)
		m.logger.Warn("token refresh failed, keeping stale token", logging.Err(err))
		return "", &RefreshFailedError{Err: err}
	}

	stored, err := m.StoreToken(tokens)
	if err != nil {
		m.observeRefresh(ctx, err)
		return "", &RefreshFailedError{Err: err}
	}

	m.observeRefresh(ctx, nil)
	return stored.AccessToken, nil
}

func (m *Manager) observeRefresh(ctx context.Context, err error) {
	if m.refreshHook != nil {
		m.refreshHook(ctx, err)
	}
}
