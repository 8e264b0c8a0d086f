package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/ticktick-mcp/internal/config"
)

func testConfig(t *testing.T) config.OAuth {
	t.Helper()
	return config.OAuth{
		ClientID:     "abc",
		ClientSecret: "shh",
		RedirectURI:  "http://localhost:8000/callback",
		Region:       config.RegionGlobal,
		TokenPath:    filepath.Join(t.TempDir(), "token.json"),
	}
}

// tokenEndpoint spins up a mock OAuth token endpoint and returns the manager
// option pointing at it plus a counter of requests received.
func tokenEndpoint(t *testing.T, handler http.HandlerFunc) (Option, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return WithEndpoint(oauth2.Endpoint{
		AuthURL:  srv.URL + "/oauth/authorize",
		TokenURL: srv.URL + "/oauth/token",
	}), &calls
}

func grantResponse(access, refresh string, expiresIn int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  access,
			TokenType:    "bearer",
			ExpiresIn:    expiresIn,
			RefreshToken: refresh,
		})
	}
}

func TestAuthorizationURL(t *testing.T) {
	m := NewManager(testConfig(t))

	rawURL, state, err := m.AuthorizationURL(nil, "")
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "abc", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8000/callback", q.Get("redirect_uri"))
	assert.Equal(t, "tasks:read tasks:write", q.Get("scope"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "ticktick.com", parsed.Host)
}

func TestAuthorizationURLGeneratedState(t *testing.T) {
	m := NewManager(testConfig(t))

	url1, state1, err := m.AuthorizationURL(nil, "")
	require.NoError(t, err)
	url2, state2, err := m.AuthorizationURL(nil, "")
	require.NoError(t, err)

	// Each call without explicit state gets a fresh one.
	assert.NotEqual(t, state1, state2)
	alnum := regexp.MustCompile(`^[A-Za-z0-9]{32}$`)
	assert.Regexp(t, alnum, state1)
	assert.Regexp(t, alnum, state2)
	assert.Contains(t, url1, "response_type=code")
	assert.Contains(t, url2, "response_type=code")
}

func TestAuthorizationURLExplicitStateAndScopes(t *testing.T) {
	m := NewManager(testConfig(t))

	rawURL, state, err := m.AuthorizationURL([]string{"tasks:read"}, "my-state")
	require.NoError(t, err)
	assert.Equal(t, "my-state", state)

	q, err := url.Parse(rawURL)
	require.NoError(t, err)
	assert.Equal(t, "my-state", q.Query().Get("state"))
	assert.Equal(t, "tasks:read", q.Query().Get("scope"))
}

func TestAuthorizationURLChinaRegion(t *testing.T) {
	cfg := testConfig(t)
	cfg.Region = config.RegionChina
	m := NewManager(cfg)

	rawURL, _, err := m.AuthorizationURL(nil, "")
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	assert.Equal(t, "dida365.com", parsed.Host)
}

func TestExchangeCode(t *testing.T) {
	var gotForm url.Values
	opt, _ := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		grantResponse("X", "Y", 3600)(w, r)
	})
	m := NewManager(testConfig(t), opt)

	tokens, err := m.ExchangeCode(context.Background(), "goodcode")
	require.NoError(t, err)
	assert.Equal(t, "X", tokens.AccessToken)
	assert.Equal(t, "Y", tokens.RefreshToken)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)

	assert.Equal(t, "abc", gotForm.Get("client_id"))
	assert.Equal(t, "shh", gotForm.Get("client_secret"))
	assert.Equal(t, "goodcode", gotForm.Get("code"))
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "http://localhost:8000/callback", gotForm.Get("redirect_uri"))
}

func TestExchangeCodeProviderError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error_description preferred", `{"error":"invalid_grant","error_description":"code expired"}`, "code expired"},
		{"error fallback", `{"error":"invalid_grant"}`, "invalid_grant"},
		{"unparsable body", `<html>nope</html>`, "HTTP 400"},
		{"empty body", ``, "HTTP 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, _ := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			})
			m := NewManager(testConfig(t), opt)

			_, err := m.ExchangeCode(context.Background(), "badcode")
			require.Error(t, err)

			var exchangeErr *ExchangeError
			require.ErrorAs(t, err, &exchangeErr)
			assert.Contains(t, exchangeErr.Message, tt.want)
		})
	}
}

func TestRefreshGrant(t *testing.T) {
	var gotForm url.Values
	opt, _ := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		grantResponse("new-access", "new-refresh", 3600)(w, r)
	})
	m := NewManager(testConfig(t), opt)

	tokens, err := m.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", tokens.AccessToken)

	assert.Equal(t, "old-refresh", gotForm.Get("refresh_token"))
	assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
	assert.Empty(t, gotForm.Get("redirect_uri"))
}

func TestRefreshProviderError(t *testing.T) {
	opt, _ := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"refresh token revoked"}`))
	})
	m := NewManager(testConfig(t), opt)

	_, err := m.Refresh(context.Background(), "revoked")
	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Contains(t, refreshErr.Message, "refresh token revoked")
}

func TestStoreTokenConvertsExpiry(t *testing.T) {
	m := NewManager(testConfig(t))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stored, err := m.StoreToken(&TokenResponse{
		AccessToken:  "X",
		TokenType:    "bearer",
		ExpiresIn:    3600,
		RefreshToken: "Y",
	})
	require.NoError(t, err)

	assert.Equal(t, "X", stored.AccessToken)
	assert.Equal(t, "Y", stored.RefreshToken)
	assert.Equal(t, "bearer", stored.TokenType)
	assert.Equal(t, now.UnixMilli(), stored.StoredAt)
	assert.Equal(t, stored.StoredAt+3600*1000, stored.ExpiresAt)

	loaded, err := m.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, stored, loaded)
}

func TestExpiredBoundary(t *testing.T) {
	expiresAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := &StoredToken{ExpiresAt: expiresAt.UnixMilli()}
	buffer := 60 * time.Second

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before buffer", expiresAt.Add(-time.Hour), false},
		{"one ms before buffer", expiresAt.Add(-buffer - time.Millisecond), false},
		{"exactly at buffer boundary", expiresAt.Add(-buffer), true},
		{"inside buffer", expiresAt.Add(-time.Second), true},
		{"at expiry", expiresAt, true},
		{"after expiry", expiresAt.Add(time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(token, buffer, tt.now))
		})
	}
}

func TestValidAccessTokenNotExpired(t *testing.T) {
	opt, calls := tokenEndpoint(t, grantResponse("unused", "unused", 3600))
	m := NewManager(testConfig(t), opt)

	_, err := m.StoreToken(&TokenResponse{AccessToken: "current", RefreshToken: "r", ExpiresIn: 3600, TokenType: "bearer"})
	require.NoError(t, err)

	got, err := m.ValidAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "current", got)
	assert.Equal(t, int64(0), calls.Load(), "a valid token must not trigger network calls")
}

func TestValidAccessTokenRefreshesExpired(t *testing.T) {
	opt, calls := tokenEndpoint(t, grantResponse("fresh", "fresh-refresh", 3600))
	m := NewManager(testConfig(t), opt)

	// Store a token that is already past the buffered expiry.
	past := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return past }
	_, err := m.StoreToken(&TokenResponse{AccessToken: "stale", RefreshToken: "r", ExpiresIn: 60, TokenType: "bearer"})
	require.NoError(t, err)
	m.now = time.Now

	got, err := m.ValidAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, int64(1), calls.Load(), "expired token must trigger exactly one refresh")

	// The refreshed token must be persisted before being returned.
	loaded, err := m.LoadToken()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "fresh", loaded.AccessToken)
	assert.Equal(t, "fresh-refresh", loaded.RefreshToken)
}

func TestValidAccessTokenNotAuthenticated(t *testing.T) {
	opt, calls := tokenEndpoint(t, grantResponse("unused", "unused", 3600))
	m := NewManager(testConfig(t), opt)

	_, err := m.ValidAccessToken(context.Background())
	var notAuth *NotAuthenticatedError
	require.ErrorAs(t, err, &notAuth)
	assert.Equal(t, int64(0), calls.Load())
}

func TestValidAccessTokenRefreshFailureKeepsStaleToken(t *testing.T) {
	opt, _ := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	})
	m := NewManager(testConfig(t), opt)

	past := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return past }
	_, err := m.StoreToken(&TokenResponse{AccessToken: "stale", RefreshToken: "r", ExpiresIn: 60, TokenType: "bearer"})
	require.NoError(t, err)
	m.now = time.Now

	_, err = m.ValidAccessToken(context.Background())
	var refreshFailed *RefreshFailedError
	require.ErrorAs(t, err, &refreshFailed)

	var refreshErr *RefreshError
	assert.ErrorAs(t, refreshFailed.Err, &refreshErr)

	// The stale token survives so a later manual retry is still possible.
	loaded, err := m.LoadToken()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "stale", loaded.AccessToken)
}

func TestRefreshHook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		opt, _ := tokenEndpoint(t, grantResponse("fresh", "fresh-refresh", 3600))

		var hookErrs []error
		m := NewManager(testConfig(t), opt, WithRefreshHook(func(_ context.Context, err error) {
			hookErrs = append(hookErrs, err)
		}))

		past := time.Now().Add(-time.Hour)
		m.now = func() time.Time { return past }
		_, err := m.StoreToken(&TokenResponse{AccessToken: "stale", RefreshToken: "r", ExpiresIn: 60, TokenType: "bearer"})
		require.NoError(t, err)
		m.now = time.Now

		_, err = m.ValidAccessToken(context.Background())
		require.NoError(t, err)
		require.Len(t, hookErrs, 1)
		assert.NoError(t, hookErrs[0])
	})

	t.Run("failure", func(t *testing.T) {
		opt, _ := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		var hookErrs []error
		m := NewManager(testConfig(t), opt, WithRefreshHook(func(_ context.Context, err error) {
			hookErrs = append(hookErrs, err)
		}))

		past := time.Now().Add(-time.Hour)
		m.now = func() time.Time { return past }
		_, err := m.StoreToken(&TokenResponse{AccessToken: "stale", RefreshToken: "r", ExpiresIn: 60, TokenType: "bearer"})
		require.NoError(t, err)
		m.now = time.Now

		_, err = m.ValidAccessToken(context.Background())
		require.Error(t, err)
		require.Len(t, hookErrs, 1)
		assert.Error(t, hookErrs[0])
	})

	t.Run("no hook on valid token", func(t *testing.T) {
		opt, _ := tokenEndpoint(t, grantResponse("unused", "unused", 3600))

		var hookCalls int
		m := NewManager(testConfig(t), opt, WithRefreshHook(func(_ context.Context, _ error) {
			hookCalls++
		}))

		_, err := m.StoreToken(&TokenResponse{AccessToken: "current", RefreshToken: "r", ExpiresIn: 3600, TokenType: "bearer"})
		require.NoError(t, err)

		_, err = m.ValidAccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, hookCalls)
	})
}

func TestAuthStatus(t *testing.T) {
	t.Run("absent token", func(t *testing.T) {
		m := NewManager(testConfig(t))

		status, err := m.AuthStatus()
		require.NoError(t, err)
		assert.False(t, status.IsAuthenticated)
		assert.True(t, status.IsExpired)
		assert.Empty(t, status.ExpiresAt)
	})

	t.Run("valid token", func(t *testing.T) {
		m := NewManager(testConfig(t))
		_, err := m.StoreToken(&TokenResponse{AccessToken: "X", RefreshToken: "Y", ExpiresIn: 3600, TokenType: "bearer"})
		require.NoError(t, err)

		status, err := m.AuthStatus()
		require.NoError(t, err)
		assert.True(t, status.IsAuthenticated)
		assert.False(t, status.IsExpired)
		assert.InDelta(t, 3600, status.ExpiresIn, 5)
		assert.NotEmpty(t, status.ExpiresAt)
	})

	t.Run("expired token", func(t *testing.T) {
		m := NewManager(testConfig(t))
		past := time.Now().Add(-time.Hour)
		m.now = func() time.Time { return past }
		_, err := m.StoreToken(&TokenResponse{AccessToken: "X", RefreshToken: "Y", ExpiresIn: 60, TokenType: "bearer"})
		require.NoError(t, err)
		m.now = time.Now

		status, err := m.AuthStatus()
		require.NoError(t, err)
		assert.True(t, status.IsAuthenticated)
		assert.True(t, status.IsExpired)
		assert.Equal(t, int64(0), status.ExpiresIn)
	})
}

func TestExchangeStoreStatusScenario(t *testing.T) {
	opt, _ := tokenEndpoint(t, grantResponse("X", "Y", 3600))
	m := NewManager(testConfig(t), opt)

	tokens, err := m.ExchangeCode(context.Background(), "goodcode")
	require.NoError(t, err)

	_, err = m.StoreToken(tokens)
	require.NoError(t, err)

	status, err := m.AuthStatus()
	require.NoError(t, err)
	assert.True(t, status.IsAuthenticated)
	assert.False(t, status.IsExpired)
	assert.InDelta(t, 3600, status.ExpiresIn, 5)
}

func TestClearTokenThenLoad(t *testing.T) {
	m := NewManager(testConfig(t))
	_, err := m.StoreToken(&TokenResponse{AccessToken: "X", ExpiresIn: 3600})
	require.NoError(t, err)

	require.NoError(t, m.ClearToken())

	token, err := m.LoadToken()
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestEndpointPerRegion(t *testing.T) {
	global := Endpoint(config.RegionGlobal)
	assert.Equal(t, "https://ticktick.com/oauth/authorize", global.AuthURL)
	assert.Equal(t, "https://ticktick.com/oauth/token", global.TokenURL)

	china := Endpoint(config.RegionChina)
	assert.Equal(t, "https://dida365.com/oauth/authorize", china.AuthURL)
	assert.Equal(t, "https://dida365.com/oauth/token", china.TokenURL)
}
