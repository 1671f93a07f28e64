package providers

import (
	"net/http"
	"net/http/httptest"
	"portal/internal/structures"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func authConfig(enabled bool) *structures.Config {
	return &structures.Config{
		Auth: structures.AuthConfig{
			Enabled:   enabled,
			JWTSecret: testSecret,
			Issuer:    "portal",
			AdminRole: "admin",
		},
	}
}

func signToken(t *testing.T, secret, subject, role, issuer string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func actorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		_, _ = w.Write([]byte(actor))
	})
}

func serveWithToken(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/archives", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_DisabledPassesThrough(t *testing.T) {
	h := NewAuthMiddleware(authConfig(false), &cacheTestLogger{}, &noopCache{}).Wrap(actorEcho())

	rr := serveWithToken(h, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	h := NewAuthMiddleware(authConfig(true), &cacheTestLogger{}, &noopCache{}).Wrap(actorEcho())

	rr := serveWithToken(h, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_AdminTokenSetsActor(t *testing.T) {
	h := NewAuthMiddleware(authConfig(true), &cacheTestLogger{}, &noopCache{}).Wrap(actorEcho())

	rr := serveWithToken(h, signToken(t, testSecret, "clerk-7", "admin", "portal"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "clerk-7", rr.Body.String())
}

func TestAuthMiddleware_NonAdminRoleForbidden(t *testing.T) {
	h := NewAuthMiddleware(authConfig(true), &cacheTestLogger{}, &noopCache{}).Wrap(actorEcho())

	rr := serveWithToken(h, signToken(t, testSecret, "resident-1", "resident", "portal"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAuthMiddleware_WrongSecretOrIssuer(t *testing.T) {
	h := NewAuthMiddleware(authConfig(true), &cacheTestLogger{}, &noopCache{}).Wrap(actorEcho())

	rr := serveWithToken(h, signToken(t, "other-secret", "clerk-7", "admin", "portal"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serveWithToken(h, signToken(t, testSecret, "clerk-7", "admin", "elsewhere"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestActorFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := ActorFromContext(req.Context())
	assert.False(t, ok)

	_, ok = ActorFromContext(WithActor(req.Context(), ""))
	assert.False(t, ok)
}

func newCachedAuth(t *testing.T) (*AuthMiddleware, CacheProviderInterface) {
	t.Helper()
	cache := NewCacheProvider(cacheConfig(true, 1, time.Minute), &cacheTestLogger{})
	return NewAuthMiddleware(authConfig(true), &cacheTestLogger{}, cache), cache
}

func TestAuthMiddleware_RemembersVerifiedToken(t *testing.T) {
	a, cache := newCachedAuth(t)
	h := a.Wrap(actorEcho())
	token := signToken(t, testSecret, "clerk-7", "admin", "portal")

	rr := serveWithToken(h, token)
	require.Equal(t, http.StatusOK, rr.Code)
	_, ok := cache.Get(tokenCacheKey(token))
	require.True(t, ok)

	a.secret = []byte("rotated")
	rr = serveWithToken(h, token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "clerk-7", rr.Body.String())
}

func TestAuthMiddleware_ExpiredCacheEntryIsVerifiedAgain(t *testing.T) {
	a, cache := newCachedAuth(t)
	h := a.Wrap(actorEcho())
	token := signToken(t, "other-secret", "clerk-7", "admin", "portal")

	cache.Set(tokenCacheKey(token), []byte(`{"sub":"clerk-7","exp":1}`))

	rr := serveWithToken(h, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	_, ok := cache.Get(tokenCacheKey(token))
	assert.False(t, ok)
}

func TestAuthMiddleware_RejectedTokenNotRemembered(t *testing.T) {
	a, cache := newCachedAuth(t)
	h := a.Wrap(actorEcho())
	token := signToken(t, testSecret, "resident-1", "resident", "portal")

	require.Equal(t, http.StatusForbidden, serveWithToken(h, token).Code)
	_, ok := cache.Get(tokenCacheKey(token))
	assert.False(t, ok)
}
