package providers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	json "github.com/goccy/go-json"
	"net/http"
	"portal/internal/structures"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrForbiddenRole = errors.New("token does not carry the admin role")

type actorKey struct{}

// AdminClaims is what the portal's identity backend signs into admin tokens.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// ActorFromContext returns the token subject stored by AuthMiddleware.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey{}).(string)
	return actor, ok && actor != ""
}

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

type AuthMiddleware struct {
	enabled   bool
	secret    []byte
	issuer    string
	adminRole string
	logger    Logger
	verified  CacheProviderInterface
	now       func() time.Time
}

// verifiedToken is what the cache keeps for an admin token that passed
// verification. Only the token hash is used as the key.
type verifiedToken struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
}

// NewAuthMiddleware builds the admin gate. Verified tokens are remembered
// in cache until they expire so repeated requests skip the signature check.
func NewAuthMiddleware(conf *structures.Config, logger Logger, cache CacheProviderInterface) *AuthMiddleware {
	return &AuthMiddleware{
		enabled:   conf.Auth.Enabled,
		secret:    []byte(conf.Auth.JWTSecret),
		issuer:    conf.Auth.Issuer,
		adminRole: conf.Auth.AdminRole,
		logger:    logger,
		verified:  cache,
		now:       time.Now,
	}
}

// Wrap rejects requests without a valid admin bearer token. Disabled auth
// passes every request through without an actor.
func (a *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	if !a.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		actor, err := a.authenticate(raw)
		if err != nil {
			if errors.Is(err, ErrForbiddenRole) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			a.logger.Warnf(TypeApp, "rejected token from %s: %v", r.RemoteAddr, err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// authenticate returns the subject of an admin token, from the cache when
// the token was verified before and has not expired since.
func (a *AuthMiddleware) authenticate(raw string) (string, error) {
	key := tokenCacheKey(raw)
	if data, ok := a.verified.Get(key); ok {
		var vt verifiedToken
		if err := json.Unmarshal(data, &vt); err == nil && (vt.ExpiresAt == 0 || a.now().Unix() < vt.ExpiresAt) {
			return vt.Subject, nil
		}
		a.verified.Del(key)
	}

	claims, err := a.verify(raw)
	if err != nil {
		return "", err
	}

	vt := verifiedToken{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		vt.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if data, err := json.Marshal(vt); err == nil {
		a.verified.Set(key, data)
	}
	return claims.Subject, nil
}

func tokenCacheKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "token:" + hex.EncodeToString(sum[:])
}

func (a *AuthMiddleware) verify(raw string) (*AdminClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Role != a.adminRole {
		return nil, ErrForbiddenRole
	}
	return claims, nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
