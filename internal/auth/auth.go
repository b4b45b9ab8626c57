package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/pkg/respond"
)

var ErrUnauthorized = errors.New("unauthorized")

type ctxKey struct{}

// Verifier checks bearer tokens issued by the identity provider and yields
// the owner id carried in the "sub" claim.
type Verifier struct {
	parser   *jwt.Parser
	keyfunc  jwt.Keyfunc
	audience string
	issuer   string
	now      func() time.Time
}

// NewHMAC verifies HS256 tokens signed with a shared secret.
func NewHMAC(secret []byte, audience, issuer string) *Verifier {
	return &Verifier{
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		keyfunc: func(*jwt.Token) (any, error) {
			return secret, nil
		},
		audience: audience,
		issuer:   issuer,
		now:      time.Now,
	}
}

// NewJWKS verifies RS256 tokens against the provider's published key set.
func NewJWKS(jwks *keyfunc.JWKS, audience, issuer string) *Verifier {
	return &Verifier{
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
		keyfunc:  jwks.Keyfunc,
		audience: audience,
		issuer:   issuer,
		now:      time.Now,
	}
}

// FetchJWKS loads the key set at url and keeps it refreshed in the
// background until the returned JWKS is ended.
func FetchJWKS(url string, refresh time.Duration, logger *zap.Logger) (*keyfunc.JWKS, error) {
	return keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   refresh,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks refresh failed", zap.Error(err))
		},
	})
}

func (v *Verifier) OwnerID(token string) (string, error) {
	parsed, err := v.parser.Parse(token, v.keyfunc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", ErrUnauthorized)
	}
	now := v.now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return "", fmt.Errorf("%w: token expired", ErrUnauthorized)
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return "", fmt.Errorf("%w: invalid audience", ErrUnauthorized)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return "", fmt.Errorf("%w: invalid issuer", ErrUnauthorized)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing sub", ErrUnauthorized)
	}
	return sub, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// owner id in the request context.
func (v *Verifier) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}
			owner, err := v.OwnerID(token)
			if err != nil {
				logger.Debug("rejected token", zap.Error(err))
				respond.Error(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ownerID)
}

func OwnerFrom(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ctxKey{}).(string)
	return owner, ok && owner != ""
}
