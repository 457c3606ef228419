package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/pkg/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// DevUserHeader carries the user id when no JWT secret is configured.
const DevUserHeader = "X-User-ID"

// Browsers cannot set headers on a websocket handshake, so upgrade requests may carry the
// credential in the query string instead.
const (
	TokenQueryParam   = "access_token"
	DevUserQueryParam = "user_id"
)

// Claims is the token payload. The user id travels in the subject.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the authenticated user of the request context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// WithUserID stores id in ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// NewToken signs a token for userID.
func NewToken(userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    "path-finder",
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Auth resolves the user id of every request. With a secret it requires a valid bearer token;
// without one it trusts the X-User-ID header, which is only meant for local development.
// Websocket upgrade requests may pass either value as a query parameter.
func Auth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				userID := strings.TrimSpace(r.Header.Get(DevUserHeader))
				if userID == "" && websocket.IsWebSocketUpgrade(r) {
					userID = strings.TrimSpace(r.URL.Query().Get(DevUserQueryParam))
				}
				if userID == "" {
					utils.RespondError(w, http.StatusUnauthorized, DevUserHeader+" header required")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok && websocket.IsWebSocketUpgrade(r) {
				tokenString = strings.TrimSpace(r.URL.Query().Get(TokenQueryParam))
				ok = tokenString != ""
			}
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Authorization header required (Bearer <token>)")
				return
			}

			userID, err := parseToken(tokenString, secret)
			if err != nil {
				log.Debug("token rejected", "error", err)
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					utils.RespondError(w, http.StatusUnauthorized, "token has expired")
				case errors.Is(err, jwt.ErrTokenMalformed):
					utils.RespondError(w, http.StatusUnauthorized, "malformed token")
				default:
					utils.RespondError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func parseToken(tokenString, secret string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
