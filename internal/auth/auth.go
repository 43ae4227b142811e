// Package auth issues and validates the session tokens handed out at
// login. Tokens are HS256 JWTs signed with a local secret; there is no
// external identity provider.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// contextKey is a private type for context values
type contextKey string

const claimsContextKey contextKey = "claims"

// sessionTTL is how long an issued session token stays valid
const sessionTTL = 12 * time.Hour

// Claims represents the claims carried in a session token
type Claims struct {
	AgentID   string `json:"agentId"`
	Extension string `json:"extension"`
	jwt.RegisteredClaims
}

// Service issues and validates session tokens
type Service struct {
	secret   []byte
	skipAuth bool
	logger   zerolog.Logger
}

// NewService creates an auth Service
func NewService(secret string, skipAuth bool, logger zerolog.Logger) *Service {
	return &Service{
		secret:   []byte(secret),
		skipAuth: skipAuth,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// IssueToken creates a signed session token for an agent
func (s *Service) IssueToken(agentID, extension string) (string, error) {
	now := time.Now()
	claims := Claims{
		AgentID:   agentID,
		Extension: extension,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   agentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Middleware validates the session token on incoming requests. The
// token is read from the Authorization header, or from the token query
// parameter for WebSocket upgrades where headers cannot be set.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.skipAuth {
			s.logger.Debug().Msg("auth check skipped")
			next.ServeHTTP(w, r)
			return
		}

		tokenString := extractToken(r)
		if tokenString == "" {
			s.logger.Warn().Str("path", r.URL.Path).Msg("missing session token")
			writeAuthError(w, "missing session token")
			return
		}

		claims, err := s.ParseToken(tokenString)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid session token")
			writeAuthError(w, "invalid session token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the token from the Authorization header or the
// token query parameter
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// ClaimsFromContext retrieves the claims stored by Middleware. Returns
// nil when the request was not authenticated (SKIP_AUTH mode).
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
