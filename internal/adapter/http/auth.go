package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
)

type userClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type userIDContextKey struct{}

// UserIDFromContext returns the identity set by RequireUser.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(int64)
	return id, ok && id > 0
}

// RequireUser accepts only requests carrying an HS256 bearer token with a positive user_id claim.
func RequireUser(secret []byte, log logger.Logger) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := logger.RequestID(r.Context())

			raw, ok := bearerToken(r)
			if !ok {
				respondUnauthenticated(w, requestID, "bearer token missing")
				return
			}

			claims := &userClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				log.Debug("auth_rejected", "Token verification failed", requestID, map[string]interface{}{
					"reason": err.Error(),
				})
				respondUnauthenticated(w, requestID, "invalid token")
				return
			}
			if claims.UserID <= 0 {
				respondUnauthenticated(w, requestID, "token has no user")
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func respondUnauthenticated(w http.ResponseWriter, requestID, message string) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error:     "unauthenticated",
		Message:   message,
		RequestID: requestID,
	})
}
