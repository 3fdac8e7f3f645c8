package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskBoard/internal/auth"

	"github.com/google/uuid"
)

const identityKey contextKey = "identity"

// Identity — личность вызывающего, положенная в контекст запроса
// после проверки токена. Дальше по цепочке передаётся только контекстом.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type AuthMiddleware struct {
	tokens *auth.TokenManager
}

func NewAuthMiddleware(tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, "Invalid authorization format")
			return
		}

		claims, err := m.tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				unauthorized(w, "Token expired")
				return
			}
			unauthorized(w, "Invalid token")
			return
		}

		identity := Identity{UserID: claims.UserID, Email: claims.Email}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"error": message})
}
