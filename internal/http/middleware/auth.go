package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aruanda/portaria/internal/auth"
)

type contextKey string

const subjectKey contextKey = "subject"

// RequireToken exige um Bearer token válido no header Authorization.
// Protege a superfície de CRUD quando REQUIRE_AUTH está ligado; o
// endpoint do leitor de cartões e o login ficam sempre fora.
func RequireToken(jwtMgr *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeAuthError(w)
				return
			}

			claims, err := jwtMgr.ParseAndValidate(strings.TrimSpace(token))
			if err != nil {
				writeAuthError(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject devolve o CPF autenticado no contexto, se houver.
func GetSubject(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey).(string); ok {
		return subject
	}
	return ""
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Sessão inválida ou expirada."})
}
