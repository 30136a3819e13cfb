package middleware

import (
	"net/http"
	"strings"
)

// CORS reflete a origem da requisição, restringindo ao allowlist quando
// configurado (entradas exatas ou *.sufixo). Allowlist vazio libera
// qualquer origem, o comportamento do worker de origem. Os headers de
// endurecimento acompanham toda resposta, inclusive as de erro.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0
	allowExact := make(map[string]struct{}, len(allowedOrigins))
	var allowSuffix []string

	for _, entry := range allowedOrigins {
		e := strings.TrimSpace(entry)
		if e == "" {
			continue
		}
		if strings.HasPrefix(e, "*.") {
			allowSuffix = append(allowSuffix, strings.TrimPrefix(e, "*"))
			continue
		}
		allowExact[e] = struct{}{}
	}

	isAllowed := func(origin string) bool {
		if origin == "" {
			return false
		}
		if allowAll {
			return true
		}
		if _, ok := allowExact[origin]; ok {
			return true
		}
		for _, suf := range allowSuffix {
			if strings.HasSuffix(strings.ToLower(origin), strings.ToLower(suf)) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; script-src 'none'; style-src 'none';")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

			if origin := r.Header.Get("Origin"); isAllowed(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
