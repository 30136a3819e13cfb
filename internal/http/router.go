package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aruanda/portaria/internal/auth"
	"github.com/aruanda/portaria/internal/config"
	httpmiddleware "github.com/aruanda/portaria/internal/http/middleware"
	"github.com/aruanda/portaria/internal/kv"
	"github.com/aruanda/portaria/internal/service"
)

// Handler concentra os serviços atendidos pela API.
type Handler struct {
	cfg          *config.Config
	credenciais  *service.CredencialService
	autenticacao *service.AuthService
	cartoes      *service.CartaoService
	probe        kv.Store
}

// NewRouter monta o roteador com a cadeia de middlewares e as rotas do
// painel, do login e do leitor de cartões. jwtMgr pode ser nil; nesse
// caso REQUIRE_AUTH é ignorado.
func NewRouter(cfg *config.Config, credenciais *service.CredencialService, autenticacao *service.AuthService, cartoes *service.CartaoService, jwtMgr *auth.JWTManager, probe kv.Store) http.Handler {
	h := &Handler{
		cfg:          cfg,
		credenciais:  credenciais,
		autenticacao: autenticacao,
		cartoes:      cartoes,
		probe:        probe,
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(httpmiddleware.IPRateLimit(limiter))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Post("/api/login", h.Login)
	r.Get("/api/uiid", h.LookupUIID)

	r.Group(func(crud chi.Router) {
		if cfg.RequireAuth && jwtMgr != nil {
			crud.Use(httpmiddleware.RequireToken(jwtMgr))
		}
		crud.Get("/api/credentials", h.ListCredentials)
		crud.Post("/api/credentials", h.CreateCredential)
		crud.Put("/api/credentials/{cpf}", h.UpdateCredential)
		crud.Delete("/api/credentials/{cpf}", h.DeleteCredential)
	})

	return r
}

// Health responde o liveness básico.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Ready confere ida e volta na loja chave-valor.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.probe.Get(r.Context(), "__ready__"); err != nil && !errors.Is(err, kv.ErrNotFound) {
		WriteError(w, http.StatusServiceUnavailable, "armazenamento indisponível")
		return
	}
	WriteOK(w, http.StatusOK, map[string]any{"status": "ok"})
}
