package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aruanda/portaria/internal/auth"
	"github.com/aruanda/portaria/internal/config"
	"github.com/aruanda/portaria/internal/db"
	internalhttp "github.com/aruanda/portaria/internal/http"
	"github.com/aruanda/portaria/internal/kv"
	"github.com/aruanda/portaria/internal/repo"
	"github.com/aruanda/portaria/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	credStore, cartaoStore, limiterStore, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	credRepo := repo.NewCredencialRepository(credStore)
	cartaoRepo := repo.NewCartaoRepository(cartaoStore)

	var jwtMgr *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtMgr = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	}

	credService := service.NewCredencialService(credRepo, cartaoRepo, cfg.SenhaHash)
	limiter := service.NewLoginLimiter(limiterStore, cfg.LoginMaxTentativas, cfg.LoginJanela, cfg.LoginBloqueio)
	authService := service.NewAuthService(credRepo, credService, limiter, jwtMgr)
	cartaoService := service.NewCartaoService(cartaoRepo)

	handler := internalhttp.NewRouter(cfg, credService, authService, cartaoService, jwtMgr, credStore)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildStores monta os três namespaces da loja chave-valor conforme o
// driver configurado: credenciais, cartões e estado do limitador.
func buildStores(ctx context.Context, cfg *config.Config) (cred, cartao, limiter kv.Store, cleanup func(), err error) {
	cleanup = func() {}

	switch cfg.StoreDriver {
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, cleanup, fmt.Errorf("redis parse: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, nil, cleanup, fmt.Errorf("redis: %w", err)
		}
		cleanup = func() { _ = client.Close() }
		return kv.NewRedisStore(client, "cred"),
			kv.NewRedisStore(client, "cartao"),
			kv.NewRedisStore(client, "ratelimit"),
			cleanup, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, nil, cleanup, fmt.Errorf("db: %w", err)
		}
		cleanup = pool.Close
		credStore, err := kv.NewPostgresStore(ctx, pool, "credenciais")
		if err != nil {
			return nil, nil, nil, cleanup, err
		}
		cartaoStore, err := kv.NewPostgresStore(ctx, pool, "cartoes")
		if err != nil {
			return nil, nil, nil, cleanup, err
		}
		limiterStore, err := kv.NewPostgresStore(ctx, pool, "ratelimit")
		if err != nil {
			return nil, nil, nil, cleanup, err
		}
		return credStore, cartaoStore, limiterStore, cleanup, nil

	default:
		log.Warn().Msg("STORE_DRIVER=memory: dados não sobrevivem a reinício")
		return kv.NewMemoryStore(), kv.NewMemoryStore(), kv.NewMemoryStore(), cleanup, nil
	}
}
