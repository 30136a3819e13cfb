package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de armazenamento suportados.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port        int
	StoreDriver string
	RedisURL    string
	DBDSN       string

	AllowOrigins []string

	JWTSecret   string
	JWTTTL      time.Duration
	RequireAuth bool

	// SenhaHash liga a gravação de senhas novas como Argon2id. O padrão
	// desligado reproduz o sistema de origem, que guardava texto puro.
	SenhaHash bool

	LoginMaxTentativas int
	LoginJanela        time.Duration
	LoginBloqueio      time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.StoreDriver = strings.TrimSpace(getEnv("STORE_DRIVER", StoreRedis))
	switch cfg.StoreDriver {
	case StoreMemory:
	case StoreRedis:
		cfg.RedisURL = getEnv("REDIS_URL", "")
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL obrigatório com STORE_DRIVER=redis")
		}
	case StorePostgres:
		cfg.DBDSN = getEnv("DB_DSN", "")
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN obrigatório com STORE_DRIVER=postgres")
		}
	default:
		return nil, errors.New("STORE_DRIVER deve ser memory, redis ou postgres")
	}

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", 12*time.Hour); err != nil {
		return nil, err
	}

	cfg.RequireAuth = getEnv("REQUIRE_AUTH", "false") == "true"
	if cfg.RequireAuth && cfg.JWTSecret == "" {
		return nil, errors.New("REQUIRE_AUTH exige JWT_SECRET")
	}

	cfg.SenhaHash = getEnv("SENHA_HASH", "plano") == "argon2id"

	maxStr := getEnv("LOGIN_MAX_TENTATIVAS", "5")
	maxTentativas, err := strconv.Atoi(maxStr)
	if err != nil || maxTentativas <= 0 {
		return nil, errors.New("LOGIN_MAX_TENTATIVAS inválido")
	}
	cfg.LoginMaxTentativas = maxTentativas

	if cfg.LoginJanela, err = parseDurationEnv("LOGIN_JANELA", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LoginBloqueio, err = parseDurationEnv("LOGIN_BLOQUEIO", 30*time.Minute); err != nil {
		return nil, err
	}

	rpsStr := getEnv("RATE_LIMIT_RPS", "10")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("RATE_LIMIT_RPS inválido")
	}
	cfg.RateLimitRPS = rps

	burstStr := getEnv("RATE_LIMIT_BURST", "20")
	burst, err := strconv.Atoi(burstStr)
	if err != nil || burst <= 0 {
		return nil, errors.New("RATE_LIMIT_BURST inválido")
	}
	cfg.RateLimitBurst = burst

	if cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
