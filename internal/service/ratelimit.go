package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aruanda/portaria/internal/kv"
)

// LoginLimiter aplica a política de força bruta do login: após o máximo
// de falhas consecutivas dentro da janela, o IP fica bloqueado pelo
// período de bloqueio. O estado vive no namespace próprio da loja
// chave-valor, um registro JSON por IP.
type LoginLimiter struct {
	store    kv.Store
	max      int
	janela   time.Duration
	bloqueio time.Duration
}

type registroTentativas struct {
	Tentativas        int   `json:"tentativas"`
	PrimeiraTentativa int64 `json:"primeiraTentativa"`
	BloqueadoAte      int64 `json:"bloqueadoAte,omitempty"`
}

// NewLoginLimiter cria o limitador com os parâmetros configurados.
func NewLoginLimiter(store kv.Store, max int, janela, bloqueio time.Duration) *LoginLimiter {
	return &LoginLimiter{store: store, max: max, janela: janela, bloqueio: bloqueio}
}

// Bloqueado responde se o IP está sob bloqueio ativo. Falha na loja é
// tratada como não bloqueado: indisponibilidade do limitador não pode
// derrubar o login inteiro.
func (l *LoginLimiter) Bloqueado(ctx context.Context, ip string) bool {
	reg, ok := l.carregar(ctx, ip)
	if !ok {
		return false
	}
	return reg.BloqueadoAte > time.Now().UnixMilli()
}

// RegistrarFalha incrementa o contador do IP, reiniciando-o quando a
// janela expirou, e arma o bloqueio ao atingir o máximo. Erros de
// escrita são registrados e engolidos.
func (l *LoginLimiter) RegistrarFalha(ctx context.Context, ip string) {
	now := time.Now().UnixMilli()

	reg, ok := l.carregar(ctx, ip)
	if !ok || reg.PrimeiraTentativa < now-l.janela.Milliseconds() {
		reg = registroTentativas{PrimeiraTentativa: now}
	}
	reg.Tentativas++
	if reg.Tentativas >= l.max {
		reg.BloqueadoAte = now + l.bloqueio.Milliseconds()
	}

	raw, err := json.Marshal(reg)
	if err != nil {
		return
	}

	if reg.BloqueadoAte > 0 {
		// a chave expira bem depois do fim do bloqueio para manter o
		// histórico recente visível em inspeções manuais
		err = l.store.PutTTL(ctx, chaveIP(ip), string(raw), l.bloqueio+24*time.Hour)
	} else {
		err = l.store.Put(ctx, chaveIP(ip), string(raw))
	}
	if err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("falha ao registrar tentativa de login")
	}
}

func (l *LoginLimiter) carregar(ctx context.Context, ip string) (registroTentativas, bool) {
	raw, err := l.store.Get(ctx, chaveIP(ip))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Warn().Err(err).Str("ip", ip).Msg("limitador de login indisponível")
		}
		return registroTentativas{}, false
	}

	var reg registroTentativas
	if err := json.Unmarshal([]byte(raw), &reg); err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("registro de tentativas corrompido")
		return registroTentativas{}, false
	}
	return reg, true
}

func chaveIP(ip string) string {
	return "ip:" + ip
}
