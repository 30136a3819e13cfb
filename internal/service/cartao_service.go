package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aruanda/portaria/internal/repo"
	"github.com/aruanda/portaria/internal/util"
)

// CartaoService responde à consulta do leitor de cartões: o UUID
// apresentado é conhecido e o portador está bloqueado?
type CartaoService struct {
	cartoes *repo.CartaoRepository
}

// NewCartaoService cria o serviço de consulta do hardware.
func NewCartaoService(cartoes *repo.CartaoRepository) *CartaoService {
	return &CartaoService{cartoes: cartoes}
}

// LookupResult é a resposta determinística da consulta.
type LookupResult struct {
	Found     bool
	Nome      string
	Bloqueado bool
}

// Lookup nunca devolve erro. O leitor não tem caminho de tratamento de
// falha, então entrada malformada e qualquer falha interna viram "não
// encontrado": porta que não abre é o modo de falha seguro, um erro não
// tratado travaria o laço de requisições do hardware.
func (s *CartaoService) Lookup(ctx context.Context, raw string) LookupResult {
	id := strings.ToLower(strings.TrimSpace(raw))
	if !util.IsUUIDv4(id) {
		return LookupResult{}
	}

	cartao, err := s.cartoes.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Error().Err(err).Str("cartao", id).Msg("consulta de cartão degradada para não encontrado")
		}
		return LookupResult{}
	}

	bloqueado := cartao.Bloqueado != "" && strings.ToLower(cartao.Bloqueado) != repo.BloqueadoNao
	return LookupResult{Found: true, Nome: cartao.Nome, Bloqueado: bloqueado}
}
