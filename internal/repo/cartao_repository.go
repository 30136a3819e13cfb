package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/aruanda/portaria/internal/kv"
	"github.com/aruanda/portaria/internal/util"
)

// CartaoRepository persiste os registros consultados pelo hardware de
// acesso, chaveados pelo UUID do cartão.
type CartaoRepository struct {
	store kv.Store
}

// NewCartaoRepository cria o repositório sobre o namespace de cartões.
func NewCartaoRepository(store kv.Store) *CartaoRepository {
	return &CartaoRepository{store: store}
}

// Get carrega o cartão pelo UUID ou ErrNotFound.
func (r *CartaoRepository) Get(ctx context.Context, id string) (Cartao, error) {
	raw, err := r.store.Get(ctx, id)
	if errors.Is(err, kv.ErrNotFound) {
		return Cartao{}, ErrNotFound
	}
	if err != nil {
		return Cartao{}, fmt.Errorf("cartão %s: %w", id, err)
	}

	var cartao Cartao
	if err := json.Unmarshal([]byte(raw), &cartao); err != nil {
		return Cartao{}, fmt.Errorf("cartão %s corrompido: %w", id, err)
	}
	return cartao, nil
}

// Put grava o cartão inteiro.
func (r *CartaoRepository) Put(ctx context.Context, id string, cartao Cartao) error {
	raw, err := json.Marshal(cartao)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, id, string(raw))
}

// Delete remove o cartão.
func (r *CartaoRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

// FindByCPF é o índice reverso: varre a loja de cartões comparando o
// campo cpf de cada registro com o alvo normalizado. O vínculo
// armazenado é só o campo cpf dentro do cartão, então não há como
// resolver sem varredura; o custo linear é aceitável na escala de um
// condomínio. Se mais de um cartão declarar o mesmo CPF (anomalia),
// vence o primeiro na ordem de iteração da loja.
func (r *CartaoRepository) FindByCPF(ctx context.Context, cpf string) (string, Cartao, error) {
	alvo := util.NormalizeCPF(cpf)
	cursor := ""
	for {
		keys, next, err := r.store.List(ctx, cursor, listPageSize)
		if err != nil {
			return "", Cartao{}, fmt.Errorf("varrer cartões: %w", err)
		}
		for _, id := range keys {
			cartao, err := r.Get(ctx, id)
			if err != nil {
				// registro corrompido ou removido no meio da varredura
				// não pode impedir o pareamento dos demais
				log.Warn().Err(err).Str("cartao", id).Msg("cartão ignorado na varredura")
				continue
			}
			if util.NormalizeCPF(cartao.CPF) == alvo {
				return id, cartao, nil
			}
		}
		if next == "" {
			return "", Cartao{}, ErrNotFound
		}
		cursor = next
	}
}
