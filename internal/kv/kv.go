package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound é retornado quando a chave não existe no armazenamento.
var ErrNotFound = errors.New("chave não encontrada")

// Store abstrai um armazenamento chave-valor com listagem paginada,
// espelhando a API do KV que originou os dados: leitura e escrita
// atômicas por chave, sem transações entre chaves e sem garantia de
// read-after-write para List.
type Store interface {
	// Get devolve o valor bruto da chave ou ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Put grava o valor; sobrescreve sem versionamento (last-write-wins).
	Put(ctx context.Context, key, value string) error
	// PutTTL grava o valor com expiração automática.
	PutTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete remove a chave; remover chave inexistente não é erro.
	Delete(ctx context.Context, key string) error
	// List devolve uma página de chaves a partir do cursor. Cursor vazio
	// inicia a iteração; next vazio encerra.
	List(ctx context.Context, cursor string, limit int) (keys []string, next string, err error)
}
