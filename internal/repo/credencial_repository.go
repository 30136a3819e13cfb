package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aruanda/portaria/internal/kv"
)

const listPageSize = 100

// CredencialRepository persiste credenciais como JSON na loja
// chave-valor, chaveadas pelo CPF normalizado.
type CredencialRepository struct {
	store kv.Store
}

// NewCredencialRepository cria o repositório sobre o namespace de credenciais.
func NewCredencialRepository(store kv.Store) *CredencialRepository {
	return &CredencialRepository{store: store}
}

// Get carrega a credencial do CPF ou ErrNotFound.
func (r *CredencialRepository) Get(ctx context.Context, cpf string) (Credencial, error) {
	raw, err := r.store.Get(ctx, cpf)
	if errors.Is(err, kv.ErrNotFound) {
		return Credencial{}, ErrNotFound
	}
	if err != nil {
		return Credencial{}, fmt.Errorf("credencial %s: %w", cpf, err)
	}

	var cred Credencial
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return Credencial{}, fmt.Errorf("credencial %s corrompida: %w", cpf, err)
	}
	return cred, nil
}

// Put grava a credencial inteira (last-write-wins).
func (r *CredencialRepository) Put(ctx context.Context, cred Credencial) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, cred.CPF, string(raw))
}

// Delete remove a credencial do CPF.
func (r *CredencialRepository) Delete(ctx context.Context, cpf string) error {
	return r.store.Delete(ctx, cpf)
}

// ListAll percorre todas as páginas da loja e devolve cada credencial.
// A listagem não tem garantia de read-after-write; chamadores toleram
// resultado brevemente defasado.
func (r *CredencialRepository) ListAll(ctx context.Context) ([]Credencial, error) {
	var out []Credencial
	cursor := ""
	for {
		keys, next, err := r.store.List(ctx, cursor, listPageSize)
		if err != nil {
			return nil, fmt.Errorf("listar credenciais: %w", err)
		}
		for _, cpf := range keys {
			cred, err := r.Get(ctx, cpf)
			if errors.Is(err, ErrNotFound) {
				// chave sumiu entre o List e o Get; estado legal
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, cred)
		}
		if next == "" {
			return out, nil
		}
		cursor = next
	}
}
