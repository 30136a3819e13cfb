package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implementa Store sobre uma tabela chave-valor simples,
// uma tabela por namespace. Expiração é aplicada na leitura e limpa de
// forma oportunista na escrita.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore cria (se necessário) a tabela do namespace e devolve o Store.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, namespace string) (*PostgresStore, error) {
	table := "kv_" + namespace
	ddl := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            k TEXT PRIMARY KEY,
            v TEXT NOT NULL,
            expira_em TIMESTAMPTZ
        )
    `, table)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("kv postgres (%s): %w", namespace, err)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf(`SELECT v FROM %s WHERE k = $1 AND (expira_em IS NULL OR expira_em > now())`, s.table)
	var val string
	err := s.pool.QueryRow(ctx, query, key).Scan(&val)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return val, err
}

func (s *PostgresStore) Put(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (k, v, expira_em) VALUES ($1, $2, NULL)
        ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, expira_em = NULL
    `, s.table)
	_, err := s.pool.Exec(ctx, query, key, value)
	return err
}

func (s *PostgresStore) PutTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (k, v, expira_em) VALUES ($1, $2, now() + $3)
        ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, expira_em = EXCLUDED.expira_em
    `, s.table)
	_, err := s.pool.Exec(ctx, query, key, value, ttl)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE k = $1`, s.table)
	_, err := s.pool.Exec(ctx, query, key)
	return err
}

func (s *PostgresStore) List(ctx context.Context, cursor string, limit int) ([]string, string, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
        SELECT k FROM %s
        WHERE k > $1 AND (expira_em IS NULL OR expira_em > now())
        ORDER BY k
        LIMIT $2
    `, s.table)
	rows, err := s.pool.Query(ctx, query, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, "", err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(keys) < limit {
		return keys, "", nil
	}
	return keys, keys[len(keys)-1], nil
}
