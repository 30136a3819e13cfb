package kv

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemoryStore implementa Store em memória, para testes e uso local sem
// dependências externas.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]memoryEntry
	falha  error
}

type memoryEntry struct {
	value    string
	expiraEm time.Time
}

// NewMemoryStore devolve um Store vazio.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]memoryEntry)}
}

// Fail faz todas as operações falharem com err (simula indisponibilidade).
func (s *MemoryStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.falha = err
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.falha != nil {
		return "", s.falha
	}
	entry, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	if !entry.expiraEm.IsZero() && time.Now().After(entry.expiraEm) {
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (s *MemoryStore) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.falha != nil {
		return s.falha
	}
	s.values[key] = memoryEntry{value: value}
	return nil
}

func (s *MemoryStore) PutTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.falha != nil {
		return s.falha
	}
	s.values[key] = memoryEntry{value: value, expiraEm: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.falha != nil {
		return s.falha
	}
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, cursor string, limit int) ([]string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.falha != nil {
		return nil, "", s.falha
	}

	if limit <= 0 {
		limit = 100
	}

	now := time.Now()
	keys := make([]string, 0, len(s.values))
	for k, entry := range s.values {
		if !entry.expiraEm.IsZero() && now.After(entry.expiraEm) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", errors.New("cursor inválido")
		}
		start = parsed
	}
	if start >= len(keys) {
		return nil, "", nil
	}

	end := start + limit
	if end >= len(keys) {
		return keys[start:], "", nil
	}
	return keys[start:end], strconv.Itoa(end), nil
}
