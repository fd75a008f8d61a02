// Package store persists the handful of string key/value entries the app
// keeps between sessions: the daily generation counter, its date key and the
// one-time install prompt flag.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Keys of the persisted entries.
const (
	KeyGenerationCount    = "generationCount"
	KeyGenerationDate     = "generationDate"
	KeyInstallPromptShown = "installPromptShown"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// KV is a string key/value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string // "sqlite", "redis" or "memory"
	Path     string // SQLite database file
	RedisURL string
}

// Open creates the configured backend.
func Open(ctx context.Context, cfg Config) (KV, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return OpenSQLite(cfg.Path)
	case "redis":
		return OpenRedis(ctx, cfg.RedisURL)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

// Memory is a process-local KV used in tests and when persistence is
// unavailable.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements KV.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Close implements KV.
func (m *Memory) Close() error {
	return nil
}

// MarkOnce sets key to "true" and reports whether this was the first time.
// Store errors count as "already shown" so a broken store never nags.
func MarkOnce(ctx context.Context, kv KV, key string) bool {
	v, err := kv.Get(ctx, key)
	if err == nil && v == "true" {
		return false
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false
	}
	if err := kv.Set(ctx, key, "true"); err != nil {
		return false
	}
	return true
}
