// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package cache is the TTL cache behind read-mostly catalog lookups. Values
// are stored CBOR-encoded in both backends, so a cached value never aliases
// the caller's copy.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/codec"
)

// Cache stores encoded values under string keys with a TTL.
type Cache interface {
	// Get decodes the value under key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type entry struct {
	data    []byte
	expires time.Time
}

// Memory is an in-process Cache. Expired entries are dropped on read.
type Memory struct {
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]entry
}

// NewMemory creates a Memory cache. A nil clock uses the wall clock.
func NewMemory(clk clock.Clock) *Memory {
	if clk == nil {
		clk = clock.Real()
	}
	return &Memory{clock: clk, entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !m.clock.Now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := codec.Unmarshal(e.data, dst); err != nil {
		return false, oops.Code("CACHE_DECODE_FAILED").With("key", key).Wrap(err)
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return oops.Code("CACHE_ENCODE_FAILED").With("key", key).Wrap(err)
	}
	m.mu.Lock()
	m.entries[key] = entry{data: data, expires: m.clock.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

var _ Cache = (*Memory)(nil)
