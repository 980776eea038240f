// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manager

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/storage"
)

const (
	// DefaultCacheTTL is how long a cached record is served without
	// reading the store.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheSize bounds the number of cached records.
	DefaultCacheSize = 4096

	// CurrentUserKey is the system record naming the current user.
	CurrentUserKey = "current_user_id"
)

// Manager is the facade over the stored users, documents and vocabulary.
// Records returned by the Manager are shared with its cache; change them
// through their With methods, which return copies.
type Manager struct {
	adapter   *storage.Adapter
	cache     *expirable.LRU[string, any]
	cacheTTL  time.Duration
	cacheSize int
	pool      *ants.Pool
	now       func() time.Time
	logger    *slog.Logger

	// serializes the read-check-write in SaveVocabulary
	vocabMu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager) error

// WithCacheTTL sets how long records stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(m *Manager) error {
		if ttl <= 0 {
			return fmt.Errorf("cache ttl must be positive, got %s", ttl)
		}
		m.cacheTTL = ttl
		return nil
	}
}

// WithCacheSize sets the maximum number of cached records.
func WithCacheSize(size int) Option {
	return func(m *Manager) error {
		if size < 1 {
			return fmt.Errorf("cache size must be positive, got %d", size)
		}
		m.cacheSize = size
		return nil
	}
}

// WithPoolSize sets the number of workers decoding bulk loads.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(m *Manager) error {
		if size < 1 {
			size = 1
		}
		if m.pool != nil {
			m.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		m.pool = pool
		return nil
	}
}

// WithClock replaces time.Now for record timestamps and review scheduling.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) error {
		m.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// New creates a Manager over adapter.
func New(adapter *storage.Adapter, opts ...Option) (*Manager, error) {
	if adapter == nil {
		return nil, ErrAdapterRequired
	}
	m := &Manager{
		adapter:   adapter,
		cacheTTL:  DefaultCacheTTL,
		cacheSize: DefaultCacheSize,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			m.Close()
			return nil, err
		}
	}
	if m.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		m.pool = pool
	}
	m.cache = expirable.NewLRU[string, any](m.cacheSize, nil, m.cacheTTL)
	return m, nil
}

// Close releases the worker pool.
func (m *Manager) Close() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// Adapter returns the underlying storage adapter.
func (m *Manager) Adapter() *storage.Adapter {
	return m.adapter
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// ClearCache drops every cached record.
func (m *Manager) ClearCache() {
	m.cache.Purge()
}

func cacheKey(collection, id string) string {
	return collection + "_" + id
}

// load returns collection/id from the cache or the store, repopulating the
// cache after a store read.
func load[T any](ctx context.Context, m *Manager, collection, id string) (T, error) {
	var zero T
	key := cacheKey(collection, id)
	if cached, ok := m.cache.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
		m.cache.Remove(key)
	}
	var v T
	if err := m.adapter.LoadInto(ctx, collection, id, &v); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return zero, fmt.Errorf("%w: %s %s", ErrNotFound, collection, id)
		}
		return zero, err
	}
	m.cache.Add(key, v)
	return v, nil
}

// save validates v, stores it and caches it once the write succeeded.
func save[T core.Validatable](ctx context.Context, m *Manager, collection, id string, v T) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := m.adapter.Save(ctx, collection, id, v); err != nil {
		return err
	}
	m.cache.Add(cacheKey(collection, id), v)
	return nil
}

// loadAll decodes every record of collection on the worker pool. Records
// that fail to decode are logged and skipped. The result is ordered by
// creation time, then id.
func loadAll[T any](ctx context.Context, m *Manager, collection string, record func(T) core.Record) ([]T, error) {
	raws, err := m.adapter.LoadAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make([]T, 0, len(raws))
	)
	for id, raw := range raws {
		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				m.logger.Warn("skipping undecodable record", "collection", collection, "id", id, "err", err)
				return
			}
			mu.Lock()
			out = append(out, v)
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	slices.SortFunc(out, func(a, b T) int {
		ra, rb := record(a), record(b)
		return cmp.Or(ra.CreatedAt.Compare(rb.CreatedAt), cmp.Compare(ra.ID, rb.ID))
	})
	for _, v := range out {
		m.cache.Add(cacheKey(collection, record(v).ID), v)
	}
	return out, nil
}

// SaveUser validates and stores u.
func (m *Manager) SaveUser(ctx context.Context, u core.User) error {
	return save(ctx, m, storage.CollectionUser, u.ID, u)
}

// GetUser returns the user with id.
func (m *Manager) GetUser(ctx context.Context, id string) (core.User, error) {
	return load[core.User](ctx, m, storage.CollectionUser, id)
}

// CurrentUserID returns the id of the current user.
func (m *Manager) CurrentUserID(ctx context.Context) (string, error) {
	var id string
	err := m.adapter.LoadInto(ctx, storage.CollectionSystem, CurrentUserKey, &id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && id == "") {
		return "", ErrNoCurrentUser
	}
	return id, err
}

// SetCurrentUserID records id as the current user.
func (m *Manager) SetCurrentUserID(ctx context.Context, id string) error {
	return m.adapter.Save(ctx, storage.CollectionSystem, CurrentUserKey, id)
}

// CurrentUser returns the current user.
func (m *Manager) CurrentUser(ctx context.Context) (core.User, error) {
	id, err := m.CurrentUserID(ctx)
	if err != nil {
		return core.User{}, err
	}
	return m.GetUser(ctx, id)
}

// UpdateUser applies fn to the stored user and saves the result.
func (m *Manager) UpdateUser(ctx context.Context, id string, fn func(core.User, time.Time) (core.User, error)) (core.User, error) {
	u, err := m.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	u, err = fn(u, m.now())
	if err != nil {
		return core.User{}, err
	}
	if err := m.SaveUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// ClearAllData removes every record and empties the cache. It returns the
// number of keys removed.
func (m *Manager) ClearAllData(ctx context.Context) (int, error) {
	n, err := m.adapter.ClearAll(ctx)
	m.ClearCache()
	if err != nil {
		return n, err
	}
	m.logger.Info("all data cleared", "keys", n)
	return n, nil
}
