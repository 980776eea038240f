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

package wordweb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/folders"
	"github.com/poiesic/wordweb/manager"
	"github.com/poiesic/wordweb/migrate"
	"github.com/poiesic/wordweb/storage"
	"github.com/poiesic/wordweb/storage/badger"
)

// App is the application context: the store, its schema, the current user
// and the components built on them. One App is opened per process and
// passed to whatever needs it.
type App struct {
	backend *badger.Backend
	adapter *storage.Adapter
	engine  *migrate.Engine
	manager *manager.Manager
	folders *folders.Tree
	now     func() time.Time
	logger  *slog.Logger

	mu   sync.RWMutex
	user core.User
}

// Option configures an App.
type Option func(*options) error

type options struct {
	inMemory          bool
	quota             int64
	cacheTTL          time.Duration
	snapshotRetention int
	now               func() time.Time
	logger            *slog.Logger
}

// WithInMemory keeps all data in memory. The path passed to Open is ignored.
func WithInMemory() Option {
	return func(o *options) error {
		o.inMemory = true
		return nil
	}
}

// WithQuota caps the store at bytes of keys and values.
func WithQuota(bytes int64) Option {
	return func(o *options) error {
		if bytes < 0 {
			return fmt.Errorf("negative quota %d", bytes)
		}
		o.quota = bytes
		return nil
	}
}

// WithCacheTTL sets how long the manager caches records.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) error {
		o.cacheTTL = ttl
		return nil
	}
}

// WithSnapshotRetention sets how many migration snapshots are kept.
func WithSnapshotRetention(n int) Option {
	return func(o *options) error {
		o.snapshotRetention = n
		return nil
	}
}

// WithClock sets the time source used by every component.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.New("nil clock")
		}
		o.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// Open opens the store at path, migrates it to the latest schema and loads
// the current user, creating a default one on first use.
func Open(ctx context.Context, path string, opts ...Option) (*App, error) {
	o := &options{
		cacheTTL:          manager.DefaultCacheTTL,
		snapshotRetention: migrate.DefaultSnapshotRetention,
		now:               time.Now,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	backendOpts := []badger.BackendOption{badger.WithLogger(o.logger)}
	if o.quota > 0 {
		backendOpts = append(backendOpts, badger.WithQuota(o.quota))
	}
	backend, err := badger.OpenBackend(path, o.inMemory, backendOpts...)
	if err != nil {
		return nil, err
	}

	app, err := open(ctx, backend, o)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return app, nil
}

func open(ctx context.Context, backend *badger.Backend, o *options) (*App, error) {
	adapter, err := storage.NewAdapter(backend,
		storage.WithPinnedCollections(storage.CollectionSystem, storage.CollectionUser, storage.CollectionFolders),
		storage.WithClock(o.now),
		storage.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	engine, err := migrate.NewEngine(adapter,
		migrate.WithSteps(migrate.DefaultSteps()...),
		migrate.WithSnapshotRetention(o.snapshotRetention),
		migrate.WithClock(o.now),
		migrate.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := engine.MigrateTo(ctx, migrate.LatestVersion); err != nil {
		return nil, err
	}

	mgr, err := manager.New(adapter,
		manager.WithCacheTTL(o.cacheTTL),
		manager.WithClock(o.now),
		manager.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	tree, err := folders.Open(ctx, adapter, folders.WithClock(o.now), folders.WithLogger(o.logger))
	if err != nil {
		mgr.Close()
		return nil, err
	}

	app := &App{
		backend: backend,
		adapter: adapter,
		engine:  engine,
		manager: mgr,
		folders: tree,
		now:     o.now,
		logger:  o.logger,
	}
	if err := app.loadUser(ctx); err != nil {
		mgr.Close()
		return nil, err
	}
	return app, nil
}

// Close releases the manager and closes the store.
func (a *App) Close() error {
	a.manager.Close()
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Manager returns the record facade.
func (a *App) Manager() *manager.Manager {
	return a.manager
}

// Folders returns the folder tree.
func (a *App) Folders() *folders.Tree {
	return a.folders
}

// Migrations returns the migration engine.
func (a *App) Migrations() *migrate.Engine {
	return a.engine
}

// Adapter returns the store adapter.
func (a *App) Adapter() *storage.Adapter {
	return a.adapter
}

// User returns the current user.
func (a *App) User() core.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// loadUser reads the current user, creating the default user when none is
// recorded or the recorded one is gone.
func (a *App) loadUser(ctx context.Context) error {
	u, err := a.manager.CurrentUser(ctx)
	switch {
	case err == nil:
	case errors.Is(err, manager.ErrNoCurrentUser), errors.Is(err, manager.ErrNotFound):
		u = core.DefaultUser(a.now())
		if err := a.manager.SaveUser(ctx, u); err != nil {
			return err
		}
		if err := a.manager.SetCurrentUserID(ctx, u.ID); err != nil {
			return err
		}
		a.logger.Info("created default user", "id", u.ID)
	default:
		return err
	}
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
	return nil
}

// UpdateUser applies fn to the current user and saves it.
func (a *App) UpdateUser(ctx context.Context, fn func(core.User, time.Time) (core.User, error)) (core.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, err := a.manager.UpdateUser(ctx, a.user.ID, fn)
	if err != nil {
		return core.User{}, err
	}
	a.user = u
	return u, nil
}

// SetPreference sets one preference of the current user from its string
// form.
func (a *App) SetPreference(ctx context.Context, key, value string) (core.User, error) {
	return a.UpdateUser(ctx, func(u core.User, now time.Time) (core.User, error) {
		return u.SetPreference(key, value, now)
	})
}

// RecordLogin counts a session of the current user.
func (a *App) RecordLogin(ctx context.Context) (core.User, error) {
	return a.UpdateUser(ctx, func(u core.User, now time.Time) (core.User, error) {
		return u.RecordLogin(now), nil
	})
}

// SyncStatistics recomputes the current user's library totals from the
// active documents and vocabulary.
func (a *App) SyncStatistics(ctx context.Context) (core.User, error) {
	docs, err := a.manager.GetAllDocuments(ctx)
	if err != nil {
		return core.User{}, err
	}
	words, err := a.manager.GetAllVocabulary(ctx)
	if err != nil {
		return core.User{}, err
	}
	total := 0
	for _, d := range docs {
		total += d.WordCount
	}
	return a.UpdateUser(ctx, func(u core.User, now time.Time) (core.User, error) {
		return u.WithTotals(len(docs), total, len(words), now), nil
	})
}
