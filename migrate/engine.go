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

package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/wordweb/storage"
)

const (
	// VersionID is the system record holding the stored schema version.
	VersionID = "db_version"

	// BaseVersion is assumed when no version has been stored.
	BaseVersion = "1.0.0"

	// DefaultSnapshotRetention is how many snapshots survive pruning.
	DefaultSnapshotRetention = 5
)

// Step transforms the stored data between two schema versions. Version is
// the version the store is at after Up. Steps must be safe to run twice.
type Step interface {
	Version() string
	Up(ctx context.Context, adapter *storage.Adapter) error
	Down(ctx context.Context, adapter *storage.Adapter) error
}

// Validator is implemented by steps that can check their own result.
type Validator interface {
	Validate(ctx context.Context, adapter *storage.Adapter) error
}

// Engine runs registered steps to move the store between schema versions.
// Each run is guarded by a snapshot that is restored on failure.
type Engine struct {
	adapter   *storage.Adapter
	snapshots *SnapshotStore
	steps     []Step
	retention int
	now       func() time.Time
	logger    *slog.Logger

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine) error

// WithSteps registers steps.
func WithSteps(steps ...Step) Option {
	return func(e *Engine) error {
		for _, s := range steps {
			if err := e.Register(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithSnapshotRetention sets how many snapshots are kept after a migration.
func WithSnapshotRetention(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return errors.New("snapshot retention must be at least 1")
		}
		e.retention = n
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		e.now = now
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// NewEngine creates an Engine over adapter.
func NewEngine(adapter *storage.Adapter, opts ...Option) (*Engine, error) {
	if adapter == nil {
		return nil, errors.New("storage adapter required")
	}
	e := &Engine{
		adapter:   adapter,
		retention: DefaultSnapshotRetention,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.snapshots = NewSnapshotStore(adapter, e.logger)
	return e, nil
}

// Register adds a step. Steps are kept in ascending version order.
func (e *Engine) Register(step Step) error {
	if _, err := ParseVersion(step.Version()); err != nil {
		return err
	}
	for _, s := range e.steps {
		if CompareVersions(s.Version(), step.Version()) == 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateStep, step.Version())
		}
	}
	e.steps = append(e.steps, step)
	slices.SortFunc(e.steps, func(a, b Step) int {
		return CompareVersions(a.Version(), b.Version())
	})
	return nil
}

// Snapshots returns the engine's snapshot store.
func (e *Engine) Snapshots() *SnapshotStore {
	return e.snapshots
}

// LatestVersion returns the highest registered step version, or BaseVersion.
func (e *Engine) LatestVersion() string {
	if len(e.steps) == 0 {
		return BaseVersion
	}
	return e.steps[len(e.steps)-1].Version()
}

// CurrentVersion returns the stored schema version.
func (e *Engine) CurrentVersion(ctx context.Context) (string, error) {
	var v string
	err := e.adapter.LoadInto(ctx, storage.CollectionSystem, VersionID, &v)
	if errors.Is(err, storage.ErrNotFound) {
		return BaseVersion, nil
	}
	if err != nil {
		return "", err
	}
	if v == "" {
		return BaseVersion, nil
	}
	return v, nil
}

func (e *Engine) setVersion(ctx context.Context, v string) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return e.adapter.SaveRaw(ctx, storage.CollectionSystem, VersionID, payload)
}

// NeedsMigration reports whether the stored version is below target.
func (e *Engine) NeedsMigration(ctx context.Context, target string) (bool, error) {
	current, err := e.CurrentVersion(ctx)
	if err != nil {
		return false, err
	}
	return CompareVersions(current, target) < 0, nil
}

// between returns the steps with from < version <= to in ascending order.
func (e *Engine) between(from, to string) []Step {
	var out []Step
	for _, s := range e.steps {
		if CompareVersions(s.Version(), from) > 0 && CompareVersions(s.Version(), to) <= 0 {
			out = append(out, s)
		}
	}
	return out
}

// MigrateTo upgrades the store to target. It is a no-op when the stored
// version is already at or above target. On any failure the store is
// restored from the snapshot taken at the start and the stored version is
// left unchanged.
func (e *Engine) MigrateTo(ctx context.Context, target string) error {
	if _, err := ParseVersion(target); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if CompareVersions(current, target) >= 0 {
		e.adapter.SetSchemaVersion(current)
		return nil
	}

	pending := e.between(current, target)
	e.logger.Info("migrating schema", "from", current, "to", target, "steps", len(pending))

	snap, err := e.snapshots.Create(ctx, current, e.now())
	if err != nil {
		return fmt.Errorf("%w: snapshot: %w", ErrMigrationFailed, err)
	}

	for _, step := range pending {
		if err := step.Up(ctx, e.adapter); err != nil {
			return e.restoreAfter(ctx, snap, fmt.Errorf("%w: step %s: %w", ErrMigrationFailed, step.Version(), err))
		}
		if v, ok := step.(Validator); ok {
			if err := v.Validate(ctx, e.adapter); err != nil {
				return e.restoreAfter(ctx, snap, fmt.Errorf("%w: step %s validation: %w", ErrMigrationFailed, step.Version(), err))
			}
		}
		e.logger.Debug("migration step applied", "version", step.Version())
	}

	if err := e.setVersion(ctx, target); err != nil {
		return e.restoreAfter(ctx, snap, fmt.Errorf("%w: storing version: %w", ErrMigrationFailed, err))
	}
	e.adapter.SetSchemaVersion(target)
	e.prune(ctx)
	e.logger.Info("schema migrated", "version", target)
	return nil
}

// RollbackTo downgrades the store to target by running Down on the steps
// with target < version <= current in descending order. It is a no-op when
// the stored version is at or below target.
func (e *Engine) RollbackTo(ctx context.Context, target string) error {
	if _, err := ParseVersion(target); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if CompareVersions(current, target) <= 0 {
		return nil
	}

	pending := e.between(target, current)
	slices.Reverse(pending)
	e.logger.Info("rolling back schema", "from", current, "to", target, "steps", len(pending))

	snap, err := e.snapshots.Create(ctx, current, e.now())
	if err != nil {
		return fmt.Errorf("%w: snapshot: %w", ErrRollbackFailed, err)
	}

	for _, step := range pending {
		if err := step.Down(ctx, e.adapter); err != nil {
			return e.restoreAfter(ctx, snap, fmt.Errorf("%w: step %s: %w", ErrRollbackFailed, step.Version(), err))
		}
	}

	if err := e.setVersion(ctx, target); err != nil {
		return e.restoreAfter(ctx, snap, fmt.Errorf("%w: storing version: %w", ErrRollbackFailed, err))
	}
	e.adapter.SetSchemaVersion(target)
	e.prune(ctx)
	return nil
}

// restoreAfter restores snap after cause and returns cause, joined with the
// restore error if that also fails.
func (e *Engine) restoreAfter(ctx context.Context, snap *SnapshotInfo, cause error) error {
	e.logger.Error("schema change failed, restoring snapshot", "snapshot", snap.ID, "err", cause)
	if err := e.snapshots.Restore(ctx, snap.ID); err != nil {
		e.logger.Error("snapshot restore failed", "snapshot", snap.ID, "err", err)
		return errors.Join(cause, fmt.Errorf("%w: %w", ErrRestoreFailed, err))
	}
	return cause
}

func (e *Engine) prune(ctx context.Context) {
	if n, err := e.snapshots.Prune(ctx, e.retention); err != nil {
		e.logger.Warn("snapshot pruning failed", "err", err)
	} else if n > 0 {
		e.logger.Debug("snapshots pruned", "removed", n)
	}
}

// ListSnapshots returns stored snapshots, newest first.
func (e *Engine) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	return e.snapshots.List(ctx)
}

// PruneSnapshots keeps the keep newest snapshots and returns how many were
// deleted.
func (e *Engine) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	return e.snapshots.Prune(ctx, keep)
}

// RestoreSnapshot replaces the store with snapshot id and adopts the
// schema version it was taken at.
func (e *Engine) RestoreSnapshot(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.snapshots.Restore(ctx, id); err != nil {
		return err
	}
	current, err := e.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	e.adapter.SetSchemaVersion(current)
	return nil
}

// Status summarizes the engine's view of the store.
type Status struct {
	CurrentVersion string   `json:"currentVersion"`
	TargetVersion  string   `json:"targetVersion"`
	LatestVersion  string   `json:"latestVersion"`
	NeedsMigration bool     `json:"needsMigration"`
	Pending        []string `json:"pending"`
	SnapshotCount  int      `json:"snapshotCount"`
}

// Status reports the stored version and what migrating to target would run.
func (e *Engine) Status(ctx context.Context, target string) (*Status, error) {
	current, err := e.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	snaps, err := e.snapshots.List(ctx)
	if err != nil {
		return nil, err
	}
	st := &Status{
		CurrentVersion: current,
		TargetVersion:  target,
		LatestVersion:  e.LatestVersion(),
		NeedsMigration: CompareVersions(current, target) < 0,
		Pending:        []string{},
		SnapshotCount:  len(snaps),
	}
	if st.NeedsMigration {
		for _, s := range e.between(current, target) {
			st.Pending = append(st.Pending, s.Version())
		}
	}
	return st, nil
}
