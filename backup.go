package wordweb

import (
	"context"
	"fmt"

	"github.com/poiesic/wordweb/manager"
	"github.com/poiesic/wordweb/migrate"
)

// Backup captures the store and the current user.
func (a *App) Backup(ctx context.Context) (*manager.Backup, error) {
	return a.manager.Backup(ctx)
}

// Restore replaces every record with the backup's, brings the restored
// data up to the latest schema and reloads the folder tree and current
// user. It returns the number of records imported.
func (a *App) Restore(ctx context.Context, b *manager.Backup) (int, error) {
	n, err := a.manager.Restore(ctx, b)
	if err != nil {
		return 0, err
	}
	if err := a.engine.MigrateTo(ctx, migrate.LatestVersion); err != nil {
		return n, fmt.Errorf("migrating restored data: %w", err)
	}
	a.manager.ClearCache()
	if err := a.folders.Reload(ctx); err != nil {
		return n, err
	}
	if err := a.loadUser(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// ClearAllData removes every record, stamps the empty store with the latest
// schema version and recreates the default user.
func (a *App) ClearAllData(ctx context.Context) (int, error) {
	n, err := a.manager.ClearAllData(ctx)
	if err != nil {
		return 0, err
	}
	if err := a.engine.MigrateTo(ctx, migrate.LatestVersion); err != nil {
		return n, err
	}
	if err := a.folders.Reload(ctx); err != nil {
		return n, err
	}
	return n, a.loadUser(ctx)
}
