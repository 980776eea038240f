package wordweb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/folders"
	"github.com/poiesic/wordweb/ingest"
	"github.com/poiesic/wordweb/manager"
)

var _ ingest.DocumentSaver = (*App)(nil)

// SaveDocument stores d and files it in d.FolderPath, which must exist.
// User totals are left alone; batch callers refresh them once with
// SyncStatistics.
func (a *App) SaveDocument(ctx context.Context, d core.Document) error {
	if !a.folders.Exists(d.FolderPath) {
		return fmt.Errorf("%w: %q", folders.ErrFolderNotFound, d.FolderPath)
	}
	if err := a.manager.SaveDocument(ctx, d); err != nil {
		return err
	}
	return a.folders.AddDocument(ctx, d.FolderPath, d.ID)
}

// MoveDocument files the document in folder to and records the new path on
// the document. When the document cannot be saved the folder move is
// undone.
func (a *App) MoveDocument(ctx context.Context, docID, to string) (core.Document, error) {
	d, err := a.manager.GetDocument(ctx, docID)
	if err != nil {
		return core.Document{}, err
	}
	from, filed := a.folders.FolderOf(docID)
	if filed && from == to && d.FolderPath == to {
		return d, nil
	}

	if filed {
		err = a.folders.MoveDocument(ctx, docID, from, to)
	} else {
		err = a.folders.AddDocument(ctx, to, docID)
	}
	if err != nil {
		return core.Document{}, err
	}

	moved, err := a.manager.UpdateDocument(ctx, docID, func(d core.Document, now time.Time) (core.Document, error) {
		return d.WithFolderPath(to, now), nil
	})
	if err == nil {
		return moved, nil
	}

	var undo error
	if filed {
		undo = a.folders.MoveDocument(ctx, docID, to, from)
	} else {
		_, undo = a.folders.Unfile(ctx, docID)
	}
	if undo != nil {
		a.logger.Error("failed to undo folder move", "document", docID, "err", undo)
	}
	return core.Document{}, errors.Join(err, undo)
}

// CreateFolder adds a folder named name under parent.
func (a *App) CreateFolder(ctx context.Context, name, parent string) (core.Folder, error) {
	return a.folders.Create(ctx, name, parent)
}

// RenameFolder renames the folder at path and rewrites the folder path of
// every document filed beneath it.
func (a *App) RenameFolder(ctx context.Context, path, newName string) (core.Folder, error) {
	renamed, err := a.folders.Rename(ctx, path, newName)
	if err != nil {
		return core.Folder{}, err
	}
	var errs []error
	for folder, ids := range a.folders.Distribution() {
		if !core.IsWithin(folder, renamed.Path) {
			continue
		}
		for _, id := range ids {
			errs = append(errs, a.setFolderPath(ctx, id, folder))
		}
	}
	return renamed, errors.Join(errs...)
}

// DeleteFolder removes the folder at path with its subfolders and
// soft-deletes the documents they held. It returns the number of documents
// deleted.
func (a *App) DeleteFolder(ctx context.Context, path string) (int, error) {
	held, err := a.folders.Delete(ctx, path)
	if err != nil {
		return 0, err
	}
	var errs []error
	deleted := 0
	for _, id := range held {
		_, err := a.manager.UpdateDocument(ctx, id, func(d core.Document, now time.Time) (core.Document, error) {
			return d.WithFolderPath("", now).MarkDeleted(now), nil
		})
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, manager.ErrNotFound):
			a.logger.Warn("folder held a missing document", "folder", path, "document", id)
		default:
			errs = append(errs, err)
		}
	}
	if _, err := a.SyncStatistics(ctx); err != nil {
		errs = append(errs, err)
	}
	return deleted, errors.Join(errs...)
}

func (a *App) setFolderPath(ctx context.Context, id, path string) error {
	_, err := a.manager.UpdateDocument(ctx, id, func(d core.Document, now time.Time) (core.Document, error) {
		if d.FolderPath == path {
			return d, nil
		}
		return d.WithFolderPath(path, now), nil
	})
	if errors.Is(err, manager.ErrNotFound) {
		return nil
	}
	return err
}

// PurgeDocument removes the document from the store and from its folder.
func (a *App) PurgeDocument(ctx context.Context, id string) error {
	if err := a.manager.PurgeDocument(ctx, id); err != nil {
		return err
	}
	if _, err := a.folders.Unfile(ctx, id); err != nil {
		return err
	}
	_, err := a.SyncStatistics(ctx)
	return err
}

// FindFolder returns the path of the first folder whose name matches name
// case-insensitively, searching in path order.
func (a *App) FindFolder(name string) (string, bool) {
	for _, f := range a.folders.All() {
		if strings.EqualFold(f.Name, name) {
			return f.Path, true
		}
	}
	return "", false
}
