package manager

import (
	"context"
	"slices"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/storage"
)

func documentRecord(d core.Document) core.Record { return d.Record }

// SaveDocument validates and stores d.
func (m *Manager) SaveDocument(ctx context.Context, d core.Document) error {
	return save(ctx, m, storage.CollectionDocument, d.ID, d)
}

// GetDocument returns the document with id in any status.
func (m *Manager) GetDocument(ctx context.Context, id string) (core.Document, error) {
	return load[core.Document](ctx, m, storage.CollectionDocument, id)
}

// GetAllDocuments returns the active documents.
func (m *Manager) GetAllDocuments(ctx context.Context) ([]core.Document, error) {
	return m.ListDocuments(ctx, core.StatusActive)
}

// ListDocuments returns the documents in any of statuses, or every document
// when none are given.
func (m *Manager) ListDocuments(ctx context.Context, statuses ...core.Status) ([]core.Document, error) {
	docs, err := loadAll(ctx, m, storage.CollectionDocument, documentRecord)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return docs, nil
	}
	return slices.DeleteFunc(docs, func(d core.Document) bool {
		return !slices.Contains(statuses, d.Status)
	}), nil
}

// UpdateDocument applies fn to the stored document and saves the result.
func (m *Manager) UpdateDocument(ctx context.Context, id string, fn func(core.Document, time.Time) (core.Document, error)) (core.Document, error) {
	d, err := m.GetDocument(ctx, id)
	if err != nil {
		return core.Document{}, err
	}
	d, err = fn(d, m.now())
	if err != nil {
		return core.Document{}, err
	}
	if err := m.SaveDocument(ctx, d); err != nil {
		return core.Document{}, err
	}
	return d, nil
}

func (m *Manager) setDocumentStatus(ctx context.Context, id string, status core.Status) (core.Document, error) {
	return m.UpdateDocument(ctx, id, func(d core.Document, now time.Time) (core.Document, error) {
		return d.WithStatus(status, now), nil
	})
}

// DeleteDocument marks the document deleted. The record stays in the store
// until purged.
func (m *Manager) DeleteDocument(ctx context.Context, id string) (core.Document, error) {
	return m.setDocumentStatus(ctx, id, core.StatusDeleted)
}

// ArchiveDocument marks the document archived.
func (m *Manager) ArchiveDocument(ctx context.Context, id string) (core.Document, error) {
	return m.setDocumentStatus(ctx, id, core.StatusArchived)
}

// RestoreDocument makes an archived or deleted document active again.
func (m *Manager) RestoreDocument(ctx context.Context, id string) (core.Document, error) {
	return m.setDocumentStatus(ctx, id, core.StatusActive)
}

// PurgeDocument removes the document from the store.
func (m *Manager) PurgeDocument(ctx context.Context, id string) error {
	if err := m.adapter.Remove(ctx, storage.CollectionDocument, id); err != nil {
		return err
	}
	m.cache.Remove(cacheKey(storage.CollectionDocument, id))
	return nil
}
