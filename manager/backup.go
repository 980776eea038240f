package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/storage"
)

// Backup is a full logical export: the current user, the active documents
// and vocabulary, and the raw store contents used to restore them.
type Backup struct {
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schemaVersion"`
	User          *core.User        `json:"user"`
	Documents     []core.Document   `json:"documents"`
	Vocabulary    []core.Vocabulary `json:"vocabulary"`
	Storage       *storage.Export   `json:"storage"`
}

// Validate checks that b carries everything Restore needs.
func (b *Backup) Validate() error {
	switch {
	case b == nil:
		return fmt.Errorf("%w: empty backup", storage.ErrImportFormat)
	case b.SchemaVersion == "":
		return fmt.Errorf("%w: missing schemaVersion", storage.ErrImportFormat)
	case b.Storage == nil:
		return fmt.Errorf("%w: missing storage", storage.ErrImportFormat)
	case b.Storage.Data == nil:
		return fmt.Errorf("%w: missing storage data", storage.ErrImportFormat)
	}
	return nil
}

// Backup exports the store.
func (m *Manager) Backup(ctx context.Context) (*Backup, error) {
	docs, err := m.GetAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	vocab, err := m.GetAllVocabulary(ctx)
	if err != nil {
		return nil, err
	}
	exp, err := m.adapter.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	b := &Backup{
		Timestamp:     m.now().UTC(),
		SchemaVersion: m.adapter.SchemaVersion(),
		Documents:     docs,
		Vocabulary:    vocab,
		Storage:       exp,
	}
	switch u, err := m.CurrentUser(ctx); {
	case err == nil:
		b.User = &u
	case errors.Is(err, ErrNoCurrentUser), isNotFound(err):
	default:
		return nil, err
	}
	return b, nil
}

// Restore replaces the whole store with the contents of b. The payload is
// checked before anything is removed. It returns the number of keys
// written.
func (m *Manager) Restore(ctx context.Context, b *Backup) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if _, err := m.adapter.ClearAll(ctx); err != nil {
		m.ClearCache()
		return 0, err
	}
	n, err := m.adapter.ImportAll(ctx, b.Storage)
	m.ClearCache()
	if err != nil {
		return n, err
	}
	m.logger.Info("backup restored", "keys", n, "taken", b.Timestamp, "schemaVersion", b.SchemaVersion)
	return n, nil
}

// WriteBackup encodes b as indented JSON.
func WriteBackup(w io.Writer, b *Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// ReadBackup decodes and validates a backup.
func ReadBackup(r io.Reader) (*Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrImportFormat, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// BackupFileName names a backup taken at t.
func BackupFileName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return "wordweb-backup-" + strings.NewReplacer(":", "-", ".", "-").Replace(stamp) + ".json"
}

// ExportFileName names a raw export taken at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("wordweb-export-%d.json", t.UnixMilli())
}
