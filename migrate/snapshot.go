package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/storage"
)

// SnapshotPrefix keeps snapshots outside the adapter namespace so exports
// and ClearAll never include them.
const SnapshotPrefix = "snapshot:"

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Entries   int       `json:"entries"`
	Bytes     int       `json:"bytes"`
	Corrupt   bool      `json:"corrupt,omitempty"`
}

// SnapshotStore saves full exports of an adapter's namespace in its KV.
type SnapshotStore struct {
	adapter *storage.Adapter
	logger  *slog.Logger
}

// NewSnapshotStore creates a SnapshotStore for adapter.
func NewSnapshotStore(adapter *storage.Adapter, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{adapter: adapter, logger: logger}
}

func snapshotKey(id string) string {
	return SnapshotPrefix + id
}

// Create exports the namespace tagged with version and stores it. The id is
// the zero-padded UnixNano of at, bumped until unused.
func (s *SnapshotStore) Create(ctx context.Context, version string, at time.Time) (*SnapshotInfo, error) {
	exp, err := s.adapter.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	exp.SchemaVersion = version
	exp.ExportedAt = at.UTC().Truncate(time.Microsecond)
	body := storage.MarshalExport(exp)
	sum := core.Fingerprint(body)

	buf := make([]byte, ord.String.Size(sum)+len(body))
	n := ord.String.Marshal(sum, buf)
	copy(buf[n:], body)

	kv := s.adapter.KV()
	stamp := at.UnixNano()
	var id string
	for {
		id = fmt.Sprintf("%020d", stamp)
		_, err := kv.Get(ctx, snapshotKey(id))
		if errors.Is(err, storage.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		stamp++
	}
	if err := kv.Set(ctx, snapshotKey(id), buf); err != nil {
		return nil, err
	}
	s.logger.Debug("snapshot created", "id", id, "version", version, "entries", len(exp.Data))
	return &SnapshotInfo{
		ID:        id,
		Version:   version,
		CreatedAt: exp.ExportedAt,
		Entries:   len(exp.Data),
		Bytes:     len(buf),
	}, nil
}

// decodeSnapshot verifies the checksum and decodes the export.
func decodeSnapshot(buf []byte) (*storage.Export, error) {
	sum, n, err := ord.String.Unmarshal(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	body := buf[n:]
	if core.Fingerprint(body) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrSnapshotCorrupt)
	}
	exp, err := storage.UnmarshalExport(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	return exp, nil
}

// Load returns the export stored in snapshot id.
func (s *SnapshotStore) Load(ctx context.Context, id string) (*storage.Export, error) {
	buf, err := s.adapter.KV().Get(ctx, snapshotKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(buf)
}

// Restore replaces the namespace with the contents of snapshot id.
func (s *SnapshotStore) Restore(ctx context.Context, id string) error {
	exp, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	return s.restoreExport(ctx, exp)
}

func (s *SnapshotStore) restoreExport(ctx context.Context, exp *storage.Export) error {
	if _, err := s.adapter.ClearAll(ctx); err != nil {
		return err
	}
	_, err := s.adapter.ImportAll(ctx, exp)
	return err
}

// List returns every snapshot, newest first. Snapshots that fail their
// checksum are listed with Corrupt set.
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := s.adapter.KV().Scan(ctx, SnapshotPrefix, func(key string, value []byte) error {
		info := SnapshotInfo{ID: strings.TrimPrefix(key, SnapshotPrefix), Bytes: len(value)}
		exp, err := decodeSnapshot(value)
		if err != nil {
			s.logger.Warn("corrupt snapshot", "id", info.ID, "err", err)
			info.Corrupt = true
			if nanos, perr := strconv.ParseInt(info.ID, 10, 64); perr == nil {
				info.CreatedAt = time.Unix(0, nanos).UTC()
			}
		} else {
			info.Version = exp.SchemaVersion
			info.CreatedAt = exp.ExportedAt
			info.Entries = len(exp.Data)
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// ids are zero-padded timestamps, so key order is creation order
	slices.Reverse(infos)
	return infos, nil
}

// Prune keeps the keep newest snapshots and deletes the rest. It returns the
// number deleted.
func (s *SnapshotStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	infos, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(infos) <= keep {
		return 0, nil
	}
	removed := 0
	for _, info := range infos[keep:] {
		if err := s.adapter.KV().Delete(ctx, snapshotKey(info.ID)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
