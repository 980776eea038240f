package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Export is a raw dump of every namespaced key.
type Export struct {
	ExportedAt    time.Time         `json:"exportedAt"`
	SchemaVersion string            `json:"schemaVersion"`
	Data          map[string]string `json:"data"`
}

// ExportAll snapshots every key in the namespace with its raw stored value.
func (a *Adapter) ExportAll(ctx context.Context) (*Export, error) {
	exp := &Export{
		ExportedAt:    a.now().UTC().Truncate(time.Microsecond),
		SchemaVersion: a.SchemaVersion(),
		Data:          make(map[string]string),
	}
	err := a.kv.Scan(ctx, a.namespace, func(key string, value []byte) error {
		exp.Data[key] = string(value)
		return nil
	})
	if err != nil {
		a.logger.Error("export failed", "err", err)
		return nil, err
	}
	return exp, nil
}

// ImportAll writes every entry of exp as-is and returns the number written.
// Keys outside the namespace are skipped. Existing keys that are not in exp
// are left alone; call ClearAll first for a full restore.
func (a *Adapter) ImportAll(ctx context.Context, exp *Export) (int, error) {
	if exp == nil || exp.Data == nil {
		return 0, fmt.Errorf("%w: missing data", ErrImportFormat)
	}
	count := 0
	for _, key := range slices.Sorted(maps.Keys(exp.Data)) {
		if !strings.HasPrefix(key, a.namespace) {
			a.logger.Warn("skipping key outside namespace", "key", key)
			continue
		}
		if err := a.kv.Set(ctx, key, []byte(exp.Data[key])); err != nil {
			a.logger.Error("import failed", "key", key, "imported", count, "err", err)
			return count, err
		}
		count++
	}
	return count, nil
}

// ClearAll removes every key in the namespace and returns how many were
// removed.
func (a *Adapter) ClearAll(ctx context.Context) (int, error) {
	keys, err := a.Keys(ctx)
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		if err := a.kv.Delete(ctx, key); err != nil {
			a.logger.Error("clear failed", "key", key, "err", err)
			return i, err
		}
	}
	return len(keys), nil
}

// CollectionUsage is the footprint of one collection.
type CollectionUsage struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

// Usage describes how much of the store the namespace occupies. Sizes count
// key and value bytes.
type Usage struct {
	TotalBytes  int64                      `json:"totalBytes"`
	ItemCount   int                        `json:"itemCount"`
	Collections map[string]CollectionUsage `json:"collections"`
	Formatted   string                     `json:"formatted"`
}

// UsageInfo measures the namespace.
func (a *Adapter) UsageInfo(ctx context.Context) (*Usage, error) {
	u := &Usage{Collections: make(map[string]CollectionUsage)}
	err := a.kv.Scan(ctx, a.namespace, func(key string, value []byte) error {
		size := int64(len(key) + len(value))
		collection := a.collectionOf(key, value)
		cu := u.Collections[collection]
		cu.Count++
		cu.Bytes += size
		u.Collections[collection] = cu
		u.TotalBytes += size
		u.ItemCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.Formatted = humanize.Bytes(uint64(u.TotalBytes))
	return u, nil
}

// collectionOf names the collection of a stored value, preferring the
// envelope type over the key layout.
func (a *Adapter) collectionOf(key string, value []byte) string {
	if rec, err := parseEnvelope(value); err == nil && rec != nil && rec.Metadata.Type != "" {
		return rec.Metadata.Type
	}
	rest := strings.TrimPrefix(key, a.namespace)
	if i := strings.Index(rest, "_"); i >= 0 {
		return rest[:i]
	}
	return rest
}
