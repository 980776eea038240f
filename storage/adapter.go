package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Collections used by wordweb.
const (
	CollectionUser       = "user"
	CollectionDocument   = "document"
	CollectionVocabulary = "vocabulary"
	CollectionSystem     = "system"
	CollectionFolders    = "folders"
)

const (
	// DefaultNamespace prefixes every key the adapter writes.
	DefaultNamespace = "wordweb_"

	// DefaultCompressionThreshold is the payload size above which payloads
	// are compressed.
	DefaultCompressionThreshold = 10000

	// DefaultRetention is how old a record must be before quota eviction may
	// remove it.
	DefaultRetention = 30 * 24 * time.Hour

	// DefaultSchemaVersion is the version stamped on envelopes until a
	// migration sets another one.
	DefaultSchemaVersion = "1.0.0"
)

// Adapter stores JSON records in a KV under a namespace with a metadata
// envelope.
type Adapter struct {
	kv        KV
	namespace string
	threshold int
	retention time.Duration
	pinned    []string
	now       func() time.Time
	logger    *slog.Logger

	mu            sync.RWMutex
	schemaVersion string
}

// Option configures an Adapter.
type Option func(*Adapter) error

// WithNamespace sets the key prefix.
func WithNamespace(ns string) Option {
	return func(a *Adapter) error {
		if ns == "" {
			return errors.New("namespace cannot be empty")
		}
		a.namespace = ns
		return nil
	}
}

// WithCompressionThreshold sets the payload size above which compression is
// applied. A negative value disables compression.
func WithCompressionThreshold(n int) Option {
	return func(a *Adapter) error {
		a.threshold = n
		return nil
	}
}

// WithRetention sets the minimum age of records evicted on quota errors.
func WithRetention(d time.Duration) Option {
	return func(a *Adapter) error {
		if d <= 0 {
			return errors.New("retention must be positive")
		}
		a.retention = d
		return nil
	}
}

// WithPinnedCollections exempts collections from quota eviction.
func WithPinnedCollections(collections ...string) Option {
	return func(a *Adapter) error {
		a.pinned = append(a.pinned, collections...)
		return nil
	}
}

// WithSchemaVersion sets the version stamped on new envelopes.
func WithSchemaVersion(v string) Option {
	return func(a *Adapter) error {
		a.schemaVersion = v
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) error {
		a.now = now
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) error {
		a.logger = logger
		return nil
	}
}

// NewAdapter creates an Adapter over kv.
func NewAdapter(kv KV, opts ...Option) (*Adapter, error) {
	if kv == nil {
		return nil, errors.New("kv store required")
	}
	a := &Adapter{
		kv:            kv,
		namespace:     DefaultNamespace,
		threshold:     DefaultCompressionThreshold,
		retention:     DefaultRetention,
		now:           time.Now,
		logger:        slog.Default(),
		schemaVersion: DefaultSchemaVersion,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// KV returns the underlying store.
func (a *Adapter) KV() KV {
	return a.kv
}

// Namespace returns the key prefix.
func (a *Adapter) Namespace() string {
	return a.namespace
}

// SchemaVersion returns the version stamped on new envelopes.
func (a *Adapter) SchemaVersion() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.schemaVersion
}

// SetSchemaVersion changes the version stamped on new envelopes.
func (a *Adapter) SetSchemaVersion(v string) {
	a.mu.Lock()
	a.schemaVersion = v
	a.mu.Unlock()
}

// Key returns the physical key of a record. An empty id addresses the
// collection itself.
func (a *Adapter) Key(collection, id string) string {
	if id == "" {
		return a.namespace + collection
	}
	return a.namespace + collection + "_" + id
}

func (a *Adapter) collectionPrefix(collection string) string {
	return a.namespace + collection + "_"
}

// Save serializes value as JSON and stores it under collection/id.
func (a *Adapter) Save(ctx context.Context, collection, id string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		a.logger.Error("failed to serialize record", "collection", collection, "id", id, "err", err)
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return a.SaveRaw(ctx, collection, id, payload)
}

// SaveRaw stores an already serialized JSON payload.
func (a *Adapter) SaveRaw(ctx context.Context, collection, id string, payload json.RawMessage) error {
	env := Envelope{
		Type:          collection,
		ID:            id,
		SavedAt:       a.now().UTC(),
		SchemaVersion: a.SchemaVersion(),
	}
	stored, err := encodeRecord(env, payload, a.threshold)
	if err != nil {
		a.logger.Error("failed to encode record", "collection", collection, "id", id, "err", err)
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	key := a.Key(collection, id)
	err = a.kv.Set(ctx, key, stored)
	if errors.Is(err, ErrQuotaExceeded) {
		evicted, evictErr := a.evictStale(ctx)
		if evictErr != nil {
			a.logger.Warn("quota eviction failed", "err", evictErr)
		}
		a.logger.Warn("storage quota exceeded, retrying save", "key", key, "evicted", evicted)
		err = a.kv.Set(ctx, key, stored)
	}
	if err != nil {
		a.logger.Error("failed to save record", "key", key, "err", err)
		return err
	}
	return nil
}

// Load returns the JSON payload stored under collection/id.
func (a *Adapter) Load(ctx context.Context, collection, id string) (json.RawMessage, error) {
	key := a.Key(collection, id)
	raw, err := a.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	payload, _, err := decodeRecord(raw)
	if err != nil {
		a.logger.Error("failed to decode record", "key", key, "err", err)
		return nil, err
	}
	return payload, nil
}

// LoadInto loads collection/id and unmarshals it into dst.
func (a *Adapter) LoadInto(ctx context.Context, collection, id string, dst any) error {
	payload, err := a.Load(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrSerializationFailed, collection, id, err)
	}
	return nil
}

// Remove deletes collection/id.
func (a *Adapter) Remove(ctx context.Context, collection, id string) error {
	if err := a.kv.Delete(ctx, a.Key(collection, id)); err != nil {
		a.logger.Error("failed to remove record", "collection", collection, "id", id, "err", err)
		return err
	}
	return nil
}

// LoadAll returns every record of collection keyed by id. Entries that cannot
// be decoded are logged and skipped.
func (a *Adapter) LoadAll(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	prefix := a.collectionPrefix(collection)
	out := make(map[string]json.RawMessage)
	err := a.kv.Scan(ctx, prefix, func(key string, value []byte) error {
		payload, _, err := decodeRecord(value)
		if err != nil {
			a.logger.Warn("skipping corrupt record", "key", key, "err", err)
			return nil
		}
		out[strings.TrimPrefix(key, prefix)] = payload
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Keys returns every key in the namespace, sorted.
func (a *Adapter) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := a.kv.Scan(ctx, a.namespace, func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

// evictStale removes namespaced records saved before the retention window
// and values that are not JSON. Pinned collections are kept.
func (a *Adapter) evictStale(ctx context.Context) (int, error) {
	cutoff := a.now().Add(-a.retention)
	var victims []string
	err := a.kv.Scan(ctx, a.namespace, func(key string, value []byte) error {
		rec, err := parseEnvelope(value)
		switch {
		case err != nil:
			victims = append(victims, key)
		case rec == nil:
			// legacy value without savedAt
		case slices.Contains(a.pinned, rec.Metadata.Type):
		case rec.Metadata.SavedAt.Before(cutoff):
			victims = append(victims, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range victims {
		if err := a.kv.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
