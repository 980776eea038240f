package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/wordweb/storage"
)

// Backend wraps a BadgerDB instance and implements storage.KV.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger

	// quota caps the summed size of keys and values; 0 means unlimited.
	quota int64
	mu    sync.Mutex
	used  int64
}

var _ storage.KV = (*Backend)(nil)

// BackendOption configures a Backend.
type BackendOption func(*Backend) error

// WithQuota limits the total bytes of keys plus values the backend accepts.
func WithQuota(bytes int64) BackendOption {
	return func(b *Backend) error {
		if bytes < 0 {
			return errors.New("quota cannot be negative")
		}
		b.quota = bytes
		return nil
	}
}

// WithLogger sets the logger used by the backend and by badger itself.
func WithLogger(logger *slog.Logger) BackendOption {
	return func(b *Backend) error {
		b.logger = logger
		return nil
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool, opts ...BackendOption) (*Backend, error) {
	b := &Backend{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	var dbOpts badger.Options
	if inMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		dbOpts = badger.DefaultOptions(filePath)
	}
	dbOpts.Logger = &badgerLoggerAdapter{logger: b.logger}
	dbOpts.Compression = options.None

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	b.db = db

	if b.quota > 0 {
		used, err := b.measure()
		if err != nil {
			db.Close()
			return nil, err
		}
		b.used = used
	}
	return b, nil
}

func ensureDir(filePath string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filePath, 0755); err != nil {
			return err
		}
		info, err = os.Stat(filePath)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filePath)
	}
	return nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// Used returns the bytes counted against the quota. It is only tracked when
// a quota is set.
func (b *Backend) Used() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// Get returns the value stored under key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := b.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	}, false)
	return value, err
}

// Set stores value under key, enforcing the quota when one is set.
func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var delta int64
	err := b.WithTx(func(tx *badger.Txn) error {
		delta = int64(len(key) + len(value))
		if b.quota > 0 {
			old, err := tx.Get([]byte(key))
			switch {
			case err == nil:
				delta -= int64(len(key)) + old.ValueSize()
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			if b.used+delta > b.quota {
				return fmt.Errorf("%w: %d of %d bytes used", storage.ErrQuotaExceeded, b.used, b.quota)
			}
		}
		if err := tx.Set([]byte(key), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("%w: %w", storage.ErrQuotaExceeded, err)
	}
	if err != nil {
		return err
	}
	if b.quota > 0 {
		b.used += delta
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var freed int64
	err := b.WithTx(func(tx *badger.Txn) error {
		if b.quota > 0 {
			old, err := tx.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			freed = int64(len(key)) + old.ValueSize()
		}
		if err := tx.Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	b.used -= freed
	return nil
}

// Scan calls fn for every key with the given prefix in key order.
func (b *Backend) Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			key := string(item.Key())
			err := item.Value(func(val []byte) error {
				return fn(key, val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// measure sums the size of every key and value in the database.
func (b *Backend) measure() (int64, error) {
	var total int64
	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			total += int64(len(item.Key())) + item.ValueSize()
		}
		return nil
	}, false)
	return total, err
}
