package storage_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/wordweb/storage"
	"github.com/poiesic/wordweb/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newAdapter(t *testing.T, kvOpts []badger.BackendOption, opts ...storage.Option) (*storage.Adapter, *badger.Backend, *clock) {
	t.Helper()
	backend, err := badger.NewMemoryBackend(kvOpts...)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]storage.Option{storage.WithClock(c.Now)}, opts...)
	adapter, err := storage.NewAdapter(backend, opts...)
	require.NoError(t, err)
	return adapter, backend, c
}

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestAdapterKeys(t *testing.T) {
	adapter, _, _ := newAdapter(t, nil)
	assert.Equal(t, "wordweb_document_abc", adapter.Key(storage.CollectionDocument, "abc"))
	assert.Equal(t, "wordweb_system", adapter.Key(storage.CollectionSystem, ""))
}

func TestAdapterSaveLoad(t *testing.T) {
	ctx := context.Background()
	adapter, backend, c := newAdapter(t, nil, storage.WithSchemaVersion("1.0.1"))

	require.NoError(t, adapter.Save(ctx, "item", "1", item{Name: "a", Count: 2}))

	var got item
	require.NoError(t, adapter.LoadInto(ctx, "item", "1", &got))
	assert.Equal(t, item{Name: "a", Count: 2}, got)

	raw, err := backend.Get(ctx, "wordweb_item_1")
	require.NoError(t, err)
	var stored struct {
		Metadata storage.Envelope `json:"metadata"`
		Data     item             `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, storage.Envelope{
		Type:          "item",
		ID:            "1",
		SavedAt:       c.now,
		SchemaVersion: "1.0.1",
	}, stored.Metadata)
	assert.Equal(t, got, stored.Data)

	_, err = adapter.Load(ctx, "item", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, adapter.Remove(ctx, "item", "1"))
	_, err = adapter.Load(ctx, "item", "1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdapterCompression(t *testing.T) {
	ctx := context.Background()
	adapter, backend, _ := newAdapter(t, nil, storage.WithCompressionThreshold(100))

	small := item{Name: "small"}
	large := item{Name: strings.Repeat("wordweb ", 200)}
	require.NoError(t, adapter.Save(ctx, "item", "small", small))
	require.NoError(t, adapter.Save(ctx, "item", "large", large))

	for id, want := range map[string]item{"small": small, "large": large} {
		var got item
		require.NoError(t, adapter.LoadInto(ctx, "item", id, &got))
		assert.Equal(t, want, got, id)
	}

	raw, err := backend.Get(ctx, "wordweb_item_large")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"compressed":true`)
	assert.Less(t, len(raw), len(large.Name), "repetitive payload should shrink")

	raw, err = backend.Get(ctx, "wordweb_item_small")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"compressed":false`)
}

func TestAdapterLegacyValues(t *testing.T) {
	ctx := context.Background()
	adapter, backend, _ := newAdapter(t, nil)

	require.NoError(t, backend.Set(ctx, "wordweb_item_json", []byte(`{"name":"old","count":1}`)))
	require.NoError(t, backend.Set(ctx, "wordweb_item_text", []byte(`not json`)))

	var got item
	require.NoError(t, adapter.LoadInto(ctx, "item", "json", &got))
	assert.Equal(t, item{Name: "old", Count: 1}, got)

	raw, err := adapter.Load(ctx, "item", "text")
	require.NoError(t, err)
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, "not json", s)
}

func TestAdapterEncryptedRejected(t *testing.T) {
	ctx := context.Background()
	adapter, backend, _ := newAdapter(t, nil)

	value := `{"metadata":{"type":"item","id":"x","encrypted":true},"data":"zzz"}`
	require.NoError(t, backend.Set(ctx, "wordweb_item_x", []byte(value)))

	_, err := adapter.Load(ctx, "item", "x")
	assert.ErrorIs(t, err, storage.ErrUnsupportedEncoding)
}

func TestAdapterLoadAll(t *testing.T) {
	ctx := context.Background()
	adapter, backend, _ := newAdapter(t, nil)

	require.NoError(t, adapter.Save(ctx, "item", "1", item{Name: "one"}))
	require.NoError(t, adapter.Save(ctx, "item", "2", item{Name: "two"}))
	require.NoError(t, adapter.Save(ctx, "items", "3", item{Name: "other collection"}))
	require.NoError(t, adapter.Save(ctx, "item", "", item{Name: "collection root"}))
	bad := `{"metadata":{"type":"item","id":"4","compressed":true},"data":"!!!"}`
	require.NoError(t, backend.Set(ctx, "wordweb_item_4", []byte(bad)))

	all, err := adapter.LoadAll(ctx, "item")
	require.NoError(t, err)
	require.Len(t, all, 2, "strict prefix and corrupt entry skipped")

	var one item
	require.NoError(t, json.Unmarshal(all["1"], &one))
	assert.Equal(t, "one", one.Name)
	assert.Contains(t, all, "2")
}

func TestAdapterQuotaEviction(t *testing.T) {
	ctx := context.Background()
	adapter, backend, c := newAdapter(t, []badger.BackendOption{badger.WithQuota(1000)},
		storage.WithPinnedCollections("pinned"))

	payload := item{Name: strings.Repeat("x", 40)}
	require.NoError(t, adapter.Save(ctx, "item", "old", payload))
	require.NoError(t, adapter.Save(ctx, "pinned", "old", payload))

	c.now = c.now.Add(31 * 24 * time.Hour)
	require.NoError(t, adapter.Save(ctx, "item", "recent", payload))
	require.NoError(t, backend.Set(ctx, "wordweb_item_garbage", []byte("not json")))

	// fill up to the quota with recent records
	var err error
	for i := 0; err == nil && i < 100; i++ {
		err = backend.Set(ctx, "filler"+strings.Repeat("_", i), []byte(strings.Repeat("f", 10)))
	}
	require.ErrorIs(t, err, storage.ErrQuotaExceeded)

	require.NoError(t, adapter.Save(ctx, "item", "new", payload))

	_, err = adapter.Load(ctx, "item", "old")
	assert.ErrorIs(t, err, storage.ErrNotFound, "stale record evicted")
	_, err = backend.Get(ctx, "wordweb_item_garbage")
	assert.ErrorIs(t, err, storage.ErrNotFound, "unparseable record evicted")
	_, err = adapter.Load(ctx, "item", "recent")
	assert.NoError(t, err, "recent record kept")
	_, err = adapter.Load(ctx, "pinned", "old")
	assert.NoError(t, err, "pinned collection kept")
}

func TestAdapterQuotaRetryFails(t *testing.T) {
	ctx := context.Background()
	adapter, _, _ := newAdapter(t, []badger.BackendOption{badger.WithQuota(50)})

	err := adapter.Save(ctx, "item", "huge", item{Name: strings.Repeat("x", 100)})
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
}

func TestAdapterExportImportClear(t *testing.T) {
	ctx := context.Background()
	adapter, backend, c := newAdapter(t, nil)

	require.NoError(t, adapter.Save(ctx, "item", "1", item{Name: "one"}))
	require.NoError(t, adapter.Save(ctx, "item", "2", item{Name: "two"}))
	require.NoError(t, backend.Set(ctx, "foreign", []byte("untouched")))

	exp, err := adapter.ExportAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.now, exp.ExportedAt)
	assert.Equal(t, storage.DefaultSchemaVersion, exp.SchemaVersion)
	require.Len(t, exp.Data, 2)
	assert.Contains(t, exp.Data, "wordweb_item_1")

	n, err := adapter.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = backend.Get(ctx, "foreign")
	assert.NoError(t, err, "keys outside the namespace survive ClearAll")

	exp.Data["elsewhere"] = "skipped"
	n, err = adapter.ImportAll(ctx, exp)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	again, err := adapter.ExportAll(ctx)
	require.NoError(t, err)
	delete(exp.Data, "elsewhere")
	assert.Equal(t, exp.Data, again.Data, "import restores raw values byte for byte")

	_, err = adapter.ImportAll(ctx, &storage.Export{})
	assert.ErrorIs(t, err, storage.ErrImportFormat)
	_, err = adapter.ImportAll(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrImportFormat)
}

func TestAdapterUsageInfo(t *testing.T) {
	ctx := context.Background()
	adapter, backend, _ := newAdapter(t, nil)

	require.NoError(t, adapter.Save(ctx, "document", "1", item{Name: "one"}))
	require.NoError(t, adapter.Save(ctx, "document", "2", item{Name: "two"}))
	require.NoError(t, adapter.Save(ctx, "vocabulary", "1", item{Name: "w"}))
	require.NoError(t, backend.Set(ctx, "wordweb_legacy_x", []byte("raw")))

	usage, err := adapter.UsageInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, usage.ItemCount)
	assert.Equal(t, 2, usage.Collections["document"].Count)
	assert.Equal(t, 1, usage.Collections["vocabulary"].Count)
	assert.Equal(t, 1, usage.Collections["legacy"].Count)
	assert.Equal(t, int64(len("wordweb_legacy_x")+3), usage.Collections["legacy"].Bytes)

	var sum int64
	for _, cu := range usage.Collections {
		sum += cu.Bytes
	}
	assert.Equal(t, usage.TotalBytes, sum)
	assert.NotEmpty(t, usage.Formatted)
}
