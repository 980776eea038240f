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

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/wordweb/core"
)

// DocumentSaver stores prepared documents. Both manager.Manager and the
// application facade satisfy it.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, d core.Document) error
}

// Source is a text to import.
type Source struct {
	Title    string
	Content  string
	Language string
	Tags     []string
}

// SourceFromFile reads path into a Source titled after the file name
// without its extension.
func SourceFromFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, err
	}
	base := filepath.Base(path)
	return Source{
		Title:   strings.TrimSuffix(base, filepath.Ext(base)),
		Content: string(data),
	}, nil
}

// Importer prepares and saves documents.
type Importer struct {
	store     DocumentSaver
	pool      *ants.Pool
	language  string
	tags      []string
	folder    string
	keyWords  int
	minLength int
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size for document preparation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(i *Importer) error {
		if size < 1 {
			size = 1
		}
		if i.pool != nil {
			i.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		i.pool = pool
		return nil
	}
}

// WithLanguage sets the language of sources that do not name one.
func WithLanguage(language string) Option {
	return func(i *Importer) error {
		if strings.TrimSpace(language) == "" {
			return fmt.Errorf("ingest: empty language")
		}
		i.language = language
		return nil
	}
}

// WithTags adds tags to every imported document.
func WithTags(tags ...string) Option {
	return func(i *Importer) error {
		i.tags = append(i.tags, tags...)
		return nil
	}
}

// WithFolder files every imported document under path.
func WithFolder(path string) Option {
	return func(i *Importer) error {
		i.folder = path
		return nil
	}
}

// WithKeyWords captures the n most frequent content words of at least
// minLength runes into each document's vocabulary. Zero disables it.
func WithKeyWords(n, minLength int) Option {
	return func(i *Importer) error {
		if n < 0 {
			return fmt.Errorf("ingest: negative key word count %d", n)
		}
		i.keyWords = n
		i.minLength = minLength
		return nil
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) error {
		i.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// New creates an Importer saving through store.
func New(store DocumentSaver, opts ...Option) (*Importer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	i := &Importer{
		store:    store,
		language: "English",
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			i.Release()
			return nil, err
		}
	}
	if i.pool == nil {
		if err := WithPoolSize(runtime.NumCPU() / 2)(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Release releases the worker pool. The Importer must not be used after.
func (i *Importer) Release() {
	if i.pool != nil {
		i.pool.Release()
	}
}

// Prepare builds an unsaved document from src.
func (i *Importer) Prepare(src Source) (core.Document, error) {
	if strings.TrimSpace(src.Content) == "" {
		return core.Document{}, fmt.Errorf("%w: %q", ErrEmptyContent, src.Title)
	}
	now := i.now()
	d := core.NewDocument(src.Title, src.Content, now)
	lang := src.Language
	if lang == "" {
		lang = i.language
	}
	d = d.WithLanguage(lang, now)
	if i.folder != "" {
		d = d.WithFolderPath(i.folder, now)
	}
	for _, tag := range append(append([]string(nil), i.tags...), src.Tags...) {
		d = d.AddTag(tag, now)
	}
	if i.keyWords > 0 {
		sentences := Sentences(src.Content)
		for _, w := range KeyWords(src.Content, i.keyWords, i.minLength) {
			d = d.AddWord(w, "", contextFor(sentences, w), now)
		}
	}
	// Never saved, so still the first version.
	d.Version = 1
	d.UpdatedAt = d.CreatedAt
	return d, d.Validate()
}

// Import prepares every source on the pool and saves the ones that are
// valid, in input order. Sources that fail are reported in the joined
// error; the documents saved so far are returned alongside it.
func (i *Importer) Import(ctx context.Context, sources ...Source) ([]core.Document, error) {
	docs := make([]core.Document, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for n, src := range sources {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			docs[n], errs[n] = i.Prepare(src)
		}
		if err := i.pool.Submit(task); err != nil {
			errs[n] = err
			wg.Done()
		}
	}
	wg.Wait()

	saved := make([]core.Document, 0, len(sources))
	for n, d := range docs {
		if errs[n] != nil {
			i.logger.Warn("skipping source", "title", sources[n].Title, "err", errs[n])
			continue
		}
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		if err := i.store.SaveDocument(ctx, d); err != nil {
			errs[n] = err
			continue
		}
		saved = append(saved, d)
	}
	i.logger.Info("import complete", "sources", len(sources), "saved", len(saved))
	return saved, errors.Join(errs...)
}

// ImportFiles reads each path and imports it.
func (i *Importer) ImportFiles(ctx context.Context, paths ...string) ([]core.Document, error) {
	var sources []Source
	var errs []error
	for _, p := range paths {
		src, err := SourceFromFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sources = append(sources, src)
	}
	docs, err := i.Import(ctx, sources...)
	return docs, errors.Join(append(errs, err)...)
}
