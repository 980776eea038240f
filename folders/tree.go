package folders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/storage"
)

// StateID is the id of the folders record.
const StateID = "state"

// state is the persisted form of the tree. Documents is keyed by folder
// path and always has an entry for the root.
type state struct {
	Folders   map[string]core.Folder `json:"folders"`
	Documents map[string][]string    `json:"documents"`
}

func newState() state {
	return state{
		Folders:   map[string]core.Folder{},
		Documents: map[string][]string{"": {}},
	}
}

func (s state) clone() state {
	out := state{
		Folders:   maps.Clone(s.Folders),
		Documents: make(map[string][]string, len(s.Documents)),
	}
	for path, ids := range s.Documents {
		out.Documents[path] = slices.Clone(ids)
	}
	return out
}

func (s state) exists(path string) bool {
	if path == "" {
		return true
	}
	_, ok := s.Folders[path]
	return ok
}

// recount sets every folder's DocumentCount from its document list.
func (s state) recount() {
	for path, f := range s.Folders {
		f.DocumentCount = len(s.Documents[path])
		s.Folders[path] = f
	}
}

// unfile removes id from every folder and reports the folder it was in.
func (s state) unfile(id string) (string, bool) {
	for path, ids := range s.Documents {
		if i := slices.Index(ids, id); i >= 0 {
			s.Documents[path] = slices.Delete(ids, i, i+1)
			return path, true
		}
	}
	return "", false
}

// Info is a folder together with the documents filed in it.
type Info struct {
	core.Folder
	Documents []string `json:"documents"`
}

// Tree is the folder hierarchy of one store. It is safe for concurrent use.
type Tree struct {
	adapter *storage.Adapter
	now     func() time.Time
	logger  *slog.Logger

	mu sync.RWMutex
	st state
}

// Option configures a Tree.
type Option func(*Tree) error

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tree) error {
		t.now = now
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) error {
		t.logger = logger
		return nil
	}
}

// Open loads the tree stored in adapter, starting empty when none exists.
func Open(ctx context.Context, adapter *storage.Adapter, opts ...Option) (*Tree, error) {
	if adapter == nil {
		return nil, errors.New("storage adapter required")
	}
	t := &Tree{
		adapter: adapter,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if err := t.Reload(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload replaces the in-memory tree with the stored one.
func (t *Tree) Reload(ctx context.Context) error {
	st := newState()
	err := t.adapter.LoadInto(ctx, storage.CollectionFolders, StateID, &st)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if st.Folders == nil {
		st.Folders = map[string]core.Folder{}
	}
	if st.Documents == nil {
		st.Documents = map[string][]string{}
	}
	if _, ok := st.Documents[""]; !ok {
		st.Documents[""] = []string{}
	}
	st.recount()

	t.mu.Lock()
	t.st = st
	t.mu.Unlock()
	return nil
}

// mutate applies fn to a copy of the tree, saves it and then adopts it. When
// fn or the save fails the tree is unchanged.
func (t *Tree) mutate(ctx context.Context, fn func(st state) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	next.recount()
	if err := t.adapter.Save(ctx, storage.CollectionFolders, StateID, next); err != nil {
		t.logger.Error("failed to save folders", "err", err)
		return err
	}
	t.st = next
	return nil
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, core.PathSeparator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

func notFound(path string) error {
	return fmt.Errorf("%w: %q", ErrFolderNotFound, path)
}

// Create adds a folder called name under parent.
func (t *Tree) Create(ctx context.Context, name, parent string) (core.Folder, error) {
	name, err := validName(name)
	if err != nil {
		return core.Folder{}, err
	}
	var created core.Folder
	err = t.mutate(ctx, func(st state) error {
		if !st.exists(parent) {
			return notFound(parent)
		}
		path := core.JoinPath(parent, name)
		if st.exists(path) {
			return fmt.Errorf("%w: %q", ErrFolderExists, path)
		}
		created = core.Folder{
			Name:       name,
			Path:       path,
			ParentPath: parent,
			CreatedAt:  t.now().UTC(),
		}
		st.Folders[path] = created
		st.Documents[path] = []string{}
		return nil
	})
	if err != nil {
		return core.Folder{}, err
	}
	t.logger.Debug("folder created", "path", created.Path)
	return created, nil
}

// Rename gives the folder at path a new name. The folder and everything
// beneath it move to the new path along with their documents.
func (t *Tree) Rename(ctx context.Context, path, newName string) (core.Folder, error) {
	if path == "" {
		return core.Folder{}, ErrRootFolder
	}
	newName, err := validName(newName)
	if err != nil {
		return core.Folder{}, err
	}
	var renamed core.Folder
	err = t.mutate(ctx, func(st state) error {
		f, ok := st.Folders[path]
		if !ok {
			return notFound(path)
		}
		newPath := core.JoinPath(f.ParentPath, newName)
		if newPath == path {
			renamed = f
			return nil
		}
		if st.exists(newPath) {
			return fmt.Errorf("%w: %q", ErrFolderExists, newPath)
		}
		for old, folder := range maps.Clone(st.Folders) {
			if !core.IsWithin(old, path) {
				continue
			}
			moved := newPath + strings.TrimPrefix(old, path)
			folder.Path = moved
			if old == path {
				folder.Name = newName
			} else {
				folder.ParentPath = newPath + strings.TrimPrefix(folder.ParentPath, path)
			}
			delete(st.Folders, old)
			st.Folders[moved] = folder
			st.Documents[moved] = st.Documents[old]
			delete(st.Documents, old)
		}
		renamed = st.Folders[newPath]
		return nil
	})
	if err != nil {
		return core.Folder{}, err
	}
	return renamed, nil
}

// Delete removes the folder at path and every folder beneath it. It returns
// the ids of the documents they held.
func (t *Tree) Delete(ctx context.Context, path string) ([]string, error) {
	if path == "" {
		return nil, ErrRootFolder
	}
	var held []string
	err := t.mutate(ctx, func(st state) error {
		if !st.exists(path) {
			return notFound(path)
		}
		for _, p := range slices.Sorted(maps.Keys(st.Folders)) {
			if !core.IsWithin(p, path) {
				continue
			}
			held = append(held, st.Documents[p]...)
			delete(st.Folders, p)
			delete(st.Documents, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.logger.Debug("folder deleted", "path", path, "documents", len(held))
	return held, nil
}

// AddDocument files docID in path, removing it from any other folder.
// Adding a document to the folder it is already in does nothing.
func (t *Tree) AddDocument(ctx context.Context, path, docID string) error {
	if docID == "" {
		return ErrEmptyDocumentID
	}
	if current, ok := t.FolderOf(docID); ok && current == path {
		return nil
	}
	return t.mutate(ctx, func(st state) error {
		if !st.exists(path) {
			return notFound(path)
		}
		st.unfile(docID)
		st.Documents[path] = append(st.Documents[path], docID)
		return nil
	})
}

// RemoveDocument takes docID out of path.
func (t *Tree) RemoveDocument(ctx context.Context, path, docID string) error {
	if docID == "" {
		return ErrEmptyDocumentID
	}
	return t.mutate(ctx, func(st state) error {
		return remove(st, path, docID)
	})
}

func remove(st state, path, docID string) error {
	ids := st.Documents[path]
	i := slices.Index(ids, docID)
	if i < 0 {
		return fmt.Errorf("%w: %s in %q", ErrDocumentNotInFolder, docID, path)
	}
	st.Documents[path] = slices.Delete(ids, i, i+1)
	return nil
}

// MoveDocument moves docID from one folder to another in a single save.
func (t *Tree) MoveDocument(ctx context.Context, docID, from, to string) error {
	if docID == "" {
		return ErrEmptyDocumentID
	}
	return t.mutate(ctx, func(st state) error {
		if !st.exists(to) {
			return notFound(to)
		}
		if err := remove(st, from, docID); err != nil {
			return err
		}
		st.Documents[to] = append(st.Documents[to], docID)
		return nil
	})
}

// Unfile removes docID from whichever folder holds it. It reports whether
// the document was filed anywhere.
func (t *Tree) Unfile(ctx context.Context, docID string) (bool, error) {
	if _, ok := t.FolderOf(docID); !ok {
		return false, nil
	}
	err := t.mutate(ctx, func(st state) error {
		st.unfile(docID)
		return nil
	})
	return err == nil, err
}

// DocumentsIn returns the ids filed directly in path.
func (t *Tree) DocumentsIn(path string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.st.Documents[path])
}

// FolderOf returns the path of the folder holding docID.
func (t *Tree) FolderOf(docID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for path, ids := range t.st.Documents {
		if slices.Contains(ids, docID) {
			return path, true
		}
	}
	return "", false
}

// Exists reports whether path names a folder. The root always exists.
func (t *Tree) Exists(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.st.exists(path)
}

// Info returns the folder at path with its documents.
func (t *Tree) Info(path string) (Info, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.st.Folders[path]
	if !ok {
		return Info{}, notFound(path)
	}
	return Info{Folder: f, Documents: slices.Clone(t.st.Documents[path])}, nil
}

// Subfolders returns the direct children of path ordered by name.
func (t *Tree) Subfolders(path string) []core.Folder {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []core.Folder
	for _, f := range t.st.Folders {
		if f.ParentPath == path {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b core.Folder) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// All returns every folder ordered by path.
func (t *Tree) All() []core.Folder {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]core.Folder, 0, len(t.st.Folders))
	for _, p := range slices.Sorted(maps.Keys(t.st.Folders)) {
		out = append(out, t.st.Folders[p])
	}
	return out
}

// Distribution returns a copy of the path to document-ids mapping.
func (t *Tree) Distribution() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.st.clone().Documents
}

// Check verifies that every folder's count matches its contents, that
// every parent exists and that no document is filed twice.
func (t *Tree) Check() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var errs []error
	for path, f := range t.st.Folders {
		if n := len(t.st.Documents[path]); f.DocumentCount != n {
			errs = append(errs, fmt.Errorf("%w: %q counts %d documents, holds %d", ErrInconsistent, path, f.DocumentCount, n))
		}
		if !t.st.exists(f.ParentPath) {
			errs = append(errs, fmt.Errorf("%w: %q has no parent %q", ErrInconsistent, path, f.ParentPath))
		}
	}
	seen := map[string]string{}
	for path, ids := range t.st.Documents {
		if !t.st.exists(path) {
			errs = append(errs, fmt.Errorf("%w: documents filed in missing folder %q", ErrInconsistent, path))
		}
		for _, id := range ids {
			if other, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("%w: %s filed in %q and %q", ErrInconsistent, id, other, path))
			}
			seen[id] = path
		}
	}
	return errors.Join(errs...)
}
