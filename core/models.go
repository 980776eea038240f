package core

import (
	"encoding/hex"
	"slices"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Record carries the audit fields shared by every persisted entity.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"` // mutation counter, not enforced
}

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return uuid.NewString()
}

// NewRecord returns audit fields for a record created at now.
func NewRecord(now time.Time) Record {
	now = now.UTC()
	return Record{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// stamped returns a copy of r marking a mutation at now.
func (r Record) stamped(now time.Time) Record {
	r.UpdatedAt = now.UTC()
	r.Version++
	return r
}

// Fingerprint returns a hex BLAKE2b-256 digest of data.
func Fingerprint(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func timePtr(t time.Time) *time.Time {
	t = t.UTC()
	return &t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// addUnique appends s when it is non-empty and not present. The bool reports
// whether the slice changed.
func addUnique(list []string, s string) ([]string, bool) {
	if s == "" || slices.Contains(list, s) {
		return list, false
	}
	return append(slices.Clone(list), s), true
}

func removeValue(list []string, s string) ([]string, bool) {
	i := slices.Index(list, s)
	if i < 0 {
		return list, false
	}
	return slices.Delete(slices.Clone(list), i, i+1), true
}
