package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/storage"
)

// LatestVersion is the schema version written by this build.
const LatestVersion = "1.0.1"

// DefaultSteps returns the built-in migration steps.
func DefaultSteps() []Step {
	return []Step{learningFields{}}
}

// learningFields adds weekly goals and achievements to users, reading
// estimates to documents and scheduling fields to vocabulary.
type learningFields struct{}

var (
	_ Step      = learningFields{}
	_ Validator = learningFields{}
)

func (learningFields) Version() string { return "1.0.1" }

func (learningFields) Up(ctx context.Context, a *storage.Adapter) error {
	goal := core.DefaultWeeklyGoal()
	err := rewrite(ctx, a, storage.CollectionUser, func(m map[string]any) bool {
		stats := child(m, "statistics")
		changed := setDefault(stats, "weeklyGoal", map[string]any{
			"documentsToRead":   goal.DocumentsToRead,
			"wordsToLearn":      goal.WordsToLearn,
			"readingTimeTarget": goal.ReadingTimeTarget,
		})
		return setDefault(stats, "achievements", []any{}) || changed
	})
	if err != nil {
		return err
	}

	err = rewrite(ctx, a, storage.CollectionDocument, func(m map[string]any) bool {
		meta := child(m, "metadata")
		changed := setDefault(meta, "readingSpeed", 0)
		words, _ := number(m["wordCount"])
		return setDefault(meta, "estimatedReadingTime", int(math.Ceil(words/core.WordsPerMinute))) || changed
	})
	if err != nil {
		return err
	}

	return rewrite(ctx, a, storage.CollectionVocabulary, func(m map[string]any) bool {
		changed := setDefault(m, "reviewAlgorithm", core.DefaultReviewAlgorithm)
		changed = setDefault(m, "retentionRate", core.DefaultRetentionRate) || changed
		if next, ok := m["nextReviewAt"]; ok && next != nil {
			return changed
		}
		last, ok := m["lastReviewAt"].(string)
		if !ok {
			return changed
		}
		at, err := time.Parse(time.RFC3339Nano, last)
		if err != nil {
			return changed
		}
		m["nextReviewAt"] = at.Add(core.FirstReviewInterval).UTC().Format(time.RFC3339Nano)
		return true
	})
}

func (learningFields) Down(ctx context.Context, a *storage.Adapter) error {
	err := rewrite(ctx, a, storage.CollectionUser, func(m map[string]any) bool {
		stats, ok := m["statistics"].(map[string]any)
		return ok && remove(stats, "weeklyGoal", "achievements")
	})
	if err != nil {
		return err
	}
	err = rewrite(ctx, a, storage.CollectionDocument, func(m map[string]any) bool {
		meta, ok := m["metadata"].(map[string]any)
		return ok && remove(meta, "readingSpeed", "estimatedReadingTime")
	})
	if err != nil {
		return err
	}
	return rewrite(ctx, a, storage.CollectionVocabulary, func(m map[string]any) bool {
		return remove(m, "reviewAlgorithm", "retentionRate")
	})
}

func (learningFields) Validate(ctx context.Context, a *storage.Adapter) error {
	if err := checkAll(ctx, a, storage.CollectionUser, func(m map[string]any) bool {
		stats, ok := m["statistics"].(map[string]any)
		return ok && stats["weeklyGoal"] != nil
	}); err != nil {
		return err
	}
	return checkAll(ctx, a, storage.CollectionVocabulary, func(m map[string]any) bool {
		return m["reviewAlgorithm"] != nil
	})
}

// rewrite applies fn to every JSON object in collection and saves those it
// reports as changed. Values that are not objects are left alone.
func rewrite(ctx context.Context, a *storage.Adapter, collection string, fn func(map[string]any) bool) error {
	all, err := a.LoadAll(ctx, collection)
	if err != nil {
		return err
	}
	for id, raw := range all {
		m, ok := decodeObject(raw)
		if !ok || !fn(m) {
			continue
		}
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", collection, id, err)
		}
		if err := a.SaveRaw(ctx, collection, id, payload); err != nil {
			return fmt.Errorf("%s/%s: %w", collection, id, err)
		}
	}
	return nil
}

// checkAll returns an error naming the first object in collection that
// fails check.
func checkAll(ctx context.Context, a *storage.Adapter, collection string, check func(map[string]any) bool) error {
	all, err := a.LoadAll(ctx, collection)
	if err != nil {
		return err
	}
	for id, raw := range all {
		if m, ok := decodeObject(raw); ok && !check(m) {
			return fmt.Errorf("%s/%s is missing required fields", collection, id)
		}
	}
	return nil
}

func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// child returns m[key] as an object, creating it when absent.
func child(m map[string]any, key string) map[string]any {
	if c, ok := m[key].(map[string]any); ok {
		return c
	}
	c := map[string]any{}
	m[key] = c
	return c
}

func setDefault(m map[string]any, key string, value any) bool {
	if v, ok := m[key]; ok && v != nil {
		return false
	}
	m[key] = value
	return true
}

func remove(m map[string]any, keys ...string) bool {
	changed := false
	for _, k := range keys {
		if _, ok := m[k]; ok {
			delete(m, k)
			changed = true
		}
	}
	return changed
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}
