package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/dictionary"
	"github.com/poiesic/wordweb/manager"
)

// Config holds the knobs of an enrichment run.
type Config struct {
	// BatchSize is the number of words looked up before their results are saved
	BatchSize int

	// Workers bounds the number of concurrent lookups
	Workers int

	// ReportInterval is how often to report progress (number of words)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per word
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      25,
		Workers:        4,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     time.Second,
	}
}

// Result counts the outcome of a run.
type Result struct {
	Candidates int `json:"candidates"`
	Enriched   int `json:"enriched"`
	NotFound   int `json:"notFound"`
	Failed     int `json:"failed"`
}

// Enricher fills missing definitions of the active vocabulary.
type Enricher struct {
	mgr      *manager.Manager
	definer  dictionary.Definer
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// New creates an Enricher. A nil config means DefaultConfig; progress may
// be nil.
func New(mgr *manager.Manager, definer dictionary.Definer, config *Config, progress io.Writer) (*Enricher, error) {
	if mgr == nil {
		return nil, ErrManagerRequired
	}
	if definer == nil {
		return nil, ErrDefinerRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize < 1 || config.Workers < 1 {
		return nil, fmt.Errorf("enrich: batch size and workers must be positive")
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Enricher{
		mgr:      mgr,
		definer:  definer,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "enricher"),
	}, nil
}

// NeedsEnrichment reports whether v has neither a definition nor a
// translation.
func NeedsEnrichment(v core.Vocabulary) bool {
	return v.IsActive && v.Definition == "" && v.Translation == ""
}

type lookup struct {
	word  core.Vocabulary
	entry *dictionary.Entry
	err   error
}

// Run looks up every word that needs enrichment. Words the dictionary does
// not know and words whose lookups keep failing are counted and skipped;
// only storage errors and cancellation abort the run.
func (e *Enricher) Run(ctx context.Context) (Result, error) {
	all, err := e.mgr.GetAllVocabulary(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list vocabulary: %w", err)
	}
	var pending []core.Vocabulary
	for _, v := range all {
		if NeedsEnrichment(v) {
			pending = append(pending, v)
		}
	}

	res := Result{Candidates: len(pending)}
	if len(pending) == 0 {
		fmt.Fprintf(e.progress, "No words need enrichment\n")
		return res, nil
	}
	fmt.Fprintf(e.progress, "Enriching %d words (batch size: %d)\n", len(pending), e.config.BatchSize)

	pool, err := ants.NewPool(e.config.Workers)
	if err != nil {
		return res, err
	}
	defer pool.Release()

	tracker := NewProgress(e.progress, len(pending), e.config.ReportInterval)
	tracker.Start()

	for start := 0; start < len(pending); start += e.config.BatchSize {
		batch := pending[start:min(start+e.config.BatchSize, len(pending))]
		results := e.lookupBatch(ctx, pool, batch, tracker)
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.saveBatch(ctx, results, &res); err != nil {
			return res, err
		}
	}

	tracker.Finish()
	e.logger.Info("enrichment complete", "candidates", res.Candidates, "enriched", res.Enriched,
		"notFound", res.NotFound, "failed", res.Failed, "elapsed", tracker.Elapsed())
	return res, nil
}

func (e *Enricher) lookupBatch(ctx context.Context, pool *ants.Pool, batch []core.Vocabulary, tracker *Progress) []lookup {
	results := make([]lookup, len(batch))
	var wg sync.WaitGroup
	for i, v := range batch {
		results[i].word = v
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer tracker.Add(1)
			results[i].entry, results[i].err = e.define(ctx, v)
		}
		if err := pool.Submit(task); err != nil {
			results[i].err = err
			wg.Done()
		}
	}
	wg.Wait()
	return results
}

func (e *Enricher) define(ctx context.Context, v core.Vocabulary) (*dictionary.Entry, error) {
	var entry *dictionary.Entry
	err := RetryWithBackoff(ctx, func() error {
		var err error
		entry, err = e.definer.Define(ctx, v.Word, v.Language)
		if errors.Is(err, dictionary.ErrNoDefinition) {
			return Permanent(err)
		}
		return err
	}, e.config.MaxRetries, e.config.RetryDelay)
	return entry, err
}

func (e *Enricher) saveBatch(ctx context.Context, results []lookup, res *Result) error {
	for _, r := range results {
		switch {
		case errors.Is(r.err, dictionary.ErrNoDefinition):
			res.NotFound++
			continue
		case r.err != nil:
			e.logger.Warn("lookup failed", "word", r.word.Word, "err", r.err)
			res.Failed++
			continue
		case r.entry.Empty():
			res.NotFound++
			continue
		}

		entry := r.entry
		_, err := e.mgr.UpdateVocabulary(ctx, r.word.ID, func(v core.Vocabulary, now time.Time) (core.Vocabulary, error) {
			return v.WithDefinition(entry.Definition, entry.Translation, entry.PartOfSpeech, entry.Pronunciation, now), nil
		})
		if err != nil {
			return fmt.Errorf("failed to save %q: %w", r.word.Word, err)
		}
		res.Enriched++
	}
	return nil
}
