package main

import (
	"context"
	"fmt"

	"github.com/poiesic/wordweb"
	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/enrich"
	"github.com/poiesic/wordweb/manager"
	"github.com/urfave/cli/v2"
)

func printWords(c *cli.Context, words []core.Vocabulary) {
	for _, v := range words {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\tmastery %d\tdifficulty %d\n",
			v.ID, v.Word, v.Translation, v.MasteryLevel, v.Difficulty)
	}
}

func wordsCommand() *cli.Command {
	return &cli.Command{
		Name:    "words",
		Aliases: []string{"vocabulary"},
		Usage:   "Manage the vocabulary list",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a word",
				ArgsUsage: "WORD",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "definition"},
					&cli.StringFlag{Name: "translation"},
					&cli.StringFlag{Name: "part-of-speech"},
					&cli.StringFlag{Name: "pronunciation"},
					&cli.StringFlag{Name: "language", Value: "English"},
					&cli.IntFlag{Name: "difficulty", Value: 1, Usage: "1 (easy) to 5 (hard)"},
					&cli.StringFlag{Name: "context", Usage: "Example sentence"},
					&cli.StringFlag{Name: "tags", Usage: "Comma separated tags"},
					&cli.StringFlag{Name: "document", Usage: "ID of the document the word came from"},
				},
				Action: func(c *cli.Context) error {
					word, err := argument(c, 0, "WORD")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						now := app.Manager().Now()
						v := core.NewVocabulary(word, now).
							WithDefinition(c.String("definition"), c.String("translation"), c.String("part-of-speech"), c.String("pronunciation"), now).
							WithLanguage(c.String("language"), now)
						if c.Int("difficulty") != v.Difficulty {
							if v, err = v.WithDifficulty(c.Int("difficulty"), now); err != nil {
								return err
							}
						}
						if sentence := c.String("context"); sentence != "" {
							v, _ = v.AddContext(sentence, "", now)
						}
						for _, tag := range splitList(c.String("tags")) {
							v = v.AddTag(tag, now)
						}
						if doc := c.String("document"); doc != "" {
							if _, err := app.Manager().GetDocument(ctx, doc); err != nil {
								return err
							}
							v = v.WithSourceDocument(doc, now)
						}
						if err := app.Manager().SaveVocabulary(ctx, v); err != nil {
							return err
						}
						if _, err := app.SyncStatistics(ctx); err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, v.ID)
						return nil
					})
				},
			},
			{
				Name:  "list",
				Usage: "List active words",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Include deleted words"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						list := app.Manager().GetAllVocabulary
						if c.Bool("all") {
							list = app.Manager().ListVocabulary
						}
						words, err := list(ctx)
						if err != nil {
							return err
						}
						printWords(c, words)
						return nil
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Show a word with its review statistics",
				ArgsUsage: "ID|WORD",
				Action: func(c *cli.Context) error {
					key, err := argument(c, 0, "ID|WORD")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						v, err := findWord(ctx, app.Manager(), key)
						if err != nil {
							return err
						}
						now := app.Manager().Now()
						return printJSON(c.App.Writer, struct {
							core.VocabularySummary
							Stats core.ReviewStats `json:"stats"`
						}{v.Summary(now), v.ReviewStats(now)})
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a word from the list",
				ArgsUsage: "ID|WORD",
				Action: func(c *cli.Context) error {
					key, err := argument(c, 0, "ID|WORD")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						v, err := findWord(ctx, app.Manager(), key)
						if err != nil {
							return err
						}
						if _, err := app.Manager().DeleteVocabulary(ctx, v.ID); err != nil {
							return err
						}
						_, err = app.SyncStatistics(ctx)
						return err
					})
				},
			},
		},
	}
}

// findWord looks key up as an id, then as an active word.
func findWord(ctx context.Context, m *manager.Manager, key string) (core.Vocabulary, error) {
	v, err := m.GetVocabulary(ctx, key)
	if err == nil {
		return v, nil
	}
	return m.FindVocabularyByWord(ctx, key)
}

func reviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "Spaced-repetition reviews",
		Subcommands: []*cli.Command{
			{
				Name:  "due",
				Usage: "List the words due for review",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: manager.DefaultReviewLimit},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						words, err := app.Manager().GetVocabularyForReview(ctx, c.Int("limit"))
						if err != nil {
							return err
						}
						printWords(c, words)
						return nil
					})
				},
			},
			{
				Name:      "record",
				Usage:     "Record the outcome of a review",
				ArgsUsage: "ID|WORD",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "wrong", Usage: "The answer was wrong"},
					&cli.IntFlag{Name: "seconds", Usage: "Time spent on the review"},
					&cli.StringFlag{Name: "type", Value: string(core.ReviewManual), Usage: "manual, quiz or auto"},
				},
				Action: func(c *cli.Context) error {
					key, err := argument(c, 0, "ID|WORD")
					if err != nil {
						return err
					}
					reviewType, err := core.ParseReviewType(c.String("type"))
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						v, err := findWord(ctx, app.Manager(), key)
						if err != nil {
							return err
						}
						v, err = app.Manager().ReviewVocabulary(ctx, v.ID, !c.Bool("wrong"), c.Int("seconds"), reviewType)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, v.Summary(app.Manager().Now()))
					})
				},
			},
		},
	}
}

func defineCommand() *cli.Command {
	return &cli.Command{
		Name:      "define",
		Usage:     "Look a word up in the dictionary service",
		ArgsUsage: "WORD",
		Flags: append(dictionaryFlags(),
			&cli.StringFlag{Name: "language", Value: "English", Usage: "Language of the word"},
		),
		Action: func(c *cli.Context) error {
			word, err := argument(c, 0, "WORD")
			if err != nil {
				return err
			}
			s, err := loadSettings(c)
			if err != nil {
				return err
			}
			definer, err := newDefiner(s.dictionary)
			if err != nil {
				return err
			}
			entry, err := definer.Define(c.Context, word, c.String("language"))
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, entry)
		},
	}
}

func enrichCommand() *cli.Command {
	defaults := enrich.DefaultConfig()
	return &cli.Command{
		Name:  "enrich",
		Usage: "Fill in missing definitions from the dictionary service",
		Flags: append(dictionaryFlags(),
			&cli.IntFlag{Name: "batch-size", Usage: "Words looked up before saving", Value: defaults.BatchSize},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent lookups", Value: defaults.Workers},
			&cli.IntFlag{Name: "report-interval", Usage: "Report progress every N words", Value: defaults.ReportInterval},
			&cli.IntFlag{Name: "max-retries", Usage: "Maximum attempts per word", Value: defaults.MaxRetries},
			&cli.DurationFlag{Name: "retry-delay", Usage: "Base delay for exponential backoff", Value: defaults.RetryDelay},
		),
		Action: func(c *cli.Context) error {
			config := &enrich.Config{
				BatchSize:      c.Int("batch-size"),
				Workers:        c.Int("workers"),
				ReportInterval: c.Int("report-interval"),
				MaxRetries:     c.Int("max-retries"),
				RetryDelay:     c.Duration("retry-delay"),
			}
			if config.MaxRetries <= 0 {
				return fmt.Errorf("max-retries must be greater than 0")
			}
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				s, err := resolveSettings(c)
				if err != nil {
					return err
				}
				definer, err := newDefiner(s.dictionary)
				if err != nil {
					return err
				}
				e, err := enrich.New(app.Manager(), definer, config, c.App.ErrWriter)
				if err != nil {
					return err
				}
				res, err := e.Run(ctx)
				if err != nil {
					return fmt.Errorf("enrichment failed: %w", err)
				}
				return printJSON(c.App.Writer, res)
			})
		},
	}
}
