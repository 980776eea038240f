package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/wordweb"
	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/manager"
	"github.com/poiesic/wordweb/migrate"
	"github.com/urfave/cli/v2"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show library and vocabulary statistics",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				stats, err := app.Manager().GetStatistics(ctx)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, stats)
			})
		},
	}
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Write a backup file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (default wordweb-backup-<time>.json)"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				b, err := app.Backup(ctx)
				if err != nil {
					return err
				}
				path := c.String("out")
				if path == "" {
					path = manager.BackupFileName(b.Timestamp)
				}
				if err := writeFile(path, func(f *os.File) error { return manager.WriteBackup(f, b) }); err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, path)
				return nil
			})
		},
	}
}

func restoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Replace all data with a backup file",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			path, err := argument(c, 0, "FILE")
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			b, err := manager.ReadBackup(f)
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				n, err := app.Restore(ctx, b)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "restored %d records from %s\n", n, path)
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write every stored record as raw JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (default wordweb-export-<millis>.json)"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				exp, err := app.Adapter().ExportAll(ctx)
				if err != nil {
					return err
				}
				path := c.String("out")
				if path == "" {
					path = manager.ExportFileName(exp.ExportedAt)
				}
				if err := writeFile(path, func(f *os.File) error { return printJSON(f, exp) }); err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, path)
				return nil
			})
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Upgrade the stored schema",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Target version", Value: migrate.LatestVersion},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				if err := app.Migrations().MigrateTo(ctx, c.String("to")); err != nil {
					return err
				}
				return printStatus(ctx, c, app, c.String("to"))
			})
		},
	}
}

func rollbackCommand() *cli.Command {
	return &cli.Command{
		Name:  "rollback",
		Usage: "Downgrade the stored schema",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Target version", Required: true},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				if err := app.Migrations().RollbackTo(ctx, c.String("to")); err != nil {
					return err
				}
				return printStatus(ctx, c, app, c.String("to"))
			})
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the schema version and pending migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Target version", Value: migrate.LatestVersion},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				return printStatus(ctx, c, app, c.String("to"))
			})
		},
	}
}

func printStatus(ctx context.Context, c *cli.Context, app *wordweb.App, target string) error {
	st, err := app.Migrations().Status(ctx, target)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, st)
}

func snapshotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshots",
		Usage: "Manage migration snapshots",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List snapshots, newest first",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						snaps, err := app.Migrations().ListSnapshots(ctx)
						if err != nil {
							return err
						}
						for _, s := range snaps {
							state := "ok"
							if s.Corrupt {
								state = "corrupt"
							}
							fmt.Fprintf(c.App.Writer, "%s\t%s\t%d entries\t%s\t%s\n",
								s.ID, s.Version, s.Entries, humanize.Bytes(uint64(s.Bytes)), state)
						}
						return nil
					})
				},
			},
			{
				Name:  "prune",
				Usage: "Delete all but the newest snapshots",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "keep", Value: migrate.DefaultSnapshotRetention},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						n, err := app.Migrations().PruneSnapshots(ctx, c.Int("keep"))
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "removed %d snapshots\n", n)
						return nil
					})
				},
			},
			{
				Name:      "restore",
				Usage:     "Replace all data with a snapshot",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := argument(c, 0, "ID")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						return app.Migrations().RestoreSnapshot(ctx, id)
					})
				},
			},
		},
	}
}

func usageCommand() *cli.Command {
	return &cli.Command{
		Name:  "usage",
		Usage: "Show how much space each collection uses",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				u, err := app.Adapter().UsageInfo(ctx)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, u)
			})
		},
	}
}

func prefsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Show or change preferences",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the current preferences",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						return printJSON(c.App.Writer, app.User().Preferences)
					})
				},
			},
			{
				Name:      "set",
				Usage:     "Change one preference",
				ArgsUsage: "KEY VALUE",
				Action: func(c *cli.Context) error {
					key, err := argument(c, 0, "KEY")
					if err != nil {
						return err
					}
					value, err := argument(c, 1, "VALUE")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						u, err := app.SetPreference(ctx, key, value)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, u.Preferences)
					})
				},
			},
		},
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Show the current user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Change the display name"},
			&cli.StringFlag{Name: "email", Usage: "Change the email address"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				if c.IsSet("name") || c.IsSet("email") {
					u := app.User()
					name, email := u.DisplayName, u.Email
					if c.IsSet("name") {
						name = c.String("name")
					}
					if c.IsSet("email") {
						email = c.String("email")
					}
					if _, err := app.UpdateUser(ctx, func(u core.User, now time.Time) (core.User, error) {
						return u.WithProfile(name, u.Username, email, now), nil
					}); err != nil {
						return err
					}
				}
				u, err := app.SyncStatistics(ctx)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, struct {
					core.DisplayInfo
					Statistics core.Statistics `json:"statistics"`
				}{u.DisplayInfo(), u.Statistics})
			})
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every record",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Usage: "Confirm deletion"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return errors.New("refusing to clear without --yes")
			}
			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				n, err := app.ClearAllData(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "removed %d records\n", n)
				return nil
			})
		},
	}
}

func searchFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "fields", Usage: "Comma separated fields to match"},
		&cli.StringFlag{Name: "language"},
		&cli.StringFlag{Name: "sort", Usage: "Field to sort by"},
		&cli.StringFlag{Name: "order", Usage: "asc or desc"},
		&cli.IntFlag{Name: "limit", Value: manager.DefaultSearchLimit},
	}, extra...)
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search documents or words",
		Subcommands: []*cli.Command{
			{
				Name:      "docs",
				Usage:     "Search documents",
				ArgsUsage: "[QUERY]",
				Flags: searchFlags(
					&cli.StringFlag{Name: "folder", Usage: "Keep only documents filed at this path (/ for the root)"},
				),
				Action: func(c *cli.Context) error {
					opts := manager.DocumentSearchOptions{
						Fields:    splitList(c.String("fields")),
						Language:  c.String("language"),
						SortBy:    c.String("sort"),
						SortOrder: c.String("order"),
						Limit:     c.Int("limit"),
					}
					if c.IsSet("folder") {
						folder := strings.Trim(c.String("folder"), "/")
						opts.FolderPath = &folder
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						docs, err := app.Manager().SearchDocuments(ctx, c.Args().First(), opts)
						if err != nil {
							return err
						}
						for _, d := range docs {
							fmt.Fprintf(c.App.Writer, "%s\t%s\t/%s\n", d.ID, d.Title, d.FolderPath)
						}
						return nil
					})
				},
			},
			{
				Name:      "words",
				Usage:     "Search the vocabulary",
				ArgsUsage: "[QUERY]",
				Flags: searchFlags(
					&cli.IntFlag{Name: "difficulty", Usage: "Keep only words of this difficulty"},
					&cli.IntFlag{Name: "min-mastery", Usage: "Keep only words at or above this mastery"},
				),
				Action: func(c *cli.Context) error {
					opts := manager.VocabularySearchOptions{
						Fields:     splitList(c.String("fields")),
						Language:   c.String("language"),
						Difficulty: c.Int("difficulty"),
						MinMastery: c.Int("min-mastery"),
						SortBy:     c.String("sort"),
						SortOrder:  c.String("order"),
						Limit:      c.Int("limit"),
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						words, err := app.Manager().SearchVocabulary(ctx, c.Args().First(), opts)
						if err != nil {
							return err
						}
						printWords(c, words)
						return nil
					})
				},
			},
		},
	}
}
