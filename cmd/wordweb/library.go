package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/wordweb"
	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/ingest"
	"github.com/urfave/cli/v2"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import text files (or --text) as documents",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Usage: "Import this text instead of files"},
			&cli.StringFlag{Name: "title", Usage: "Title for --text, or for a single file"},
			&cli.StringFlag{Name: "tags", Usage: "Comma separated tags"},
			&cli.StringFlag{Name: "folder", Usage: "Folder path to file the documents in"},
			&cli.StringFlag{Name: "language", Usage: "Document language", Value: "English"},
			&cli.IntFlag{Name: "key-words", Usage: "Capture the N most frequent words of each document"},
			&cli.IntFlag{Name: "min-length", Usage: "Shortest key word captured", Value: 4},
		},
		Action: func(c *cli.Context) error {
			var sources []ingest.Source
			switch {
			case c.String("text") != "":
				sources = append(sources, ingest.Source{Title: c.String("title"), Content: c.String("text")})
			case c.NArg() == 0:
				return errors.New("nothing to import: pass files or --text")
			default:
				for _, path := range c.Args().Slice() {
					src, err := ingest.SourceFromFile(path)
					if err != nil {
						return err
					}
					if c.NArg() == 1 && c.String("title") != "" {
						src.Title = c.String("title")
					}
					sources = append(sources, src)
				}
			}

			return withApp(c, func(ctx context.Context, app *wordweb.App) error {
				imp, err := ingest.New(app,
					ingest.WithLanguage(c.String("language")),
					ingest.WithTags(ingest.ParseTags(c.String("tags"))...),
					ingest.WithFolder(c.String("folder")),
					ingest.WithKeyWords(c.Int("key-words"), c.Int("min-length")),
				)
				if err != nil {
					return err
				}
				defer imp.Release()

				docs, importErr := imp.Import(ctx, sources...)
				for _, d := range docs {
					fmt.Fprintf(c.App.Writer, "%s\t%s\t%d words\n", d.ID, d.Title, d.WordCount)
				}
				if _, err := app.SyncStatistics(ctx); err != nil {
					return errors.Join(importErr, err)
				}
				return importErr
			})
		},
	}
}

func documentAction(fn func(ctx context.Context, app *wordweb.App, id string) (core.Document, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		id, err := argument(c, 0, "ID")
		if err != nil {
			return err
		}
		return withApp(c, func(ctx context.Context, app *wordweb.App) error {
			d, err := fn(ctx, app, id)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, d.Summary())
		})
	}
}

func documentsCommand() *cli.Command {
	return &cli.Command{
		Name:    "docs",
		Aliases: []string{"documents"},
		Usage:   "Manage documents",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List documents",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "status", Usage: "Only documents in these states (active, archived, deleted)"},
				},
				Action: func(c *cli.Context) error {
					var statuses []core.Status
					for _, s := range c.StringSlice("status") {
						st, err := core.ParseStatus(s)
						if err != nil {
							return err
						}
						statuses = append(statuses, st)
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						docs, err := app.Manager().ListDocuments(ctx, statuses...)
						if err != nil {
							return err
						}
						for _, d := range docs {
							fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%d%%\t/%s\n", d.ID, d.Status, d.Title, d.ReadingProgress, d.FolderPath)
						}
						return nil
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Show a document",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := argument(c, 0, "ID")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						d, err := app.Manager().GetDocument(ctx, id)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, struct {
							core.DocumentSummary
							Learning core.LearningStats `json:"learning"`
						}{d.Summary(), d.LearningStats()})
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Move a document to the trash",
				ArgsUsage: "ID",
				Action: documentAction(func(ctx context.Context, app *wordweb.App, id string) (core.Document, error) {
					d, err := app.Manager().DeleteDocument(ctx, id)
					if err == nil {
						_, err = app.SyncStatistics(ctx)
					}
					return d, err
				}),
			},
			{
				Name:      "archive",
				Usage:     "Archive a document",
				ArgsUsage: "ID",
				Action: documentAction(func(ctx context.Context, app *wordweb.App, id string) (core.Document, error) {
					return app.Manager().ArchiveDocument(ctx, id)
				}),
			},
			{
				Name:      "restore",
				Usage:     "Make an archived or deleted document active again",
				ArgsUsage: "ID",
				Action: documentAction(func(ctx context.Context, app *wordweb.App, id string) (core.Document, error) {
					return app.Manager().RestoreDocument(ctx, id)
				}),
			},
			{
				Name:      "purge",
				Usage:     "Remove a document permanently",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := argument(c, 0, "ID")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						return app.PurgeDocument(ctx, id)
					})
				},
			},
			{
				Name:      "move",
				Usage:     "File a document in a folder",
				ArgsUsage: "ID FOLDER",
				Action: func(c *cli.Context) error {
					id, err := argument(c, 0, "ID")
					if err != nil {
						return err
					}
					folder := c.Args().Get(1)
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						d, err := app.MoveDocument(ctx, id, folder)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, d.Summary())
					})
				},
			},
			{
				Name:      "progress",
				Usage:     "Record reading progress (0-100) and optional minutes read",
				ArgsUsage: "ID PERCENT",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "minutes", Usage: "Minutes spent reading"},
				},
				Action: func(c *cli.Context) error {
					id, err := argument(c, 0, "ID")
					if err != nil {
						return err
					}
					var pct int
					if _, err := fmt.Sscan(c.Args().Get(1), &pct); err != nil {
						return fmt.Errorf("invalid percent %q", c.Args().Get(1))
					}
					minutes := c.Int("minutes")
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						d, err := app.Manager().UpdateDocument(ctx, id, func(d core.Document, now time.Time) (core.Document, error) {
							d, err := d.WithReadingProgress(pct, now)
							if err != nil {
								return d, err
							}
							return d.AddReadingTime(minutes, now), nil
						})
						if err != nil {
							return err
						}
						_, err = app.UpdateUser(ctx, func(u core.User, now time.Time) (core.User, error) {
							if minutes > 0 {
								u = u.RecordReading(minutes, now)
							}
							if pct == 100 {
								u = u.RecordDocumentRead(now)
							}
							return u, nil
						})
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, d.Summary())
					})
				},
			},
		},
	}
}

func foldersCommand() *cli.Command {
	return &cli.Command{
		Name:  "folders",
		Usage: "Organize documents into folders",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every folder",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						fmt.Fprintf(c.App.Writer, "/\t%d\n", len(app.Folders().DocumentsIn("")))
						for _, f := range app.Folders().All() {
							fmt.Fprintf(c.App.Writer, "/%s\t%d\n", f.Path, f.DocumentCount)
						}
						return nil
					})
				},
			},
			{
				Name:      "create",
				Usage:     "Create a folder",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "parent", Usage: "Parent folder path (root when empty)"},
				},
				Action: func(c *cli.Context) error {
					name, err := argument(c, 0, "NAME")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						f, err := app.CreateFolder(ctx, name, c.String("parent"))
						if err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, f.Path)
						return nil
					})
				},
			},
			{
				Name:      "rename",
				Usage:     "Rename a folder",
				ArgsUsage: "PATH NAME",
				Action: func(c *cli.Context) error {
					path, err := argument(c, 0, "PATH")
					if err != nil {
						return err
					}
					name, err := argument(c, 1, "NAME")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						f, err := app.RenameFolder(ctx, path, name)
						if err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, f.Path)
						return nil
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a folder, its subfolders and their documents",
				ArgsUsage: "PATH",
				Action: func(c *cli.Context) error {
					path, err := argument(c, 0, "PATH")
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, app *wordweb.App) error {
						n, err := app.DeleteFolder(ctx, path)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "deleted %s and %d documents\n", path, n)
						return nil
					})
				},
			},
		},
	}
}
