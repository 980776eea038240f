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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/wordweb"
	"github.com/poiesic/wordweb/dictionary"
	"github.com/poiesic/wordweb/dictionary/openai"
	"github.com/urfave/cli/v2"
)

// newDefiner builds the dictionary client for define and enrich.
var newDefiner = func(config *dictionary.Config) (dictionary.Definer, error) {
	return openai.NewDefiner(config)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "wordweb",
		Usage: "Vocabulary and reading library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"WORDWEB_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"WORDWEB_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the database directory",
				EnvVars: []string{"WORDWEB_DB"},
			},
			&cli.Int64Flag{
				Name:    "quota",
				Usage:   "Maximum store size in bytes (0 for no limit)",
				EnvVars: []string{"WORDWEB_QUOTA"},
			},
			&cli.DurationFlag{
				Name:    "cache-ttl",
				Usage:   "How long records stay cached",
				Value:   defaultCacheTTL,
				EnvVars: []string{"WORDWEB_CACHE_TTL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			importCommand(),
			documentsCommand(),
			foldersCommand(),
			wordsCommand(),
			reviewCommand(),
			searchCommand(),
			defineCommand(),
			enrichCommand(),
			statsCommand(),
			backupCommand(),
			restoreCommand(),
			exportCommand(),
			migrateCommand(),
			rollbackCommand(),
			statusCommand(),
			snapshotsCommand(),
			usageCommand(),
			prefsCommand(),
			userCommand(),
			clearCommand(),
		},
	}
}

// withApp opens the application for the duration of fn.
func withApp(c *cli.Context, fn func(ctx context.Context, app *wordweb.App) error) error {
	s, err := resolveSettings(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := wordweb.Open(ctx, s.dataDir,
		wordweb.WithQuota(s.quota),
		wordweb.WithCacheTTL(s.cacheTTL),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer app.Close()
	return fn(ctx, app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// argument returns the nth positional argument or an error naming it.
func argument(c *cli.Context, n int, name string) (string, error) {
	if c.NArg() <= n {
		return "", fmt.Errorf("missing argument: %s", name)
	}
	return c.Args().Get(n), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
