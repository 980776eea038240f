package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/poiesic/wordweb/dictionary"
	"github.com/poiesic/wordweb/manager"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const defaultCacheTTL = manager.DefaultCacheTTL

// fileConfig is the YAML configuration file.
type fileConfig struct {
	DataDir    string `yaml:"dataDir"`
	QuotaBytes int64  `yaml:"quotaBytes"`
	CacheTTL   string `yaml:"cacheTTL"`
	Dictionary struct {
		Host                string `yaml:"host"`
		Model               string `yaml:"model"`
		Token               string `yaml:"token"`
		TranslationLanguage string `yaml:"translationLanguage"`
	} `yaml:"dictionary"`
}

func loadConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return &cfg, nil
}

// settings is the effective configuration. Flags set on the command line
// or through the environment win over the file, which wins over flag
// defaults.
type settings struct {
	dataDir    string
	quota      int64
	cacheTTL   time.Duration
	dictionary *dictionary.Config
}

// resolveSettings is loadSettings for commands that open the database.
func resolveSettings(c *cli.Context) (*settings, error) {
	s, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	if s.dataDir == "" {
		return nil, errors.New("database path is required (--db, WORDWEB_DB or dataDir in the config file)")
	}
	return s, nil
}

func loadSettings(c *cli.Context) (*settings, error) {
	file := &fileConfig{}
	if path := c.String("config"); path != "" {
		var err error
		if file, err = loadConfig(path); err != nil {
			return nil, err
		}
	}

	s := &settings{
		dataDir:  file.DataDir,
		quota:    file.QuotaBytes,
		cacheTTL: c.Duration("cache-ttl"),
	}
	if c.IsSet("db") || s.dataDir == "" {
		s.dataDir = c.String("db")
	}
	if c.IsSet("quota") {
		s.quota = c.Int64("quota")
	}
	if file.CacheTTL != "" && !c.IsSet("cache-ttl") {
		ttl, err := time.ParseDuration(file.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("config cacheTTL: %w", err)
		}
		s.cacheTTL = ttl
	}

	d := file.Dictionary
	s.dictionary = dictionary.NewConfig(
		overrideOption(c, "dict-host", d.Host, dictionary.WithHost),
		overrideOption(c, "dict-model", d.Model, dictionary.WithModel),
		overrideOption(c, "dict-token", d.Token, dictionary.WithToken),
		overrideOption(c, "translation-language", d.TranslationLanguage, dictionary.WithTranslationLanguage),
	)
	return s, nil
}

// overrideOption picks the flag when it was set, else the file value, else
// leaves the default alone.
func overrideOption(c *cli.Context, flag, fromFile string, with func(string) dictionary.ConfigOption) dictionary.ConfigOption {
	switch {
	case c.IsSet(flag):
		return with(c.String(flag))
	case fromFile != "":
		return with(fromFile)
	}
	return func(*dictionary.Config) {}
}

// dictionaryFlags are shared by the commands that look words up.
func dictionaryFlags() []cli.Flag {
	defaults := dictionary.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dict-host",
			Usage:   "Dictionary service host URL",
			Value:   defaults.Host,
			EnvVars: []string{"WORDWEB_DICT_HOST"},
		},
		&cli.StringFlag{
			Name:    "dict-model",
			Usage:   "Dictionary model name",
			Value:   defaults.Model,
			EnvVars: []string{"WORDWEB_DICT_MODEL"},
		},
		&cli.StringFlag{
			Name:    "dict-token",
			Usage:   "Dictionary service API token",
			EnvVars: []string{"WORDWEB_DICT_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "translation-language",
			Usage:   "Language translations are given in",
			Value:   defaults.TranslationLanguage,
			EnvVars: []string{"WORDWEB_TRANSLATION_LANGUAGE"},
		},
	}
}
