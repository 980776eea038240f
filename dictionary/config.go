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

package dictionary

import (
	"errors"
	"strings"
)

// Config holds the settings of a dictionary lookup service.
type Config struct {
	// Host is the base URL of an OpenAI-compatible API.
	// Example: "http://localhost:11434/v1" for a local server
	Host string

	// Model is the chat model used for lookups.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// Token authenticates against hosted services. Local servers ignore it.
	Token string

	// TranslationLanguage is the language translations are written in.
	// Default: "English"
	TranslationLanguage string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the chat model.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithTranslationLanguage sets the language translations are given in.
func WithTranslationLanguage(language string) ConfigOption {
	return func(c *Config) {
		c.TranslationLanguage = language
	}
}

// DefaultConfig returns a Config for a local OpenAI-compatible server.
func DefaultConfig() *Config {
	return &Config{
		Host:                "http://localhost:11434/v1",
		Model:               "qwen2.5:3b",
		Token:               "none",
		TranslationLanguage: "English",
	}
}

// NewConfig creates a Config with the default values and applies opts.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize adds the /v1 suffix OpenAI-compatible servers expect and fills
// an empty token.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate normalizes the configuration and checks that it is complete.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("dictionary config: Host is required")
	}
	if c.Model == "" {
		return errors.New("dictionary config: Model is required")
	}
	if strings.TrimSpace(c.TranslationLanguage) == "" {
		return errors.New("dictionary config: TranslationLanguage is required")
	}
	return nil
}
