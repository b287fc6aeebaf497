// Copyright 2026 Hubforge Labs
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


package ai

import (
	"errors"
	"strings"
)

// DefaultDimension is the embedding vector width used when no model
// dictates one.
const DefaultDimension = 1536

var (
	// ErrMissingEmbeddingHost indicates no embedding service host was configured.
	ErrMissingEmbeddingHost = errors.New("embedding host required")

	// ErrMissingEmbeddingModel indicates no embedding model was configured.
	ErrMissingEmbeddingModel = errors.New("embedding model required")

	// ErrInvalidDimension indicates a non-positive embedding dimension.
	ErrInvalidDimension = errors.New("embedding dimension must be positive")
)

// Config holds configuration for embedding providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1"
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// APIToken authenticates against the embedding service. Left empty
	// for local OpenAI-compatible services that don't require one.
	APIToken string

	// Dimension is the expected embedding vector width.
	Dimension int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAPIToken sets the embedding service API token.
func WithAPIToken(token string) ConfigOption {
	return func(c *Config) {
		c.APIToken = token
	}
}

// WithDimension sets the embedding vector width.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// DefaultConfig returns a Config with defaults for the OpenAI API.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  "https://api.openai.com/v1",
		EmbeddingModel: "text-embedding-3-small",
		Dimension:      DefaultDimension,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. Hosts
// get the /v1 suffix OpenAI-compatible APIs expect.
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.Dimension <= 0 {
		c.Dimension = DefaultDimension
	}
}

// Validate checks the configuration and normalizes it.
func (c *Config) Validate() error {
	c.Normalize()
	if c.EmbeddingHost == "" {
		return ErrMissingEmbeddingHost
	}
	if c.EmbeddingModel == "" {
		return ErrMissingEmbeddingModel
	}
	if c.Dimension <= 0 {
		return ErrInvalidDimension
	}
	return nil
}
