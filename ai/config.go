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

package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Supported embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds configuration for an embedding service provider.
type Config struct {
	// Provider selects the embedding backend: "openai" for any
	// OpenAI-compatible server, or "gemini".
	Provider string

	// Host is the base URL for OpenAI-compatible embedding APIs.
	// Example: "http://localhost:8080/v1" for a local text-embeddings server.
	// Ignored by the gemini provider.
	Host string

	// Token is the API key. OpenAI-compatible local servers usually accept
	// any value; gemini requires a real key.
	Token string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "sentence-transformers/all-MiniLM-L6-v2"
	EmbeddingModel string

	// RequestsPerSecond caps outgoing embedding requests. Zero disables the limit.
	RequestsPerSecond float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the embedding provider.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithRequestsPerSecond sets the outgoing request rate limit.
func WithRequestsPerSecond(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible embedding server.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOpenAI,
		Host:           "http://localhost:8080/v1",
		Token:          "none",
		EmbeddingModel: "sentence-transformers/all-MiniLM-L6-v2",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:8080/v1"),
//	    WithEmbeddingModel("sentence-transformers/all-mpnet-base-v2"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ForModel returns a copy of the configuration bound to another embedding model.
func (c *Config) ForModel(model string) *Config {
	clone := *c
	clone.EmbeddingModel = model
	return &clone
}

// Normalize ensures the configuration is in a canonical form.
// For the openai provider it adds the /v1 suffix to the host if missing,
// which is required by most OpenAI-compatible APIs.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Provider == ProviderOpenAI && c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI:
		if c.Host == "" {
			return errors.New("ai config: Host is required")
		}
	case ProviderGemini:
		if c.Token == "" {
			return errors.New("ai config: Token is required for gemini")
		}
	default:
		return fmt.Errorf("ai config: unknown Provider %q", c.Provider)
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("ai config: RequestsPerSecond cannot be negative")
	}
	return nil
}
