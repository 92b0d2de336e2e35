// Package config supplies runtime configuration for cadkg: completion
// backend selection, model tier identifiers and per-run size caps. Values
// come from defaults, an optional YAML file and environment variables, in
// that order of precedence. Validation is fail-fast: a Config that does not
// pass Validate must never reach a coordinator.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Providers accepted by Config.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Error is a fatal configuration error. Runs must not start when one is
// reported.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Limits bounds the payloads prepared for specialists. The caps keep latency
// and token cost predictable; preparation never sends an unbounded tree.
type Limits struct {
	// GeometryParts caps the number of parts sent to the geometry analyst,
	// ranked by vertex count descending.
	GeometryParts int `yaml:"geometry_parts"`
	// HierarchyDepth caps assembly tree depth; deeper nodes are replaced by
	// an explicit truncation marker.
	HierarchyDepth int `yaml:"hierarchy_depth"`
	// HierarchyRoots caps the number of root assemblies in a hierarchy payload.
	HierarchyRoots int `yaml:"hierarchy_roots"`
	// Components caps the flat component list for classification.
	Components int `yaml:"components"`
	// SpatialGroups caps assembly groupings for spatial analysis.
	SpatialGroups int `yaml:"spatial_groups"`
	// SpatialChildren caps children listed per spatial grouping.
	SpatialChildren int `yaml:"spatial_children"`
	// PropertyLabels caps part labels for the properties extractor.
	PropertyLabels int `yaml:"property_labels"`
	// DocumentChars caps the characters of document text sent per specialist.
	DocumentChars int `yaml:"document_chars"`
	// MatchEntities caps the graph entities offered to the entity matcher.
	MatchEntities int `yaml:"match_entities"`
}

// Config carries everything a coordinator needs to run.
type Config struct {
	// Provider selects the completion backend: "openai" (any
	// OpenAI-compatible endpoint, including local Ollama) or "anthropic".
	Provider string `yaml:"provider"`
	// BaseURL is the completion-service endpoint (OpenAI-compatible providers).
	BaseURL string `yaml:"base_url"`
	// APIKey authenticates against the completion service.
	APIKey string `yaml:"api_key"`
	// ManagerModel is the larger/slower tier used by hub orchestrators.
	ManagerModel string `yaml:"manager_model"`
	// SpecialistModel is the cheaper/faster tier used by specialists.
	SpecialistModel string `yaml:"specialist_model"`

	// RunTimeout bounds one full coordinator invocation. On expiry the run
	// routes to the fallback mapper.
	RunTimeout time.Duration `yaml:"run_timeout"`
	// ManagerTurns is the hard cap on manager conversation turns.
	ManagerTurns int `yaml:"manager_turns"`
	// TransportRetries is the number of retries applied to a failed
	// specialist completion before the failure surfaces.
	TransportRetries int `yaml:"transport_retries"`
	// ToolParallelism bounds concurrent specialist tool executions per turn.
	// Zero means unbounded within one batch.
	ToolParallelism int `yaml:"tool_parallelism"`

	Limits Limits `yaml:"limits"`
}

// Default returns the baseline configuration targeting a local Ollama server
// exposing an OpenAI-compatible API.
func Default() *Config {
	return &Config{
		Provider:         ProviderOpenAI,
		BaseURL:          "http://127.0.0.1:11434/v1",
		APIKey:           "ollama",
		ManagerModel:     "gpt-oss:120b",
		SpecialistModel:  "gpt-oss:20b",
		RunTimeout:       10 * time.Minute,
		ManagerTurns:     20,
		TransportRetries: 2,
		ToolParallelism:  4,
		Limits: Limits{
			GeometryParts:   30,
			HierarchyDepth:  3,
			HierarchyRoots:  5,
			Components:      50,
			SpatialGroups:   15,
			SpatialChildren: 10,
			PropertyLabels:  50,
			DocumentChars:   8000,
			MatchEntities:   50,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file (path may be
// empty) and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &Error{Field: "config_file", Reason: err.Error()}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &Error{Field: "config_file", Reason: fmt.Sprintf("parse %s: %v", path, err)}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from defaults plus environment overrides.
func FromEnv() (*Config, error) {
	return Load("")
}

func (c *Config) applyEnv() {
	setString(&c.Provider, "CADKG_PROVIDER")
	setString(&c.BaseURL, "OPENAI_API_BASE", "CADKG_BASE_URL")
	setString(&c.APIKey, "OPENAI_API_KEY", "CADKG_API_KEY", "ANTHROPIC_API_KEY")
	setString(&c.ManagerModel, "OPENAI_MODEL_MANAGER", "CADKG_MANAGER_MODEL")
	setString(&c.SpecialistModel, "OPENAI_MODEL_SPECIALIST", "CADKG_SPECIALIST_MODEL")
	setDuration(&c.RunTimeout, "CADKG_RUN_TIMEOUT")
	setInt(&c.ManagerTurns, "CADKG_MANAGER_TURNS")
	setInt(&c.TransportRetries, "CADKG_TRANSPORT_RETRIES")
	setInt(&c.ToolParallelism, "CADKG_TOOL_PARALLELISM")
}

func setString(dst *string, keys ...string) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			*dst = v
			return
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Validate reports the first fatal problem with the configuration.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.BaseURL == "" {
			return &Error{Field: "base_url", Reason: "completion endpoint is required"}
		}
	case ProviderAnthropic:
		if c.APIKey == "" {
			return &Error{Field: "api_key", Reason: "anthropic provider requires an API key"}
		}
	default:
		return &Error{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", c.Provider)}
	}
	if c.ManagerModel == "" {
		return &Error{Field: "manager_model", Reason: "manager model identifier is required"}
	}
	if c.SpecialistModel == "" {
		return &Error{Field: "specialist_model", Reason: "specialist model identifier is required"}
	}
	if c.RunTimeout <= 0 {
		return &Error{Field: "run_timeout", Reason: "must be positive"}
	}
	if c.ManagerTurns < 1 {
		return &Error{Field: "manager_turns", Reason: "must allow at least one turn"}
	}
	if c.TransportRetries < 0 {
		return &Error{Field: "transport_retries", Reason: "must not be negative"}
	}
	return nil
}
