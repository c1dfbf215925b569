// Package config loads the YAML configuration file that selects the
// active model endpoint and wires the server/orchestrator/A2A
// surfaces, following the teacher's $include + $VAR expansion loader.
package config

import (
	"fmt"

	"github.com/routa-core/routa/internal/coreerr"
)

// Config is the top-level configuration document.
type Config struct {
	Version int `yaml:"version"`

	// WorkspaceID is the default workspace new CLI-driven runs operate
	// in when none is given on the command line.
	WorkspaceID string `yaml:"workspace_id"`

	// Configs lists every model endpoint available for selection.
	// Active names the one currently in effect.
	Configs []NamedModelConfig `yaml:"configs"`
	Active  string             `yaml:"active"`

	Server        ServerConfig        `yaml:"server"`
	A2A           A2AConfig           `yaml:"a2a"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// NamedModelConfig mirrors llmexec.NamedModelConfig in YAML form, kept
// as a distinct type so the config package has no import-cycle back
// onto llmexec; callers copy its fields into llmexec.NamedModelConfig.
type NamedModelConfig struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

// ActiveModel returns the NamedModelConfig whose Name matches
// cfg.Active, failing BadInput if Active is unset and NotFound if no
// config carries that name.
func (cfg *Config) ActiveModel() (NamedModelConfig, error) {
	if cfg.Active == "" {
		return NamedModelConfig{}, coreerr.New(coreerr.BadInput, "ActiveModel", "no active model configured")
	}
	for _, c := range cfg.Configs {
		if c.Name == cfg.Active {
			return c, nil
		}
	}
	return NamedModelConfig{}, coreerr.New(coreerr.NotFound, "ActiveModel", fmt.Sprintf("active config %q not found", cfg.Active))
}

// ServerConfig configures the A2A HTTP listener.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// A2AConfig configures the optional bearer-token check ahead of
// dispatch; BearerSecret empty means the check is disabled.
type A2AConfig struct {
	BearerSecret string `yaml:"bearer_secret"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ObservabilityConfig configures metrics/tracing export.
type ObservabilityConfig struct {
	MetricsAddr   string  `yaml:"metrics_addr"`
	TraceEndpoint string  `yaml:"trace_endpoint"`
	TraceSampling float64 `yaml:"trace_sampling"`
	ServiceName   string  `yaml:"service_name"`
}

// Load reads path (resolving $include directives and $VAR expansion),
// decodes it against Config, and validates its version.
func Load(path string) (*Config, error) {
	raw, err := LoadRaw(path)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.BadInput, "Load", "reading config", err)
	}
	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.BadInput, "Load", "decoding config", err)
	}
	if err := ValidateVersion(cfg.Version); err != nil {
		return nil, coreerr.Wrap(coreerr.BadInput, "Load", "config version", err)
	}
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = ":8089"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "routa-core"
	}
	return cfg, nil
}
