// Package config loads and validates the exporter configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "nbexport/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	Source string       `yaml:"source"`
	Output OutputConfig `yaml:"output"`
	Site   SiteConfig   `yaml:"site"`
	Repo   *RepoConfig  `yaml:"repo,omitempty"`
	Serve  ServeConfig  `yaml:"serve"`
	Watch  WatchConfig  `yaml:"watch"`
}

// SiteConfig carries page-level settings handed to the templates.
type SiteConfig struct {
	Title         string         `yaml:"title,omitempty"`
	BaseURL       string         `yaml:"base_url,omitempty"`
	Theme         string         `yaml:"theme,omitempty"`
	OnRenderError string         `yaml:"on_render_error,omitempty"` // "halt" or "skip"
	PageConfig    map[string]any `yaml:"page_config,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before export
}

// RepoConfig points the exporter at a remote notebook repository instead of a
// local source directory.
type RepoConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Depth  int    `yaml:"depth,omitempty"`
	Subdir string `yaml:"subdir,omitempty"` // subtree within the clone to export
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr       string `yaml:"addr,omitempty"`
	LiveReload bool   `yaml:"live_reload"`
}

// WatchConfig configures continuous export.
type WatchConfig struct {
	DebounceMS int    `yaml:"debounce_ms,omitempty"`
	Every      string `yaml:"every,omitempty"` // optional interval for forced re-exports, e.g. "30m"
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; missing is fine.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "./notebooks"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
	if c.Site.Title == "" {
		c.Site.Title = "Notebooks"
	}
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = "/"
	}
	if c.Site.Theme == "" {
		c.Site.Theme = "light"
	}
	if c.Site.OnRenderError == "" {
		c.Site.OnRenderError = "halt"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8000"
	}
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = 500
	}
	if c.Repo != nil && c.Repo.Branch == "" {
		c.Repo.Branch = "main"
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.Site.OnRenderError {
	case "halt", "skip":
	default:
		return apperrors.ConfigError(fmt.Sprintf("on_render_error must be \"halt\" or \"skip\", got %q", c.Site.OnRenderError))
	}
	if c.Repo != nil && c.Repo.URL == "" {
		return apperrors.ConfigError("repo.url is required when repo is set")
	}
	if c.Watch.Every != "" {
		if _, err := time.ParseDuration(c.Watch.Every); err != nil {
			return apperrors.ConfigError(fmt.Sprintf("watch.every is not a duration: %q", c.Watch.Every))
		}
	}
	return nil
}

// Debounce returns the watch debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// RebuildEvery returns the forced re-export interval, zero when disabled.
func (c *Config) RebuildEvery() time.Duration {
	if c.Watch.Every == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Watch.Every)
	if err != nil {
		return 0
	}
	return d
}

const exampleConfig = `# nbexport configuration
source: ./notebooks

output:
  directory: ./site
  clean: true

site:
  title: Notebooks
  base_url: /
  theme: light            # light or dark
  on_render_error: halt   # halt the export, or skip and emit a placeholder page
  # page_config:
  #   showSource: true

# Export from a remote repository instead of a local directory:
# repo:
#   url: https://example.com/team/notebooks.git
#   branch: main
#   depth: 1
#   subdir: notebooks

serve:
  addr: :8000
  live_reload: true

watch:
  debounce_ms: 500
  # every: 30m            # force a full re-export on an interval
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	return os.WriteFile(configPath, []byte(exampleConfig), 0o644)
}
