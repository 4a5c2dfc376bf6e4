package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"autosearch/internal/eventbus"
)

// FileName is the per-directory config file looked up by the CLI
const FileName = ".autosearch.toml"

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Source kinds
const (
	SourceMemory = "memory" // dataset file, or the built-in sample when no path is set
	SourceRepos  = "repos"  // git repositories found under a directory
	SourceHTTP   = "http"   // a remote `autosearch serve`
)

// Config represents the application configuration
type Config struct {
	Version int            `toml:"version"`
	Widget  WidgetSettings `toml:"widget"`
	Keys    KeySettings    `toml:"keys"`
	Source  SourceSettings `toml:"source"`
	Server  ServerSettings `toml:"server"`
	Log     LogSettings    `toml:"log"`
}

// WidgetSettings tune the autocomplete widget
type WidgetSettings struct {
	Debounce              Duration `toml:"debounce"`
	MinChars              int      `toml:"min_chars"`
	SuggestionsLimit      int      `toml:"suggestions_limit"`
	PreserveInputOnSubmit bool     `toml:"preserve_input_on_submit"`
	Placeholder           string   `toml:"placeholder"`
}

// KeySettings lists the keys bound to each widget action
type KeySettings struct {
	Up     []string `toml:"up"`
	Down   []string `toml:"down"`
	Submit []string `toml:"submit"`
	Cancel []string `toml:"cancel"`
}

// SourceSettings choose and tune the query executor
type SourceSettings struct {
	Kind        string   `toml:"kind"`
	Path        string   `toml:"path"`
	URL         string   `toml:"url"`
	Watch       bool     `toml:"watch"`
	Exclude     []string `toml:"exclude"`
	Latency     Duration `toml:"latency"`
	Jitter      Duration `toml:"jitter"`
	FailureRate float64  `toml:"failure_rate"`
}

// ServerSettings configure `autosearch serve`
type ServerSettings struct {
	Addr string `toml:"addr"`
}

// LogSettings configure the log file
type LogSettings struct {
	File  string `toml:"file"`
	Debug bool   `toml:"debug"`
}

// Duration is a time.Duration written as a string such as "150ms"
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service backed by the user config dir
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "autosearch", "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// Load loads the configuration from the user config dir. A missing file
// yields the defaults.
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cs.publish(eventbus.ConfigLoadedEvent{Path: ""})
		return cfg, nil
	}

	cfg, err := readFile(cs.filePath)
	if err != nil {
		return nil, err
	}
	cs.publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	return cfg, nil
}

// Save saves the configuration to the user config dir
func (cs *configService) Save(config *Config) error {
	if err := writeFile(config, cs.filePath); err != nil {
		return err
	}
	cs.publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cs.publish(eventbus.ConfigLoadedEvent{Path: path})
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := writeFile(config, path); err != nil {
		return err
	}
	cs.publish(eventbus.ConfigSavedEvent{Path: path})
	return nil
}

func (cs *configService) publish(event eventbus.DomainEvent) {
	if cs.bus != nil {
		cs.bus.Publish(event)
	}
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their defaults
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func writeFile(config *Config, path string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Widget: WidgetSettings{
			Debounce:              Duration{150 * time.Millisecond},
			MinChars:              3,
			SuggestionsLimit:      7,
			PreserveInputOnSubmit: true,
			Placeholder:           "Search...",
		},
		Keys: KeySettings{
			Up:     []string{"up", "ctrl+p"},
			Down:   []string{"down", "ctrl+n"},
			Submit: []string{"enter"},
			Cancel: []string{"esc"},
		},
		Source: SourceSettings{
			Kind:    SourceMemory,
			Exclude: []string{"**/node_modules/**", "**/vendor/**"},
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
		Log: LogSettings{
			File: "autosearch.log",
		},
	}
}

// Validate checks value ranges and cross-field constraints
func (c *Config) Validate() error {
	switch {
	case c.Widget.Debounce.Duration < 0:
		return fmt.Errorf("%w: widget.debounce must not be negative", ErrInvalidConfig)
	case c.Widget.MinChars < 0:
		return fmt.Errorf("%w: widget.min_chars must not be negative", ErrInvalidConfig)
	case c.Widget.SuggestionsLimit < 0:
		return fmt.Errorf("%w: widget.suggestions_limit must not be negative", ErrInvalidConfig)
	case len(c.Keys.Submit) == 0:
		return fmt.Errorf("%w: keys.submit must bind at least one key", ErrInvalidConfig)
	case c.Source.Latency.Duration < 0 || c.Source.Jitter.Duration < 0:
		return fmt.Errorf("%w: source latency and jitter must not be negative", ErrInvalidConfig)
	case c.Source.FailureRate < 0 || c.Source.FailureRate > 1:
		return fmt.Errorf("%w: source.failure_rate must be within [0, 1]", ErrInvalidConfig)
	}

	switch c.Source.Kind {
	case SourceMemory:
	case SourceRepos:
		if c.Source.Path == "" {
			return fmt.Errorf("%w: source.path is required for kind %q", ErrInvalidConfig, SourceRepos)
		}
	case SourceHTTP:
		if c.Source.URL == "" {
			return fmt.Errorf("%w: source.url is required for kind %q", ErrInvalidConfig, SourceHTTP)
		}
	default:
		return fmt.Errorf("%w: unknown source.kind %q", ErrInvalidConfig, c.Source.Kind)
	}

	for _, pattern := range c.Source.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: bad exclude pattern %q", ErrInvalidConfig, pattern)
		}
	}
	return nil
}
