package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/areatree/render"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration
// keys.
const EnvPrefix = "AREATREE"

// ErrInvalid is wrapped by errors about invalid configuration values.
var ErrInvalid = errors.New("invalid configuration")

// Config is the configuration of area tree processing.
type Config struct {
	Renderer RendererConfig `mapstructure:"renderer"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	v        *viper.Viper
}

// RendererConfig selects and configures the renderer.
type RendererConfig struct {
	Name             string `mapstructure:"name"`
	Indent           int    `mapstructure:"indent"`
	ConsistentOutput bool   `mapstructure:"consistent-output"`
}

// CacheConfig configures swapping prepared pages out to disk.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"` // empty for the default temp directory
}

// TracingConfig configures tracing. Adapter is a key of a schuko tracing
// adapter, e.g. "go".
type TracingConfig struct {
	Adapter string `mapstructure:"adapter"`
	Level   string `mapstructure:"level"`
}

var _ schuko.Configuration = (*Config)(nil)

func setDefaults(v *viper.Viper) {
	v.SetDefault("renderer.name", "xml")
	v.SetDefault("renderer.indent", 2)
	v.SetDefault("renderer.consistent-output", false)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.dir", "")
	v.SetDefault("tracing.adapter", "go")
	v.SetDefault("tracing.level", "error")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the default configuration, overridden by environment
// variables.
func Default() *Config {
	c, err := FromViper(newViper())
	if err != nil {
		tracer().Errorf("environment overrides ignored: %v", err)
		v := viper.New()
		setDefaults(v)
		c, _ = FromViper(v)
	}
	return c
}

// Load reads the configuration from a file. An empty path yields the
// defaults, overridden by environment variables.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading configuration: %w", err)
		}
		tracer().Infof("configuration read from %s", v.ConfigFileUsed())
	}
	return FromViper(v)
}

// FromViper creates a configuration from the settings of v. Defaults are
// set for keys v does not know.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	c := &Config{v: v}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Renderer.Name == "" {
		return fmt.Errorf("%w: renderer.name is empty", ErrInvalid)
	}
	if c.Renderer.Indent < 0 {
		return fmt.Errorf("%w: renderer.indent is %d", ErrInvalid, c.Renderer.Indent)
	}
	switch strings.ToLower(c.Tracing.Level) {
	case "error", "info", "debug":
	default:
		return fmt.Errorf("%w: tracing.level %q", ErrInvalid, c.Tracing.Level)
	}
	return nil
}

// RenderOptions returns the options for creating the configured renderer.
func (c *Config) RenderOptions(w io.Writer) render.Options {
	return render.Options{
		Writer:           w,
		Indent:           c.Renderer.Indent,
		ConsistentOutput: c.Renderer.ConsistentOutput,
	}
}

// ConfigureTracing installs the configured tracing adapter with the
// configured level. The adapter "go" traces with the standard logger.
func (c *Config) ConfigureTracing() {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	adapter := tracing.GetAdapterFromConfiguration(c, "")
	tracing.SetTraceSelector(tracing.SelectorForAdapter(adapter))
	level := tracing.TraceLevelFromString(c.Tracing.Level)
	tracing.Select("areatree").SetTraceLevel(level)
	tracer().Debugf("tracing with adapter %q at level %s", c.Tracing.Adapter, level)
}

// --- schuko.Configuration --------------------------------------------------

// InitDefaults sets the default values of all keys.
func (c *Config) InitDefaults() {
	setDefaults(c.v)
}

// IsSet is true if key has a value.
func (c *Config) IsSet(key string) bool { return c.v.IsSet(key) }

// GetString returns the value of key as a string.
func (c *Config) GetString(key string) string { return c.v.GetString(key) }

// GetInt returns the value of key as an integer.
func (c *Config) GetInt(key string) int { return c.v.GetInt(key) }

// GetBool returns the value of key as a boolean.
func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

// IsInteractive returns false.
func (c *Config) IsInteractive() bool { return false }
