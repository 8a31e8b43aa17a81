// Package config loads docgen configuration from YAML with environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/render"
)

const (
	DefaultEnvPrefix = "DOCGEN_"
	DefaultFormat    = "html"
	DefaultTemplate  = "api"
)

type Config struct {
	Format        string          `yaml:"format"`
	Template      string          `yaml:"template"`
	TemplatePaths []string        `yaml:"template_paths"`
	Layout        string          `yaml:"layout"`
	Options       options.Options `yaml:"options"`
	Output        string          `yaml:"output"`
	Width         uint            `yaml:"width"`
	API           APIConfig       `yaml:"api"`
	Logging       LoggingConfig   `yaml:"logging"`
	Theme         ThemeConfig     `yaml:"theme"`
}

type APIConfig struct {
	Document  string        `yaml:"document"`
	Operation string        `yaml:"operation"`
	Timeout   time.Duration `yaml:"timeout"`
}

func (c *APIConfig) SetValuesFromEnv(prefix string) {
	if v, ok := os.LookupEnv(prefix + "DOCUMENT"); ok {
		c.Document = v
	}
	if v, ok := os.LookupEnv(prefix + "OPERATION"); ok {
		c.Operation = v
	}
	if v, ok := os.LookupEnv(prefix + "TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Text  bool   `yaml:"text"`
}

func (c *LoggingConfig) SetValuesFromEnv(prefix string) {
	if v, ok := os.LookupEnv(prefix + "LOG_LEVEL"); ok {
		c.Level = v
	}
	if v, ok := os.LookupEnv(prefix + "LOG_TEXT"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Text = b
		}
	}
}

// ThemeConfig describes a go-theme renderer configuration inline.
type ThemeConfig struct {
	Name        string            `yaml:"name"`
	Variant     string            `yaml:"variant"`
	Tokens      map[string]string `yaml:"tokens"`
	CSSVars     map[string]string `yaml:"css_vars"`
	AssetPrefix string            `yaml:"asset_prefix"`
}

func (c *ThemeConfig) SetValuesFromEnv(prefix string) {
	if v, ok := os.LookupEnv(prefix + "THEME"); ok {
		c.Name = v
	}
	if v, ok := os.LookupEnv(prefix + "THEME_VARIANT"); ok {
		c.Variant = v
	}
	if v, ok := os.LookupEnv(prefix + "THEME_ASSET_PREFIX"); ok {
		c.AssetPrefix = v
	}
}

// RendererConfig converts the theme into the go-theme renderer configuration.
// Tokens without an explicit CSS variable become "--<token>" variables. It
// returns nil when no theme is configured.
func (c ThemeConfig) RendererConfig() *theme.RendererConfig {
	if c.Name == "" && len(c.Tokens) == 0 && len(c.CSSVars) == 0 {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:   c.Name,
		Variant: c.Variant,
		Tokens:  make(map[string]string, len(c.Tokens)),
		CSSVars: make(map[string]string, len(c.Tokens)+len(c.CSSVars)),
	}
	for key, value := range c.Tokens {
		cfg.Tokens[key] = value
		cfg.CSSVars["--"+key] = value
	}
	for key, value := range c.CSSVars {
		cfg.CSSVars[key] = value
	}
	if prefix := strings.TrimSuffix(c.AssetPrefix, "/"); prefix != "" {
		cfg.AssetURL = func(key string) string {
			if key == "" {
				return ""
			}
			return prefix + "/" + strings.TrimPrefix(key, "/")
		}
	}
	return cfg
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Format:   DefaultFormat,
		Template: DefaultTemplate,
		Logging:  LoggingConfig{Level: "info"},
	}
}

// ParseConfig decodes YAML over the defaults, rejecting unknown keys, then
// applies environment overrides.
func ParseConfig(data []byte) (*Config, error) {
	c := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: failed unmarshalling yaml: %w", err)
	}

	envPrefix := DefaultEnvPrefix
	if v, ok := os.LookupEnv(DefaultEnvPrefix + "ENV_PREFIX"); ok {
		envPrefix = v
	}
	c.SetValuesFromEnv(envPrefix)

	return c, nil
}

// Load reads and parses the file at path. An empty path parses an empty
// document, so defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	if path == "" {
		return ParseConfig(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseConfig(data)
}

func (c *Config) SetValuesFromEnv(prefix string) {
	if v, ok := os.LookupEnv(prefix + "FORMAT"); ok {
		c.Format = v
	}
	if v, ok := os.LookupEnv(prefix + "TEMPLATE"); ok {
		c.Template = v
	}
	if v, ok := os.LookupEnv(prefix + "TEMPLATE_PATHS"); ok {
		c.TemplatePaths = splitList(v)
	}
	if v, ok := os.LookupEnv(prefix + "LAYOUT"); ok {
		c.Layout = v
	}
	if v, ok := os.LookupEnv(prefix + "OUTPUT"); ok {
		c.Output = v
	}
	if v, ok := os.LookupEnv(prefix + "WIDTH"); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.Width = uint(n)
		}
	}
	c.API.SetValuesFromEnv(prefix + "API_")
	c.Logging.SetValuesFromEnv(prefix)
	c.Theme.SetValuesFromEnv(prefix)
}

// Validate reports the first invalid setting as a *render.ConfigurationError.
func (c *Config) Validate() error {
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	if strings.Trim(c.Template, "/") == "" {
		return &render.ConfigurationError{Key: "template", Reason: "required"}
	}
	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
			return &render.ConfigurationError{Key: "logging.level", Reason: fmt.Sprintf("unknown level %q", c.Logging.Level), Err: err}
		}
	}
	if c.API.Timeout < 0 {
		return &render.ConfigurationError{Key: "api.timeout", Reason: "must not be negative"}
	}
	for key := range c.Options {
		if strings.TrimSpace(key) == "" {
			return &render.ConfigurationError{Key: "options", Reason: "empty option name"}
		}
	}
	return nil
}

// RenderFormat returns the validated format.
func (c *Config) RenderFormat() (render.Format, error) {
	return render.ParseFormat(c.Format)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
