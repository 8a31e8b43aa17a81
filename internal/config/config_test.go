package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-doctemplate/pkg/render"
)

const sample = `
format: markdown
template: api/operation
template_paths: [./templates, ./overrides]
options:
  title: Pets
  depth: 2
output: docs/api.md
width: 72
api:
  document: petstore.yaml
  operation: listPets
  timeout: 10s
logging:
  level: debug
  text: true
theme:
  name: acme
  variant: dark
  tokens:
    brand: "#123456"
  asset_prefix: /assets/acme/
`

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "markdown", c.Format)
	assert.Equal(t, "api/operation", c.Template)
	assert.Equal(t, []string{"./templates", "./overrides"}, c.TemplatePaths)
	assert.Equal(t, "Pets", c.Options["title"])
	assert.Equal(t, 2, c.Options["depth"])
	assert.Equal(t, uint(72), c.Width)
	assert.Equal(t, 10*time.Second, c.API.Timeout)
	assert.Equal(t, "listPets", c.API.Operation)
	assert.True(t, c.Logging.Text)
	require.NoError(t, c.Validate())

	format, err := c.RenderFormat()
	require.NoError(t, err)
	assert.Equal(t, render.FormatMarkdown, format)
}

func TestParseConfig_Defaults(t *testing.T) {
	c, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, c.Format)
	assert.Equal(t, DefaultTemplate, c.Template)
	assert.Equal(t, "info", c.Logging.Level)
	require.NoError(t, c.Validate())
}

func TestParseConfig_UnknownKey(t *testing.T) {
	_, err := ParseConfig([]byte("formt: html\n"))
	assert.Error(t, err)
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DOCGEN_FORMAT", "text")
	t.Setenv("DOCGEN_TEMPLATE_PATHS", "a, b,,c")
	t.Setenv("DOCGEN_WIDTH", "100")
	t.Setenv("DOCGEN_LOG_LEVEL", "warn")
	t.Setenv("DOCGEN_API_DOCUMENT", "https://example.com/openapi.yaml")
	t.Setenv("DOCGEN_THEME", "night")

	c, err := ParseConfig([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "text", c.Format)
	assert.Equal(t, []string{"a", "b", "c"}, c.TemplatePaths)
	assert.Equal(t, uint(100), c.Width)
	assert.Equal(t, "warn", c.Logging.Level)
	assert.Equal(t, "https://example.com/openapi.yaml", c.API.Document)
	assert.Equal(t, "night", c.Theme.Name)
}

func TestParseConfig_EnvPrefix(t *testing.T) {
	t.Setenv("DOCGEN_ENV_PREFIX", "DOCS_")
	t.Setenv("DOCS_FORMAT", "text")
	t.Setenv("DOCGEN_FORMAT", "markdown")

	c, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "text", c.Format)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		key    string
	}{
		"format":   {func(c *Config) { c.Format = "pdf" }, "format"},
		"template": {func(c *Config) { c.Template = "/" }, "template"},
		"level":    {func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		"timeout":  {func(c *Config) { c.API.Timeout = -time.Second }, "api.timeout"},
		"options":  {func(c *Config) { c.Options = map[string]any{" ": 1} }, "options"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)

			var cfgErr *render.ConfigurationError
			require.True(t, errors.As(c.Validate(), &cfgErr))
			assert.Equal(t, tc.key, cfgErr.Key)
		})
	}
}

func TestThemeConfig_RendererConfig(t *testing.T) {
	assert.Nil(t, ThemeConfig{}.RendererConfig())

	c, err := ParseConfig([]byte(sample))
	require.NoError(t, err)

	cfg := c.Theme.RendererConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "acme", cfg.Theme)
	assert.Equal(t, "dark", cfg.Variant)
	assert.Equal(t, "#123456", cfg.CSSVars["--brand"])
	require.NotNil(t, cfg.AssetURL)
	assert.Equal(t, "/assets/acme/theme.css", cfg.AssetURL("theme.css"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: text\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "text", c.Format)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
