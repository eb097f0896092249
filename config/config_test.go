package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.config")
	defer teardown()
	//
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "xml", c.Renderer.Name)
	assert.Equal(t, 2, c.Renderer.Indent)
	assert.False(t, c.Cache.Enabled)
	assert.Equal(t, "error", c.Tracing.Level)
	d := Default()
	assert.Equal(t, c.Renderer, d.Renderer)
	assert.Equal(t, c.Cache, d.Cache)
}

func TestLoadFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.config")
	defer teardown()
	//
	path := writeFile(t, "areatree.yaml", `
renderer:
  indent: 4
  consistent-output: true
cache:
  enabled: true
tracing:
  level: debug
`)
	t.Setenv("AREATREE_CACHE_DIR", "/var/tmp/pages")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "xml", c.Renderer.Name)
	assert.Equal(t, 4, c.Renderer.Indent)
	assert.True(t, c.Renderer.ConsistentOutput)
	assert.True(t, c.Cache.Enabled)
	assert.Equal(t, "/var/tmp/pages", c.Cache.Dir)
	assert.Equal(t, "debug", c.Tracing.Level)
	//
	opts := c.RenderOptions(&bytes.Buffer{})
	assert.Equal(t, 4, opts.Indent)
	assert.True(t, opts.ConsistentOutput)
	assert.NotNil(t, opts.Writer)
}

func TestInvalidConfiguration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.config")
	defer teardown()
	//
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	for _, content := range []string{
		"renderer:\n  indent: -1\n",
		"renderer:\n  name: \"\"\n",
		"tracing:\n  level: loud\n",
	} {
		_, err = Load(writeFile(t, "bad.yaml", content))
		assert.ErrorIs(t, err, ErrInvalid, content)
	}
}

func TestSchukoConfiguration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.config")
	defer teardown()
	//
	v := viper.New()
	v.Set("renderer.indent", 3)
	v.Set("tracing.adapter", "nop")
	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 3, c.GetInt("renderer.indent"))
	assert.Equal(t, "xml", c.GetString("renderer.name"))
	assert.True(t, c.IsSet("renderer.indent"))
	assert.False(t, c.GetBool("cache.enabled"))
	assert.False(t, c.IsInteractive())
	//
	c.Tracing.Level = "debug"
	c.ConfigureTracing()
	assert.Equal(t, tracing.LevelError, tracing.Select("areatree").GetTraceLevel(),
		"the no-op adapter has to be selected")
}
