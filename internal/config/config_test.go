package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/view"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, &Resolved{
		Root:      dir,
		Version:   "v1.0.0",
		LogLevel:  slog.LevelInfo,
		LogFormat: "text",
		Tag:       "div",
		Namespace: "viewkit",
	}, r)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
version: v1.2.0
debug: true
log:
  level: debug
  format: JSON
templates:
  dir: tmpl
view:
  tag: section
  class: legend-host
metrics:
  namespace: maps
`)

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", r.Version)
	assert.True(t, r.Debug)
	assert.Equal(t, slog.LevelDebug, r.LogLevel)
	assert.Equal(t, "json", r.LogFormat)
	assert.Equal(t, filepath.Join(dir, "tmpl"), r.TemplatesDir)
	assert.Equal(t, "section", r.Tag)
	assert.Equal(t, "legend-host", r.Class)
	assert.Equal(t, "maps", r.Namespace)

	same, err := ResolveFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, r, same)
}

func TestResolveRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad semver", Config{Version: "1.0"}},
		{"wrong major", Config{Version: "v2.0.0"}},
		{"bad level", Config{Log: LogConfig{Level: "loud"}}},
		{"bad format", Config{Log: LogConfig{Format: "xml"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Resolve(t.TempDir())
			require.Error(t, err)
			assert.Equal(t, errors.KindConfig, errors.KindOf(err))
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "version: [unterminated")

	_, err := LoadOptional(dir)
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := &Resolved{LogLevel: slog.LevelWarn, LogFormat: "json"}
	logger := r.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestNewContextUsesConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tmpl", "legend", "bubble.tmpl"), `custom`)
	writeFile(t, filepath.Join(dir, FileName), "debug: true\ntemplates:\n  dir: tmpl\nview:\n  tag: section\n  class: host\n")

	r, err := Resolve(dir)
	require.NoError(t, err)
	ctx, err := r.NewContext(slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.True(t, ctx.Debug())

	v, err := view.New(ctx, view.Options{TemplateName: "legend/bubble"})
	require.NoError(t, err)
	defer v.Teardown()
	assert.Equal(t, "section", v.Options().Tag)
	assert.True(t, v.Element().HasClass("host"))

	require.NoError(t, v.RenderTemplate("", nil))
	assert.Equal(t, "custom", v.Element().HTML())
}

func TestNewContextMissingTemplatesDir(t *testing.T) {
	r := &Resolved{TemplatesDir: filepath.Join(t.TempDir(), "nope")}
	_, err := r.NewContext(nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))
}

func TestRecorder(t *testing.T) {
	r := &Resolved{Namespace: "test"}
	rec, err := r.Recorder(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.NotNil(t, rec.Collector())
}
