package templates

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/viewkit/pkg/errors"
)

func TestLookupMissing(t *testing.T) {
	s := New()
	fn, err := s.Lookup("nope")

	assert.Nil(t, fn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTemplateNotFound))
	assert.Equal(t, errors.KindMissingTemplate, errors.KindOf(err))
}

func TestAddAndRender(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("greeting", `<p>{{.Name}}</p>`))

	fn, err := s.Lookup("greeting")
	require.NoError(t, err)
	out, err := fn(map[string]string{"Name": "<b>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;b&gt;</p>", out)
}

func TestParseError(t *testing.T) {
	err := New().Add("broken", `{{.Name`)
	require.Error(t, err)
	assert.Equal(t, errors.KindRender, errors.KindOf(err))
}

func TestExecuteError(t *testing.T) {
	fn, err := Inline(`{{.Missing.Field}}`)
	require.NoError(t, err)
	_, err = fn(struct{ Missing *struct{ Field string } }{})
	require.Error(t, err)
	assert.Equal(t, errors.KindRender, errors.KindOf(err))
}

func TestParseFSNamesAndOverrides(t *testing.T) {
	s, err := NewDefault()
	require.NoError(t, err)
	assert.Contains(t, s.Names(), "legend/bubble")

	override := fstest.MapFS{
		"legend/bubble.tmpl": {Data: []byte(`custom`)},
		"README.md":          {Data: []byte(`ignored`)},
	}
	require.NoError(t, s.ParseFS(override))

	fn, err := s.Lookup("legend/bubble")
	require.NoError(t, err)
	out, err := fn(nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", out)
	assert.NotContains(t, s.Names(), "README")
}

func TestFuncs(t *testing.T) {
	fn, err := Inline(`<i style="width: {{pct .W}}; color: {{color .C}}; bottom: {{pct (last .P)}}"></i>`)
	require.NoError(t, err)

	out, err := fn(map[string]any{"W": 37.5, "C": "#ff0000", "P": []float64{100, 50, 0}})
	require.NoError(t, err)
	assert.Equal(t, `<i style="width: 37.5%; color: #ff0000; bottom: 0%"></i>`, out)

	out, err = fn(map[string]any{"W": 100.0, "C": "red;x:y", "P": []float64{}})
	require.NoError(t, err)
	assert.Equal(t, `<i style="width: 100%; color: transparent; bottom: 0%"></i>`, out)
}
