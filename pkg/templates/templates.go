// Package templates provides the templating collaborator: named templates
// resolved to render functions that turn a data bag into markup.
package templates

import (
	"embed"
	"html/template"
	"io/fs"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-drift/viewkit/pkg/errors"
)

//go:embed defaults
var defaultsFS embed.FS

// Defaults returns the embedded default templates, rooted so that
// "legend/bubble.tmpl" is named "legend/bubble".
func Defaults() fs.FS {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}

// Func renders data into markup. It has no side effects.
type Func func(data any) (string, error)

// Engine resolves template names to render functions.
type Engine interface {
	Lookup(name string) (Func, error)
}

// Ext is the file extension of template files.
const Ext = ".tmpl"

// Set is an Engine over html/template. It is safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	named map[string]*template.Template
}

// New returns an empty set.
func New() *Set {
	return &Set{named: make(map[string]*template.Template)}
}

// NewDefault returns a set loaded with the embedded default templates.
func NewDefault() (*Set, error) {
	s := New()
	if err := s.ParseFS(Defaults()); err != nil {
		return nil, err
	}
	return s, nil
}

// Add compiles text under name, replacing any previous template.
func (s *Set) Add(name, text string) error {
	t, err := compile(name, text)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.named[name] = t
	return nil
}

// ParseFS adds every *.tmpl file of fsys, named by its slash path without
// the extension. Files replace templates already in the set.
func (s *Set) ParseFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != Ext {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		return s.Add(strings.TrimSuffix(p, Ext), string(data))
	})
}

// Names returns the registered template names.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.named))
	for name := range s.named {
		names = append(names, name)
	}
	return names
}

// Lookup returns the render function for name. An unknown name is a
// KindMissingTemplate error wrapping errors.ErrTemplateNotFound.
func (s *Set) Lookup(name string) (Func, error) {
	s.mu.RLock()
	t, ok := s.named[name]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New("templates.Lookup", errors.KindMissingTemplate, "",
			errors.Wrapf(errors.ErrTemplateNotFound, "%q", name))
	}
	return execFunc(t), nil
}

// Inline compiles an anonymous template, used for per-view overrides.
func Inline(text string) (Func, error) {
	t, err := compile("inline", text)
	if err != nil {
		return nil, err
	}
	return execFunc(t), nil
}

func compile(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, errors.New("templates.Parse", errors.KindRender, "", errors.Wrapf(err, "template %q", name))
	}
	return t, nil
}

func execFunc(t *template.Template) Func {
	return func(data any) (string, error) {
		var sb strings.Builder
		if err := t.Execute(&sb, data); err != nil {
			return "", errors.New("templates.Execute", errors.KindRender, "", errors.Wrapf(err, "template %q", t.Name()))
		}
		return sb.String(), nil
	}
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+)$`)

var funcs = template.FuncMap{
	"pct": func(v float64) template.CSS {
		return template.CSS(strconv.FormatFloat(v, 'f', -1, 64) + "%")
	},
	"last": func(vs []float64) float64 {
		if len(vs) == 0 {
			return 0
		}
		return vs[len(vs)-1]
	},
	"color": func(c string) template.CSS {
		if !colorPattern.MatchString(c) {
			return "transparent"
		}
		return template.CSS(c)
	},
}
