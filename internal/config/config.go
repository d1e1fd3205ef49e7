// Package config loads the optional viewkit.yaml and turns it into a ready
// view context.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/metrics"
	"github.com/go-drift/viewkit/pkg/templates"
	"github.com/go-drift/viewkit/pkg/view"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "viewkit.yaml"

// SchemaMajor is the only supported major version of the file format.
const SchemaMajor = "v1"

const defaultVersion = "v1.0.0"

// Config represents the optional viewkit.yaml configuration.
type Config struct {
	Version   string          `yaml:"version,omitempty"`
	Debug     bool            `yaml:"debug,omitempty"`
	Log       LogConfig       `yaml:"log"`
	Templates TemplatesConfig `yaml:"templates"`
	View      ViewConfig      `yaml:"view"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// TemplatesConfig points at an extra directory of *.tmpl files.
type TemplatesConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// ViewConfig holds context-wide view option defaults.
type ViewConfig struct {
	Tag   string `yaml:"tag,omitempty"`
	Class string `yaml:"class,omitempty"`
}

// MetricsConfig configures the Prometheus recorder.
type MetricsConfig struct {
	Namespace string `yaml:"namespace,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root         string
	Version      string
	Debug        bool
	LogLevel     slog.Level
	LogFormat    string
	TemplatesDir string
	Tag          string
	Class        string
	Namespace    string
}

// LoadOptional reads viewkit.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(errors.Wrapf(err, "failed to read %s", filepath.Base(path)))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError(errors.Wrapf(err, "failed to parse %s", filepath.Base(path)))
	}

	return &cfg, nil
}

// Resolve loads viewkit.yaml from dir (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir)
}

// ResolveFile loads the file at path and resolves it relative to its
// directory.
func ResolveFile(path string) (*Resolved, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(filepath.Dir(path))
}

// Resolve validates cfg and fills defaults. Relative paths are resolved
// against root.
func (cfg *Config) Resolve(root string) (*Resolved, error) {
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = defaultVersion
	}
	if !semver.IsValid(version) {
		return nil, configError(errors.Newf("invalid version %q", version))
	}
	if major := semver.Major(version); major != SchemaMajor {
		return nil, configError(errors.Newf("unsupported version %s (want %s.x.y)", version, SchemaMajor))
	}

	var level slog.Level
	if lv := strings.TrimSpace(cfg.Log.Level); lv != "" {
		if err := level.UnmarshalText([]byte(lv)); err != nil {
			return nil, configError(errors.Wrapf(err, "log.level"))
		}
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	switch format {
	case "":
		format = "text"
	case "text", "json":
	default:
		return nil, configError(errors.Newf("log.format must be text or json, got %q", cfg.Log.Format))
	}

	dir := strings.TrimSpace(cfg.Templates.Dir)
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}

	tag := strings.TrimSpace(cfg.View.Tag)
	if tag == "" {
		tag = "div"
	}

	namespace := strings.TrimSpace(cfg.Metrics.Namespace)
	if namespace == "" {
		namespace = "viewkit"
	}

	return &Resolved{
		Root:         root,
		Version:      version,
		Debug:        cfg.Debug,
		LogLevel:     level,
		LogFormat:    format,
		TemplatesDir: dir,
		Tag:          tag,
		Class:        strings.TrimSpace(cfg.View.Class),
		Namespace:    namespace,
	}, nil
}

// Logger returns a logger writing to w in the configured format and level.
func (r *Resolved) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: r.LogLevel}
	if r.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Templates returns the embedded default templates overlaid with the
// configured directory, if any.
func (r *Resolved) Templates() (*templates.Set, error) {
	set, err := templates.NewDefault()
	if err != nil {
		return nil, err
	}
	if r.TemplatesDir == "" {
		return set, nil
	}
	if err := set.ParseFS(os.DirFS(r.TemplatesDir)); err != nil {
		return nil, configError(errors.Wrapf(err, "templates.dir %s", r.TemplatesDir))
	}
	return set, nil
}

// Recorder registers a Prometheus recorder under the configured namespace.
func (r *Resolved) Recorder(reg prometheus.Registerer) (*metrics.Prometheus, error) {
	return metrics.NewPrometheus(r.Namespace, reg)
}

// NewContext builds a view context from the configuration. Extra options
// are applied last.
func (r *Resolved) NewContext(logger *slog.Logger, opts ...view.ContextOption) (*view.Context, error) {
	set, err := r.Templates()
	if err != nil {
		return nil, err
	}
	base := []view.ContextOption{
		view.WithLogger(logger),
		view.WithTemplates(set),
		view.WithDefaults(view.Options{Tag: r.Tag, ClassName: r.Class}),
		view.WithDebug(r.Debug),
	}
	return view.NewContext(append(base, opts...)...), nil
}

func configError(err error) error {
	return errors.New("config", errors.KindConfig, "", err)
}
