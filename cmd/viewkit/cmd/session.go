package cmd

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/viewkit/internal/config"
	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/legend"
	"github.com/go-drift/viewkit/pkg/view"
)

// session is the view context one command invocation works in.
type session struct {
	cfg      *config.Resolved
	ctx      *view.Context
	registry *prometheus.Registry
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger(cmd.ErrOrStderr())
	errors.SetHandler(&errors.LogHandler{Logger: logger})

	registry := prometheus.NewRegistry()
	recorder, err := cfg.Recorder(registry)
	if err != nil {
		return nil, err
	}

	ctx, err := cfg.NewContext(logger, view.WithRecorder(recorder))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, ctx: ctx, registry: registry}, nil
}

func resolveConfig(cmd *cobra.Command) (*config.Resolved, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.ResolveFile(path)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Resolve(dir)
}

// loadModel reads a legend model from a yaml file.
func loadModel(path string) (*legend.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model")
	}
	var d legend.Data
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filepath.Base(path))
	}
	return legend.NewModel(d), nil
}

// renderLegend builds a rendered legend inside a container view.
func (s *session) renderLegend(modelPath string) (*view.View, *legend.Bubble, error) {
	model, err := loadModel(modelPath)
	if err != nil {
		return nil, nil, err
	}
	container, err := view.New(s.ctx, view.Options{ClassName: "viewkit-root"})
	if err != nil {
		return nil, nil, err
	}
	bubble, err := legend.NewBubble(s.ctx, model, view.Options{})
	if err != nil {
		container.Teardown()
		return nil, nil, err
	}
	if err := container.AttachChild(bubble); err != nil {
		bubble.Teardown()
		container.Teardown()
		return nil, nil, err
	}
	if err := bubble.Render(); err != nil {
		container.Teardown()
		return nil, nil, err
	}
	return container, bubble, nil
}
