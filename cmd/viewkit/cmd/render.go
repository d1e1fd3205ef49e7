package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/viewkit/pkg/surface"
)

func init() {
	RegisterCommand(newRenderCommand)
}

func newRenderCommand() *cobra.Command {
	var modelPath string
	c := &cobra.Command{
		Use:   "render --model model.yaml",
		Short: "Render a bubble legend",
		Long: `Render a bubble legend from a yaml model and print its markup.

The model file holds sizes, values, avg and fillColor. Templates and
element defaults come from viewkit.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			container, bubble, err := s.renderLegend(modelPath)
			if err != nil {
				return err
			}
			defer container.Teardown()

			markup := bubble.Element().HTML()
			if el, ok := bubble.Element().(*surface.Element); ok {
				markup = el.OuterHTML()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), markup)
			return err
		},
	}
	c.Flags().StringVar(&modelPath, "model", "", "path to the legend model yaml")
	_ = c.MarkFlagRequired("model")
	return c
}
