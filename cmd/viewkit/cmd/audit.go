package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
)

func init() {
	RegisterCommand(newAuditCommand)
}

func newAuditCommand() *cobra.Command {
	var modelPath string
	c := &cobra.Command{
		Use:   "audit --model model.yaml",
		Short: "Render a legend and audit the view tree",
		Long: `Render a bubble legend, then report views held by other views without
being their children, the recorded metrics and the live view count
before and after teardown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			container, _, err := s.renderLegend(modelPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			findings := s.ctx.AuditUntracked()
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Parent", "Type", "Field", "Child"})
			for _, f := range findings {
				table.Append([]string{f.Parent, f.ParentType, f.Field, f.Child})
			}
			fmt.Fprintf(out, "Untracked views: %d\n", len(findings))
			table.Render()

			before := s.ctx.LiveCount()
			container.Teardown()
			after := s.ctx.LiveCount()

			fmt.Fprintln(out)
			if err := writeMetrics(out, s); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nLive views: %d before teardown, %d after\n", before, after)
			return nil
		},
	}
	c.Flags().StringVar(&modelPath, "model", "", "path to the legend model yaml")
	_ = c.MarkFlagRequired("model")
	return c
}

func writeMetrics(out io.Writer, s *session) error {
	families, err := s.registry.Gather()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Family", "Metric", "Value"})
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			table.Append([]string{mf.GetName(), metricLabel(m), strconv.FormatFloat(m.GetGauge().GetValue(), 'f', -1, 64)})
		}
	}
	table.Render()
	return nil
}

func metricLabel(m *dto.Metric) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == "metric" {
			return lp.GetValue()
		}
	}
	return ""
}
