package main

import (
	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"
	"ivf_stage_bot/internal/domain/stage"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type timelineRow struct {
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	FromDay int    `yaml:"from_day"`
	ToDay   int    `yaml:"to_day"`
	When    string `yaml:"when"`
}

func newTimelineCmd() *cobra.Command {
	var cycleType string
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the expected milestones of a cycle type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ct, err := cycle.ParseType(cycleType)
			if err != nil {
				return err
			}
			tl := stage.DefaultTimeline()
			expected := tl.For(ct)
			rows := make([]timelineRow, 0, len(expected))
			for _, e := range expected {
				rows = append(rows, timelineRow{
					Type:    e.Type,
					Title:   milestone.FormatTitle(e.Type),
					FromDay: e.FromDay,
					ToDay:   e.ToDay,
					When:    tl.PredictiveText(ct, e.Type),
				})
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rows); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&cycleType, "type", "", "cycle type (fresh-ivf, ivf-frozen, iui, egg-freezing)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
