package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"
	"ivf_stage_bot/internal/domain/stage"
	"ivf_stage_bot/internal/infra/referencedata"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// milestoneInput is one entry of the --milestones file.
type milestoneInput struct {
	Type   string `yaml:"type"`
	Title  string `yaml:"title"`
	Status string `yaml:"status"`
	Date   string `yaml:"date"`
}

type resolveOutput struct {
	CycleType string        `yaml:"cycle_type"`
	CycleDay  int           `yaml:"cycle_day"`
	Pending   bool          `yaml:"pending"`
	Result    *stage.Result `yaml:"result,omitempty"`
}

type resolveOptions struct {
	cycleType      string
	start          string
	today          string
	milestonesPath string
	referencePath  string
	recencyDays    int
	verbose        bool
}

func newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the stage of a cycle",
		Example: "  stagectl resolve --type ivf-frozen --start 2025-01-01 --today 2025-01-04\n" +
			"  stagectl resolve --type fresh-ivf --start 2025-01-01 --milestones ms.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.cycleType, "type", "", "cycle type (fresh-ivf, ivf-frozen, iui, egg-freezing)")
	cmd.Flags().StringVar(&opts.start, "start", "", "cycle start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.today, "today", "", "date to resolve for, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&opts.milestonesPath, "milestones", "", "YAML list of recorded milestones")
	cmd.Flags().StringVar(&opts.referencePath, "reference", "", "YAML stage reference data (default: bundled)")
	cmd.Flags().IntVar(&opts.recencyDays, "recency-days", 3, "window for the recently completed milestone fallback")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log status parsing warnings to stderr")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func runResolve(cmd *cobra.Command, opts *resolveOptions) error {
	ct, err := cycle.ParseType(opts.cycleType)
	if err != nil {
		return err
	}
	start, err := parseDate("start", opts.start)
	if err != nil {
		return err
	}
	today := time.Now()
	if opts.today != "" {
		if today, err = parseDate("today", opts.today); err != nil {
			return err
		}
	}
	if opts.recencyDays < 0 {
		return fmt.Errorf("--recency-days must be >= 0, got %d", opts.recencyDays)
	}

	milestones, err := loadMilestones(opts.milestonesPath)
	if err != nil {
		return err
	}

	source := referencedata.NewBundledSource()
	if opts.referencePath != "" {
		source = referencedata.NewFileSource(opts.referencePath)
	}
	entries, err := source.Load(context.Background())
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	if !opts.verbose {
		log.SetLevel(logrus.ErrorLevel)
	}
	resolver := stage.NewResolver(
		stage.WithRecencyWindow(opts.recencyDays),
		stage.WithLogger(logrus.NewEntry(log)),
	)

	c := &cycle.Cycle{Type: ct, StartDate: start, Status: cycle.StatusActive}
	res := resolver.ResolveStage(c, milestones, stage.NewCatalog(entries), today)

	out := resolveOutput{CycleType: string(ct), CycleDay: c.Day(today), Pending: res == nil, Result: res}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func parseDate(flag, value string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %q is not YYYY-MM-DD", flag, value)
	}
	return d, nil
}

func loadMilestones(path string) ([]*milestone.Milestone, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read milestones file: %w", err)
	}
	var inputs []milestoneInput
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse milestones file %s: %w", path, err)
	}

	out := make([]*milestone.Milestone, 0, len(inputs))
	for i, in := range inputs {
		m := &milestone.Milestone{ID: int64(i + 1), Type: in.Type, Title: in.Title, Status: in.Status}
		if in.Date != "" {
			d, err := time.Parse(time.DateOnly, in.Date)
			if err != nil {
				return nil, fmt.Errorf("milestone %d (%s): date %q is not YYYY-MM-DD", i+1, in.Type, in.Date)
			}
			m.Date = sql.NullTime{Time: d, Valid: true}
		}
		out = append(out, m)
	}
	return out, nil
}
