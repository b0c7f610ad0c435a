package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/jedisct1/dlog"
	"github.com/spf13/cobra"

	"github.com/djdv/go-setassoc/internal/config"
	"github.com/djdv/go-setassoc/internal/policy"
	"github.com/djdv/go-setassoc/internal/sim"
	"github.com/djdv/go-setassoc/internal/trace"
)

type source struct {
	name string
	keys []uint32
}

type runOptions struct {
	*rootOptions
	capacity    int
	policies    []string
	patterns    []string
	traceFile   string
	seed        int64
	warmup      int
	reportFile  string
	metricsFile string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Replay every configured pattern (or a trace file) against every configured policy",
		Args:  cobra.NoArgs,
		RunE:  opts.run,
	}
	flags := runCmd.Flags()
	flags.IntVar(&opts.capacity, "capacity", 0, "entries per cache (power of two, >=4)")
	flags.StringSliceVar(&opts.policies, "policies", nil, "policies to compare")
	flags.StringSliceVar(&opts.patterns, "patterns", nil, "built-in patterns to generate")
	flags.StringVar(&opts.traceFile, "trace", "", "replay keys from this file instead of patterns")
	flags.Int64Var(&opts.seed, "seed", 0, "pattern generator seed")
	flags.IntVar(&opts.warmup, "warmup", 0, "accesses to replay before counting")
	flags.StringVar(&opts.reportFile, "report-file", "", "append results to this (rotated) file")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus text metrics to this file")
	return runCmd
}

func (opts *runOptions) apply(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("capacity") {
		c.Capacity = opts.capacity
	}
	if flags.Changed("policies") {
		c.Policies = opts.policies
	}
	if flags.Changed("patterns") {
		c.Patterns = opts.patterns
	}
	if flags.Changed("trace") {
		c.TraceFile = opts.traceFile
	}
	if flags.Changed("seed") {
		c.Seed = opts.seed
	}
	if flags.Changed("warmup") {
		c.Warmup = opts.warmup
	}
	if flags.Changed("report-file") {
		c.ReportFile = opts.reportFile
	}
	if flags.Changed("metrics-file") {
		c.MetricsFile = opts.metricsFile
	}
}

func (opts *runOptions) run(cmd *cobra.Command, _ []string) error {
	c := opts.settings
	opts.apply(cmd, &c)
	if err := c.Validate(); err != nil {
		return err
	}
	sources, err := loadSources(c)
	if err != nil {
		return err
	}
	report, err := reportWriter(cmd.OutOrStdout(), c)
	if err != nil {
		return err
	}
	defer report.Close()

	var (
		ctx     = cmd.Context()
		metrics = sim.NewMetrics()
	)
	for _, src := range sources {
		for _, name := range c.Policies {
			p, err := policy.New(name, c.Capacity)
			if err != nil {
				return err
			}
			dlog.Debugf("Replaying %d keys from [%s] against [%s]", len(src.keys), src.name, name)
			result, err := sim.Run(ctx, p, src.keys, sim.Options{
				Pattern: src.name,
				Warmup:  c.Warmup,
				EWMAAge: c.EWMAAge,
				Metrics: metrics,
			})
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(report, result); err != nil {
				return err
			}
			dlog.Infof("%s/%s: %.2f%% hits", result.Policy, result.Pattern, result.HitRate()*100)
		}
	}
	if c.MetricsFile != "" {
		if err := metrics.WriteFile(c.MetricsFile); err != nil {
			return err
		}
		dlog.Noticef("Metrics written to [%s]", c.MetricsFile)
	}
	return nil
}

func loadSources(c config.Config) ([]source, error) {
	if c.TraceFile != "" {
		keys, err := trace.ReadFile(c.TraceFile)
		if err != nil {
			return nil, err
		}
		return []source{{name: filepath.Base(c.TraceFile), keys: keys}}, nil
	}
	sources := make([]source, 0, len(c.Patterns))
	for _, name := range c.Patterns {
		pattern, ok := trace.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown pattern %q", name)
		}
		rng := trace.NewRNG(c.Seed)
		sources = append(sources, source{
			name: pattern.Name,
			keys: pattern.Generate(c.Capacity, rng),
		})
	}
	return sources, nil
}
