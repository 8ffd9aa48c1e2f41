package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hierembed/trainsched/harness"
	"github.com/hierembed/trainsched/schedule"
	"github.com/hierembed/trainsched/trace"
)

var (
	configPath    string // YAML run config
	scheduleName  string // schedule name, overrides the config
	numSamples    int    // training set size
	batchSize     int    // samples per optimizer step
	epochs        int    // epochs to replay, 0 = recommended horizon
	optionsPath   string // YAML schedule options, replaces the config's options block
	metricsPath   string // validation metric history CSV
	resumePath    string // snapshot to resume from
	saveStatePath string // snapshot to write after the run
	tracePath     string // rate trace CSV output
	traceLevel    string // none, epochs, iterations
)

// runRequest is everything a replay needs after flags and files are resolved.
type runRequest struct {
	Config        RunConfig
	Metrics       []float64
	ResumePath    string
	SaveStatePath string
	TracePath     string
	TraceLevel    trace.TraceLevel
}

// runCmd replays a schedule over its horizon
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a learning-rate schedule and print the rate per epoch",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveRunConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level: %s", traceLevel)
		}
		req := runRequest{
			Config:        cfg,
			ResumePath:    resumePath,
			SaveStatePath: saveStatePath,
			TracePath:     tracePath,
			TraceLevel:    trace.TraceLevel(traceLevel),
		}
		if metricsPath != "" {
			req.Metrics, err = harness.ReadMetricHistory(metricsPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		if err := runSchedule(req, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// resolveRunConfig loads --config (or the defaults) and applies the flags the user set explicitly.
func resolveRunConfig(cmd *cobra.Command) (RunConfig, error) {
	cfg := DefaultRunConfig()
	if configPath != "" {
		var err error
		if cfg, err = LoadRunConfig(configPath); err != nil {
			return RunConfig{}, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("schedule") {
		cfg.Schedule = scheduleName
	}
	if flags.Changed("num-samples") {
		cfg.NumSamples = numSamples
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = batchSize
	}
	if flags.Changed("epochs") {
		cfg.Epochs = epochs
	}
	if optionsPath != "" {
		o, err := schedule.LoadOverrides(optionsPath)
		if err != nil {
			return RunConfig{}, err
		}
		cfg.Options = o
	}
	return cfg, cfg.Validate()
}

// runSchedule builds the schedule, replays it and writes the report to out.
func runSchedule(req runRequest, out io.Writer) error {
	cfg := req.Config
	s, horizon, err := schedule.Build(cfg.Schedule, cfg.NumSamples, cfg.BatchSize, cfg.Options)
	if err != nil {
		return err
	}
	perEpoch, err := schedule.IterationsPerEpoch(cfg.NumSamples, cfg.BatchSize)
	if err != nil {
		return err
	}
	if req.ResumePath != "" {
		snap, err := schedule.LoadSnapshot(req.ResumePath)
		if err != nil {
			return err
		}
		if err := schedule.Resume(s, snap); err != nil {
			return err
		}
		logrus.Infof("Resumed %s at epoch %d", s.Name(), s.State().Epoch)
	}

	level := req.TraceLevel
	if level == "" {
		level = trace.TraceLevelEpochs
	}
	if req.TracePath != "" && level == trace.TraceLevelNone {
		return fmt.Errorf("trace file %s requested with trace level %q", req.TracePath, level)
	}
	runner, err := harness.NewRunner(s, harness.RunConfig{
		IterationsPerEpoch: perEpoch,
		Epochs:             cfg.Epochs,
		Metrics:            req.Metrics,
		Trace:              trace.TraceConfig{Level: level},
	})
	if err != nil {
		return err
	}
	logrus.Infof("Replaying %s: recommended horizon %d epochs, %d iterations per epoch", s.Name(), horizon, perEpoch)

	results, runErr := runner.Run()
	printRates(out, results)
	if runErr != nil {
		return runErr
	}
	if runner.Trace != nil {
		printSummary(out, s.Name(), trace.Summarize(runner.Trace))
		if req.TracePath != "" {
			if err := writeTrace(req.TracePath, runner.Trace); err != nil {
				return err
			}
		}
	}
	if req.SaveStatePath != "" {
		if err := schedule.SaveSnapshot(req.SaveStatePath, schedule.TakeSnapshot(s)); err != nil {
			return err
		}
		logrus.Infof("Saved %s state at epoch %d to %s", s.Name(), s.State().Epoch, req.SaveStatePath)
	}
	return nil
}

func writeTrace(path string, rt *trace.RunTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	if err := trace.WriteRatesCSV(f, rt); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printRates(out io.Writer, results []harness.EpochResult) {
	fmt.Fprintln(out, "epoch  rate          event")
	for _, r := range results {
		fmt.Fprintf(out, "%5d  %-12.6g  %s\n", r.Epoch, r.Rate, r.Event)
	}
}

func printSummary(out io.Writer, name string, s *trace.TraceSummary) {
	fmt.Fprintf(out, "=== Schedule Summary (%s) ===\n", name)
	fmt.Fprintf(out, "Recorded Steps       : %d\n", s.Steps)
	if s.Steps > 0 {
		fmt.Fprintf(out, "Min Rate             : %g\n", s.MinRate)
		fmt.Fprintf(out, "Max Rate             : %g\n", s.MaxRate)
		fmt.Fprintf(out, "Mean Rate            : %g\n", s.MeanRate)
		fmt.Fprintf(out, "Final Rate           : %g\n", s.FinalRate)
	}
	fmt.Fprintf(out, "Warm Restarts        : %d\n", s.Restarts)
	fmt.Fprintf(out, "Plateau Reductions   : %d\n", s.Reductions)
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML run config (schedule, num_samples, batch_size, epochs, options)")
	runCmd.Flags().StringVar(&scheduleName, "schedule", "resnet-schedule", "Schedule name (sgd, sgdr, clr, resnet-schedule)")
	runCmd.Flags().IntVar(&numSamples, "num-samples", defaultNumSamples, "Number of training samples")
	runCmd.Flags().IntVar(&batchSize, "batch-size", defaultBatchSize, "Training batch size")
	runCmd.Flags().IntVar(&epochs, "epochs", 0, "Epochs to replay (0 = recommended horizon)")
	runCmd.Flags().StringVar(&optionsPath, "options", "", "Path to YAML schedule options")
	runCmd.Flags().StringVar(&metricsPath, "metrics", "", "CSV with one validation metric per epoch (required by sgd)")
	runCmd.Flags().StringVar(&resumePath, "resume", "", "Snapshot to resume from (.yaml/.yml or binary)")
	runCmd.Flags().StringVar(&saveStatePath, "save-state", "", "Write the schedule snapshot here after the run")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write the rate trace CSV here")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "epochs", "Trace detail (none, epochs, iterations)")

	rootCmd.AddCommand(runCmd)
}
