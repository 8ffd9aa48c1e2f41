package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hierembed/trainsched/schedule"
)

// horizonCmd prints the recommended number of epochs for a schedule
var horizonCmd = &cobra.Command{
	Use:   "horizon",
	Short: "Print the recommended training horizon of a schedule",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveRunConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := printHorizon(os.Stdout, cfg); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func printHorizon(out io.Writer, cfg RunConfig) error {
	s, horizon, err := schedule.Build(cfg.Schedule, cfg.NumSamples, cfg.BatchSize, cfg.Options)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d epochs\n", s.Name(), horizon)
	return nil
}

func init() {
	horizonCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML run config")
	horizonCmd.Flags().StringVar(&scheduleName, "schedule", "resnet-schedule", "Schedule name (sgd, sgdr, clr, resnet-schedule)")
	horizonCmd.Flags().IntVar(&numSamples, "num-samples", defaultNumSamples, "Number of training samples")
	horizonCmd.Flags().IntVar(&batchSize, "batch-size", defaultBatchSize, "Training batch size")
	horizonCmd.Flags().StringVar(&optionsPath, "options", "", "Path to YAML schedule options")

	rootCmd.AddCommand(horizonCmd)
}
