package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hierembed/trainsched/harness"
	"github.com/hierembed/trainsched/metric"
)

var (
	centroidsPath   string  // C×D centroid CSV
	predictionsPath string  // N×D predicted embedding CSV
	labelsPath      string  // N class labels
	tolerance       float64 // equality tolerance on distances
)

// EvalReport is the result of scoring one prediction file.
type EvalReport struct {
	Samples      int
	Correct      int
	Accuracy     float64
	MeanDistance float64
	PerClass     []ClassReport
	Confusion    [][]int // [true class][nearest centroid]
}

// ClassReport is the accuracy over samples of one true class.
type ClassReport struct {
	Class    int
	Samples  int
	Correct  int
	Accuracy float64
}

// evaluateCmd scores predicted embeddings by nearest-centroid lookup
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score predicted embeddings by nearest-centroid lookup",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		if centroidsPath == "" || predictionsPath == "" || labelsPath == "" {
			logrus.Fatalf("--centroids, --predictions and --labels are required")
		}
		centroids, err := harness.ReadMatrix(centroidsPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		predicted, err := harness.ReadMatrix(predictionsPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		labels, err := harness.ReadLabels(labelsPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		report, err := evaluateEmbeddings(centroids, predicted, labels, tolerance)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		printEvalReport(os.Stdout, report)
	},
}

// evaluateEmbeddings resolves labels to their centroids and scores every prediction.
func evaluateEmbeddings(centroids, predicted [][]float64, labels []int, tol float64) (*EvalReport, error) {
	if len(labels) != len(predicted) {
		return nil, fmt.Errorf("%w: %d labels for %d predictions", metric.ErrDimensionMismatch, len(labels), len(predicted))
	}
	if tol <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %g", tol)
	}
	cs, err := metric.NewCentroidSet(centroids)
	if err != nil {
		return nil, err
	}
	trueBatch, err := cs.Targets(labels)
	if err != nil {
		return nil, err
	}
	clf := metric.NewClassifier(cs)
	clf.Tolerance = tol
	correct, err := clf.Evaluate(predicted, trueBatch)
	if err != nil {
		return nil, err
	}
	meanDist, err := metric.MeanDistance(trueBatch, predicted)
	if err != nil {
		return nil, err
	}
	nearest, err := clf.Predict(predicted)
	if err != nil {
		return nil, err
	}

	report := &EvalReport{
		Samples:      len(correct),
		Accuracy:     metric.Accuracy(correct),
		MeanDistance: meanDist,
		PerClass:     make([]ClassReport, cs.Len()),
		Confusion:    make([][]int, cs.Len()),
	}
	for k := range report.PerClass {
		report.PerClass[k].Class = k
		report.Confusion[k] = make([]int, cs.Len())
	}
	for i, ok := range correct {
		report.Confusion[labels[i]][nearest[i]]++
		pc := &report.PerClass[labels[i]]
		pc.Samples++
		if ok {
			report.Correct++
			pc.Correct++
		}
	}
	for k := range report.PerClass {
		if pc := &report.PerClass[k]; pc.Samples > 0 {
			pc.Accuracy = float64(pc.Correct) / float64(pc.Samples)
		}
	}
	logrus.Debugf("evaluated %d samples against %d centroids of dimension %d", report.Samples, cs.Len(), cs.Dim())
	return report, nil
}

func printEvalReport(out io.Writer, r *EvalReport) {
	fmt.Fprintln(out, "=== Nearest-Centroid Evaluation ===")
	fmt.Fprintf(out, "Samples              : %d\n", r.Samples)
	fmt.Fprintf(out, "Correct              : %d\n", r.Correct)
	fmt.Fprintf(out, "Accuracy             : %.4f\n", r.Accuracy)
	fmt.Fprintf(out, "Mean Distance        : %.4f\n", r.MeanDistance)
	for _, pc := range r.PerClass {
		if pc.Samples == 0 {
			continue
		}
		fmt.Fprintf(out, "  class %-4d         : %d/%d (%.4f)\n", pc.Class, pc.Correct, pc.Samples, pc.Accuracy)
	}
	fmt.Fprintln(out, "Confusion (rows = true class, columns = nearest centroid):")
	for _, row := range r.Confusion {
		for j, n := range row {
			if j > 0 {
				fmt.Fprint(out, " ")
			}
			fmt.Fprintf(out, "%6d", n)
		}
		fmt.Fprintln(out)
	}
}

func init() {
	evaluateCmd.Flags().StringVar(&centroidsPath, "centroids", "", "CSV of class centroids, one row per class")
	evaluateCmd.Flags().StringVar(&predictionsPath, "predictions", "", "CSV of predicted embeddings, one row per sample")
	evaluateCmd.Flags().StringVar(&labelsPath, "labels", "", "CSV of true class labels, one per sample")
	evaluateCmd.Flags().Float64Var(&tolerance, "tolerance", metric.DefaultTolerance, "Distance equality tolerance")

	rootCmd.AddCommand(evaluateCmd)
}
