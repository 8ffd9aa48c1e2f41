package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteRatesCSV writes the rate records with a header row.
func WriteRatesCSV(w io.Writer, rt *RunTrace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "iteration", "rate", "cycle_index", "event"}); err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}
	for _, r := range rt.Rates {
		row := []string{
			strconv.Itoa(r.Epoch),
			strconv.Itoa(r.Iteration),
			strconv.FormatFloat(r.Rate, 'g', -1, 64),
			strconv.Itoa(r.CycleIndex),
			string(r.Event),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing trace row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
