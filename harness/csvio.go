package harness

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// readRecords reads every CSV row of path. A first row whose first cell is not
// a number is treated as a header and dropped.
func readRecords(path, what string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s CSV: %w", what, err)
	}
	defer file.Close()
	return parseRecords(file, what)
}

func parseRecords(r io.Reader, what string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s CSV: %w", what, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(records[0][0]), 64); err != nil {
			records = records[1:]
		}
	}
	return records, nil
}

// ReadMetricHistory reads one validation metric per row from the first column.
func ReadMetricHistory(path string) ([]float64, error) {
	records, err := readRecords(path, "metric")
	if err != nil {
		return nil, err
	}
	history := make([]float64, 0, len(records))
	for i, record := range records {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("metric CSV row %d: invalid value: %w", i+1, err)
		}
		history = append(history, v)
	}
	return history, nil
}

// ReadMatrix reads a dense matrix, one row per CSV record. All rows must have
// the same number of columns.
func ReadMatrix(path string) ([][]float64, error) {
	records, err := readRecords(path, "matrix")
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, len(records))
	for i, record := range records {
		if len(record) != len(records[0]) {
			return nil, fmt.Errorf("matrix CSV row %d: %d columns, want %d", i+1, len(record), len(records[0]))
		}
		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("matrix CSV row %d column %d: %w", i+1, j+1, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// ReadLabels reads one integer class label per row from the first column.
func ReadLabels(path string) ([]int, error) {
	records, err := readRecords(path, "label")
	if err != nil {
		return nil, err
	}
	labels := make([]int, 0, len(records))
	for i, record := range records {
		v, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("label CSV row %d: invalid label: %w", i+1, err)
		}
		labels = append(labels, v)
	}
	return labels, nil
}
