package niio

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// WriteCSV writes a matrix as comma-separated text, one row per line, no
// header. Rows are formatted in parallel and written in order.
func WriteCSV(path string, matrix *mat64.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("niio: failed to create %s: %v", path, err)
	}
	defer f.Close()

	rows, _ := matrix.Dims()
	lines := make([]string, rows)

	order := make(chan int, runtime.NumCPU())
	var wg sync.WaitGroup

	wg.Add(rows)

	for w := 0; w < runtime.NumCPU(); w++ {
		go func() {
			for row := range order {
				lines[row] = formatRow(matrix, row)
				wg.Done()
			}
		}()
	}

	for row := 0; row < rows; row++ {
		order <- row
	}

	wg.Wait()
	close(order)

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("niio: failed to write %s: %v", path, err)
		}
	}

	return nil
}

func formatRow(matrix *mat64.Dense, row int) string {
	_, cols := matrix.Dims()

	fields := make([]string, cols)
	for t := 0; t < cols; t++ {
		fields[t] = strconv.FormatFloat(matrix.At(row, t), 'g', -1, 64)
	}

	return strings.Join(fields, ",")
}

// ReadCSV reads comma-separated text back into a matrix sized by the
// file's own row and column counts.
func ReadCSV(path string) (*mat64.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("niio: failed to open %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("niio: failed to parse %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("niio: %s is empty", path)
	}

	rows := len(records)
	cols := len(records[0])
	matrix := mat64.NewDense(rows, cols, nil)

	for i, record := range records {
		if len(record) != cols {
			return nil, fmt.Errorf("niio: %s row %d has %d fields, expected %d", path, i, len(record), cols)
		}
		for t, field := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("niio: %s row %d: %v", path, i, err)
			}
			matrix.Set(i, t, value)
		}
	}

	return matrix, nil
}

// WriteLabels writes the numeric labels backing each output row, one per
// line, same order as the rows.
func WriteLabels(path string, labels []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("niio: failed to create %s: %v", path, err)
	}
	defer f.Close()

	for _, label := range labels {
		if _, err := fmt.Fprintln(f, strconv.FormatFloat(label, 'g', -1, 64)); err != nil {
			return fmt.Errorf("niio: failed to write %s: %v", path, err)
		}
	}

	return nil
}

// ReadLabels reads a label list written by WriteLabels.
func ReadLabels(path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("niio: failed to open %s: %v", path, err)
	}

	var labels []float64
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		value, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("niio: %s: %v", path, err)
		}
		labels = append(labels, value)
	}

	return labels, nil
}
