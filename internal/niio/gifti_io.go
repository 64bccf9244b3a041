package niio

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"math"
	"os"

	"github.com/gonum/matrix/mat64"
)

// LoadGifti reads a metric, shape or label file as vertices by maps. Each
// data array contributes its columns; geometry arrays are skipped, so a
// surf.gii with nothing else in it is an error.
func LoadGifti(path string) (*mat64.Dense, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("niio: failed to open %s: %v", path, err)
	}

	var file giftiFile
	if err := xml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("niio: failed to parse gifti %s: %v", path, err)
	}

	var columns [][]float64
	rows := -1

	for i := range file.Arrays {
		da := &file.Arrays[i]
		if isSurfaceGeometry(da.Intent) {
			continue
		}

		values, err := da.decode()
		if err != nil {
			return nil, fmt.Errorf("%v (%s)", err, path)
		}

		if rows == -1 {
			rows = da.Dim0
		} else if da.Dim0 != rows {
			return nil, fmt.Errorf("niio: gifti %s mixes arrays of %d and %d vertices", path, rows, da.Dim0)
		}

		cols := len(values) / da.Dim0
		for c := 0; c < cols; c++ {
			column := make([]float64, da.Dim0)
			for v := 0; v < da.Dim0; v++ {
				// Row-major within an array: sample index varies slowest.
				column[v] = values[v*cols+c]
			}
			columns = append(columns, column)
		}
	}

	if rows < 1 || len(columns) == 0 {
		return nil, fmt.Errorf("niio: gifti %s carries no data arrays", path)
	}

	mat := mat64.NewDense(rows, len(columns), nil)
	for c, column := range columns {
		for v := 0; v < rows; v++ {
			mat.Set(v, c, column[v])
		}
	}

	return mat, nil
}

// SaveGiftiMap writes one value per vertex as a single float32 metric
// array, base64 encoded, little endian.
func SaveGiftiMap(path string, values []float64) error {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(float32(v)))
	}

	file := giftiFile{
		Version: "1.0",
		NumDA:   "1",
		Arrays: []giftiArray{{
			Intent:         "NIFTI_INTENT_NONE",
			DataType:       "NIFTI_TYPE_FLOAT32",
			IndexingOrder:  "RowMajorOrder",
			Dimensionality: 1,
			Dim0:           len(values),
			Encoding:       "Base64Binary",
			Endian:         "LittleEndian",
			Data:           base64.StdEncoding.EncodeToString(raw),
		}},
	}

	out, err := xml.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("niio: failed to marshal gifti: %v", err)
	}

	payload := append([]byte(xml.Header), out...)
	payload = append(payload, '\n')

	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("niio: failed to write %s: %v", path, err)
	}

	return nil
}
