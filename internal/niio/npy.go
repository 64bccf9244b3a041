package niio

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
)

// WriteNpy writes a matrix as a numpy npy binary file.
func WriteNpy(path string, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()
	raw := matrix.RawMatrix()

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("niio: failed to open %s: %v", path, err)
	}
	w.Shape = []int{rows, cols}
	w.Version = 2

	if err := w.WriteFloat64(raw.Data); err != nil {
		return fmt.Errorf("niio: failed to write %s: %v", path, err)
	}

	return nil
}

// ReadNpy reads a numpy npy binary file as a matrix.
func ReadNpy(path string) (*mat64.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("niio: failed to open %s: %v", path, err)
	}
	if len(r.Shape) != 2 {
		return nil, fmt.Errorf("niio: %s is %d-dimensional, expected 2", path, len(r.Shape))
	}

	data, err := r.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("niio: failed to read %s: %v", path, err)
	}

	return mat64.NewDense(r.Shape[0], r.Shape[1], data), nil
}
