package niio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KyungWonPark/meants/internal/niio"
	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCSVRoundTrip writes a matrix out and reads it back; values must be
// numerically equal and the shape preserved.
func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meants.csv")

	matrix := mat64.NewDense(3, 4, []float64{
		1, 2.5, -3, 0.001,
		4e-8, 5, 6, 7,
		-8, 9.25, 10, 1e12,
	})

	require.NoError(t, niio.WriteCSV(path, matrix))

	back, err := niio.ReadCSV(path)
	require.NoError(t, err)

	rows, cols := back.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 4, cols)
	assert.True(t, mat64.EqualApprox(matrix, back, 1e-12))
}

func TestWriteCSV_NoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "row.csv")

	matrix := mat64.NewDense(1, 3, []float64{4, 5, 6})
	require.NoError(t, niio.WriteCSV(path, matrix))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "4,5,6\n", string(raw), "comma separated, no header")
}

func TestReadCSV_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := niio.ReadCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = niio.ReadCSV(empty)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("1,2\n3,x\n"), 0644))
	_, err = niio.ReadCSV(bad)
	assert.Error(t, err)
}

// TestLabelsRoundTrip checks the secondary label-list artifact keeps its
// ordering.
func TestLabelsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.csv")

	labels := []float64{1, 2, 5, 17}
	require.NoError(t, niio.WriteLabels(path, labels))

	back, err := niio.ReadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, labels, back)
}
