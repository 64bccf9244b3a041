package roi_test

import (
	"testing"

	"github.com/KyungWonPark/meants/internal/roi"
	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMeanTimeseries_SingleLabel checks that label 0 samples are excluded
// and the remaining rows are averaged exactly.
func TestMeanTimeseries_SingleLabel(t *testing.T) {
	fn := mat64.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	seed := mat64.NewDense(3, 1, []float64{0, 1, 1})

	out, labels, err := roi.MeanTimeseries(fn, seed, roi.Options{})
	require.NoError(t, err)

	rows, cols := out.Dims()
	assert.Equal(t, 1, rows, "one row per distinct non-zero label")
	assert.Equal(t, 2, cols)
	assert.Equal(t, 4.0, out.At(0, 0), "mean of rows 2 and 3")
	assert.Equal(t, 5.0, out.At(0, 1))
	assert.Equal(t, []float64{1}, labels)
}

// TestMeanTimeseries_LabelOrdering verifies one row per label in
// ascending label order, each an exact subset mean.
func TestMeanTimeseries_LabelOrdering(t *testing.T) {
	fn := mat64.NewDense(4, 3, []float64{
		1, 2, 3,
		10, 20, 30,
		3, 4, 5,
		100, 200, 300,
	})
	seed := mat64.NewDense(4, 1, []float64{2, 5, 2, 1})

	out, labels, err := roi.MeanTimeseries(fn, seed, roi.Options{})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 5}, labels, "labels sorted ascending")

	rows, _ := out.Dims()
	require.Equal(t, 3, rows)
	assert.Equal(t, 100.0, out.At(0, 0), "label 1 row")
	assert.Equal(t, 2.0, out.At(1, 0), "label 2 row is mean of samples 0 and 2")
	assert.Equal(t, 3.0, out.At(1, 1))
	assert.Equal(t, 20.0, out.At(2, 1), "label 5 row")
}

// TestMeanTimeseries_ShapeMismatch covers disagreement on the sample axis
// between any pair of inputs.
func TestMeanTimeseries_ShapeMismatch(t *testing.T) {
	fn := mat64.NewDense(3, 2, nil)
	seed := mat64.NewDense(2, 1, nil)

	_, _, err := roi.MeanTimeseries(fn, seed, roi.Options{})
	assert.ErrorIs(t, err, roi.ErrShapeMismatch, "functional vs seed")

	seed = mat64.NewDense(3, 1, []float64{1, 1, 1})
	mask := mat64.NewDense(2, 1, []float64{1, 1})

	_, _, err = roi.MeanTimeseries(fn, seed, roi.Options{Mask: mask})
	assert.ErrorIs(t, err, roi.ErrShapeMismatch, "seed vs mask")
}

// TestMeanTimeseries_MaskKeepsResult checks that a mask covering every
// label's full support leaves the output unchanged.
func TestMeanTimeseries_MaskKeepsResult(t *testing.T) {
	fn := mat64.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	seed := mat64.NewDense(4, 1, []float64{1, 2, 1, 0})
	mask := mat64.NewDense(4, 1, []float64{1, 1, 1, 0})

	plain, plainLabels, err := roi.MeanTimeseries(fn, seed, roi.Options{})
	require.NoError(t, err)

	masked, maskedLabels, err := roi.MeanTimeseries(fn, seed, roi.Options{Mask: mask})
	require.NoError(t, err)

	assert.Equal(t, plainLabels, maskedLabels)
	assert.True(t, mat64.Equal(plain, masked), "mask over full support must not change the result")
}

// TestMeanTimeseries_LabelFullyMasked reproduces the masked-out label
// failure: label 2's only sample is outside the mask.
func TestMeanTimeseries_LabelFullyMasked(t *testing.T) {
	fn := mat64.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	seed := mat64.NewDense(3, 1, []float64{1, 2, 1})
	mask := mat64.NewDense(3, 1, []float64{1, 0, 1})

	_, _, err := roi.MeanTimeseries(fn, seed, roi.Options{Mask: mask})
	assert.ErrorIs(t, err, roi.ErrLabelFullyMasked)
}

// TestMeanTimeseries_UnknownLabel requests a label absent from the seed.
func TestMeanTimeseries_UnknownLabel(t *testing.T) {
	fn := mat64.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	seed := mat64.NewDense(3, 1, []float64{0, 1, 1})

	_, _, err := roi.MeanTimeseries(fn, seed, roi.Options{Label: 7})
	assert.ErrorIs(t, err, roi.ErrUnknownLabel)
}

// TestMeanTimeseries_TargetLabel restricts extraction to one label.
func TestMeanTimeseries_TargetLabel(t *testing.T) {
	fn := mat64.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	seed := mat64.NewDense(3, 1, []float64{2, 1, 2})

	out, labels, err := roi.MeanTimeseries(fn, seed, roi.Options{Label: 2})
	require.NoError(t, err)

	rows, _ := out.Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, []float64{2}, labels)
	assert.Equal(t, 3.0, out.At(0, 0), "mean of samples 1 and 3")
	assert.Equal(t, 4.0, out.At(0, 1))
}

// TestMeanTimeseries_MaskedTargetLabel verifies the single-label check
// runs against the masked seed map.
func TestMeanTimeseries_MaskedTargetLabel(t *testing.T) {
	fn := mat64.NewDense(4, 1, []float64{1, 2, 3, 4})
	seed := mat64.NewDense(4, 1, []float64{1, 1, 2, 2})
	mask := mat64.NewDense(4, 1, []float64{1, 0, 1, 1})

	out, labels, err := roi.MeanTimeseries(fn, seed, roi.Options{Mask: mask, Label: 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, labels)
	assert.Equal(t, 3.5, out.At(0, 0))
}

// TestMeanTimeseries_Weighted checks the weighted collapse: one row no
// matter how many labels, raw seed values as weights.
func TestMeanTimeseries_Weighted(t *testing.T) {
	fn := mat64.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	seed := mat64.NewDense(3, 1, []float64{0, 1, 3})

	out, labels, err := roi.MeanTimeseries(fn, seed, roi.Options{Weighted: true})
	require.NoError(t, err)

	rows, _ := out.Dims()
	assert.Equal(t, 1, rows, "weighted mode always yields one row")
	assert.Nil(t, labels, "weighted mode has no label rows")

	// (0*1 + 1*3 + 3*5) / 4 and (0*2 + 1*4 + 3*6) / 4
	assert.InDelta(t, 4.5, out.At(0, 0), 1e-12)
	assert.InDelta(t, 5.5, out.At(0, 1), 1e-12)
}

// TestMeanTimeseries_SeedExtraColumns: a seed with more than one column
// is reduced to its first column with a notice, never an error.
func TestMeanTimeseries_SeedExtraColumns(t *testing.T) {
	fn := mat64.NewDense(2, 2, []float64{1, 2, 3, 4})
	seed := mat64.NewDense(2, 3, []float64{
		1, 9, 9,
		1, 9, 9,
	})

	out, labels, err := roi.MeanTimeseries(fn, seed, roi.Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, labels)
	assert.Equal(t, 2.0, out.At(0, 0))
}
