// Package roi extracts per-label mean time series from functional data.
//
// Inputs are plain mat64 matrices shaped samples by observations, one row
// per voxel, vertex or grayordinate; where the samples came from (NIfTI,
// GIfTI or CIfTI) is the loader's business, not this package's.
package roi

import (
	"fmt"
	"log"
	"sort"

	"github.com/gonum/matrix/mat64"
)

// Options configures one extraction.
type Options struct {
	// Mask restricts the seed map to samples with a non-zero mask value.
	// Shaped S by 1. Nil means no restriction.
	Mask *mat64.Dense

	// Label selects a single seed label. Zero means every non-zero label.
	Label float64

	// Weighted collapses the whole seed map into one weighted average row,
	// with the raw seed values as weights. Ignores Label.
	Weighted bool
}

// MeanTimeseries reduces fn (S by T) against the seed map (S by 1) to one
// mean row per distinct non-zero seed label, rows ordered by ascending
// label value. It returns the output matrix and the labels in row order.
// In weighted mode the output is a single row and the label list is nil.
//
// A label subset that is empty yields a NaN row; the masking validation
// rejects every input that could produce one, so a caller bypassing
// MeanTimeseries with hand-built label vectors owns that check itself.
func MeanTimeseries(fn *mat64.Dense, seed *mat64.Dense, opt Options) (*mat64.Dense, []float64, error) {
	fnRows, fnCols := fn.Dims()
	seedRows, seedCols := seed.Dims()

	if fnRows != seedRows {
		return nil, nil, fmt.Errorf("%w: functional has %d samples when seed has %d", ErrShapeMismatch, fnRows, seedRows)
	}

	if seedCols > 1 {
		log.Printf("[MeanTimeseries] seed has %d columns; using the first one\n", seedCols)
	}

	// The raw seed column doubles as the weight vector in weighted mode;
	// masking only ever applies to the label assignment.
	weights := make([]float64, seedRows)
	labeled := make([]float64, seedRows)
	for i := 0; i < seedRows; i++ {
		v := seed.At(i, 0)
		weights[i] = v
		labeled[i] = v
	}

	if opt.Mask != nil {
		maskRows, _ := opt.Mask.Dims()
		if maskRows != seedRows {
			return nil, nil, fmt.Errorf("%w: seed has %d samples when mask has %d", ErrShapeMismatch, seedRows, maskRows)
		}

		before := len(distinctLabels(labeled))
		for i := 0; i < seedRows; i++ {
			labeled[i] *= opt.Mask.At(i, 0)
		}
		after := len(distinctLabels(labeled))

		if after < before {
			return nil, nil, fmt.Errorf("%w: %d labels before masking, %d after", ErrLabelFullyMasked, before, after)
		}
	}

	if opt.Weighted {
		var wSum float64
		for _, w := range weights {
			wSum += w
		}

		out := mat64.NewDense(1, fnCols, nil)
		for t := 0; t < fnCols; t++ {
			var acc float64
			for i := 0; i < fnRows; i++ {
				acc += weights[i] * fn.At(i, t)
			}
			out.Set(0, t, acc/wSum)
		}

		return out, nil, nil
	}

	rois := distinctLabels(labeled)
	if opt.Label != 0 {
		found := false
		for _, r := range rois {
			if r == opt.Label {
				found = true
				break
			}
		}
		if !found {
			return nil, nil, fmt.Errorf("%w: label %g", ErrUnknownLabel, opt.Label)
		}
		rois = []float64{opt.Label}
	}

	out := mat64.NewDense(len(rois), fnCols, nil)
	for row, label := range rois {
		var members []int
		for i := 0; i < seedRows; i++ {
			if labeled[i] == label {
				members = append(members, i)
			}
		}

		for t := 0; t < fnCols; t++ {
			var acc float64
			for _, i := range members {
				acc += fn.At(i, t)
			}
			out.Set(row, t, acc/float64(len(members)))
		}
	}

	return out, rois, nil
}

// distinctLabels returns the distinct non-zero values in ascending order.
func distinctLabels(values []float64) []float64 {
	seen := make(map[float64]struct{})
	for _, v := range values {
		if v != 0 {
			seen[v] = struct{}{}
		}
	}

	labels := make([]float64, 0, len(seen))
	for v := range seen {
		labels = append(labels, v)
	}
	sort.Float64s(labels)

	return labels
}
