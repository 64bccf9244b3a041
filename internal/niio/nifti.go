package niio

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/KyungWonPark/nifti"
	"github.com/gonum/matrix/mat64"
)

// parseNifti consumes panics emitted by the nifti library, which are
// inappropriate and must be captured to turn them into recoverable errors.
func parseNifti(path string) (img nifti.Nifti1Image, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("niio: failed to load %s: %v", path, panicErr)
		}
	}()

	img.LoadImage(path, true)

	return
}

// parseNiftiHeader recovers header-parse panics the same way.
func parseNiftiHeader(path string) (hdr nifti.Nifti1Header, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("niio: failed to load header of %s: %v", path, panicErr)
		}
	}()

	hdr.LoadHeader(path)

	return
}

// LoadNifti flattens a volumetric image to samples by timepoints, x
// fastest, matching the on-disk voxel order.
func LoadNifti(path string) (*mat64.Dense, error) {
	img, err := parseNifti(path)
	if err != nil {
		return nil, err
	}

	hdr := img.GetHeader()
	nx := int(hdr.Dim[1])
	ny := int(hdr.Dim[2])
	nz := int(hdr.Dim[3])
	nt := int(hdr.Dim[4])
	if nt < 1 {
		nt = 1
	}
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("niio: %s has degenerate dimensions %d x %d x %d", path, nx, ny, nz)
	}

	mat := mat64.NewDense(nx*ny*nz, nt, nil)

	order := make(chan int, runtime.NumCPU())
	var wg sync.WaitGroup

	wg.Add(nt)

	for w := 0; w < runtime.NumCPU(); w++ {
		go func() {
			for t := range order {
				i := 0
				for z := 0; z < nz; z++ {
					for y := 0; y < ny; y++ {
						for x := 0; x < nx; x++ {
							mat.Set(i, t, float64(img.GetAt(uint32(x), uint32(y), uint32(z), uint32(t))))
							i++
						}
					}
				}
				wg.Done()
			}
		}()
	}

	for t := 0; t < nt; t++ {
		order <- t
	}

	wg.Wait()
	close(order)

	return mat, nil
}

// SaveNiftiMap writes one value per voxel as a single-volume image,
// reusing the template's header so the affine and units carry over.
func SaveNiftiMap(path string, template string, values []float64) error {
	hdr, err := parseNiftiHeader(template)
	if err != nil {
		return err
	}

	nx := int(hdr.Dim[1])
	ny := int(hdr.Dim[2])
	nz := int(hdr.Dim[3])
	if len(values) != nx*ny*nz {
		return fmt.Errorf("niio: map has %d samples when template %s has %d voxels", len(values), template, nx*ny*nz)
	}

	img := nifti.NewImg(nx, ny, nz, 1)
	img.SetNewHeader(hdr)
	img.SetHeaderDim(nx, ny, nz, 1)

	i := 0
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				img.SetAt(uint32(x), uint32(y), uint32(z), 0, float32(values[i]))
				i++
			}
		}
	}

	img.Save(path)

	return nil
}
