package niio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KyungWonPark/meants/internal/wb"
	"github.com/gonum/matrix/mat64"
)

// Loader turns any supported input into a samples-by-observations matrix.
// Dense (cifti) inputs are staged through the workbench into the staging
// dir as plain volumes first; the staged copy sticks around as the
// template for writing results back out.
type Loader struct {
	WB  wb.Runner
	Dir string
}

// Image is one loaded input. Vol is the volumetric file backing Mat (the
// input itself for nifti, the staged conversion for cifti, empty for
// gifti); Src is the path the caller named.
type Image struct {
	Mat  *mat64.Dense
	Type FileType
	Src  string
	Vol  string
}

// Samples returns the sample-axis length.
func (img *Image) Samples() int {
	rows, _ := img.Mat.Dims()
	return rows
}

// Load reads one input of any supported format.
func (l *Loader) Load(path string) (*Image, error) {
	fileType, base, err := DetermineFileType(path)
	if err != nil {
		return nil, err
	}

	switch fileType {
	case Nifti:
		mat, err := LoadNifti(path)
		if err != nil {
			return nil, err
		}
		return &Image{Mat: mat, Type: Nifti, Src: path, Vol: path}, nil

	case Gifti:
		mat, err := LoadGifti(path)
		if err != nil {
			return nil, err
		}
		return &Image{Mat: mat, Type: Gifti, Src: path}, nil

	case Cifti:
		vol := filepath.Join(l.Dir, base+".nii")
		if err := l.WB.Run("-cifti-convert", "-to-nifti", path, vol); err != nil {
			return nil, err
		}
		mat, err := LoadNifti(vol)
		if err != nil {
			return nil, err
		}
		return &Image{Mat: mat, Type: Cifti, Src: path, Vol: vol}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LoadOnDense stages a gifti seed or mask onto the dense grid of the
// template cifti file, one hemisphere, then loads the result.
func (l *Loader) LoadOnDense(path string, template string, structure string) (*Image, error) {
	_, base, err := DetermineFileType(path)
	if err != nil {
		return nil, err
	}

	dense := filepath.Join(l.Dir, base+".dscalar.nii")
	err = l.WB.Run("-cifti-create-dense-from-template", template, dense, "-metric", structure, path)
	if err != nil {
		return nil, err
	}

	return l.Load(dense)
}

// SeparateSurface pulls one hemisphere's surface metric out of a cifti
// file and returns the staged gifti path.
func (l *Loader) SeparateSurface(path string, structure string) (string, error) {
	_, base, err := DetermineFileType(path)
	if err != nil {
		return "", err
	}

	out := filepath.Join(l.Dir, base+"."+strings.ToLower(structure)+".func.gii")
	if err := l.WB.Run("-cifti-separate", path, "COLUMN", "-metric", structure, out); err != nil {
		return "", err
	}

	return out, nil
}

// SaveMap writes one value per sample of ref back out in ref's format.
func (l *Loader) SaveMap(path string, ref *Image, values []float64) error {
	switch ref.Type {
	case Nifti:
		return SaveNiftiMap(path, ref.Vol, values)

	case Gifti:
		return SaveGiftiMap(path, values)

	case Cifti:
		_, base, err := DetermineFileType(path)
		if err != nil {
			return err
		}
		vol := filepath.Join(l.Dir, base+"_result.nii")
		if err := SaveNiftiMap(vol, ref.Vol, values); err != nil {
			return err
		}
		return l.WB.Run("-cifti-convert", "-from-nifti", vol, ref.Src, path, "-reset-scalars")
	}

	return fmt.Errorf("%w: cannot write %s", ErrUnknownFormat, path)
}

// Structure maps a hemisphere flag to the workbench structure name.
func Structure(hemi string) (string, error) {
	switch strings.ToUpper(hemi) {
	case "L":
		return "CORTEX_LEFT", nil
	case "R":
		return "CORTEX_RIGHT", nil
	}
	return "", fmt.Errorf("niio: hemisphere must be L or R, got %q", hemi)
}
