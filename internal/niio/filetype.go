// Package niio loads and writes neuroimaging arrays. Every supported
// format ends up in the same container, a mat64.Dense shaped samples by
// observations, so the extraction code never sees format detail.
package niio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// FileType tags the on-disk format family of an input.
type FileType int

const (
	Unknown FileType = iota
	Nifti            // volumetric .nii / .nii.gz
	Gifti            // surface .gii variants
	Cifti            // dense/parcellated grayordinate .nii variants
)

var (
	// ErrUnknownFormat is returned for a path whose ending matches no
	// supported format.
	ErrUnknownFormat = errors.New("niio: unrecognized neuroimaging file ending")

	// ErrIncompatibleInputs is returned when the functional, seed and
	// mask inputs do not live in the same sample space.
	ErrIncompatibleInputs = errors.New("niio: incompatible input formats")
)

func (t FileType) String() string {
	switch t {
	case Nifti:
		return "nifti"
	case Gifti:
		return "gifti"
	case Cifti:
		return "cifti"
	}
	return "unknown"
}

// Endings are ordered longest first so the cifti variants win over the
// bare ".nii" ending.
var ciftiEndings = []string{".dtseries.nii", ".dscalar.nii", ".dlabel.nii", ".ptseries.nii", ".pscalar.nii"}
var giftiEndings = []string{".func.gii", ".shape.gii", ".label.gii", ".surf.gii", ".gii"}
var niftiEndings = []string{".nii.gz", ".nii"}

// DetermineFileType sniffs the format family from the file ending and
// returns it together with the base name with the ending stripped.
func DetermineFileType(path string) (FileType, string, error) {
	base := filepath.Base(path)

	for _, ending := range ciftiEndings {
		if strings.HasSuffix(base, ending) {
			return Cifti, strings.TrimSuffix(base, ending), nil
		}
	}
	for _, ending := range giftiEndings {
		if strings.HasSuffix(base, ending) {
			return Gifti, strings.TrimSuffix(base, ending), nil
		}
	}
	for _, ending := range niftiEndings {
		if strings.HasSuffix(base, ending) {
			return Nifti, strings.TrimSuffix(base, ending), nil
		}
	}

	return Unknown, "", fmt.Errorf("%w: %s", ErrUnknownFormat, base)
}

// CheckCompatible enforces that the seed (and mask, when Unknown is not
// passed for it) lives in the same sample space as the functional input.
// The one cross-format pairing the toolchain supports is a gifti seed or
// mask on a cifti functional file, which gets staged onto the dense grid
// by hemisphere.
func CheckCompatible(funcType, seedType, maskType FileType) error {
	ok := func(t FileType) bool {
		if t == funcType {
			return true
		}
		return funcType == Cifti && t == Gifti
	}

	if !ok(seedType) {
		return fmt.Errorf("%w: %s functional with %s seed", ErrIncompatibleInputs, funcType, seedType)
	}
	if maskType != Unknown && !ok(maskType) {
		return fmt.Errorf("%w: %s functional with %s mask", ErrIncompatibleInputs, funcType, maskType)
	}

	return nil
}
