// meants extracts the mean time series of each seed ROI from functional
// neuroimaging data and writes them as comma-separated text, one row per
// label. Dense (cifti) inputs are staged through wb_command first.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/KyungWonPark/meants/internal/niio"
	"github.com/KyungWonPark/meants/internal/roi"
	"github.com/KyungWonPark/meants/internal/wb"
	"github.com/gonum/matrix/mat64"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: meants [options] <func> <seed>\n\n")
	fmt.Fprintf(flag.CommandLine.Output(), "Extracts mean time series per seed label from nifti, gifti or cifti data.\n\n")
	flag.PrintDefaults()
}

func main() {
	var (
		outputCSV    = flag.String("outputcsv", "", "output table path (default <func>_<seed>_meants.csv; .npy writes numpy binary)")
		outputLabels = flag.String("outputlabels", "", "also write the label of each output row to this path")
		maskPath     = flag.String("mask", "", "restrict the seed map to non-zero samples of this mask")
		roiLabel     = flag.Float64("roi-label", 0, "extract only this seed label")
		weighted     = flag.Bool("weighted", false, "one weighted-average row using seed values as weights")
		hemi         = flag.String("hemi", "", "hemisphere (L or R) for gifti seeds on cifti data and -surfaceonly")
		surfaceOnly  = flag.Bool("surfaceonly", false, "run on one hemisphere's surface vertices only (cifti input, needs -hemi)")
		debug        = flag.Bool("debug", false, "echo wb_command invocations and keep the staging dir")
		dryRun       = flag.Bool("dry-run", false, "print planned wb_command invocations and outputs, then exit")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}

	funcPath := flag.Arg(0)
	seedPath := flag.Arg(1)

	funcType, funcBase, err := niio.DetermineFileType(funcPath)
	if err != nil {
		log.Fatalf("[meants] %v\n", err)
	}
	seedType, seedBase, err := niio.DetermineFileType(seedPath)
	if err != nil {
		log.Fatalf("[meants] %v\n", err)
	}
	maskType := niio.Unknown
	if *maskPath != "" {
		maskType, _, err = niio.DetermineFileType(*maskPath)
		if err != nil {
			log.Fatalf("[meants] %v\n", err)
		}
	}

	if err := niio.CheckCompatible(funcType, seedType, maskType); err != nil {
		log.Fatalf("[meants] %v\n", err)
	}

	if *surfaceOnly && funcType != niio.Cifti {
		log.Fatalf("[meants] -surfaceonly needs cifti functional input, got %s\n", funcType)
	}

	structure := ""
	if *surfaceOnly || (funcType == niio.Cifti && (seedType == niio.Gifti || maskType == niio.Gifti)) {
		structure, err = niio.Structure(*hemi)
		if err != nil {
			log.Fatalf("[meants] %v\n", err)
		}
	}

	if *outputCSV == "" {
		*outputCSV = filepath.Join(filepath.Dir(funcPath), funcBase+"_"+seedBase+"_meants.csv")
	}

	if *dryRun {
		planRun(funcPath, seedPath, *maskPath, funcType, seedType, maskType, structure, *surfaceOnly, *outputCSV, *outputLabels)
		return
	}

	staging, err := os.MkdirTemp("", "meants-")
	if err != nil {
		log.Fatalf("[meants] failed to create staging dir: %v\n", err)
	}
	if *debug {
		fmt.Printf("Staging dir: %s\n", staging)
	} else {
		defer os.RemoveAll(staging)
	}

	loader := &niio.Loader{
		WB:  &wb.CmdRunner{Debug: *debug},
		Dir: staging,
	}

	funcImg := loadFunc(loader, funcPath, structure, *surfaceOnly)
	seedImg := loadOnto(loader, seedPath, seedType, funcImg, funcPath, structure, *surfaceOnly)

	opt := roi.Options{Label: *roiLabel, Weighted: *weighted}
	if *maskPath != "" {
		maskImg := loadOnto(loader, *maskPath, maskType, funcImg, funcPath, structure, *surfaceOnly)
		opt.Mask = maskImg.Mat
	}

	fmt.Printf("Extracting from %d samples, %d timepoints...\n", funcImg.Samples(), timepoints(funcImg.Mat))
	out, labels, err := roi.MeanTimeseries(funcImg.Mat, seedImg.Mat, opt)
	if err != nil {
		log.Fatalf("[meants] %v\n", err)
	}

	if err := writeTable(*outputCSV, out); err != nil {
		log.Fatalf("[meants] %v\n", err)
	}
	fmt.Printf("Wrote %s\n", *outputCSV)

	if *outputLabels != "" {
		if labels == nil {
			log.Printf("[meants] weighted output has no label rows; skipping %s\n", *outputLabels)
		} else {
			if err := niio.WriteLabels(*outputLabels, labels); err != nil {
				log.Fatalf("[meants] %v\n", err)
			}
			fmt.Printf("Wrote %s\n", *outputLabels)
		}
	}
}

// loadFunc loads the functional input, separated down to one hemisphere's
// surface when requested.
func loadFunc(loader *niio.Loader, path string, structure string, surfaceOnly bool) *niio.Image {
	if surfaceOnly {
		gii, err := loader.SeparateSurface(path, structure)
		if err != nil {
			log.Fatalf("[meants] %v\n", err)
		}
		path = gii
	}

	img, err := loader.Load(path)
	if err != nil {
		log.Fatalf("[meants] %v\n", err)
	}

	return img
}

// loadOnto loads a seed or mask into the functional input's sample space.
func loadOnto(loader *niio.Loader, path string, fileType niio.FileType, funcImg *niio.Image, funcPath string, structure string, surfaceOnly bool) *niio.Image {
	var img *niio.Image
	var err error

	switch {
	case surfaceOnly && fileType == niio.Cifti:
		var gii string
		gii, err = loader.SeparateSurface(path, structure)
		if err == nil {
			img, err = loader.Load(gii)
		}
	case !surfaceOnly && funcImg.Type == niio.Cifti && fileType == niio.Gifti:
		img, err = loader.LoadOnDense(path, funcPath, structure)
	default:
		img, err = loader.Load(path)
	}

	if err != nil {
		log.Fatalf("[meants] %v\n", err)
	}

	return img
}

func planRun(funcPath, seedPath, maskPath string, funcType, seedType, maskType niio.FileType, structure string, surfaceOnly bool, outputCSV, outputLabels string) {
	plan := func(args ...string) {
		fmt.Printf("would run: wb_command %s\n", strings.Join(args, " "))
	}

	stage := func(path string, fileType niio.FileType) {
		switch {
		case surfaceOnly && fileType == niio.Cifti:
			plan("-cifti-separate", path, "COLUMN", "-metric", structure, "<staging>.func.gii")
		case fileType == niio.Cifti:
			plan("-cifti-convert", "-to-nifti", path, "<staging>.nii")
		case funcType == niio.Cifti && fileType == niio.Gifti:
			plan("-cifti-create-dense-from-template", funcPath, "<staging>.dscalar.nii", "-metric", structure, path)
		}
	}

	stage(funcPath, funcType)
	stage(seedPath, seedType)
	if maskPath != "" {
		stage(maskPath, maskType)
	}

	fmt.Printf("would write: %s\n", outputCSV)
	if outputLabels != "" {
		fmt.Printf("would write: %s\n", outputLabels)
	}
}

func writeTable(path string, out *mat64.Dense) error {
	if strings.HasSuffix(path, ".npy") {
		return niio.WriteNpy(path, out)
	}
	return niio.WriteCSV(path, out)
}

func timepoints(mat *mat64.Dense) int {
	_, cols := mat.Dims()
	return cols
}
