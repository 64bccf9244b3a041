// seedcorr correlates every sample's time series with the mean time
// series of a seed region and writes the result as a dense map in the
// functional input's own format.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/KyungWonPark/meants/internal/calc"
	"github.com/KyungWonPark/meants/internal/niio"
	"github.com/KyungWonPark/meants/internal/roi"
	"github.com/KyungWonPark/meants/internal/wb"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: seedcorr [options] <func> <seed>\n\n")
	fmt.Fprintf(flag.CommandLine.Output(), "Writes the seed-correlation map of <func> against the mean <seed> time series.\n\n")
	flag.PrintDefaults()
}

func main() {
	var (
		output   = flag.String("output", "", "output map path (default <func>_<seed>_seedcorr in the functional format)")
		maskPath = flag.String("mask", "", "restrict the seed map to non-zero samples of this mask")
		roiLabel = flag.Float64("roi-label", 0, "use only this seed label")
		weighted = flag.Bool("weighted", false, "weighted-average seed series using seed values as weights")
		fisherZ  = flag.Bool("fisher-z", false, "Fisher z transform the correlation values")
		hemi     = flag.String("hemi", "", "hemisphere (L or R) for gifti seeds on cifti data")
		debug    = flag.Bool("debug", false, "echo wb_command invocations and keep the staging dir")
		dryRun   = flag.Bool("dry-run", false, "print planned wb_command invocations and outputs, then exit")
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
		log.Fatalf("[seedcorr] %v\n", err)
	}
	seedType, seedBase, err := niio.DetermineFileType(seedPath)
	if err != nil {
		log.Fatalf("[seedcorr] %v\n", err)
	}
	maskType := niio.Unknown
	if *maskPath != "" {
		maskType, _, err = niio.DetermineFileType(*maskPath)
		if err != nil {
			log.Fatalf("[seedcorr] %v\n", err)
		}
	}

	if err := niio.CheckCompatible(funcType, seedType, maskType); err != nil {
		log.Fatalf("[seedcorr] %v\n", err)
	}

	structure := ""
	if funcType == niio.Cifti && (seedType == niio.Gifti || maskType == niio.Gifti) {
		structure, err = niio.Structure(*hemi)
		if err != nil {
			log.Fatalf("[seedcorr] %v\n", err)
		}
	}

	if *output == "" {
		*output = filepath.Join(filepath.Dir(funcPath), funcBase+"_"+seedBase+"_seedcorr"+defaultEnding(funcType))
	}

	if *dryRun {
		if funcType == niio.Cifti {
			fmt.Printf("would run: wb_command -cifti-convert -to-nifti %s <staging>.nii\n", funcPath)
		}
		if seedType == niio.Cifti {
			fmt.Printf("would run: wb_command -cifti-convert -to-nifti %s <staging>.nii\n", seedPath)
		}
		if funcType == niio.Cifti && seedType == niio.Gifti {
			fmt.Printf("would run: wb_command -cifti-create-dense-from-template %s <staging>.dscalar.nii -metric %s %s\n", funcPath, structure, seedPath)
		}
		if funcType == niio.Cifti {
			fmt.Printf("would run: wb_command -cifti-convert -from-nifti <staging>.nii %s %s -reset-scalars\n", funcPath, *output)
		}
		fmt.Printf("would write: %s\n", *output)
		return
	}

	staging, err := os.MkdirTemp("", "seedcorr-")
	if err != nil {
		log.Fatalf("[seedcorr] failed to create staging dir: %v\n", err)
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

	funcImg, err := loader.Load(funcPath)
	if err != nil {
		log.Fatalf("[seedcorr] %v\n", err)
	}

	var seedImg *niio.Image
	if funcType == niio.Cifti && seedType == niio.Gifti {
		seedImg, err = loader.LoadOnDense(seedPath, funcPath, structure)
	} else {
		seedImg, err = loader.Load(seedPath)
	}
	if err != nil {
		log.Fatalf("[seedcorr] %v\n", err)
	}

	opt := roi.Options{Label: *roiLabel, Weighted: *weighted}
	if *maskPath != "" {
		var maskImg *niio.Image
		if funcType == niio.Cifti && maskType == niio.Gifti {
			maskImg, err = loader.LoadOnDense(*maskPath, funcPath, structure)
		} else {
			maskImg, err = loader.Load(*maskPath)
		}
		if err != nil {
			log.Fatalf("[seedcorr] %v\n", err)
		}
		opt.Mask = maskImg.Mat
	}

	meants, labels, err := roi.MeanTimeseries(funcImg.Mat, seedImg.Mat, opt)
	if err != nil {
		log.Fatalf("[seedcorr] %v\n", err)
	}

	rows, cols := meants.Dims()
	if rows != 1 {
		log.Fatalf("[seedcorr] seed has %d labels %v; pass -roi-label or -weighted\n", rows, labels)
	}

	seed := make([]float64, cols)
	for t := 0; t < cols; t++ {
		seed[t] = meants.At(0, t)
	}

	fmt.Printf("Correlating %d samples against the seed series...\n", funcImg.Samples())
	result, err := calc.SeedCorrelate(funcImg.Mat, seed)
	if err != nil {
		log.Fatalf("[seedcorr] %v\n", err)
	}

	if *fisherZ {
		calc.FisherZ(result)
	}

	if err := loader.SaveMap(*output, funcImg, result); err != nil {
		log.Fatalf("[seedcorr] %v\n", err)
	}
	fmt.Printf("Wrote %s\n", *output)
}

func defaultEnding(t niio.FileType) string {
	switch t {
	case niio.Gifti:
		return ".func.gii"
	case niio.Cifti:
		return ".dscalar.nii"
	}
	return ".nii"
}
