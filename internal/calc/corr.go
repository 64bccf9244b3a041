// Package calc holds the numeric routines behind seed correlation.
package calc

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/gonum/matrix/mat64"
)

type statistic struct {
	avg float64
	std float64
}

func seriesStat(series []float64) statistic {
	var accVal float64
	var accSqrVal float64

	for _, value := range series {
		accVal += value
		accSqrVal += value * value
	}

	avgVal := accVal / float64(len(series))
	avgSqrVal := accSqrVal / float64(len(series))

	return statistic{
		avg: avgVal,
		std: math.Sqrt(avgSqrVal - (avgVal * avgVal)),
	}
}

func correlateRows(timeSeriesMat *mat64.Dense, seed []float64, seedStat statistic, result []float64, order <-chan int, wg *sync.WaitGroup) {
	_, cols := timeSeriesMat.Dims()

	for index := range order {
		var accVal float64
		var accSqrVal float64
		var accProd float64

		for t := 0; t < cols; t++ {
			value := timeSeriesMat.At(index, t)
			accVal += value
			accSqrVal += value * value
			accProd += value * seed[t]
		}

		avgVal := accVal / float64(cols)
		stdVal := math.Sqrt(accSqrVal/float64(cols) - (avgVal * avgVal))

		cov := (accProd / float64(cols)) - (avgVal * seedStat.avg)
		result[index] = cov / (stdVal * seedStat.std)

		wg.Done()
	}
}

// SeedCorrelate computes Pearson's correlation between every row of
// timeSeriesMat and the seed series, returning one value per row. A
// constant row has zero variance and correlates as NaN.
func SeedCorrelate(timeSeriesMat *mat64.Dense, seed []float64) ([]float64, error) {
	rows, cols := timeSeriesMat.Dims()
	if cols != len(seed) {
		return nil, fmt.Errorf("calc: matrix has %d timepoints when seed series has %d", cols, len(seed))
	}

	seedStat := seriesStat(seed)
	result := make([]float64, rows)

	order := make(chan int, runtime.NumCPU())
	var wg sync.WaitGroup

	wg.Add(rows)

	for i := 0; i < runtime.NumCPU(); i++ {
		go correlateRows(timeSeriesMat, seed, seedStat, result, order, &wg)
	}

	for i := 0; i < rows; i++ {
		order <- i
	}

	wg.Wait()
	close(order)

	return result, nil
}

// FisherZ transforms correlation values in place with the inverse
// hyperbolic tangent.
func FisherZ(values []float64) {
	for i, value := range values {
		values[i] = math.Atanh(value)
	}
}
