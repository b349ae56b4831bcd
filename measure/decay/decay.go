package decay

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/wavefx/dsp/core"
)

// PeriodPeaks returns the peak absolute amplitude of each consecutive
// window of periodSamples in x. A trailing partial window is included.
func PeriodPeaks(x []float64, periodSamples int) ([]float64, error) {
	if periodSamples <= 0 {
		return nil, fmt.Errorf("decay period must be > 0 samples: %d", periodSamples)
	}

	if len(x) == 0 {
		return nil, fmt.Errorf("decay input must not be empty")
	}

	peaks := make([]float64, 0, (len(x)+periodSamples-1)/periodSamples)

	for start := 0; start < len(x); start += periodSamples {
		end := start + periodSamples
		if end > len(x) {
			end = len(x)
		}

		peaks = append(peaks, vecmath.MaxAbs(x[start:end]))
	}

	return peaks, nil
}

// EstimateRT60 estimates the time for the response to drop 60 dB from the
// per-period peak envelope. periodSeconds is the spacing between peaks.
//
// The estimate averages the dB drop between successive non-silent peaks,
// so a single outlier period does not dominate. An envelope that does not
// decay overall is an error.
func EstimateRT60(peaks []float64, periodSeconds float64) (float64, error) {
	if periodSeconds <= 0 {
		return 0, fmt.Errorf("decay period must be > 0 seconds: %f", periodSeconds)
	}

	sumDB := 0.0
	pairs := 0

	for i := 1; i < len(peaks); i++ {
		if peaks[i-1] <= 0 || peaks[i] <= 0 {
			continue
		}

		sumDB += core.LinearToDB(peaks[i] / peaks[i-1])
		pairs++
	}

	if pairs == 0 {
		return 0, fmt.Errorf("decay estimate needs at least two non-silent peaks")
	}

	avgDB := sumDB / float64(pairs)
	if avgDB >= 0 {
		return 0, fmt.Errorf("envelope does not decay: %f dB per period", avgDB)
	}

	return periodSeconds * 60 / -avgDB, nil
}
