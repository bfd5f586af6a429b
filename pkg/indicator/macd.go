package indicator

import "fmt"

type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

func (r MACDResult) String() string {
	return fmt.Sprintf("%s, %s, %s", FormatValue(r.MACD), FormatValue(r.Signal), FormatValue(r.Histogram))
}

// MACD returns the 12/26 MACD line, its 9 period signal and the histogram.
func MACD(closes []float64) (MACDResult, error) {
	if len(closes) == 0 {
		return MACDResult{}, ErrInsufficientData
	}

	fast := emaSeries(closes, spanAlpha(MACDFast))
	slow := emaSeries(closes, spanAlpha(MACDSlow))

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := emaSeries(line, spanAlpha(MACDSignal))

	last := len(closes) - 1
	return MACDResult{
		MACD:      line[last],
		Signal:    signal[last],
		Histogram: line[last] - signal[last],
	}, nil
}
