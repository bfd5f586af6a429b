package indicator

// RSI returns the relative strength index over the default 14 period smoothing.
func RSI(closes []float64) (float64, error) {
	return RSIWithPeriod(closes, RSIPeriod)
}

// RSIWithPeriod splits daily deltas into gains and losses and smooths each with
// center of mass period-1. A series without losses reads 100, one without gains 0.
func RSIWithPeriod(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidWindow
	}
	if len(closes) < 2 {
		return 0, ErrInsufficientData
	}

	ups := make([]float64, len(closes)-1)
	downs := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			ups[i-1] = delta
		} else {
			downs[i-1] = -delta
		}
	}

	alpha := 1.0 / float64(period)
	up := emaSeries(ups, alpha)
	down := emaSeries(downs, alpha)
	avgGain, avgLoss := up[len(up)-1], down[len(down)-1]

	switch {
	case avgGain == 0 && avgLoss == 0:
		return 0, ErrInsufficientData
	case avgLoss == 0:
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}
