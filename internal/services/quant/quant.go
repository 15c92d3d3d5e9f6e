package quant

import (
	"math"
	"sort"

	"EGXAdvisor/internal/domain/models"
)

// Minimum observation counts below which the estimators report
// insufficient data instead of a value.
const (
	MinObservationsRisk       = 60
	MinObservationsValidation = 100
)

// Default Hurst classification thresholds.
const (
	DefaultHurstTrending      = 0.55
	DefaultHurstMeanReverting = 0.45
)

// SimpleReturns computes r_t = C_t/C_{t-1} - 1 over the close series.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, cur/prev-1)
	}
	return out
}

// LogReturns computes r_t = ln(C_t / C_{t-1}) over the close series.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// VaR returns the historical Value at Risk at the given confidence level as
// the empirical (1-confidence) quantile of the return distribution, a
// negative number for a loss. Returns false when data is insufficient.
func VaR(returns []float64, confidence float64) (float64, bool) {
	if len(returns) < MinObservationsRisk || confidence <= 0 || confidence >= 1 {
		return 0, false
	}
	return Quantile(returns, 1-confidence), true
}

// Quantile computes the q-quantile with linear interpolation between order
// statistics.
func Quantile(xs []float64, q float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Sharpe returns the annualized Sharpe ratio of the return series. Returns
// false when data is insufficient or the volatility is zero.
func Sharpe(returns []float64, riskFreeRate, annualization float64) (float64, bool) {
	if len(returns) < MinObservationsRisk {
		return 0, false
	}
	dailyRF := riskFreeRate / annualization
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRF
	}
	m := mean(excess)
	sd := stddev(excess, m)
	if sd == 0 || math.IsNaN(sd) {
		return 0, false
	}
	return (m / sd) * math.Sqrt(annualization), true
}

// HurstResult is the output of the aggregated-variance Hurst estimator.
type HurstResult struct {
	Hurst float64
	R2    float64
}

// Hurst estimates the Hurst exponent of the return series using the
// aggregated-variance method: block means over sizes 2,4,8,... up to n/4,
// OLS on log(var) vs log(k), H = 1 + slope/2 clamped to [0,1].
// Returns false when too few usable block sizes exist.
func Hurst(returns []float64) (HurstResult, bool) {
	n := len(returns)
	if n < MinObservationsValidation {
		return HurstResult{}, false
	}

	maxK := n / 4
	if maxK < 2 {
		maxK = 2
	}
	var logK, logVar []float64
	for k := 2; k <= maxK; k *= 2 {
		nBlocks := n / k
		if nBlocks < 2 {
			continue
		}
		means := make([]float64, nBlocks)
		for b := 0; b < nBlocks; b++ {
			var sum float64
			for j := b * k; j < (b+1)*k; j++ {
				sum += returns[j]
			}
			means[b] = sum / float64(k)
		}
		m := mean(means)
		v := variance(means, m)
		if v > 0 {
			logK = append(logK, math.Log(float64(k)))
			logVar = append(logVar, math.Log(v))
		}
	}
	if len(logK) < 3 {
		return HurstResult{}, false
	}

	slope, intercept := olsFit(logK, logVar)
	h := 1.0 + slope/2.0
	if h < 0 {
		h = 0
	}
	if h > 1 {
		h = 1
	}

	// R² goodness of fit of the log-log regression.
	var ssRes, ssTot float64
	mv := mean(logVar)
	for i := range logK {
		pred := slope*logK[i] + intercept
		ssRes += (logVar[i] - pred) * (logVar[i] - pred)
		ssTot += (logVar[i] - mv) * (logVar[i] - mv)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return HurstResult{Hurst: h, R2: r2}, true
}

// ClassifyRegime maps a Hurst exponent to a regime label using the given
// thresholds.
func ClassifyRegime(hurst, trending, meanReverting float64) models.RegimeLabel {
	switch {
	case hurst > trending:
		return models.RegimeTrending
	case hurst < meanReverting:
		return models.RegimeMeanReverting
	default:
		return models.RegimeRandomLike
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the sample variance (ddof=1).
func variance(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return sum / float64(len(xs)-1)
}

func stddev(xs []float64, m float64) float64 {
	return math.Sqrt(variance(xs, m))
}

// olsFit returns the slope and intercept of the least-squares line y = a + b·x.
func olsFit(x, y []float64) (slope, intercept float64) {
	mx, my := mean(x), mean(y)
	var num, den float64
	for i := range x {
		num += (x[i] - mx) * (y[i] - my)
		den += (x[i] - mx) * (x[i] - mx)
	}
	if den == 0 {
		return 0, my
	}
	slope = num / den
	intercept = my - slope*mx
	return slope, intercept
}
