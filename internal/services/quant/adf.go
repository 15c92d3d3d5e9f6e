package quant

import (
	"fmt"
	"math"
)

// ADFResult is the output of the augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic float64
	PValue    float64
	UsedLag   int
}

// ADF runs an augmented Dickey-Fuller unit-root test with a constant term.
// The lag order is selected by AIC over 0..maxlag, where maxlag follows
// Schwert's rule 12*(n/100)^(1/4). The p-value is interpolated from the
// asymptotic Dickey-Fuller tau distribution with drift.
func ADF(series []float64) (ADFResult, error) {
	n := len(series)
	if n < MinObservationsValidation {
		return ADFResult{}, fmt.Errorf("adf: need at least %d observations, got %d", MinObservationsValidation, n)
	}

	maxLag := int(math.Floor(12.0 * math.Pow(float64(n)/100.0, 0.25)))
	if maxLag > n/2-2 {
		maxLag = n/2 - 2
	}
	if maxLag < 0 {
		maxLag = 0
	}

	bestAIC := math.Inf(1)
	bestLag := 0
	bestStat := 0.0
	for lag := 0; lag <= maxLag; lag++ {
		stat, aic, err := adfRegression(series, lag)
		if err != nil {
			continue
		}
		if aic < bestAIC {
			bestAIC = aic
			bestLag = lag
			bestStat = stat
		}
	}
	if math.IsInf(bestAIC, 1) {
		return ADFResult{}, fmt.Errorf("adf: regression failed for all lag orders")
	}

	return ADFResult{
		Statistic: bestStat,
		PValue:    dfTauPValue(bestStat),
		UsedLag:   bestLag,
	}, nil
}

// adfRegression fits dy_t = a + g*y_{t-1} + sum b_i*dy_{t-i} + e and returns
// the t-statistic on g together with the regression AIC.
func adfRegression(y []float64, lag int) (tstat, aic float64, err error) {
	n := len(y)
	dy := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dy[i-1] = y[i] - y[i-1]
	}

	// Effective sample after lagging.
	start := lag + 1
	nObs := len(dy) - lag
	if nObs <= lag+3 {
		return 0, 0, fmt.Errorf("adf: sample too small for lag %d", lag)
	}

	k := lag + 2 // constant + level + lagged differences
	X := make([][]float64, nObs)
	Y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := start + i // index into dy
		row := make([]float64, k)
		row[0] = 1
		row[1] = y[t] // y_{t-1} relative to dy[t]
		for j := 1; j <= lag; j++ {
			row[1+j] = dy[t-j]
		}
		X[i] = row
		Y[i] = dy[t]
	}

	beta, ssr, se, err := olsSolve(X, Y)
	if err != nil {
		return 0, 0, err
	}
	if se[1] == 0 {
		return 0, 0, fmt.Errorf("adf: degenerate regressor")
	}

	tstat = beta[1] / se[1]
	nf := float64(nObs)
	aic = nf*math.Log(ssr/nf) + 2*float64(k)
	return tstat, aic, nil
}

// olsSolve fits Y = X*beta by normal equations with Gaussian elimination,
// returning the coefficients, the residual sum of squares, and the
// coefficient standard errors.
func olsSolve(X [][]float64, Y []float64) (beta []float64, ssr float64, se []float64, err error) {
	n := len(X)
	k := len(X[0])

	// A = X'X, b = X'Y
	A := make([][]float64, k)
	b := make([]float64, k)
	for i := 0; i < k; i++ {
		A[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			var s float64
			for t := 0; t < n; t++ {
				s += X[t][i] * X[t][j]
			}
			A[i][j] = s
		}
		var s float64
		for t := 0; t < n; t++ {
			s += X[t][i] * Y[t]
		}
		b[i] = s
	}

	inv, err := invertMatrix(A)
	if err != nil {
		return nil, 0, nil, err
	}

	beta = make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			beta[i] += inv[i][j] * b[j]
		}
	}

	for t := 0; t < n; t++ {
		var pred float64
		for j := 0; j < k; j++ {
			pred += X[t][j] * beta[j]
		}
		ssr += (Y[t] - pred) * (Y[t] - pred)
	}

	dof := n - k
	if dof <= 0 {
		return nil, 0, nil, fmt.Errorf("ols: no degrees of freedom")
	}
	sigma2 := ssr / float64(dof)
	se = make([]float64, k)
	for i := 0; i < k; i++ {
		se[i] = math.Sqrt(sigma2 * inv[i][i])
	}
	return beta, ssr, se, nil
}

// invertMatrix inverts a square matrix by Gauss-Jordan elimination with
// partial pivoting.
func invertMatrix(a [][]float64) ([][]float64, error) {
	k := len(a)
	aug := make([][]float64, k)
	for i := 0; i < k; i++ {
		aug[i] = make([]float64, 2*k)
		copy(aug[i], a[i])
		aug[i][k+i] = 1
	}

	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("matrix is singular")
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		for j := 0; j < 2*k; j++ {
			aug[col][j] /= pv
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			for j := 0; j < 2*k; j++ {
				aug[r][j] -= f * aug[col][j]
			}
		}
	}

	inv := make([][]float64, k)
	for i := 0; i < k; i++ {
		inv[i] = aug[i][k:]
	}
	return inv, nil
}

// Asymptotic quantiles of the Dickey-Fuller tau distribution with drift.
var dfTauQuantiles = []struct {
	tau float64
	p   float64
}{
	{-3.96, 0.001},
	{-3.43, 0.010},
	{-3.12, 0.025},
	{-2.86, 0.050},
	{-2.57, 0.100},
	{-1.57, 0.500},
	{-0.44, 0.900},
	{-0.07, 0.950},
	{0.23, 0.975},
	{0.60, 0.990},
}

// dfTauPValue interpolates an approximate p-value for the tau statistic.
func dfTauPValue(tau float64) float64 {
	q := dfTauQuantiles
	if tau <= q[0].tau {
		return q[0].p
	}
	if tau >= q[len(q)-1].tau {
		return 0.999
	}
	for i := 1; i < len(q); i++ {
		if tau <= q[i].tau {
			frac := (tau - q[i-1].tau) / (q[i].tau - q[i-1].tau)
			return q[i-1].p + frac*(q[i].p-q[i-1].p)
		}
	}
	return 0.999
}
