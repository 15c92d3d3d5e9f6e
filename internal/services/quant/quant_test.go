package quant

import (
	"math"
	"testing"

	"EGXAdvisor/internal/domain/models"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestSimpleReturns(t *testing.T) {
	closes := []float64{100, 110, 99}
	r := SimpleReturns(closes)
	if len(r) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(r))
	}
	if !almostEqual(r[0], 0.10, 1e-12) || !almostEqual(r[1], -0.10, 1e-12) {
		t.Fatalf("unexpected returns: %v", r)
	}
	if got := SimpleReturns([]float64{100}); got != nil {
		t.Fatalf("expected nil for single close, got %v", got)
	}
}

func TestLogReturnsSkipsNonPositive(t *testing.T) {
	r := LogReturns([]float64{100, 0, 100})
	if len(r) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(r))
	}
	if r[0] != 0 || r[1] != 0 {
		t.Fatalf("non-positive closes must yield zero returns, got %v", r)
	}
}

func TestVaRLinearInterpolation(t *testing.T) {
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = -0.05 + 0.001*float64(i)
	}
	v, ok := VaR(returns, 0.95)
	if !ok {
		t.Fatal("expected VaR to be computable")
	}
	// 5th percentile of 100 points: position 4.95 between -0.046 and -0.045.
	if !almostEqual(v, -0.04505, 1e-9) {
		t.Fatalf("VaR95 = %v, want -0.04505", v)
	}
}

func TestVaRInsufficientData(t *testing.T) {
	returns := make([]float64, MinObservationsRisk-1)
	if _, ok := VaR(returns, 0.95); ok {
		t.Fatal("expected insufficient data below the observation floor")
	}
}

func TestSharpeZeroVolatility(t *testing.T) {
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = 0.001
	}
	if _, ok := Sharpe(returns, 0, 252); ok {
		t.Fatal("constant returns must not produce a Sharpe ratio")
	}
}

func TestSharpePositiveDrift(t *testing.T) {
	returns := make([]float64, 252)
	for i := range returns {
		returns[i] = 0.001 + 0.0005*math.Sin(float64(i))
	}
	s, ok := Sharpe(returns, 0, 252)
	if !ok {
		t.Fatal("expected Sharpe to be computable")
	}
	if s <= 0 {
		t.Fatalf("positive drift must give positive Sharpe, got %v", s)
	}
}

func TestHurstPersistentSeries(t *testing.T) {
	// Slow oscillation: block means preserve variance, H near 1.
	returns := make([]float64, 512)
	for i := range returns {
		returns[i] = math.Sin(2 * math.Pi * float64(i) / 1024.0)
	}
	res, ok := Hurst(returns)
	if !ok {
		t.Fatal("expected Hurst to be computable")
	}
	if res.Hurst < 0.7 {
		t.Fatalf("persistent series: H = %v, want > 0.7", res.Hurst)
	}
}

func TestHurstAntiPersistentSeries(t *testing.T) {
	// Alternating signs: block means collapse, H near 0.
	returns := make([]float64, 512)
	for i := range returns {
		sign := 1.0
		if i%2 == 1 {
			sign = -1.0
		}
		returns[i] = sign*0.01 + 0.001*math.Sin(float64(i)*0.9)
	}
	res, ok := Hurst(returns)
	if !ok {
		t.Fatal("expected Hurst to be computable")
	}
	if res.Hurst > 0.3 {
		t.Fatalf("anti-persistent series: H = %v, want < 0.3", res.Hurst)
	}
}

func TestHurstInsufficientData(t *testing.T) {
	if _, ok := Hurst(make([]float64, MinObservationsValidation-1)); ok {
		t.Fatal("expected insufficient data below the observation floor")
	}
}

func TestClassifyRegime(t *testing.T) {
	cases := []struct {
		hurst float64
		want  models.RegimeLabel
	}{
		{0.70, models.RegimeTrending},
		{0.55, models.RegimeRandomLike},
		{0.50, models.RegimeRandomLike},
		{0.45, models.RegimeRandomLike},
		{0.30, models.RegimeMeanReverting},
	}
	for _, c := range cases {
		if got := ClassifyRegime(c.hurst, DefaultHurstTrending, DefaultHurstMeanReverting); got != c.want {
			t.Fatalf("ClassifyRegime(%v) = %v, want %v", c.hurst, got, c.want)
		}
	}
}

func TestADFStationaryVsRandomWalk(t *testing.T) {
	n := 300

	// Strongly mean-reverting series.
	stationary := make([]float64, n)
	for i := range stationary {
		sign := 1.0
		if i%2 == 1 {
			sign = -1.0
		}
		stationary[i] = sign + 0.01*math.Sin(float64(i)*0.7)
	}
	stRes, err := ADF(stationary)
	if err != nil {
		t.Fatalf("adf on stationary series: %v", err)
	}
	if stRes.PValue > 0.05 {
		t.Fatalf("stationary series: p = %v, want <= 0.05", stRes.PValue)
	}

	// Deterministic pseudo-noise random walk.
	walk := make([]float64, n)
	level := 0.0
	for i := range walk {
		x := math.Sin(float64(i)*12.9898) * 43758.5453
		noise := x - math.Floor(x) - 0.5
		level += noise
		walk[i] = level
	}
	wkRes, err := ADF(walk)
	if err != nil {
		t.Fatalf("adf on random walk: %v", err)
	}
	if wkRes.PValue <= stRes.PValue {
		t.Fatalf("random walk p (%v) must exceed stationary p (%v)", wkRes.PValue, stRes.PValue)
	}
	if wkRes.PValue < 0 || wkRes.PValue > 1 {
		t.Fatalf("p-value out of range: %v", wkRes.PValue)
	}
}

func TestADFInsufficientData(t *testing.T) {
	if _, err := ADF(make([]float64, 50)); err == nil {
		t.Fatal("expected error below the observation floor")
	}
}
