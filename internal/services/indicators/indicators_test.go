package indicators

import (
	"math"
	"testing"
)

func TestRSIBounds(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3)
	}
	rsi := RSI(closes, 14)
	if len(rsi) != len(closes) {
		t.Fatalf("rsi length %d, want %d", len(rsi), len(closes))
	}
	for i := 0; i < 14; i++ {
		if !math.IsNaN(rsi[i]) {
			t.Fatalf("warmup position %d should be NaN, got %v", i, rsi[i])
		}
	}
	for i := 14; i < len(rsi); i++ {
		if rsi[i] < 0 || rsi[i] > 100 {
			t.Fatalf("rsi out of bounds at %d: %v", i, rsi[i])
		}
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSI(closes, 14)
	last, ok := Latest(rsi)
	if !ok {
		t.Fatal("expected an rsi reading")
	}
	if last != 100 {
		t.Fatalf("monotone gains must give rsi 100, got %v", last)
	}
}

func TestEMASeedAndSmoothing(t *testing.T) {
	closes := []float64{10, 20, 30}
	ema := EMA(closes, 9)
	if ema[0] != 10 {
		t.Fatalf("ema must seed at first close, got %v", ema[0])
	}
	alpha := 2.0 / 10.0
	want := alpha*20 + (1-alpha)*10
	if math.Abs(ema[1]-want) > 1e-12 {
		t.Fatalf("ema[1] = %v, want %v", ema[1], want)
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5 + 3*math.Sin(float64(i)/5)
	}
	line, sig, hist := MACD(closes, 12, 26, 9)
	for i := range closes {
		if math.Abs(hist[i]-(line[i]-sig[i])) > 1e-9 {
			t.Fatalf("hist[%d] != line - signal", i)
		}
	}
}

func TestLatestEmpty(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Fatal("expected no reading from empty series")
	}
	if _, ok := Latest([]float64{math.NaN()}); ok {
		t.Fatal("expected no reading from all-NaN series")
	}
}
