package models

import "time"

// PriceBar is one EOD OHLCV record for an EGX listing.
type PriceBar struct {
	Date   time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is an ascending-by-date series of EOD bars for one symbol.
type PriceSeries struct {
	Symbol string
	Bars   []PriceBar
}

// Closes returns the close column in date order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// LatestClose returns the most recent close, or 0 when the series is empty.
func (s PriceSeries) LatestClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// LatestDate returns the date of the most recent bar.
func (s PriceSeries) LatestDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}

// Quote is a live price update from the market data stream.
type Quote struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
