package models

import "time"

// MarketSnapshot is a point-in-time market-data record for a symbol.
// Snapshots are immutable once produced; a fresh fetch supersedes, never
// mutates, an older one.
type MarketSnapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Volume        int64     `json:"volume"`
	ChangePercent float64   `json:"change_percent"`
	MarketCap     float64   `json:"market_cap"`
	PERatio       float64   `json:"pe_ratio"`
	Timestamp     time.Time `json:"timestamp"`
}

// TechnicalIndicatorSet holds the indicators derived from a symbol's
// historical price series. Same lifecycle as MarketSnapshot.
type TechnicalIndicatorSet struct {
	Symbol         string    `json:"symbol"`
	RSI            float64   `json:"rsi"`
	MACD           float64   `json:"macd"`
	MovingAvg20    float64   `json:"moving_avg_20"`
	MovingAvg50    float64   `json:"moving_avg_50"`
	BollingerUpper float64   `json:"bollinger_upper"`
	BollingerLower float64   `json:"bollinger_lower"`
	VolumeSMA      float64   `json:"volume_sma"`
	Timestamp      time.Time `json:"timestamp"`
}

// PricePoint is one bar of a historical series, most-recent-last.
type PricePoint struct {
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// PriceSeries is an ordered historical series for one symbol.
type PriceSeries []PricePoint

// Closes returns the close prices in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Volumes returns the volumes in series order.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Volume
	}
	return out
}
