package main

import "math"

// OptionLeg holds per-leg quote data for one side of a strike. Real per-leg
// fetching is out of scope, so legs are zero-valued placeholders.
type OptionLeg struct {
	LTP          float64 `json:"ltp"`
	Volume       int64   `json:"volume"`
	OpenInterest int64   `json:"oi"`
	IV           float64 `json:"iv"`
}

// ChainRow is one strike of the option chain.
type ChainRow struct {
	Strike int       `json:"strike"`
	Call   OptionLeg `json:"ce"`
	Put    OptionLeg `json:"pe"`
	ATM    bool      `json:"is_atm"`
}

// atmStrike rounds the spot price to the nearest strike. Ties round half away
// from zero (math.Round), so spot 17625 with interval 50 resolves to 17650.
func atmStrike(spot float64, interval int) int {
	return int(math.Round(spot/float64(interval))) * interval
}

// BuildChain produces 2*window+1 rows centered on the at-the-money strike, in
// ascending strike order. Exactly one row carries ATM=true. On any unusable
// input (non-positive or non-finite spot, bad window or interval) it returns
// nil and the caller reports nothing this cycle.
func BuildChain(spot float64, window, interval int) []ChainRow {
	if window < 0 || interval <= 0 {
		return nil
	}
	if spot <= 0 || math.IsNaN(spot) || math.IsInf(spot, 0) {
		return nil
	}

	atm := atmStrike(spot, interval)
	rows := make([]ChainRow, 0, 2*window+1)
	for i := -window; i <= window; i++ {
		rows = append(rows, ChainRow{
			Strike: atm + i*interval,
			ATM:    i == 0,
		})
	}
	return rows
}
