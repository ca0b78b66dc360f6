// internal/presence/estimate.go
package presence

import "math"

// Log-distance path loss parameters.
const (
	txPowerRef  = -59.0 // expected RSSI at 1 m
	pathLossExp = 2.0   // free-space propagation
)

// Estimate converts an advertisement RSSI (dBm) to an approximate
// distance in meters. The estimate is coarse; it only has to separate
// "at the desk" from "elsewhere in the room".
func Estimate(rssi int16) float64 {
	return math.Pow(10, (txPowerRef-float64(rssi))/(10*pathLossExp))
}

// CloseCount reports how many advertisements lie within limit meters.
// An RSSI of 0 means the radio gave no measurement; those entries are
// skipped rather than treated as close.
func CloseCount(ads []Advertisement, limit float64) int {
	n := 0
	for _, ad := range ads {
		if ad.RSSI == 0 {
			continue
		}
		if Estimate(ad.RSSI) < limit {
			n++
		}
	}
	return n
}
