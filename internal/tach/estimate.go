package tach

import "math"

// Estimate converts count pulses over elapsedMillis into revolutions per
// minute as count*60000/ppr/elapsedMillis, dividing left to right with
// truncation in 64-bit arithmetic. Results beyond uint32 saturate. A zero
// ppr or elapsedMillis yields 0.
func Estimate(count, ppr, elapsedMillis uint32) uint32 {
	if ppr == 0 || elapsedMillis == 0 {
		return 0
	}
	v := uint64(count) * 60000 / uint64(ppr) / uint64(elapsedMillis)
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
