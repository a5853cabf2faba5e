package utils

// MegaBytes converts a byte count to decimal megabytes (1 MB = 1e6 bytes).
func MegaBytes(n int64) float64 {
	return float64(n) / 1e6
}

// PercentDecrease returns 100*(before-after)/before. ok is false when
// before is not positive and no percentage can be given.
func PercentDecrease(before, after int64) (pct float64, ok bool) {
	if before <= 0 {
		return 0, false
	}
	return 100 * float64(before-after) / float64(before), true
}
