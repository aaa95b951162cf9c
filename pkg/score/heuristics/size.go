package heuristics

// FitTargets maps each hardware target to whether an artifact of the
// given size fits within its limit. An unknown size (nil) yields all
// false: unknown cannot be assumed to fit anywhere.
func FitTargets(sizeBytes *int64, limits map[string]int64) map[string]bool {
	fits := make(map[string]bool, len(limits))
	for target, limit := range limits {
		fits[target] = sizeBytes != nil && *sizeBytes > 0 && *sizeBytes <= limit
	}
	return fits
}

// SizeScore collapses the fit map into the fraction of targets the
// artifact fits on.
func SizeScore(fits map[string]bool) float64 {
	if len(fits) == 0 {
		return 0
	}
	n := 0
	for _, ok := range fits {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(fits))
}
