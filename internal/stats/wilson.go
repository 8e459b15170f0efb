package stats

import "math"

// WilsonInterval returns the Wilson score interval for successes out of
// trials at a two-sided confidence level such as 0.95. Successes are capped
// at trials, so an engagement count above the view count still yields a
// valid rate. No trials gives (0, 0).
func WilsonInterval(successes, trials int, confidence float64) (lower, upper float64) {
	if trials <= 0 {
		return 0, 0
	}
	successes = CapHits(successes, trials)

	n := float64(trials)
	p := float64(successes) / n
	z := ZScore(confidence)
	z2 := z * z

	scale := 1 + z2/n
	center := (p + z2/(2*n)) / scale
	half := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / scale

	lower, upper = math.Max(0, center-half), math.Min(1, center+half)
	if successes == 0 {
		lower = 0
	}
	if successes == trials {
		upper = 1
	}
	return lower, upper
}

// ZScore returns the two-sided critical value for confidence, e.g. 1.96
// for 0.95.
func ZScore(confidence float64) float64 {
	if confidence <= 0 {
		return 0
	}
	confidence = math.Min(confidence, 1-1e-12)
	return inverseNormalCDF((1 + confidence) / 2)
}

// inverseNormalCDF bisects normalCDF, which is increasing on [-10, 10].
func inverseNormalCDF(p float64) float64 {
	lo, hi := -10.0, 10.0
	for range 100 {
		mid := (lo + hi) / 2
		if normalCDF(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
