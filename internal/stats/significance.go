// Package stats holds the proportion statistics behind experiment scoring.
package stats

import "math"

// SignificanceTest performs a two-proportion z-test on hits/trials.
// Returns the confidence (0-1) that proportion A is higher than proportion B.
// Hits are capped at trials.
func SignificanceTest(aHits, aTrials, bHits, bTrials int) float64 {
	// Need data from both sides
	if aTrials <= 0 || bTrials <= 0 {
		return 0.5
	}
	aHits, bHits = CapHits(aHits, aTrials), CapHits(bHits, bTrials)

	pA := Proportion(aHits, aTrials)
	pB := Proportion(bHits, bTrials)

	// Pooled proportion under the null hypothesis (pA = pB)
	pooled := float64(aHits+bHits) / float64(aTrials+bTrials)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(aTrials) + 1/float64(bTrials)))

	if se == 0 {
		switch {
		case pA > pB:
			return 1.0
		case pA < pB:
			return 0.0
		}
		return 0.5
	}

	z := (pA - pB) / se
	return normalCDF(z)
}

// CapHits clamps hits into [0, trials]. One viewer can like, share and
// comment, so engagements are not bounded by views on their own.
func CapHits(hits, trials int) int {
	return max(0, min(hits, trials))
}

// Proportion returns hits/trials, or 0 for no trials.
func Proportion(hits, trials int) float64 {
	if trials == 0 {
		return 0
	}
	return float64(hits) / float64(trials)
}

// normalCDF approximates the standard normal CDF
// (Abramowitz and Stegun, formula 7.1.26).
func normalCDF(x float64) float64 {
	a1 := 0.254829592
	a2 := -0.284496736
	a3 := 1.421413741
	a4 := -1.453152027
	a5 := 1.061405429
	p := 0.3275911

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt(2)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}
