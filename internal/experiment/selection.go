package experiment

// EvenSplit assigns 100/n percent to each of n variants. The shares are not
// rounded, so their float sum can miss 100 by a rounding error.
func EvenSplit(n int) []float64 {
	if n <= 0 {
		return nil
	}
	split := make([]float64, n)
	share := 100 / float64(n)
	for i := range split {
		split[i] = share
	}
	return split
}

// Pick maps a draw in [0, 100) onto a variant by walking the cumulative
// traffic split. A split that never reaches the draw falls back to the first
// variant. Missing shares count as zero.
func Pick(exp *Experiment, draw float64) Variant {
	var cumulative float64
	for i, v := range exp.Variants {
		if i < len(exp.TrafficSplit) {
			cumulative += exp.TrafficSplit[i]
		}
		if draw <= cumulative {
			return v
		}
	}
	return exp.Variants[0]
}

// Select draws a variant for exp according to its traffic split.
func (e *Engine) Select(exp *Experiment) Variant {
	e.mu.Lock()
	draw := e.random() * 100
	e.mu.Unlock()

	return Pick(exp, draw)
}

// SelectByID draws a variant for the stored experiment with the given id.
func (e *Engine) SelectByID(id string) (Variant, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp := e.find(id)
	if exp == nil {
		return Variant{}, false
	}
	return Pick(exp, e.random()*100).clone(), true
}
