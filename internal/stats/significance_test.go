package stats_test

import (
	"testing"

	"github.com/headline-goat/clip-goat/internal/stats"
)

func TestSignificanceTest_ClearLeader(t *testing.T) {
	// 20% of 150 viewers engaged vs ~5.3% of 150
	confidence := stats.SignificanceTest(30, 150, 8, 150)

	if confidence < 0.95 {
		t.Errorf("expected high confidence (>0.95), got %f", confidence)
	}
}

func TestSignificanceTest_EqualRates(t *testing.T) {
	confidence := stats.SignificanceTest(50, 1000, 50, 1000)

	if confidence > 0.60 {
		t.Errorf("expected low confidence (<0.60) for equal rates, got %f", confidence)
	}
}

func TestSignificanceTest_SmallSample(t *testing.T) {
	confidence := stats.SignificanceTest(5, 20, 2, 20)

	if confidence > 0.95 {
		t.Errorf("expected lower confidence for small sample, got %f", confidence)
	}
}

func TestSignificanceTest_NoTrials(t *testing.T) {
	if c := stats.SignificanceTest(0, 0, 0, 0); c != 0.5 {
		t.Errorf("expected 0.5 for zero trials, got %f", c)
	}
	if c := stats.SignificanceTest(10, 100, 0, 0); c != 0.5 {
		t.Errorf("expected 0.5 when one side has no trials, got %f", c)
	}
}

func TestSignificanceTest_ZeroVariance(t *testing.T) {
	// Every trial a hit on both sides: pooled variance is zero
	if c := stats.SignificanceTest(100, 100, 100, 100); c != 0.5 {
		t.Errorf("expected 0.5 for identical saturated rates, got %f", c)
	}
	if c := stats.SignificanceTest(0, 100, 0, 100); c != 0.5 {
		t.Errorf("expected 0.5 for identical empty rates, got %f", c)
	}
}

func TestSignificanceTest_Symmetry(t *testing.T) {
	ab := stats.SignificanceTest(30, 150, 8, 150)
	ba := stats.SignificanceTest(8, 150, 30, 150)

	if diff := ab + ba - 1; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected A>B and B>A confidences to sum to 1, got %f + %f", ab, ba)
	}
}

func TestProportion(t *testing.T) {
	if p := stats.Proportion(0, 0); p != 0 {
		t.Errorf("expected 0 for no trials, got %f", p)
	}
	if p := stats.Proportion(1, 4); p != 0.25 {
		t.Errorf("expected 0.25, got %f", p)
	}
}

func TestCapHits(t *testing.T) {
	tests := []struct{ hits, trials, want int }{
		{5, 10, 5},
		{40, 10, 10},
		{-3, 10, 0},
		{4, 0, 0},
	}
	for _, tt := range tests {
		if got := stats.CapHits(tt.hits, tt.trials); got != tt.want {
			t.Errorf("CapHits(%d, %d) = %d, want %d", tt.hits, tt.trials, got, tt.want)
		}
	}
}

func TestSignificanceTest_CapsHitsAtTrials(t *testing.T) {
	capped := stats.SignificanceTest(40, 10, 8, 150)
	exact := stats.SignificanceTest(10, 10, 8, 150)

	if capped != exact {
		t.Errorf("expected over-count to behave like all hits: %f vs %f", capped, exact)
	}
}
