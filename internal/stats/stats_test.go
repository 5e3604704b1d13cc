package stats

import (
	"math"
	"testing"
)

func TestScorePercent(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{10, 10, 100},
		{2, 3, 67},
		{1, 3, 33},
		{7, 10, 70},
	}
	for _, tc := range cases {
		if got := ScorePercent(tc.correct, tc.total); got != tc.want {
			t.Fatalf("ScorePercent(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(3, 4); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("Accuracy(3, 4) = %v, want 0.75", got)
	}
	if got := Accuracy(1, 0); got != 0 {
		t.Fatalf("Accuracy with zero total = %v, want 0", got)
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	got := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}

	same := MovingAverage(values, 1)
	for i := range values {
		if same[i] != values[i] {
			t.Fatalf("window 1 must return values unchanged")
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("empty input: %q", got)
	}
	flat := Sparkline([]float64{50, 50, 50})
	if len(flat) != 3 {
		t.Fatalf("flat sparkline length %d, want 3", len(flat))
	}
	if flat[0] != flat[1] || flat[1] != flat[2] {
		t.Fatalf("flat values must render identically: %q", flat)
	}

	spark := Sparkline([]float64{0, 100})
	if len(spark) != 2 {
		t.Fatalf("sparkline length %d, want 2", len(spark))
	}
	if spark[0] != sparkChars[0] {
		t.Fatalf("minimum must map to lowest glyph")
	}
	if spark[1] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("maximum must map to highest glyph")
	}
}
