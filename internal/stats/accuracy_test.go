package stats

import "testing"

func TestAccuracySentinel(t *testing.T) {
	acc, text := Accuracy(0, 0)
	if acc != SentinelAccuracy {
		t.Fatalf("expected sentinel %v, got %v", SentinelAccuracy, acc)
	}
	if text != "N/A" {
		t.Fatalf("expected N/A, got %q", text)
	}
}

func TestAccuracyValues(t *testing.T) {
	cases := []struct {
		correct, incorrect int
		want               float64
		text               string
	}{
		{3, 0, 100, "100% (3/3)"},
		{1, 1, 50, "50% (1/2)"},
		{0, 4, 0, "0% (0/4)"},
		{1, 2, 100.0 / 3.0, "33% (1/3)"},
	}
	for _, tc := range cases {
		acc, text := Accuracy(tc.correct, tc.incorrect)
		if acc != tc.want {
			t.Fatalf("Accuracy(%d,%d) = %v, want %v", tc.correct, tc.incorrect, acc, tc.want)
		}
		if text != tc.text {
			t.Fatalf("Accuracy(%d,%d) text = %q, want %q", tc.correct, tc.incorrect, text, tc.text)
		}
	}
}

func TestAccuracyMonotonic(t *testing.T) {
	prev := -1.0
	for c := 0; c <= 10; c++ {
		acc, _ := Accuracy(c, 5)
		if acc <= prev {
			t.Fatalf("accuracy not increasing in correct at c=%d: %v <= %v", c, acc, prev)
		}
		prev = acc
	}
	prev = 101.5
	for i := 0; i <= 10; i++ {
		acc, _ := Accuracy(5, i)
		if acc >= prev {
			t.Fatalf("accuracy not decreasing in incorrect at i=%d: %v >= %v", i, acc, prev)
		}
		prev = acc
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{100, 50, 0, 100}, 2)
	want := []float64{100, 75, 25, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected moving average: %v", got)
		}
	}
}
