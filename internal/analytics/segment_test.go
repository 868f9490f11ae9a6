package analytics

import (
	"math"
	"testing"
)

func TestQuantileLinearInterpolation(t *testing.T) {
	vals := []float64{10, 20, 30, 40}
	// h = 0.25*3 = 0.75 → 10 + 0.75*(20-10) = 17.5
	if q := Quantile(vals, 0.25); q != 17.5 {
		t.Errorf("q1: want 17.5, got %v", q)
	}
	if q := Quantile(vals, 0.75); q != 32.5 {
		t.Errorf("q3: want 32.5, got %v", q)
	}
	if q := Quantile(vals, 0); q != 10 {
		t.Errorf("q0: want min, got %v", q)
	}
	if q := Quantile(vals, 1); q != 40 {
		t.Errorf("q1.0: want max, got %v", q)
	}
	if q := Quantile([]float64{7}, 0.5); q != 7 {
		t.Errorf("single value: want 7, got %v", q)
	}
	if q := Quantile(nil, 0.5); !math.IsNaN(q) {
		t.Errorf("empty input: want NaN, got %v", q)
	}
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	vals := []float64{3, 1, 2}
	Quantile(vals, 0.5)
	if vals[0] != 3 || vals[1] != 1 || vals[2] != 2 {
		t.Fatalf("input reordered: %v", vals)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	q1, q3 := 20.0, 80.0
	cases := []struct {
		value float64
		want  Cluster
	}{
		{10, ClusterLow},
		{20, ClusterLow}, // exactly Q1 stays Low
		{20.01, ClusterMedium},
		{80, ClusterMedium}, // exactly Q3 stays Medium
		{80.01, ClusterHigh},
		{100, ClusterHigh},
	}
	for _, c := range cases {
		if got := Classify(c.value, q1, q3); got != c.want {
			t.Errorf("Classify(%v): want %s, got %s", c.value, c.want, got)
		}
	}
}

func TestSegmentCountsScenario(t *testing.T) {
	// SP has 100 customers, RJ has 10; with cut points at 20/80 SP is High
	// and RJ is Low.
	dist := []CountRow{
		{Key: "SP", Count: 100},
		{Key: "MG", Count: 50},
		{Key: "PR", Count: 40},
		{Key: "RJ", Count: 10},
	}
	got := SegmentCounts(dist)
	byKey := map[string]Cluster{}
	for _, r := range got {
		byKey[r.Key] = r.Cluster
	}
	if byKey["SP"] != ClusterHigh {
		t.Errorf("SP: want High, got %s", byKey["SP"])
	}
	if byKey["RJ"] != ClusterLow {
		t.Errorf("RJ: want Low, got %s", byKey["RJ"])
	}
}

func TestSegmentCountsTotality(t *testing.T) {
	dist := []CountRow{
		{Key: "a", Count: 1}, {Key: "b", Count: 2}, {Key: "c", Count: 3},
		{Key: "d", Count: 4}, {Key: "e", Count: 5},
	}
	got := SegmentCounts(dist)
	if len(got) != len(dist) {
		t.Fatalf("every key must be classified: %d in, %d out", len(dist), len(got))
	}
	for i, r := range got {
		if r.Key != dist[i].Key {
			t.Errorf("input order must be preserved at %d: got %s", i, r.Key)
		}
		switch r.Cluster {
		case ClusterLow, ClusterMedium, ClusterHigh:
		default:
			t.Errorf("key %s got unknown cluster %q", r.Key, r.Cluster)
		}
	}
}

func TestSegmentCountsEmpty(t *testing.T) {
	if got := SegmentCounts(nil); got != nil {
		t.Fatalf("empty distribution: want nil, got %+v", got)
	}
}
