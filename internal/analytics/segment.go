package analytics

import (
	"math"
	"sort"
)

// Cluster is a three-way density bucket.
type Cluster string

const (
	ClusterLow    Cluster = "Low"
	ClusterMedium Cluster = "Medium"
	ClusterHigh   Cluster = "High"
)

// SegmentRow labels one key of a distribution with its cluster.
type SegmentRow struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Cluster Cluster `json:"cluster"`
}

// Quantile returns the q-th quantile of values using linear interpolation
// between order statistics. NaN for an empty input.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	if q <= 0 {
		return s[0]
	}
	if q >= 1 {
		return s[len(s)-1]
	}
	h := q * float64(len(s)-1)
	lo := int(math.Floor(h))
	frac := h - float64(lo)
	if lo+1 >= len(s) {
		return s[lo]
	}
	return s[lo] + frac*(s[lo+1]-s[lo])
}

// Classify buckets a value against the two cut points. Values on a boundary
// fall into the lower bucket.
func Classify(value, q1, q3 float64) Cluster {
	switch {
	case value <= q1:
		return ClusterLow
	case value <= q3:
		return ClusterMedium
	default:
		return ClusterHigh
	}
}

// SegmentCounts classifies every key of a count distribution into
// Low/Medium/High using the 25th and 75th percentile of the counts
// themselves. The cut points are recomputed from scratch on every call;
// input order is preserved.
func SegmentCounts(dist []CountRow) []SegmentRow {
	if len(dist) == 0 {
		return nil
	}
	values := make([]float64, len(dist))
	for i, r := range dist {
		values[i] = float64(r.Count)
	}
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)

	out := make([]SegmentRow, len(dist))
	for i, r := range dist {
		out[i] = SegmentRow{Key: r.Key, Count: r.Count, Cluster: Classify(float64(r.Count), q1, q3)}
	}
	return out
}
