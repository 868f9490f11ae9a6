// Package analytics computes the dashboard's derived tables. Every function
// is pure: it takes the rows to aggregate as an explicit argument and returns
// a new result, so the caller decides whether a view is computed over the
// filtered selection or the full dataset.
package analytics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"olist-insights/internal/dataset"
)

// Overview holds the headline metrics of the current selection.
// AvgRating is NaN when no row carries a review score.
type Overview struct {
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
	AvgRating float64 `json:"avg_rating"`
}

// Summarize counts distinct orders and distinct customers and averages the
// review score over rows that have one.
func Summarize(rows []dataset.Order) Overview {
	orders := make(map[string]struct{})
	customers := make(map[string]struct{})
	var sum float64
	var n int
	for _, o := range rows {
		orders[o.OrderID] = struct{}{}
		customers[o.CustomerUniqueID] = struct{}{}
		if o.ReviewScore != nil {
			sum += *o.ReviewScore
			n++
		}
	}
	avg := math.NaN()
	if n > 0 {
		avg = sum / float64(n)
	}
	return Overview{Orders: len(orders), Customers: len(customers), AvgRating: avg}
}

// CountRow is a category key with a row count.
type CountRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ValueRow is a category key with an aggregated value.
type ValueRow struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// ScoreCount is a review score with an associated count.
type ScoreCount struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// PaymentTypeCounts tallies rows per payment type, most frequent first.
// Ties keep first-encountered order.
func PaymentTypeCounts(rows []dataset.Order) []CountRow {
	return countRowsDesc(rows, func(o dataset.Order) (string, bool) {
		return o.PaymentType, o.PaymentType != ""
	})
}

// CustomerDistribution tallies rows per customer state, largest first.
func CustomerDistribution(rows []dataset.Order) []CountRow {
	return countRowsDesc(rows, func(o dataset.Order) (string, bool) {
		return o.CustomerState, o.CustomerState != ""
	})
}

// SellerDistribution tallies rows per seller state, largest first.
func SellerDistribution(rows []dataset.Order) []CountRow {
	return countRowsDesc(rows, func(o dataset.Order) (string, bool) {
		return o.SellerState, o.SellerState != ""
	})
}

// CategoryOrderCounts counts distinct orders per product category,
// most ordered first.
func CategoryOrderCounts(rows []dataset.Order) []CountRow {
	groups, order := groupBy(rows, func(o dataset.Order) (string, bool) {
		return o.Category, o.Category != ""
	})
	out := make([]CountRow, 0, len(order))
	for _, key := range order {
		out = append(out, CountRow{Key: key, Count: distinctOrders(groups[key])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// TopN returns the first n rows of a ranked table.
func TopN(rows []CountRow, n int) []CountRow {
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// BottomN re-ranks ascending and returns the first n rows, so the least
// frequent keys come out in increasing order.
func BottomN(rows []CountRow, n int) []CountRow {
	asc := make([]CountRow, len(rows))
	copy(asc, rows)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Count < asc[j].Count })
	if n < len(asc) {
		asc = asc[:n]
	}
	return asc
}

// ReviewScoreOrders counts distinct orders per review score, largest first.
func ReviewScoreOrders(rows []dataset.Order) []ScoreCount {
	groups, order := groupBy(rows, func(o dataset.Order) (string, bool) {
		if o.ReviewScore == nil {
			return "", false
		}
		return scoreKey(*o.ReviewScore), true
	})
	out := make([]ScoreCount, 0, len(order))
	for _, key := range order {
		g := groups[key]
		out = append(out, ScoreCount{Score: *g[0].ReviewScore, Count: distinctOrders(g)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// ReviewScoreCounts tallies rows per review score, ordered by score.
func ReviewScoreCounts(rows []dataset.Order) []ScoreCount {
	groups, order := groupBy(rows, func(o dataset.Order) (string, bool) {
		if o.ReviewScore == nil {
			return "", false
		}
		return scoreKey(*o.ReviewScore), true
	})
	out := make([]ScoreCount, 0, len(order))
	for _, key := range order {
		g := groups[key]
		out = append(out, ScoreCount{Score: *g[0].ReviewScore, Count: len(g)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}

// CategoryAvgRating averages the review score per category, best first.
// Categories whose rows all lack a score are omitted.
func CategoryAvgRating(rows []dataset.Order) []ValueRow {
	out := meanBy(rows,
		func(o dataset.Order) (string, bool) { return o.Category, o.Category != "" },
		func(o dataset.Order) (float64, bool) {
			if o.ReviewScore == nil {
				return 0, false
			}
			return *o.ReviewScore, true
		})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// CategoryRevenue sums item prices per category, highest first.
func CategoryRevenue(rows []dataset.Order) []ValueRow {
	out := sumBy(rows,
		func(o dataset.Order) (string, bool) { return o.Category, o.Category != "" },
		func(o dataset.Order) float64 { return o.Price })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// StateSales sums payment values per customer state, highest first.
func StateSales(rows []dataset.Order) []ValueRow {
	out := sumBy(rows,
		func(o dataset.Order) (string, bool) { return o.CustomerState, o.CustomerState != "" },
		func(o dataset.Order) float64 { return o.PaymentValue })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// StateAvgDelivery averages purchase-to-delivery days per customer state,
// fastest first. Rows without a delivery delta are ignored; states with no
// delivered order are omitted.
func StateAvgDelivery(rows []dataset.Order) []ValueRow {
	out := meanBy(rows,
		func(o dataset.Order) (string, bool) { return o.CustomerState, o.CustomerState != "" },
		func(o dataset.Order) (float64, bool) {
			if o.PurchaseToDelivery == nil {
				return 0, false
			}
			return float64(*o.PurchaseToDelivery), true
		})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// HistBin is one equal-width histogram bucket over [Lo, Hi).
// The last bucket is closed on both ends.
type HistBin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// DeliveryHistogram buckets the non-missing purchase-to-delivery days into
// bins equal-width buckets. Returns nil when no row has a delivery delta.
func DeliveryHistogram(rows []dataset.Order, bins int) []HistBin {
	if bins <= 0 {
		bins = 20
	}
	var vals []float64
	for _, o := range rows {
		if o.PurchaseToDelivery != nil {
			vals = append(vals, float64(*o.PurchaseToDelivery))
		}
	}
	if len(vals) == 0 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return []HistBin{{Lo: lo, Hi: hi, Count: len(vals)}}
	}
	width := (hi - lo) / float64(bins)
	out := make([]HistBin, bins)
	for i := range out {
		out[i] = HistBin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// MonthlyPoint is one month of the sales series.
type MonthlyPoint struct {
	Month time.Time `json:"month"`
	Total float64   `json:"total"`
}

// MonthlySales sums payment values per calendar month of the purchase date.
// Months with no orders between the first and last observed month are
// emitted with a zero total, so the series has no gaps.
func MonthlySales(rows []dataset.Order) []MonthlyPoint {
	sums := make(map[time.Time]float64)
	var first, last time.Time
	for _, o := range rows {
		if o.PurchasedAt == nil {
			continue
		}
		m := monthOf(*o.PurchasedAt)
		sums[m] += o.PaymentValue
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}
	if first.IsZero() {
		return nil
	}
	var out []MonthlyPoint
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthlyPoint{Month: m, Total: sums[m]})
	}
	return out
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// groupBy groups rows by key, keeping first-encountered key order so that
// downstream stable sorts break ties deterministically.
func groupBy(rows []dataset.Order, key func(dataset.Order) (string, bool)) (map[string][]dataset.Order, []string) {
	groups := make(map[string][]dataset.Order)
	var order []string
	for _, o := range rows {
		k, ok := key(o)
		if !ok {
			continue
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], o)
	}
	return groups, order
}

func countRowsDesc(rows []dataset.Order, key func(dataset.Order) (string, bool)) []CountRow {
	groups, order := groupBy(rows, key)
	out := make([]CountRow, 0, len(order))
	for _, k := range order {
		out = append(out, CountRow{Key: k, Count: len(groups[k])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func sumBy(rows []dataset.Order, key func(dataset.Order) (string, bool), val func(dataset.Order) float64) []ValueRow {
	groups, order := groupBy(rows, key)
	out := make([]ValueRow, 0, len(order))
	for _, k := range order {
		var sum float64
		for _, o := range groups[k] {
			sum += val(o)
		}
		out = append(out, ValueRow{Key: k, Value: sum})
	}
	return out
}

func meanBy(rows []dataset.Order, key func(dataset.Order) (string, bool), val func(dataset.Order) (float64, bool)) []ValueRow {
	groups, order := groupBy(rows, key)
	out := make([]ValueRow, 0, len(order))
	for _, k := range order {
		var sum float64
		var n int
		for _, o := range groups[k] {
			if v, ok := val(o); ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		out = append(out, ValueRow{Key: k, Value: sum / float64(n)})
	}
	return out
}

func distinctOrders(rows []dataset.Order) int {
	seen := make(map[string]struct{}, len(rows))
	for _, o := range rows {
		seen[o.OrderID] = struct{}{}
	}
	return len(seen)
}

func scoreKey(s float64) string { return strconv.FormatFloat(s, 'f', -1, 64) }
