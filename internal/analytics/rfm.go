package analytics

import (
	"time"

	"olist-insights/internal/dataset"
)

// RFMRecord scores one customer by recency, frequency and monetary value.
//
// CustomerID is truncated to its first 8 characters for display; grouping
// happens on the full id. Monetary sums payment values over every row of
// the customer, so an order with two item rows contributes twice while
// Frequency still counts it once.
type RFMRecord struct {
	CustomerID     string    `json:"customer_id"`
	LastApprovedAt time.Time `json:"max_order_approved_at"`
	Frequency      int       `json:"frequency"`
	Monetary       float64   `json:"monetary"`
	Recency        int       `json:"recency"`
}

// RFM computes one record per customer with at least one approved order.
// Recency is the whole-day distance from the dataset-wide latest approval
// date (the global anchor) to the customer's own latest approval date, so
// it is non-negative by construction. Customers whose orders were never
// approved are dropped, not zero-filled.
func RFM(rows []dataset.Order) []RFMRecord {
	groups, order := groupBy(rows, func(o dataset.Order) (string, bool) {
		return o.CustomerID, o.CustomerID != ""
	})

	var anchor time.Time
	for _, o := range rows {
		if o.ApprovedAt == nil {
			continue
		}
		d := dataset.Day(*o.ApprovedAt)
		if d.After(anchor) {
			anchor = d
		}
	}

	out := make([]RFMRecord, 0, len(order))
	for _, id := range order {
		g := groups[id]
		var last time.Time
		approved := false
		orders := make(map[string]struct{}, len(g))
		var monetary float64
		for _, o := range g {
			orders[o.OrderID] = struct{}{}
			monetary += o.PaymentValue
			if o.ApprovedAt != nil {
				d := dataset.Day(*o.ApprovedAt)
				if !approved || d.After(last) {
					last = d
					approved = true
				}
			}
		}
		if !approved {
			continue
		}
		out = append(out, RFMRecord{
			CustomerID:     truncateID(id),
			LastApprovedAt: last,
			Frequency:      len(orders),
			Monetary:       monetary,
			Recency:        int(anchor.Sub(last).Hours() / 24),
		})
	}
	return out
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
