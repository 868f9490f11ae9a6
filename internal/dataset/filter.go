package dataset

import (
	"strings"
	"time"
)

// Criteria selects a subset of the dataset. All predicates are AND-combined.
//
// From/To bound the purchase date inclusively at calendar-day granularity;
// a zero time leaves that side unbounded. Rows without a purchase timestamp
// never pass the date predicate.
//
// States and Categories are allow-lists, matched case-insensitively.
// A nil slice means "no restriction" (every value allowed); a non-nil empty
// slice means "none selected" and matches nothing. The distinction mirrors
// the dashboard's multi-select: absent = default full selection, present but
// empty = everything deselected.
type Criteria struct {
	From       time.Time
	To         time.Time
	States     []string
	Categories []string
}

// Filter returns the orders matching c. The result is a fresh slice over
// the same backing rows; the dataset itself is never modified.
func (d *Dataset) Filter(c Criteria) []Order {
	states := allowSet(c.States)
	categories := allowSet(c.Categories)

	var from, to time.Time
	if !c.From.IsZero() {
		from = Day(c.From)
	}
	if !c.To.IsZero() {
		to = Day(c.To)
	}

	out := make([]Order, 0)
	for _, o := range d.Orders {
		if o.PurchasedAt == nil {
			continue
		}
		day := Day(*o.PurchasedAt)
		if !from.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && day.After(to) {
			continue
		}
		if states != nil && !states[norm(o.CustomerState)] {
			continue
		}
		if categories != nil && !categories[norm(o.Category)] {
			continue
		}
		out = append(out, o)
	}
	return out
}

// allowSet builds a lowercase lookup set. nil input stays nil (= allow all);
// an empty non-nil input becomes an empty set (= allow none).
func allowSet(vals []string) map[string]bool {
	if vals == nil {
		return nil
	}
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		v = norm(v)
		if v != "" {
			set[v] = true
		}
	}
	return set
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ProductHit is one row of a product search preview.
type ProductHit struct {
	ProductID   string   `json:"product_id"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	ReviewScore *float64 `json:"review_score"`
}

// SearchResult reports the total number of matching rows plus a capped
// preview. Total == 0 is a normal "not found" outcome, not an error.
type SearchResult struct {
	Query string       `json:"query"`
	Total int          `json:"total"`
	Hits  []ProductHit `json:"hits"`
}

// SearchProducts matches q case-insensitively as a substring of the product
// id or the category name. At most limit rows are returned as preview.
func (d *Dataset) SearchProducts(q string, limit int) SearchResult {
	res := SearchResult{Query: q, Hits: []ProductHit{}}
	q = norm(q)
	if q == "" {
		return res
	}
	for _, o := range d.Orders {
		if !strings.Contains(strings.ToLower(o.ProductID), q) &&
			!strings.Contains(strings.ToLower(o.Category), q) {
			continue
		}
		res.Total++
		if limit <= 0 || len(res.Hits) < limit {
			res.Hits = append(res.Hits, ProductHit{
				ProductID:   o.ProductID,
				Category:    o.Category,
				Price:       o.Price,
				ReviewScore: o.ReviewScore,
			})
		}
	}
	return res
}
