// Package dataset loads the denormalized order export into memory and
// exposes filtered views over it. The dataset is immutable after load:
// every filter or search builds a new slice, nothing is mutated in place.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingColumn is returned (wrapped) when the source file lacks one of
// the required columns. Bad individual cells never produce this; they
// degrade to missing values instead.
var ErrMissingColumn = errors.New("missing required column")

// Required columns of the export. Loading fails fast if any is absent.
var requiredColumns = []string{
	"order_id",
	"customer_id",
	"customer_unique_id",
	"product_id",
	"product_category_name_english",
	"seller_id",
	"seller_state",
	"customer_state",
	"price",
	"payment_type",
	"payment_value",
	"review_score",
	"order_purchase_timestamp",
	"order_approved_at",
	"order_delivered_carrier_date",
	"order_delivered_customer_date",
	"order_estimated_delivery_date",
	"review_creation_date",
	"review_answer_timestamp",
	"shipping_limit_date",
}

// Order is one row of the export: one order item joined with its customer,
// product, seller, payment and review fields. Pointer fields are nil when
// the source cell was empty or unparseable.
type Order struct {
	OrderID          string
	CustomerID       string
	CustomerUniqueID string
	ProductID        string
	Category         string
	SellerID         string
	SellerState      string
	CustomerState    string

	Price        float64
	PaymentType  string
	PaymentValue float64
	ReviewScore  *float64

	PurchasedAt         *time.Time
	ApprovedAt          *time.Time
	CarrierDeliveredAt  *time.Time
	CustomerDeliveredAt *time.Time
	EstimatedDeliveryAt *time.Time
	ReviewCreatedAt     *time.Time
	ReviewAnsweredAt    *time.Time
	ShippingLimitAt     *time.Time

	// Derived at load time, nil when either endpoint is missing.
	PurchaseToDelivery *int
	EstimatedVsActual  *int
}

// Dataset is the loaded table. Treat it as read-only.
type Dataset struct {
	Orders []Order
}

func (d *Dataset) Len() int { return len(d.Orders) }

// Load reads the CSV export at path. It fails only when the file cannot be
// opened or a required column is absent.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses the export from r. Malformed cells (bad timestamps, bad
// numbers) become missing values; malformed rows are skipped.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	ds := &Dataset{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		cell := func(col string) string {
			i := idx[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		o := Order{
			OrderID:          cell("order_id"),
			CustomerID:       cell("customer_id"),
			CustomerUniqueID: cell("customer_unique_id"),
			ProductID:        cell("product_id"),
			Category:         cell("product_category_name_english"),
			SellerID:         cell("seller_id"),
			SellerState:      cell("seller_state"),
			CustomerState:    cell("customer_state"),
			Price:            parseFloat(cell("price")),
			PaymentType:      cell("payment_type"),
			PaymentValue:     parseFloat(cell("payment_value")),
			ReviewScore:      parseFloatPtr(cell("review_score")),

			PurchasedAt:         parseTime(cell("order_purchase_timestamp")),
			ApprovedAt:          parseTime(cell("order_approved_at")),
			CarrierDeliveredAt:  parseTime(cell("order_delivered_carrier_date")),
			CustomerDeliveredAt: parseTime(cell("order_delivered_customer_date")),
			EstimatedDeliveryAt: parseTime(cell("order_estimated_delivery_date")),
			ReviewCreatedAt:     parseTime(cell("review_creation_date")),
			ReviewAnsweredAt:    parseTime(cell("review_answer_timestamp")),
			ShippingLimitAt:     parseTime(cell("shipping_limit_date")),
		}
		o.PurchaseToDelivery = daysBetween(o.PurchasedAt, o.CustomerDeliveredAt)
		o.EstimatedVsActual = daysBetween(o.CustomerDeliveredAt, o.EstimatedDeliveryAt)

		ds.Orders = append(ds.Orders, o)
	}
	return ds, nil
}

var timeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseFloat returns 0 on a bad cell. Money fields are only ever summed, so
// missing-as-zero matches how sums skip missing values.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// daysBetween is the floor of (to - from) in whole days, nil when either
// endpoint is missing. Floor, not truncation: a delivery 4 hours early
// counts as -1 day, matching timedelta day semantics of the source export.
func daysBetween(from, to *time.Time) *int {
	if from == nil || to == nil {
		return nil
	}
	d := int(math.Floor(to.Sub(*from).Hours() / 24))
	return &d
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
