package dataset

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testHeader = strings.Join(requiredColumns, ",")

// row builds a CSV line in requiredColumns order from a partial column map.
func row(t *testing.T, cols map[string]string) string {
	t.Helper()
	fields := make([]string, len(requiredColumns))
	for i, c := range requiredColumns {
		fields[i] = cols[c]
	}
	return strings.Join(fields, ",")
}

func TestReadCSVMissingColumnFails(t *testing.T) {
	csv := "order_id,customer_id\no1,c1\n"
	_, err := ReadCSV(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected error for missing columns, got nil")
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "payment_value") {
		t.Fatalf("error should name the missing column: %v", err)
	}
}

func TestReadCSVBadCellsDegradeToMissing(t *testing.T) {
	csv := testHeader + "\n" + row(t, map[string]string{
		"order_id":                 "o1",
		"customer_id":              "c1",
		"review_score":             "not-a-number",
		"order_purchase_timestamp": "garbage",
		"order_approved_at":        "",
		"payment_value":            "bad",
	}) + "\n"

	ds, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", ds.Len())
	}
	o := ds.Orders[0]
	if o.ReviewScore != nil {
		t.Errorf("bad review score should be missing, got %v", *o.ReviewScore)
	}
	if o.PurchasedAt != nil {
		t.Errorf("bad timestamp should be missing, got %v", *o.PurchasedAt)
	}
	if o.ApprovedAt != nil {
		t.Errorf("empty timestamp should be missing")
	}
	if o.PaymentValue != 0 {
		t.Errorf("bad payment value should read as 0, got %v", o.PaymentValue)
	}
	if o.PurchaseToDelivery != nil {
		t.Errorf("derived field with missing endpoint should be missing")
	}
}

func TestReadCSVDerivedDayFields(t *testing.T) {
	csv := testHeader + "\n" + row(t, map[string]string{
		"order_id":                      "o1",
		"order_purchase_timestamp":      "2017-01-01 10:00:00",
		"order_delivered_customer_date": "2017-01-05 08:00:00",
		"order_estimated_delivery_date": "2017-01-04",
	}) + "\n"

	ds, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := ds.Orders[0]
	if o.PurchaseToDelivery == nil || *o.PurchaseToDelivery != 3 {
		t.Errorf("purchase_to_delivery: want 3 (floor of 3d22h), got %v", o.PurchaseToDelivery)
	}
	// Delivered 32h after the estimate: floor(-32h/24h) = -2.
	if o.EstimatedVsActual == nil || *o.EstimatedVsActual != -2 {
		t.Errorf("estimated_vs_actual: want -2, got %v", o.EstimatedVsActual)
	}
}

func TestReadCSVDateOnlyTimestamps(t *testing.T) {
	csv := testHeader + "\n" + row(t, map[string]string{
		"order_id":                 "o1",
		"order_purchase_timestamp": "2017-03-15",
	}) + "\n"

	ds, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2017, 3, 15, 0, 0, 0, 0, time.UTC)
	if ds.Orders[0].PurchasedAt == nil || !ds.Orders[0].PurchasedAt.Equal(want) {
		t.Fatalf("date-only timestamp: got %v, want %v", ds.Orders[0].PurchasedAt, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does/not/exist.csv"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2018, 7, 3, 23, 59, 1, 0, time.UTC)
	want := time.Date(2018, 7, 3, 0, 0, 0, 0, time.UTC)
	if got := Day(in); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
