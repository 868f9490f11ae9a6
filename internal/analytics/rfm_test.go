package analytics

import (
	"testing"
	"time"

	"olist-insights/internal/dataset"
)

func TestRFMScenario(t *testing.T) {
	// Three orders for one customer, approved on days 1/3/5; day 5 is also
	// the dataset-wide latest approval.
	rows := []dataset.Order{
		{OrderID: "o1", CustomerID: "cust1234abcd", PaymentValue: 10, ApprovedAt: ts("2018-06-01 10:00:00")},
		{OrderID: "o2", CustomerID: "cust1234abcd", PaymentValue: 20, ApprovedAt: ts("2018-06-03 10:00:00")},
		{OrderID: "o3", CustomerID: "cust1234abcd", PaymentValue: 30, ApprovedAt: ts("2018-06-05 10:00:00")},
	}
	got := RFM(rows)
	if len(got) != 1 {
		t.Fatalf("want 1 record, got %d", len(got))
	}
	r := got[0]
	if r.CustomerID != "cust1234" {
		t.Errorf("customer id must be truncated to 8 chars, got %q", r.CustomerID)
	}
	if r.Frequency != 3 {
		t.Errorf("frequency: want 3, got %d", r.Frequency)
	}
	if r.Monetary != 60 {
		t.Errorf("monetary: want 60, got %v", r.Monetary)
	}
	if r.Recency != 0 {
		t.Errorf("recency: want 0, got %d", r.Recency)
	}
	if want := time.Date(2018, 6, 5, 0, 0, 0, 0, time.UTC); !r.LastApprovedAt.Equal(want) {
		t.Errorf("last approval date: want %v, got %v", want, r.LastApprovedAt)
	}
}

func TestRFMMonetarySumsRowsNotOrders(t *testing.T) {
	// Two item rows of the same order both contribute to monetary,
	// while frequency counts the order once.
	rows := []dataset.Order{
		{OrderID: "o1", CustomerID: "c1", PaymentValue: 50, ApprovedAt: ts("2018-06-01 00:00:00")},
		{OrderID: "o1", CustomerID: "c1", PaymentValue: 50, ApprovedAt: ts("2018-06-01 00:00:00")},
	}
	got := RFM(rows)
	if len(got) != 1 {
		t.Fatalf("want 1 record, got %d", len(got))
	}
	if got[0].Monetary != 100 {
		t.Errorf("monetary: want 100, got %v", got[0].Monetary)
	}
	if got[0].Frequency != 1 {
		t.Errorf("frequency: want 1, got %d", got[0].Frequency)
	}
}

func TestRFMDropsCustomersWithoutApproval(t *testing.T) {
	rows := []dataset.Order{
		{OrderID: "o1", CustomerID: "approved", PaymentValue: 10, ApprovedAt: ts("2018-06-05 00:00:00")},
		{OrderID: "o2", CustomerID: "never-approved", PaymentValue: 99},
	}
	got := RFM(rows)
	if len(got) != 1 {
		t.Fatalf("want 1 record, got %d", len(got))
	}
	if got[0].CustomerID != "approved" {
		t.Fatalf("unapproved customer must be dropped, got %q", got[0].CustomerID)
	}
}

func TestRFMRecencyAgainstGlobalAnchor(t *testing.T) {
	rows := []dataset.Order{
		{OrderID: "o1", CustomerID: "old", PaymentValue: 10, ApprovedAt: ts("2018-06-01 23:00:00")},
		{OrderID: "o2", CustomerID: "new", PaymentValue: 10, ApprovedAt: ts("2018-06-11 01:00:00")},
	}
	got := RFM(rows)
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	byID := map[string]RFMRecord{}
	for _, r := range got {
		byID[r.CustomerID] = r
	}
	// Calendar-day distance: Jun 11 minus Jun 1, times of day ignored.
	if byID["old"].Recency != 10 {
		t.Errorf("old customer recency: want 10, got %d", byID["old"].Recency)
	}
	if byID["new"].Recency != 0 {
		t.Errorf("anchor customer recency: want 0, got %d", byID["new"].Recency)
	}
	for _, r := range got {
		if r.Recency < 0 {
			t.Errorf("recency must be non-negative, got %d for %s", r.Recency, r.CustomerID)
		}
	}
}

func TestRFMEmptyInput(t *testing.T) {
	if got := RFM(nil); len(got) != 0 {
		t.Fatalf("want no records, got %d", len(got))
	}
}
