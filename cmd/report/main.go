// Command report loads the order export and prints the RFM table and the
// per-state customer clusters to stdout. One-shot companion to the server
// for running the segmentation from a terminal or a cron job.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"

	"olist-insights/internal/analytics"
	"olist-insights/internal/dataset"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	path := flag.String("dataset", "all_orders.csv", "Path to the order export (CSV)")
	top := flag.Int("top", 5, "Rows per RFM ranking")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open dataset: %v", err)
	}
	defer f.Close()

	var r io.Reader = f
	if fi, err := f.Stat(); err == nil {
		bar := progressbar.DefaultBytes(fi.Size(), "loading dataset")
		r = io.TeeReader(f, bar)
	}

	ds, err := dataset.ReadCSV(r)
	if err != nil {
		log.Fatalf("read dataset: %v", err)
	}
	fmt.Println()
	log.Printf("[INFO] loaded rows=%d", ds.Len())

	rfm := analytics.RFM(ds.Orders)
	log.Printf("[INFO] customers with approved orders=%d", len(rfm))

	printRanking(rfm, "By Recency (days, most recent first)", *top, func(i, j analytics.RFMRecord) bool {
		return i.Recency < j.Recency
	})
	printRanking(rfm, "By Frequency (orders)", *top, func(i, j analytics.RFMRecord) bool {
		return i.Frequency > j.Frequency
	})
	printRanking(rfm, "By Monetary (total paid)", *top, func(i, j analytics.RFMRecord) bool {
		return i.Monetary > j.Monetary
	})

	dist := analytics.CustomerDistribution(ds.Orders)
	fmt.Println("\nCustomer clusters by state")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tCUSTOMER ROWS\tCLUSTER")
	for _, row := range analytics.SegmentCounts(dist) {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", row.Key, row.Count, row.Cluster)
	}
	tw.Flush()
}

func printRanking(rfm []analytics.RFMRecord, title string, n int, less func(a, b analytics.RFMRecord) bool) {
	rows := make([]analytics.RFMRecord, len(rfm))
	copy(rows, rfm)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	if n < len(rows) {
		rows = rows[:n]
	}

	fmt.Println("\n" + title)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CUSTOMER\tRECENCY\tFREQUENCY\tMONETARY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\n", r.CustomerID, r.Recency, r.Frequency, r.Monetary)
	}
	tw.Flush()
}
