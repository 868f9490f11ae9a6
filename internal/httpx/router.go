package httpx

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"olist-insights/internal/analytics"
	"olist-insights/internal/config"
	"olist-insights/internal/dataset"
	"olist-insights/internal/obs"
)

// server serves the computed dashboard tables. Every endpoint reads the
// immutable dataset and recomputes its output per request; there is no
// cached or mutable state, so requests are independent by construction.
type server struct {
	log *slog.Logger
	ds  *dataset.Dataset
	cfg config.Config
}

func NewRouter(log *slog.Logger, ds *dataset.Dataset, m *obs.Metrics, cfg config.Config) http.Handler {
	s := &server{log: log, ds: ds, cfg: cfg}

	mux := chi.NewRouter()
	mux.Use(RequestID)
	mux.Use(Logger(log))
	mux.Use(m.Middleware)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", m.Handler())

	mux.Route("/api", func(api chi.Router) {
		// Views over the filtered selection.
		api.Get("/overview", s.filtered(s.overview))
		api.Get("/payments", s.filtered(s.payments))
		api.Get("/ratings", s.filtered(s.ratings))
		api.Get("/ratings/categories", s.filtered(s.ratingCategories))
		api.Get("/delivery/states", s.filtered(s.deliveryStates))
		api.Get("/delivery/histogram", s.filtered(s.deliveryHistogram))
		api.Get("/sales/monthly", s.filtered(s.monthlySales))
		api.Get("/sales/states", s.filtered(s.stateSales))
		api.Get("/sales/categories", s.filtered(s.categorySales))
		api.Get("/categories/top", s.filtered(s.topCategories))

		// Views the dashboard always computed over the full dataset.
		// Kept that way on purpose; the source argument makes it explicit.
		api.Get("/distribution/customers", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, analytics.CustomerDistribution(s.ds.Orders))
		})
		api.Get("/distribution/sellers", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, analytics.SellerDistribution(s.ds.Orders))
		})
		api.Get("/rfm", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, analytics.RFM(s.ds.Orders))
		})
		api.Get("/clusters", func(w http.ResponseWriter, r *http.Request) {
			dist := analytics.CustomerDistribution(s.ds.Orders)
			writeJSON(w, analytics.SegmentCounts(dist))
		})

		api.Get("/products/search", s.search)
	})

	return mux
}

// filtered wraps a handler that works on the filter selection, parsing the
// criteria once and rejecting malformed dates up front.
func (s *server) filtered(fn func(http.ResponseWriter, []dataset.Order, url.Values)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		crit, err := criteriaFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fn(w, s.ds.Filter(crit), r.URL.Query())
	}
}

func (s *server) overview(w http.ResponseWriter, rows []dataset.Order, _ url.Values) {
	o := analytics.Summarize(rows)
	writeJSON(w, struct {
		Orders    int      `json:"orders"`
		Customers int      `json:"customers"`
		AvgRating *float64 `json:"avg_rating"`
	}{o.Orders, o.Customers, nanToNull(o.AvgRating)})
}

func (s *server) payments(w http.ResponseWriter, rows []dataset.Order, _ url.Values) {
	writeJSON(w, analytics.PaymentTypeCounts(rows))
}

func (s *server) ratings(w http.ResponseWriter, rows []dataset.Order, _ url.Values) {
	writeJSON(w, struct {
		ByOrders []analytics.ScoreCount `json:"by_orders"`
		ByRows   []analytics.ScoreCount `json:"by_rows"`
	}{analytics.ReviewScoreOrders(rows), analytics.ReviewScoreCounts(rows)})
}

func (s *server) ratingCategories(w http.ResponseWriter, rows []dataset.Order, _ url.Values) {
	writeJSON(w, analytics.CategoryAvgRating(rows))
}

func (s *server) deliveryStates(w http.ResponseWriter, rows []dataset.Order, _ url.Values) {
	writeJSON(w, analytics.StateAvgDelivery(rows))
}

func (s *server) deliveryHistogram(w http.ResponseWriter, rows []dataset.Order, v url.Values) {
	bins := atoiDef(v.Get("bins"), s.cfg.DeliveryBins)
	writeJSON(w, analytics.DeliveryHistogram(rows, bins))
}

func (s *server) monthlySales(w http.ResponseWriter, rows []dataset.Order, _ url.Values) {
	writeJSON(w, analytics.MonthlySales(rows))
}

func (s *server) stateSales(w http.ResponseWriter, rows []dataset.Order, _ url.Values) {
	writeJSON(w, analytics.StateSales(rows))
}

func (s *server) categorySales(w http.ResponseWriter, rows []dataset.Order, _ url.Values) {
	writeJSON(w, analytics.CategoryRevenue(rows))
}

func (s *server) topCategories(w http.ResponseWriter, rows []dataset.Order, v url.Values) {
	n := atoiDef(v.Get("n"), 5)
	ranked := analytics.CategoryOrderCounts(rows)
	writeJSON(w, struct {
		Top    []analytics.CountRow `json:"top"`
		Bottom []analytics.CountRow `json:"bottom"`
	}{analytics.TopN(ranked, n), analytics.BottomN(ranked, n)})
}

func (s *server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "q required", http.StatusBadRequest)
		return
	}
	limit := atoiDef(r.URL.Query().Get("limit"), s.cfg.SearchLimit)
	writeJSON(w, s.ds.SearchProducts(q, limit))
}

// criteriaFromQuery maps from/to/states/categories query params onto filter
// criteria. An absent states or categories param means "all"; a present but
// empty one means "none", matching the dashboard's multi-select semantics.
func criteriaFromQuery(v url.Values) (dataset.Criteria, error) {
	var c dataset.Criteria
	if raw := v.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c, errBadDate("from", raw)
		}
		c.From = t
	}
	if raw := v.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c, errBadDate("to", raw)
		}
		c.To = t
	}
	c.States = csvList(v, "states")
	c.Categories = csvList(v, "categories")
	return c, nil
}

type badDateError struct{ param, raw string }

func (e badDateError) Error() string {
	return "bad " + e.param + " date " + strconv.Quote(e.raw) + " (want YYYY-MM-DD)"
}

func errBadDate(param, raw string) error { return badDateError{param: param, raw: raw} }

// csvList splits a comma-separated param, preserving the absent/empty
// distinction: absent returns nil, present-but-empty returns a non-nil
// empty slice.
func csvList(v url.Values, key string) []string {
	if !v.Has(key) {
		return nil
	}
	out := []string{}
	for _, p := range strings.Split(v.Get(key), ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func nanToNull(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
