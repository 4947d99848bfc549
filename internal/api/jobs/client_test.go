package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jobwatch/internal/models"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, zap.NewNop()).WithBackoff(time.Millisecond)
}

func TestListJobs_QueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("keyword") != "go" || q.Get("company") != "Google" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Has("location") {
			t.Errorf("location should be omitted, got %q", q.Get("location"))
		}
		if q.Get("order_by") != "-created_at" || q.Get("limit") != "50" || q.Get("offset") != "0" {
			t.Errorf("unexpected paging/order %v", q)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		w.Write([]byte(`[{"id":1,"title":"Go Engineer","company":"Google","location":null,"job_link":"https://x/1","posted_date":"2024-05-01"}]`))
	})

	jobs, err := c.ListJobs(context.Background(), ListParams{Keyword: "go", Company: "Google"})
	if err != nil {
		t.Fatalf("ListJobs error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != 1 || models.StringValue(jobs[0].Company) != "Google" {
		t.Errorf("jobs = %+v", jobs)
	}
	if jobs[0].Location != nil {
		t.Errorf("Location = %v, want nil", *jobs[0].Location)
	}
}

func TestSearchJobs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" || q.Get("keyword") != "Engineer" || q.Get("max_pages") != "3" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	})

	jobs, err := c.SearchJobs(context.Background(), SearchParams{Keyword: "Engineer", MaxPages: 3})
	if err != nil {
		t.Fatalf("SearchJobs error: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("len(jobs) = %d", len(jobs))
	}
}

func TestSuggest_PathsAndLimit(t *testing.T) {
	cases := []struct {
		field models.Field
		path  string
	}{
		{models.FieldKeyword, "/suggest/keywords"},
		{models.FieldCompany, "/suggest/companies"},
		{models.FieldLocation, "/suggest/locations"},
	}
	for _, tc := range cases {
		t.Run(string(tc.field), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tc.path {
					t.Errorf("path = %q, want %q", r.URL.Path, tc.path)
				}
				if r.URL.Query().Get("q") != "Goo" || r.URL.Query().Get("limit") != "2" {
					t.Errorf("query = %q", r.URL.RawQuery)
				}
				w.Write([]byte(`["Google","Goodyear","Goo Inc"]`))
			})
			items, err := c.Suggest(context.Background(), tc.field, " Goo ", 2)
			if err != nil {
				t.Fatalf("Suggest error: %v", err)
			}
			if len(items) != 2 || items[0] != "Google" {
				t.Errorf("items = %v", items)
			}
		})
	}
}

func TestSuggest_EmptyQueryNoRequest(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	items, err := c.Suggest(context.Background(), models.FieldKeyword, "   ", 8)
	if err != nil || items != nil {
		t.Errorf("Suggest(blank) = %v, %v", items, err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("blank query issued %d requests", calls)
	}
}

func TestTransportError_Non2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.ListAlerts(context.Background(), 10, 0)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", te.Status)
	}
}

func TestDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})
	_, err := c.SearchJobs(context.Background(), SearchParams{Keyword: "x"})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestRetry_GetRetriedPostNot(t *testing.T) {
	var gets, posts int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if atomic.AddInt32(&gets, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`[]`))
			return
		}
		atomic.AddInt32(&posts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := c.ListJobs(context.Background(), ListParams{}); err != nil {
		t.Fatalf("ListJobs error after retries: %v", err)
	}
	if got := atomic.LoadInt32(&gets); got != 3 {
		t.Errorf("GET attempts = %d, want 3", got)
	}

	_, err := c.Scrape(context.Background(), models.ScrapeJob{Keywords: "Go", Location: "Remote", MaxPages: 1})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Scrape err = %v, want *TransportError", err)
	}
	if got := atomic.LoadInt32(&posts); got != 1 {
		t.Errorf("POST attempts = %d, want 1", got)
	}
}

func TestAdvancedScrape_Params(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/scrape/advanced" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("enrich") != "true" || q.Get("headless") != "false" || q.Get("delay_min") != "1.5" || q.Get("delay_max") != "3" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"found":3,"exported":3,"files":{"csv":"/exports/a.csv","json":"/exports/a.json"}}`))
	})

	manifest, err := c.AdvancedScrape(context.Background(), models.ScrapeJob{
		Keywords: "Go", Location: "Remote", MaxPages: 2,
		Enrich: true, DelayMin: 1.5, DelayMax: 3,
	})
	if err != nil {
		t.Fatalf("AdvancedScrape error: %v", err)
	}
	if manifest.Files["csv"] != "/exports/a.csv" {
		t.Errorf("manifest = %+v", manifest)
	}
}

func TestCanceledRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.SearchJobs(ctx, SearchParams{Keyword: "x"})
	if !IsCanceled(err) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTimeouts_ScrapeOutlivesLookupBound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		if r.URL.Path == "/scrape" {
			w.Write([]byte(`{"found":2,"created":1}`))
			return
		}
		w.Write([]byte(`[]`))
	})
	c.timeout = 100 * time.Millisecond
	c.WithScrapeTimeout(2 * time.Second)

	ack, err := c.Scrape(context.Background(), models.ScrapeJob{Keywords: "Go", Location: "Remote", MaxPages: 1})
	if err != nil {
		t.Fatalf("Scrape error: %v, a slow scrape must not hit the lookup timeout", err)
	}
	if ack.Created != 1 {
		t.Errorf("ack = %+v", ack)
	}

	_, err = c.SearchJobs(context.Background(), SearchParams{Keyword: "Go"})
	var te *TransportError
	if !errors.As(err, &te) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("SearchJobs err = %v, want lookup deadline exceeded", err)
	}
	if IsCanceled(err) {
		t.Error("lookup timeout reported as caller cancellation")
	}
}

func TestTimeouts_ScrapeBounded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c.WithScrapeTimeout(50 * time.Millisecond)

	_, err := c.Scrape(context.Background(), models.ScrapeJob{Keywords: "Go", Location: "Remote", MaxPages: 1})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Scrape err = %v, want deadline exceeded", err)
	}
}
