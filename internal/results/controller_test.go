package results_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobwatch/internal/api/jobs"
	"jobwatch/internal/filters"
	"jobwatch/internal/models"
	"jobwatch/internal/results"

	"go.uber.org/zap"
)

type call struct {
	method   string
	keyword  string
	location string
	company  string
}

// fakeSearcher answers with one job whose title encodes the request. Lookups
// for a gated location wait for release and ignore cancellation, like a
// response already on the wire.
type fakeSearcher struct {
	mu    sync.Mutex
	calls []call
	gates map[string]chan struct{}
	errs  map[string]error
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{gates: map[string]chan struct{}{}, errs: map[string]error{}}
}

func (f *fakeSearcher) block(location string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[location] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeSearcher) failWith(location string, err error) {
	f.mu.Lock()
	f.errs[location] = err
	f.mu.Unlock()
}

func (f *fakeSearcher) answer(c call) ([]models.Job, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	gate := f.gates[c.location]
	err := f.errs[c.location]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return []models.Job{{ID: int64(len(c.keyword) + len(c.location)), Title: c.keyword + "@" + c.location}}, nil
}

func (f *fakeSearcher) SearchJobs(_ context.Context, p jobs.SearchParams) ([]models.Job, error) {
	return f.answer(call{method: "search", keyword: p.Keyword, location: p.Location})
}

func (f *fakeSearcher) ListJobs(_ context.Context, p jobs.ListParams) ([]models.Job, error) {
	return f.answer(call{method: "list", keyword: p.Keyword, location: p.Location, company: p.Company})
}

func (f *fakeSearcher) waitCalls(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		got := len(f.calls)
		f.mu.Unlock()
		if got >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("waited for %d calls, got %d", n, got)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

type snapshots struct {
	mu  sync.Mutex
	all []results.Snapshot
}

func (s *snapshots) record(snap results.Snapshot) {
	s.mu.Lock()
	s.all = append(s.all, snap)
	s.mu.Unlock()
}

func (s *snapshots) titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, snap := range s.all {
		if !snap.Loading && len(snap.Jobs) > 0 {
			out = append(out, snap.Jobs[0].Title)
		}
	}
	return out
}

func criteria(keyword, location string) filters.State {
	p := filters.Patch{Keyword: filters.Set(keyword)}
	if location != "" {
		p.Location = filters.Set(location)
	}
	return filters.New().Apply(p)
}

func waitIdle(t *testing.T, c *results.Controller) results.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := c.Snapshot()
		if !snap.Loading {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatal("controller stayed loading")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestLastIntentWins(t *testing.T) {
	f := newFakeSearcher()
	release := f.block("")
	var rec snapshots
	c := results.NewController(f, time.Second, rec.record, zap.NewNop())

	c.OnCriteriaChange(criteria("Engineer", ""))
	f.waitCalls(t, 1)

	c.OnCriteriaChange(criteria("Engineer", "Remote"))
	f.waitCalls(t, 2)

	snap := waitIdle(t, c)
	if snap.Jobs[0].Title != "Engineer@Remote" {
		t.Fatalf("visible = %q, want generation 2's result", snap.Jobs[0].Title)
	}

	// generation 1 arrives late
	release()
	time.Sleep(50 * time.Millisecond)

	snap = c.Snapshot()
	if snap.Jobs[0].Title != "Engineer@Remote" {
		t.Errorf("late generation 1 overwrote the result: %q", snap.Jobs[0].Title)
	}
	if snap.Generation != 2 {
		t.Errorf("Generation = %d, want 2", snap.Generation)
	}
	for _, title := range rec.titles() {
		if title == "Engineer@" {
			t.Error("generation 1's result was shown at some point")
		}
	}
}

func TestStaleCompletionLeavesLoading(t *testing.T) {
	f := newFakeSearcher()
	releaseRemote := f.block("Remote")
	c := results.NewController(f, time.Second, nil, zap.NewNop())

	c.OnCriteriaChange(criteria("Go", ""))
	waitIdle(t, c)

	c.OnCriteriaChange(criteria("Go", "Remote"))
	f.waitCalls(t, 2)
	c.OnCriteriaChange(criteria("Go", "Berlin"))

	snap := waitIdle(t, c)
	if snap.Jobs[0].Title != "Go@Berlin" {
		t.Fatalf("visible = %q", snap.Jobs[0].Title)
	}

	releaseRemote()
	time.Sleep(30 * time.Millisecond)
	if got := c.Snapshot().Jobs[0].Title; got != "Go@Berlin" {
		t.Errorf("stale response applied: %q", got)
	}
}

func TestLoadingOwnedByNewestRequest(t *testing.T) {
	f := newFakeSearcher()
	releaseA := f.block("A")
	releaseB := f.block("B")
	c := results.NewController(f, time.Second, nil, zap.NewNop())

	c.OnCriteriaChange(criteria("x", "A"))
	c.OnCriteriaChange(criteria("x", "B"))
	f.waitCalls(t, 2)

	releaseA()
	time.Sleep(30 * time.Millisecond)
	if !c.Snapshot().Loading {
		t.Error("stale completion cleared loading owned by the newer request")
	}

	releaseB()
	snap := waitIdle(t, c)
	if snap.Jobs[0].Title != "x@B" {
		t.Errorf("visible = %q", snap.Jobs[0].Title)
	}
}

func TestErrorStateDistinctFromEmpty(t *testing.T) {
	f := newFakeSearcher()
	f.failWith("Mars", &jobs.TransportError{Op: "search jobs", Status: 500, Err: errors.New("boom")})
	c := results.NewController(f, time.Second, nil, zap.NewNop())

	err := c.Fetch(context.Background(), criteria("Go", "Mars"))
	var te *jobs.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Fetch err = %v, want transport error", err)
	}

	snap := c.Snapshot()
	if snap.Loading {
		t.Error("Loading = true after failure")
	}
	if snap.Err == nil {
		t.Error("Err not recorded")
	}

	if err := c.Fetch(context.Background(), criteria("Go", "Remote")); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if snap := c.Snapshot(); snap.Err != nil || len(snap.Jobs) != 1 {
		t.Errorf("success did not clear error: %+v", snap)
	}
}

func TestStaleErrorDiscarded(t *testing.T) {
	f := newFakeSearcher()
	f.failWith("Mars", errors.New("boom"))
	release := f.block("Mars")
	c := results.NewController(f, time.Second, nil, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- c.Fetch(context.Background(), criteria("Go", "Mars")) }()
	f.waitCalls(t, 1)

	if err := c.Fetch(context.Background(), criteria("Go", "Remote")); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	release()

	if err := <-done; !errors.Is(err, results.ErrSuperseded) {
		t.Errorf("stale Fetch err = %v, want ErrSuperseded", err)
	}
	if snap := c.Snapshot(); snap.Err != nil {
		t.Errorf("stale error surfaced: %v", snap.Err)
	}
}

func TestRefreshUsesFullFilters(t *testing.T) {
	f := newFakeSearcher()
	c := results.NewController(f, time.Second, nil, zap.NewNop())

	crit := criteria("Go", "Remote").Apply(filters.Patch{Company: filters.Set("Google")})
	if err := c.Refresh(context.Background(), crit); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	got := f.calls[0]
	if got.method != "list" || got.company != "Google" || got.location != "Remote" {
		t.Errorf("refresh call = %+v", got)
	}
}

func TestListenerMayReadController(t *testing.T) {
	f := newFakeSearcher()

	var (
		c      *results.Controller
		mu     sync.Mutex
		latest []results.Snapshot
	)
	c = results.NewController(f, time.Second, func(results.Snapshot) {
		snap := c.Snapshot()
		mu.Lock()
		latest = append(latest, snap)
		mu.Unlock()
	}, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- c.Fetch(context.Background(), criteria("Go", "Remote")) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Fetch error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch blocked while the listener read the controller")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(latest) != 2 || !latest[0].Loading || latest[1].Loading {
		t.Fatalf("listener snapshots = %+v, want loading then loaded", latest)
	}
	if latest[1].Jobs[0].Title != "Go@Remote" {
		t.Errorf("listener saw %q", latest[1].Jobs[0].Title)
	}
}
