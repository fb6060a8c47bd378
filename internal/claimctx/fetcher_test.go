package claimctx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/ppiankov/xpbridge/internal/model"
	"github.com/ppiankov/xpbridge/internal/webapi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// loaderFunc adapts a function to Loader and counts calls
type loaderFunc struct {
	calls atomic.Int32
	fn    func(call int) (model.ClaimContext, error)
}

func (l *loaderFunc) FetchClaimContext(ctx context.Context) (model.ClaimContext, error) {
	n := int(l.calls.Add(1))
	return l.fn(n)
}

func sampleContext() model.ClaimContext {
	night := "Night 1"
	return model.ClaimContext{
		ActiveCharacters: []string{"Alice"},
		OpenPeriods:      []string{"Night 1"},
		CurrentNight:     &night,
	}
}

func transportErr() error {
	return &webapi.TransportError{Method: "GET", Path: "/api/meta/claim-context", Err: errors.New("connection refused")}
}

// recordingSleep captures requested delays without waiting
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func newTestFetcher(loader Loader, clock *fakeClock, sleeper *recordingSleep) *Fetcher {
	return NewFetcher(loader, Options{
		CacheTTL:     30 * time.Second,
		StaleIfError: 5 * time.Minute,
		MaxRetries:   2,
		RetryBase:    250 * time.Millisecond,
		Key:          "http://127.0.0.1:5001",
		Now:          clock.Now,
		Sleep:        sleeper.Sleep,
	})
}

func TestGet_CachedWithinTTL(t *testing.T) {
	clock := newFakeClock()
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) { return sampleContext(), nil }}
	f := newTestFetcher(loader, clock, &recordingSleep{})
	ctx := context.Background()

	first, err := f.Get(ctx, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first.Source != SourceNetwork {
		t.Errorf("Expected network source, got %s", first.Source)
	}

	clock.Advance(10 * time.Second)
	second, err := f.Get(ctx, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if second.Source != SourceCache {
		t.Errorf("Expected cache source, got %s", second.Source)
	}
	if second.CacheAgeMs() != 10000 {
		t.Errorf("Expected cache age 10000ms, got %d", second.CacheAgeMs())
	}
	if second.Retries != 0 || second.LatencyMs() != 0 {
		t.Errorf("Expected zero retries and latency for cache hit, got %d/%d", second.Retries, second.LatencyMs())
	}
	if diff := cmp.Diff(sampleContext(), second.Context); diff != "" {
		t.Errorf("cached value mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(20 * time.Second)
	if _, err := f.Get(ctx, false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := loader.calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 network call within TTL, got %d", got)
	}
}

func TestGet_RefetchAfterTTL(t *testing.T) {
	clock := newFakeClock()
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) { return sampleContext(), nil }}
	f := newTestFetcher(loader, clock, &recordingSleep{})

	_, _ = f.Get(context.Background(), false)
	clock.Advance(31 * time.Second)

	result, err := f.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Source != SourceNetwork {
		t.Errorf("Expected network source after TTL, got %s", result.Source)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("Expected 2 network calls, got %d", got)
	}
}

func TestGet_ForceRefreshBypassesCache(t *testing.T) {
	clock := newFakeClock()
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) { return sampleContext(), nil }}
	f := newTestFetcher(loader, clock, &recordingSleep{})

	_, _ = f.Get(context.Background(), false)
	result, err := f.Get(context.Background(), true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Source != SourceNetwork {
		t.Errorf("Expected network source on forced refresh, got %s", result.Source)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("Expected 2 network calls, got %d", got)
	}
}

func TestGet_SingleFlight(t *testing.T) {
	const callers = 20

	clock := newFakeClock()
	release := make(chan struct{})
	started := make(chan struct{}, callers)
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) {
		started <- struct{}{}
		<-release
		return sampleContext(), nil
	}}
	f := newTestFetcher(loader, clock, &recordingSleep{})

	var ready, done sync.WaitGroup
	results := make([]*FetchResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		ready.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			ready.Done()
			results[i], errs[i] = f.Get(context.Background(), false)
		}(i)
	}

	ready.Wait()
	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	if got := loader.calls.Load(); got != 1 {
		t.Fatalf("Expected exactly 1 network call, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error %v", i, errs[i])
		}
		if results[i].Source != results[0].Source {
			t.Errorf("caller %d: source %s differs from %s", i, results[i].Source, results[0].Source)
		}
	}
}

func TestGet_RetryBackoffThenSuccess(t *testing.T) {
	clock := newFakeClock()
	sleeper := &recordingSleep{}
	loader := &loaderFunc{fn: func(call int) (model.ClaimContext, error) {
		switch call {
		case 1:
			return model.ClaimContext{}, &webapi.StatusError{Status: 503}
		case 2:
			return model.ClaimContext{}, &webapi.SchemaError{Path: "/api/meta/claim-context", Err: errors.New("bad shape")}
		default:
			return sampleContext(), nil
		}
	}}
	f := newTestFetcher(loader, clock, sleeper)

	result, err := f.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if result.Source != SourceNetwork || result.Retries != 2 {
		t.Errorf("Expected network source with 2 retries, got %s/%d", result.Source, result.Retries)
	}

	want := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond}
	if diff := cmp.Diff(want, sleeper.delays); diff != "" {
		t.Errorf("backoff mismatch (-want +got):\n%s", diff)
	}
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	clock := newFakeClock()
	sleeper := &recordingSleep{}
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) {
		return model.ClaimContext{}, &webapi.StatusError{Method: "GET", Path: "/api/meta/claim-context", Status: 404}
	}}
	f := newTestFetcher(loader, clock, sleeper)

	_, err := f.Get(context.Background(), false)

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Expected UnavailableError, got %v", err)
	}
	if unavailable.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", unavailable.Attempts)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("Expected a single network call for 404, got %d", got)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("Expected no backoff for 404, got %v", sleeper.delays)
	}
}

func TestGet_StaleFallback(t *testing.T) {
	clock := newFakeClock()
	sleeper := &recordingSleep{}
	var failing atomic.Bool
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) {
		if failing.Load() {
			return model.ClaimContext{}, transportErr()
		}
		return sampleContext(), nil
	}}
	f := newTestFetcher(loader, clock, sleeper)

	if _, err := f.Get(context.Background(), false); err != nil {
		t.Fatalf("priming fetch failed: %v", err)
	}

	failing.Store(true)
	clock.Advance(time.Minute)

	result, err := f.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected stale fallback, got %v", err)
	}
	if result.Source != SourceStaleCache {
		t.Errorf("Expected stale-cache source, got %s", result.Source)
	}
	if result.Retries != 2 {
		t.Errorf("Expected retries=2, got %d", result.Retries)
	}
	if result.CacheAge != time.Minute {
		t.Errorf("Expected cache age 1m, got %v", result.CacheAge)
	}
	if diff := cmp.Diff(sampleContext(), result.Context); diff != "" {
		t.Errorf("stale value mismatch (-want +got):\n%s", diff)
	}
	if got := loader.calls.Load(); got != 4 {
		t.Errorf("Expected 1 + 3 network calls, got %d", got)
	}
}

func TestGet_UnavailableBeyondStaleWindow(t *testing.T) {
	clock := newFakeClock()
	var failing atomic.Bool
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) {
		if failing.Load() {
			return model.ClaimContext{}, transportErr()
		}
		return sampleContext(), nil
	}}
	f := newTestFetcher(loader, clock, &recordingSleep{})

	_, _ = f.Get(context.Background(), false)
	failing.Store(true)
	clock.Advance(6 * time.Minute)

	_, err := f.Get(context.Background(), false)

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Expected UnavailableError, got %v", err)
	}
	if unavailable.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", unavailable.Attempts)
	}
	var transport *webapi.TransportError
	if !errors.As(err, &transport) {
		t.Errorf("Expected last transport error in chain, got %v", err)
	}
}

func TestGet_UnavailableWithoutCache(t *testing.T) {
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) {
		return model.ClaimContext{}, &webapi.StatusError{Status: 500}
	}}
	f := newTestFetcher(loader, newFakeClock(), &recordingSleep{})

	_, err := f.Get(context.Background(), false)

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Expected UnavailableError, got %v", err)
	}
}

func TestGet_InFlightClearedAfterFailure(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) {
		if failing.Load() {
			return model.ClaimContext{}, transportErr()
		}
		return sampleContext(), nil
	}}
	f := newTestFetcher(loader, newFakeClock(), &recordingSleep{})

	if _, err := f.Get(context.Background(), false); err == nil {
		t.Fatal("Expected failure")
	}

	failing.Store(false)
	result, err := f.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected independent retry to succeed, got %v", err)
	}
	if result.Source != SourceNetwork {
		t.Errorf("Expected network source, got %s", result.Source)
	}
}

func TestGet_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) {
		started <- struct{}{}
		<-release
		return sampleContext(), nil
	}}
	f := newTestFetcher(loader, newFakeClock(), &recordingSleep{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := f.Get(ctx, false)
		errCh <- err
	}()

	<-started
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	close(release)
	result, err := f.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Source == SourceStaleCache {
		t.Errorf("Unexpected stale source")
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("Expected the shared fetch to complete once, got %d calls", got)
	}
}

func TestGet_ReturnedValueIsACopy(t *testing.T) {
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) { return sampleContext(), nil }}
	f := newTestFetcher(loader, newFakeClock(), &recordingSleep{})

	first, _ := f.Get(context.Background(), false)
	first.Context.ActiveCharacters[0] = "Mallory"

	second, _ := f.Get(context.Background(), false)
	if second.Context.ActiveCharacters[0] != "Alice" {
		t.Errorf("cached value was mutated through a returned result")
	}
}

func TestBackoff(t *testing.T) {
	base := 250 * time.Millisecond
	want := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, time.Second, 2 * time.Second}
	for n, w := range want {
		if got := Backoff(base, n); got != w {
			t.Errorf("Backoff(%v, %d) = %v, want %v", base, n, got, w)
		}
	}
}

// gatedClock blocks the first Now call made after arm until release is closed
type gatedClock struct {
	*fakeClock
	armed   atomic.Bool
	paused  chan struct{}
	release chan struct{}
}

func (c *gatedClock) arm() {
	c.paused = make(chan struct{})
	c.release = make(chan struct{})
	c.armed.Store(true)
}

func (c *gatedClock) Now() time.Time {
	if c.armed.CompareAndSwap(true, false) {
		close(c.paused)
		<-c.release
	}
	return c.fakeClock.Now()
}

func TestGet_LateJoinerServedFromSettledRefresh(t *testing.T) {
	clock := &gatedClock{fakeClock: newFakeClock()}
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) { return sampleContext(), nil }}
	f := NewFetcher(loader, Options{
		CacheTTL:     30 * time.Second,
		StaleIfError: 5 * time.Minute,
		MaxRetries:   2,
		RetryBase:    250 * time.Millisecond,
		Now:          clock.Now,
		Sleep:        (&recordingSleep{}).Sleep,
	})

	if _, err := f.Get(context.Background(), false); err != nil {
		t.Fatalf("priming fetch failed: %v", err)
	}
	clock.Advance(31 * time.Second)

	// The late caller reads the expired entry, then stalls before it joins the group.
	clock.arm()
	late := make(chan *FetchResult, 1)
	go func() {
		res, err := f.Get(context.Background(), false)
		if err != nil {
			t.Errorf("late caller: unexpected error %v", err)
		}
		late <- res
	}()
	<-clock.paused

	early, err := f.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("early caller: unexpected error %v", err)
	}
	if early.Source != SourceNetwork {
		t.Errorf("Expected early caller to refresh, got %s", early.Source)
	}

	close(clock.release)
	res := <-late
	if res == nil {
		t.Fatal("late caller returned no result")
	}
	if res.Source != SourceCache {
		t.Errorf("Expected late caller to reuse the refresh, got %s", res.Source)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("Expected 1 priming + 1 refresh network calls, got %d", got)
	}
}

func TestGet_ForcedCallerIgnoresOlderEntry(t *testing.T) {
	clock := newFakeClock()
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) { return sampleContext(), nil }}
	f := newTestFetcher(loader, clock, &recordingSleep{})

	_, _ = f.Get(context.Background(), false)
	clock.Advance(time.Second)

	if _, ok := f.settledSince(clock.Now(), true); ok {
		t.Error("Expected forced caller to skip an entry fetched before it asked")
	}
	if _, ok := f.settledSince(clock.Now().Add(-2*time.Second), true); !ok {
		t.Error("Expected entry fetched after the request to be served")
	}
}

func TestGet_ClientErrorFallsBackToStale(t *testing.T) {
	clock := newFakeClock()
	sleeper := &recordingSleep{}
	var failing atomic.Bool
	loader := &loaderFunc{fn: func(int) (model.ClaimContext, error) {
		if failing.Load() {
			return model.ClaimContext{}, &webapi.StatusError{Method: "GET", Path: "/api/meta/claim-context", Status: 403}
		}
		return sampleContext(), nil
	}}
	f := newTestFetcher(loader, clock, sleeper)

	if _, err := f.Get(context.Background(), false); err != nil {
		t.Fatalf("priming fetch failed: %v", err)
	}
	failing.Store(true)
	clock.Advance(time.Minute)

	result, err := f.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected stale fallback after 4xx, got %v", err)
	}
	if result.Source != SourceStaleCache {
		t.Errorf("Expected stale-cache source, got %s", result.Source)
	}
	if result.Retries != 0 {
		t.Errorf("Expected retries=0 since 4xx aborts the loop, got %d", result.Retries)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("Expected 1 priming + 1 aborted call, got %d", got)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("Expected no backoff after 4xx, got %v", sleeper.delays)
	}
}
