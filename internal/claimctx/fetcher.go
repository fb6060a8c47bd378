// Package claimctx caches the shared claim context fetched from the web app.
//
// A Fetcher serves a cached value while it is younger than the cache TTL,
// coalesces concurrent refreshes into one network operation, retries
// transient failures with exponential backoff and falls back to a stale
// value (bounded by the stale-if-error window) when every attempt fails.
package claimctx

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/xpbridge/internal/cache"
	"github.com/ppiankov/xpbridge/internal/model"
	"github.com/ppiankov/xpbridge/internal/webapi"
)

const tracerName = "github.com/ppiankov/xpbridge/internal/claimctx"

// Source tells where a FetchResult came from
type Source string

const (
	SourceCache      Source = "cache"
	SourceNetwork    Source = "network"
	SourceStaleCache Source = "stale-cache"
)

// Loader performs a single claim-context request
type Loader interface {
	FetchClaimContext(ctx context.Context) (model.ClaimContext, error)
}

// FetchResult is the value returned by Get together with how it was obtained
type FetchResult struct {
	Context  model.ClaimContext
	Source   Source
	Retries  int
	Latency  time.Duration
	CacheAge time.Duration
}

// LatencyMs returns the fetch latency in milliseconds
func (r *FetchResult) LatencyMs() int64 { return r.Latency.Milliseconds() }

// CacheAgeMs returns the age of the served value in milliseconds
func (r *FetchResult) CacheAgeMs() int64 { return r.CacheAge.Milliseconds() }

// Options configures a Fetcher. Zero values take the documented defaults.
type Options struct {
	CacheTTL     time.Duration
	StaleIfError time.Duration
	MaxRetries   int
	RetryBase    time.Duration
	// Key distinguishes cache entries, usually the web app base URL
	Key    string
	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

type entry struct {
	value     model.ClaimContext
	fetchedAt time.Time
}

// Fetcher owns the claim-context cache entry
type Fetcher struct {
	loader  Loader
	opts    Options
	key     string
	entries *cache.Memory[entry]
	group   singleflight.Group
}

// NewFetcher creates a Fetcher over loader
func NewFetcher(loader Loader, opts Options) *Fetcher {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.StaleIfError <= 0 {
		opts.StaleIfError = 5 * time.Minute
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 250 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Fetcher{
		loader:  loader,
		opts:    opts,
		key:     cache.Key("claim-context", opts.Key),
		entries: cache.NewMemory[entry](),
	}
}

// Get returns the claim context. Unless forceRefresh is set, a cached value
// younger than the cache TTL is served without touching the network.
// It fails with *UnavailableError only when neither a fresh nor a stale
// value can be produced.
func (f *Fetcher) Get(ctx context.Context, forceRefresh bool) (*FetchResult, error) {
	e, cached := f.entries.Get(f.key)
	requested := f.opts.Now()
	if cached && !forceRefresh {
		if age := requested.Sub(e.fetchedAt); age <= f.opts.CacheTTL {
			return &FetchResult{
				Context:  e.value.Clone(),
				Source:   SourceCache,
				CacheAge: age,
			}, nil
		}
	}

	// The shared fetch must outlive any single caller; each caller only stops waiting.
	ch := f.group.DoChan(f.key, func() (interface{}, error) {
		if result, ok := f.settledSince(requested, forceRefresh); ok {
			return result, nil
		}
		return f.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.(*FetchResult)
		out := *shared
		out.Context = shared.Context.Clone()
		return &out, nil
	}
}

// settledSince serves the entry a refresh finished between this caller's
// cache check and its turn in the single-flight group. Forced callers only
// accept an entry fetched after they asked.
func (f *Fetcher) settledSince(requested time.Time, forceRefresh bool) (*FetchResult, bool) {
	e, ok := f.entries.Get(f.key)
	if !ok {
		return nil, false
	}

	age := f.opts.Now().Sub(e.fetchedAt)
	if forceRefresh {
		if !e.fetchedAt.After(requested) {
			return nil, false
		}
	} else if age > f.opts.CacheTTL {
		return nil, false
	}

	return &FetchResult{
		Context:  e.value,
		Source:   SourceCache,
		CacheAge: age,
	}, true
}

// refresh runs the retry loop and applies the stale fallback
func (f *Fetcher) refresh(ctx context.Context) (*FetchResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "claimctx.fetch")
	defer span.End()

	start := f.opts.Now()
	maxAttempts := f.opts.MaxRetries + 1

	var lastErr error
	attempts := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		attempts++
		value, err := f.loader.FetchClaimContext(ctx)
		if err == nil {
			now := f.opts.Now()
			f.entries.Set(f.key, entry{value: value, fetchedAt: now})

			result := &FetchResult{
				Context: value,
				Source:  SourceNetwork,
				Retries: attempt,
				Latency: now.Sub(start),
			}
			span.SetAttributes(
				attribute.String("claimctx.source", string(result.Source)),
				attribute.Int("claimctx.retries", result.Retries),
			)
			f.opts.Logger.Debug("claim_context_fetched",
				zap.Int("retries", result.Retries),
				zap.Duration("latency", result.Latency),
				zap.Int("active_characters", len(value.ActiveCharacters)),
				zap.Int("open_periods", len(value.OpenPeriods)),
			)
			return result, nil
		}

		lastErr = err
		f.opts.Logger.Warn("claim_context_attempt_failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)

		if !isRetryable(err) {
			break
		}

		if attempt < maxAttempts-1 {
			if err := f.opts.Sleep(ctx, Backoff(f.opts.RetryBase, attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	span.RecordError(lastErr)

	if e, ok := f.entries.Get(f.key); ok {
		age := f.opts.Now().Sub(e.fetchedAt)
		if age <= f.opts.StaleIfError {
			result := &FetchResult{
				Context:  e.value,
				Source:   SourceStaleCache,
				Retries:  attempts - 1,
				Latency:  f.opts.Now().Sub(start),
				CacheAge: age,
			}
			span.SetAttributes(
				attribute.String("claimctx.source", string(result.Source)),
				attribute.Int("claimctx.retries", result.Retries),
			)
			f.opts.Logger.Warn("claim_context_stale_fallback",
				zap.Duration("cache_age", age),
				zap.Error(lastErr),
			)
			return result, nil
		}
	}

	span.SetStatus(codes.Error, "unavailable")
	f.opts.Logger.Error("claim_context_unavailable",
		zap.Int("attempts", attempts),
		zap.Error(lastErr),
	)
	return nil, &UnavailableError{Attempts: attempts, Err: lastErr}
}

// Backoff returns the wait after failed attempt n (0-indexed): base * 2^n
func Backoff(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<uint(attempt))
}

// isRetryable retries everything except 4xx responses
func isRetryable(err error) bool {
	return err != nil && !webapi.IsClientError(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
