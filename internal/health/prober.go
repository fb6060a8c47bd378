// Package health assembles the adapter health report.
package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/xpbridge/internal/claimctx"
	"github.com/ppiankov/xpbridge/internal/model"
)

// Pinger performs the liveness request
type Pinger interface {
	Probe(ctx context.Context) model.APIProbe
}

// ContextGetter is the claim-context fetcher
type ContextGetter interface {
	Get(ctx context.Context, forceRefresh bool) (*claimctx.FetchResult, error)
}

// Prober runs the web API and claim-context probes
type Prober struct {
	pinger  Pinger
	fetcher ContextGetter
	now     func() time.Time
}

// NewProber creates a Prober. now defaults to time.Now.
func NewProber(pinger Pinger, fetcher ContextGetter, now func() time.Time) *Prober {
	if now == nil {
		now = time.Now
	}
	return &Prober{pinger: pinger, fetcher: fetcher, now: now}
}

// Report runs both probes concurrently. It never fails: each probe
// records its own error and neither aborts the other.
func (p *Prober) Report(ctx context.Context) model.HealthReport {
	report := model.HealthReport{Timestamp: p.now().UTC()}

	var g errgroup.Group
	g.Go(func() error {
		report.WebAPI = p.pinger.Probe(ctx)
		return nil
	})
	g.Go(func() error {
		report.ClaimContext = p.probeContext(ctx)
		return nil
	})
	_ = g.Wait()

	return report
}

func (p *Prober) probeContext(ctx context.Context) model.ContextProbe {
	start := p.now()
	result, err := p.fetcher.Get(ctx, true)
	if err != nil {
		return model.ContextProbe{
			APIProbe: model.APIProbe{
				OK:        false,
				LatencyMs: p.now().Sub(start).Milliseconds(),
				Error:     err.Error(),
			},
		}
	}

	return model.ContextProbe{
		APIProbe: model.APIProbe{
			OK:        true,
			LatencyMs: result.LatencyMs(),
		},
		Source:           string(result.Source),
		Retries:          result.Retries,
		CacheAgeMs:       result.CacheAgeMs(),
		ActiveCharacters: len(result.Context.ActiveCharacters),
		OpenPeriods:      len(result.Context.OpenPeriods),
		CurrentNight:     result.Context.CurrentNight,
	}
}
