package cli

import (
	"github.com/ppiankov/xpbridge/internal/claimctx"
	"github.com/ppiankov/xpbridge/internal/health"
	"github.com/ppiankov/xpbridge/internal/webapi"
	"github.com/ppiankov/xpbridge/internal/wizard"
)

// services are the collaborators a command needs, built from the resolved config
type services struct {
	tracker *webapi.Tracker
	fetcher *claimctx.Fetcher
}

func newServices() *services {
	client := webapi.NewClient(webapi.Options{
		BaseURL:    cfg.API.BaseURL,
		Token:      cfg.API.Token,
		UserAgent:  cfg.API.UserAgent,
		Timeout:    cfg.API.Timeout,
		RateLimit:  cfg.API.RateLimit,
		RateBurst:  cfg.API.RateBurst,
		HTTPProxy:  cfg.API.HTTPProxy,
		HTTPSProxy: cfg.API.HTTPSProxy,
		Logger:     logger,
	})
	tracker := webapi.NewTracker(client)

	fetcher := claimctx.NewFetcher(tracker, claimctx.Options{
		CacheTTL:     cfg.ClaimContext.CacheTTL,
		StaleIfError: cfg.ClaimContext.StaleIfError,
		MaxRetries:   cfg.ClaimContext.MaxRetries,
		RetryBase:    cfg.ClaimContext.RetryBase,
		Key:          client.BaseURL(),
		Logger:       logger,
	})

	return &services{tracker: tracker, fetcher: fetcher}
}

func (s *services) prober() *health.Prober {
	return health.NewProber(s.tracker, s.fetcher, nil)
}

func (s *services) machine() *wizard.Machine {
	store := wizard.NewStore(cfg.Wizard.SessionTTL, nil)
	return wizard.NewMachine(store, s.fetcher, s.tracker, wizard.Options{
		PageSize:        cfg.Wizard.PageSize,
		ModalFieldLimit: cfg.Wizard.ModalFieldLimit,
		Logger:          logger,
	})
}
