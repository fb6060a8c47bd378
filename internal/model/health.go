package model

import "time"

// APIProbe captures a single liveness request against the web app
type APIProbe struct {
	OK        bool   `json:"ok"`
	Status    int    `json:"status,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// ContextProbe captures a forced claim-context refresh
type ContextProbe struct {
	APIProbe
	Source           string  `json:"source,omitempty"`
	Retries          int     `json:"retries"`
	CacheAgeMs       int64   `json:"cacheAgeMs"`
	ActiveCharacters int     `json:"activeCharacters"`
	OpenPeriods      int     `json:"openPeriods"`
	CurrentNight     *string `json:"currentNight,omitempty"`
}

// HealthReport is the combined adapter health snapshot
type HealthReport struct {
	Timestamp    time.Time    `json:"timestamp"`
	WebAPI       APIProbe     `json:"webApi"`
	ClaimContext ContextProbe `json:"claimContext"`
}

// Healthy reports whether both probes succeeded
func (r HealthReport) Healthy() bool {
	return r.WebAPI.OK && r.ClaimContext.OK
}
