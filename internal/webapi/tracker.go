package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/xpbridge/internal/model"
)

const (
	claimContextPath = "/api/meta/claim-context"
	healthPath       = "/api/health"
	claimsPath       = "/api/claims"
	spendsPath       = "/api/spends"
)

// Tracker is the web app adapter used by the bot: context, summaries, submissions and liveness
type Tracker struct {
	client *Client
}

// NewTracker wraps a Client
func NewTracker(client *Client) *Tracker {
	return &Tracker{client: client}
}

// Client returns the underlying HTTP client
func (t *Tracker) Client() *Client {
	return t.client
}

// FetchClaimContext performs one GET of the claim context and validates its shape
func (t *Tracker) FetchClaimContext(ctx context.Context) (model.ClaimContext, error) {
	var cc model.ClaimContext
	if err := t.client.GetJSON(ctx, claimContextPath, &cc); err != nil {
		return model.ClaimContext{}, err
	}
	if err := cc.Validate(); err != nil {
		return model.ClaimContext{}, &SchemaError{Path: claimContextPath, Err: err}
	}
	return cc, nil
}

type summaryBody struct {
	CharacterName *string  `json:"characterName"`
	EarnedXP      *float64 `json:"earnedXp"`
	TotalXP       *float64 `json:"totalXp"`
	TotalSpends   *float64 `json:"totalSpends"`
	AvailableXP   *float64 `json:"availableXp"`
}

// GetSummary returns a character's XP summary. A 404 or an unreachable
// web app yields (nil, nil); other non-2xx statuses are StatusErrors.
func (t *Tracker) GetSummary(ctx context.Context, characterName string) (*model.XpSummary, error) {
	path := "/api/characters/" + url.PathEscape(characterName) + "/summary"

	resp, err := t.client.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return nil, nil
		}
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if !resp.OK() {
		return nil, &StatusError{Method: http.MethodGet, Path: path, Status: resp.StatusCode, Body: snippet(resp.Body)}
	}

	var body summaryBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}
	if body.CharacterName == nil || body.EarnedXP == nil || body.TotalXP == nil ||
		body.TotalSpends == nil || body.AvailableXP == nil {
		return nil, &SchemaError{Path: path, Err: fmt.Errorf("missing summary fields")}
	}

	return &model.XpSummary{
		CharacterName: *body.CharacterName,
		EarnedXP:      *body.EarnedXP,
		TotalXP:       *body.TotalXP,
		TotalSpends:   *body.TotalSpends,
		AvailableXP:   *body.AvailableXP,
	}, nil
}

// SubmitClaim posts a claim. Failures are reported in the result, never retried.
func (t *Tracker) SubmitClaim(ctx context.Context, payload model.ClaimPayload) model.SubmitResult {
	return t.post(ctx, claimsPath, payload, "Claim submitted to web app API.")
}

// SubmitSpend posts a spend request. Failures are reported in the result, never retried.
func (t *Tracker) SubmitSpend(ctx context.Context, payload model.SpendPayload) model.SubmitResult {
	return t.post(ctx, spendsPath, payload, "Spend request submitted to web app API.")
}

func (t *Tracker) post(ctx context.Context, path string, body interface{}, successMessage string) model.SubmitResult {
	resp, err := t.client.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		return model.SubmitResult{OK: false, Message: "Unable to reach web app API."}
	}

	if !resp.OK() {
		text := strings.TrimSpace(string(resp.Body))
		if text == "" {
			text = "Unknown API error."
		}
		return model.SubmitResult{OK: false, Message: fmt.Sprintf("API error %d: %s", resp.StatusCode, text)}
	}

	return model.SubmitResult{OK: true, Message: successMessage}
}

// Probe performs a liveness GET. It never fails; errors are captured in the probe.
func (t *Tracker) Probe(ctx context.Context) model.APIProbe {
	start := time.Now()
	resp, err := t.client.Do(ctx, http.MethodGet, healthPath, nil)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return model.APIProbe{OK: false, LatencyMs: latency, Error: err.Error()}
	}

	return model.APIProbe{
		OK:        resp.OK(),
		Status:    resp.StatusCode,
		LatencyMs: latency,
	}
}
