package model

import (
	"fmt"
	"slices"
)

// ClaimContext is the set of characters and play periods a claim may currently reference.
// Values are replaced wholesale on refresh and never mutated in place.
type ClaimContext struct {
	ActiveCharacters []string `json:"activeCharacters" yaml:"activeCharacters"`
	OpenPeriods      []string `json:"openPeriods" yaml:"openPeriods"`
	CurrentNight     *string  `json:"currentNight" yaml:"currentNight"`
}

// Clone returns a deep copy so callers never alias cached slices
func (c ClaimContext) Clone() ClaimContext {
	out := ClaimContext{
		ActiveCharacters: slices.Clone(c.ActiveCharacters),
		OpenPeriods:      slices.Clone(c.OpenPeriods),
	}
	if out.ActiveCharacters == nil {
		out.ActiveCharacters = []string{}
	}
	if out.OpenPeriods == nil {
		out.OpenPeriods = []string{}
	}
	if c.CurrentNight != nil {
		night := *c.CurrentNight
		out.CurrentNight = &night
	}
	return out
}

// Night returns the current night label, or "" when the web app reports none
func (c ClaimContext) Night() string {
	if c.CurrentNight == nil {
		return ""
	}
	return *c.CurrentNight
}

// Validate checks the decoded payload against the claim-context shape
func (c ClaimContext) Validate() error {
	if c.ActiveCharacters == nil {
		return fmt.Errorf("activeCharacters: missing")
	}
	if c.OpenPeriods == nil {
		return fmt.Errorf("openPeriods: missing")
	}
	for i, name := range c.ActiveCharacters {
		if name == "" {
			return fmt.Errorf("activeCharacters[%d]: empty name", i)
		}
	}
	for i, period := range c.OpenPeriods {
		if period == "" {
			return fmt.Errorf("openPeriods[%d]: empty label", i)
		}
	}
	return nil
}
