package wizard

import (
	"maps"
	"slices"
	"time"

	"github.com/ppiankov/xpbridge/internal/model"
)

// Draft is one user's in-progress claim
type Draft struct {
	ID     string
	UserID string

	// Empty means not selected
	CharacterName string
	PlayPeriod    string

	// Snapshot of the claim context taken when the draft was started
	AvailableCharacters []string
	OpenPeriods         []string
	CurrentNight        string

	CharacterPage int
	PeriodPage    int

	Categories []string
	Links      map[string]string

	CreatedAt time.Time
}

// Clone returns a deep copy
func (d *Draft) Clone() *Draft {
	out := *d
	out.AvailableCharacters = slices.Clone(d.AvailableCharacters)
	out.OpenPeriods = slices.Clone(d.OpenPeriods)
	out.Categories = slices.Clone(d.Categories)
	out.Links = maps.Clone(d.Links)
	if out.Links == nil {
		out.Links = map[string]string{}
	}
	return &out
}

// MissingLinks returns selected categories that have no link, in selection order
func (d *Draft) MissingLinks() []string {
	var missing []string
	for _, k := range d.Categories {
		if d.Links[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// Check returns a *PreconditionError when the draft cannot be submitted yet
func (d *Draft) Check() error {
	var missing []string
	if d.CharacterName == "" {
		missing = append(missing, "character")
	}
	if d.PlayPeriod == "" {
		missing = append(missing, "play period")
	}
	if len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}
	if len(d.Categories) == 0 {
		return &PreconditionError{Missing: []string{"at least one category"}}
	}
	if links := d.MissingLinks(); len(links) > 0 {
		return &PreconditionError{MissingLinks: links}
	}
	return nil
}

// Ready reports whether the draft can be submitted
func (d *Draft) Ready() bool {
	return d.Check() == nil
}

// Payload builds the claim body from the selected categories only
func (d *Draft) Payload() model.ClaimPayload {
	categories := make(map[string]string, len(d.Categories))
	for _, k := range d.Categories {
		categories[k] = d.Links[k]
	}
	return model.ClaimPayload{
		CharacterName: d.CharacterName,
		PlayPeriod:    d.PlayPeriod,
		Categories:    categories,
	}
}

func (d *Draft) clampPages(size int) {
	d.CharacterPage = ClampPage(d.CharacterPage, len(d.AvailableCharacters), size)
	d.PeriodPage = ClampPage(d.PeriodPage, len(d.OpenPeriods), size)
}
