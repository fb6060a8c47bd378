// Package wizard implements the multi-step XP claim wizard: per-user drafts,
// the event-driven state machine that edits them and a text driver for it.
package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/xpbridge/internal/claimctx"
	"github.com/ppiankov/xpbridge/internal/model"
)

// ContextSource supplies the claim context a draft is seeded from
type ContextSource interface {
	Get(ctx context.Context, forceRefresh bool) (*claimctx.FetchResult, error)
}

// Submitter sends a finished claim to the web app
type Submitter interface {
	SubmitClaim(ctx context.Context, payload model.ClaimPayload) model.SubmitResult
}

// Options configures a Machine. Zero values take the defaults.
type Options struct {
	PageSize        int
	ModalFieldLimit int
	Logger          *zap.Logger
	NewID           func() string
}

// Outcome is the result of a handled event.
// Draft is nil only when the draft no longer exists and nothing is left to show.
type Outcome struct {
	Draft      *Draft
	Closed     bool
	Message    string
	Submission *model.SubmitResult
}

// Machine applies wizard events to drafts held in a Store
type Machine struct {
	store     *Store
	source    ContextSource
	submitter Submitter
	opts      Options
}

// NewMachine creates a Machine
func NewMachine(store *Store, source ContextSource, submitter Submitter, opts Options) *Machine {
	if opts.PageSize <= 0 || opts.PageSize > DefaultPageSize {
		opts.PageSize = DefaultPageSize
	}
	if opts.ModalFieldLimit <= 0 {
		opts.ModalFieldLimit = DefaultModalFieldLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Machine{
		store:     store,
		source:    source,
		submitter: submitter,
		opts:      opts,
	}
}

// PageSize returns the effective picker page size
func (m *Machine) PageSize() int { return m.opts.PageSize }

// ModalFieldLimit returns how many link inputs are requested per batch
func (m *Machine) ModalFieldLimit() int { return m.opts.ModalFieldLimit }

// Start seeds a new draft for userID, replacing any previous one.
// Initial values are kept only when the fetched context offers them.
func (m *Machine) Start(ctx context.Context, userID, initialCharacter, initialPeriod string) (*Draft, error) {
	m.sweep()

	res, err := m.source.Get(ctx, false)
	if err != nil {
		m.opts.Logger.Warn("wizard_start_failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrContextUnavailable, err)
	}

	cc := res.Context
	d := &Draft{
		ID:                  m.opts.NewID(),
		UserID:              userID,
		AvailableCharacters: cc.ActiveCharacters,
		OpenPeriods:         cc.OpenPeriods,
		CurrentNight:        cc.Night(),
		Links:               map[string]string{},
		CreatedAt:           m.store.Now(),
	}
	if contains(cc.ActiveCharacters, initialCharacter) {
		d.CharacterName = initialCharacter
	}
	switch {
	case contains(cc.OpenPeriods, initialPeriod):
		d.PlayPeriod = initialPeriod
	case d.CurrentNight != "":
		d.PlayPeriod = d.CurrentNight
	}
	d.CharacterPage = PageForValue(d.AvailableCharacters, d.CharacterName, m.opts.PageSize)
	d.PeriodPage = PageForValue(d.OpenPeriods, d.PlayPeriod, m.opts.PageSize)
	d.clampPages(m.opts.PageSize)

	m.store.Put(d)

	m.opts.Logger.Info("wizard_started",
		zap.String("user_id", userID),
		zap.String("draft_id", d.ID),
		zap.String("context_source", string(res.Source)),
		zap.Int("characters", len(d.AvailableCharacters)),
		zap.Int("periods", len(d.OpenPeriods)),
	)
	return d.Clone(), nil
}

// Handle applies ev to the user's draft
func (m *Machine) Handle(ctx context.Context, userID string, ev Event) (*Outcome, error) {
	m.sweep()

	switch e := ev.(type) {
	case Cancel:
		d, ok := m.store.Delete(userID)
		if !ok {
			return nil, &SessionNotFoundError{UserID: userID}
		}
		m.opts.Logger.Info("wizard_cancelled",
			zap.String("user_id", userID),
			zap.String("draft_id", d.ID),
		)
		return &Outcome{Draft: d, Closed: true, Message: "XP claim wizard cancelled."}, nil

	case Confirm:
		return m.confirm(ctx, userID)

	case SubmitLinks:
		var written int
		d, err := m.update(userID, func(d *Draft) error {
			written = mergeLinks(d, e)
			return nil
		})
		if err != nil {
			return nil, err
		}
		m.opts.Logger.Debug("wizard_links_saved",
			zap.String("user_id", userID),
			zap.Int("written", written),
		)
		return &Outcome{Draft: d, Message: linksMessage(d)}, nil

	case SelectCharacter, SelectPeriod, SelectCategories, PageCharacter, PagePeriod:
		d, err := m.update(userID, func(d *Draft) error {
			m.apply(d, ev)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &Outcome{Draft: d}, nil

	default:
		return nil, fmt.Errorf("unknown wizard event %T", ev)
	}
}

// Draft returns a copy of the user's active draft
func (m *Machine) Draft(userID string) (*Draft, bool) {
	m.sweep()
	return m.store.Get(userID)
}

func (m *Machine) apply(d *Draft, ev Event) {
	size := m.opts.PageSize
	switch e := ev.(type) {
	case SelectCharacter:
		d.CharacterName = selectValue(e.Value)
		d.CharacterPage = PageForValue(d.AvailableCharacters, d.CharacterName, size)
	case SelectPeriod:
		d.PlayPeriod = selectValue(e.Value)
		d.PeriodPage = PageForValue(d.OpenPeriods, d.PlayPeriod, size)
	case SelectCategories:
		d.Categories = normalizeCategories(e.Keys)
	case PageCharacter:
		d.CharacterPage = ClampPage(d.CharacterPage+e.Delta, len(d.AvailableCharacters), size)
	case PagePeriod:
		d.PeriodPage = ClampPage(d.PeriodPage+e.Delta, len(d.OpenPeriods), size)
	}
}

func (m *Machine) update(userID string, fn func(d *Draft) error) (*Draft, error) {
	return m.store.Update(userID, func(d *Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		d.clampPages(m.opts.PageSize)
		return nil
	})
}

// confirm submits outside the store lock and then removes the draft it
// submitted, leaving any draft started in the meantime alone
func (m *Machine) confirm(ctx context.Context, userID string) (*Outcome, error) {
	d, ok := m.store.Get(userID)
	if !ok {
		return nil, &SessionNotFoundError{UserID: userID}
	}
	if err := d.Check(); err != nil {
		return nil, err
	}

	payload := d.Payload()
	result := m.submitter.SubmitClaim(ctx, payload)
	m.store.deleteDraft(userID, d.ID)

	fields := []zap.Field{
		zap.String("user_id", userID),
		zap.String("draft_id", d.ID),
		zap.String("character", payload.CharacterName),
		zap.String("play_period", payload.PlayPeriod),
		zap.Int("categories", len(payload.Categories)),
		zap.Bool("ok", result.OK),
	}
	if result.OK {
		m.opts.Logger.Info("wizard_submitted", fields...)
	} else {
		m.opts.Logger.Warn("wizard_submit_failed", append(fields, zap.String("message", result.Message))...)
	}

	return &Outcome{
		Draft:      d,
		Closed:     true,
		Message:    result.Message,
		Submission: &result,
	}, nil
}

func (m *Machine) sweep() {
	if n := m.store.Sweep(); n > 0 {
		m.opts.Logger.Debug("wizard_drafts_expired", zap.Int("count", n))
	}
}

func linksMessage(d *Draft) string {
	missing := len(d.MissingLinks())
	switch {
	case missing == 1:
		return "Saved links. 1 selected category is still missing links."
	case missing > 1:
		return fmt.Sprintf("Saved links. %d selected categories are still missing links.", missing)
	default:
		return "Saved links for all selected categories. You can now submit."
	}
}

func selectValue(v string) string {
	if v == NoneValue {
		return ""
	}
	return v
}

func contains(values []string, v string) bool {
	if v == "" {
		return false
	}
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
