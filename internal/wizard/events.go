package wizard

// Event is a user action on an active draft. The set of variants is closed.
type Event interface {
	eventName() string
}

// SelectCharacter picks a character; "" or NoneValue clears it
type SelectCharacter struct{ Value string }

// SelectPeriod picks a play period; "" or NoneValue clears it
type SelectPeriod struct{ Value string }

// SelectCategories replaces the selected categories
type SelectCategories struct{ Keys []string }

// PageCharacter moves the character picker by Delta pages
type PageCharacter struct{ Delta int }

// PagePeriod moves the period picker by Delta pages
type PagePeriod struct{ Delta int }

// SubmitLinks merges evidence links. Text holds key=value lines;
// Fields holds per-category inputs from a batched form.
type SubmitLinks struct {
	Text   string
	Fields map[string]string
}

// Cancel discards the draft
type Cancel struct{}

// Confirm submits the draft
type Confirm struct{}

// NoneValue is the placeholder option of an empty select menu
const NoneValue = "__none__"

func (SelectCharacter) eventName() string  { return "select_character" }
func (SelectPeriod) eventName() string     { return "select_period" }
func (SelectCategories) eventName() string { return "select_categories" }
func (PageCharacter) eventName() string    { return "page_character" }
func (PagePeriod) eventName() string       { return "page_period" }
func (SubmitLinks) eventName() string      { return "submit_links" }
func (Cancel) eventName() string           { return "cancel" }
func (Confirm) eventName() string          { return "confirm" }
