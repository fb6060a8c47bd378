package wizard

import (
	"fmt"
	"io"
	"strings"
)

// TextRenderer writes the draft status view as plain text
type TextRenderer struct {
	w               io.Writer
	pageSize        int
	modalFieldLimit int
}

// NewTextRenderer creates a TextRenderer over w
func NewTextRenderer(w io.Writer, pageSize, modalFieldLimit int) *TextRenderer {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if modalFieldLimit <= 0 {
		modalFieldLimit = DefaultModalFieldLimit
	}
	return &TextRenderer{w: w, pageSize: pageSize, modalFieldLimit: modalFieldLimit}
}

// Render writes the status view. A disabled view omits the pickers and prompts.
func (r *TextRenderer) Render(d *Draft, disabled bool) error {
	_, err := io.WriteString(r.w, r.View(d, disabled))
	return err
}

// Notice writes a one-off message
func (r *TextRenderer) Notice(msg string) error {
	_, err := fmt.Fprintf(r.w, "> %s\n", strings.ReplaceAll(msg, "\n", "\n> "))
	return err
}

// View returns the status view text
func (r *TextRenderer) View(d *Draft, disabled bool) string {
	var b strings.Builder

	b.WriteString("XP Claim Wizard\n")
	fmt.Fprintf(&b, "Character: %s\n", orNotSelected(d.CharacterName))
	fmt.Fprintf(&b, "Play period: %s\n", orNotSelected(d.PlayPeriod))
	if d.CurrentNight != "" {
		fmt.Fprintf(&b, "Current night: %s\n", d.CurrentNight)
	} else {
		b.WriteString("Current night: unavailable\n")
	}

	if !disabled {
		b.WriteString("\n")
		r.writePicker(&b, "Characters", "No active characters available", d.AvailableCharacters, d.CharacterPage, d.CharacterName)
		r.writePicker(&b, "Play periods", "No open periods available", d.OpenPeriods, d.PeriodPage, d.PlayPeriod)
	}

	ordered := CanonicalOrder(d.Categories)

	b.WriteString("\nSelected categories\n")
	if len(ordered) == 0 {
		b.WriteString("- none selected\n")
	}
	for _, k := range ordered {
		fmt.Fprintf(&b, "- %s (%s)\n", CategoryLabel(k), k)
	}

	b.WriteString("\nLink status\n")
	if len(ordered) == 0 {
		b.WriteString("- no selected categories\n")
	}
	for _, k := range ordered {
		state := "missing"
		if d.Links[k] != "" {
			state = "link set"
		}
		fmt.Fprintf(&b, "- %s: %s\n", k, state)
	}

	b.WriteString("\n")
	b.WriteString(statusLine(d))
	b.WriteString("\n")

	if !disabled && len(d.Categories) > 0 {
		batch := NextLinkBatch(d, r.modalFieldLimit)
		fmt.Fprintf(&b, "Next links to add: %s\n", strings.Join(batch, ", "))
	}

	return b.String()
}

func (r *TextRenderer) writePicker(b *strings.Builder, title, empty string, values []string, page int, selected string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%s: %s\n", title, empty)
		return
	}

	pages := PageCount(len(values), r.pageSize)
	page = ClampPage(page, len(values), r.pageSize)
	fmt.Fprintf(b, "%s (page %d/%d)\n", title, page+1, pages)
	for _, v := range PageSlice(values, page, r.pageSize) {
		marker := " "
		if v == selected {
			marker = "*"
		}
		fmt.Fprintf(b, " %s %s\n", marker, v)
	}
}

func statusLine(d *Draft) string {
	missing := len(d.MissingLinks())
	switch {
	case d.CharacterName == "" || d.PlayPeriod == "":
		return "Status: Select character and play period to continue."
	case missing == 1:
		return "Status: Missing links for 1 selected category."
	case missing > 1:
		return fmt.Sprintf("Status: Missing links for %d selected categories.", missing)
	case len(d.Categories) > 0:
		return "Status: Ready to submit."
	default:
		return "Status: Select one or more categories."
	}
}

func orNotSelected(v string) string {
	if v == "" {
		return "not selected"
	}
	return v
}
