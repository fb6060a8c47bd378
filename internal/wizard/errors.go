package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContextUnavailable is returned by Start when no claim context could be fetched
var ErrContextUnavailable = errors.New("claim context unavailable, try again shortly")

// SessionNotFoundError is returned for events from a user without an active draft
type SessionNotFoundError struct {
	UserID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("no active claim wizard for user %s", e.UserID)
}

// PreconditionError is returned when a draft is confirmed before it is ready.
// Missing names unset fields; MissingLinks names categories without a link.
type PreconditionError struct {
	Missing      []string
	MissingLinks []string
}

func (e *PreconditionError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return "select " + strings.Join(e.Missing, " and ") + " first"
	case len(e.MissingLinks) > 0:
		quoted := make([]string, len(e.MissingLinks))
		for i, k := range e.MissingLinks {
			quoted[i] = "`" + k + "`"
		}
		return "missing links for: " + strings.Join(quoted, ", ")
	default:
		return "draft is not ready"
	}
}

// UserMessage translates wizard errors into chat-facing text
func UserMessage(err error) string {
	var notFound *SessionNotFoundError
	var precondition *PreconditionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notFound):
		return "No active claim wizard. Start the wizard again."
	case errors.As(err, &precondition):
		msg := precondition.Error()
		msg = strings.ToUpper(msg[:1]) + msg[1:] + "."
		if len(precondition.MissingLinks) > 0 {
			msg += " Add the links first."
		}
		return msg
	case errors.Is(err, ErrContextUnavailable):
		return "Claim context is unavailable right now. Try again shortly."
	default:
		return "Command failed."
	}
}
