package wizard

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
)

// Envelope is one event delivered for a user
type Envelope struct {
	UserID string
	Event  Event
}

// EventSource delivers events. Next returns io.EOF when the source is exhausted.
type EventSource interface {
	Next(ctx context.Context) (Envelope, error)
}

// Renderer displays drafts and notices to the user
type Renderer interface {
	Render(d *Draft, disabled bool) error
	Notice(msg string) error
}

// Run dispatches events from src until it is exhausted or ctx ends.
// Errors from a single event are reported through r and do not stop the loop.
func (m *Machine) Run(ctx context.Context, src EventSource, r Renderer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		env, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if env.Event == nil {
			m.opts.Logger.Debug("wizard_event_skipped", zap.String("user_id", env.UserID))
			continue
		}

		out, err := m.Handle(ctx, env.UserID, env.Event)
		if err != nil {
			m.opts.Logger.Debug("wizard_event_rejected",
				zap.String("user_id", env.UserID),
				zap.String("event", env.Event.eventName()),
				zap.Error(err),
			)
			if err := r.Notice(UserMessage(err)); err != nil {
				return err
			}
			continue
		}

		if err := m.deliver(r, out); err != nil {
			return err
		}
	}
}

func (m *Machine) deliver(r Renderer, out *Outcome) error {
	if out.Draft != nil {
		if err := r.Render(out.Draft, out.Closed); err != nil {
			return err
		}
	}
	if out.Message != "" {
		msg := out.Message
		if out.Submission != nil {
			msg += "\n\nWizard closed."
		}
		return r.Notice(msg)
	}
	return nil
}
