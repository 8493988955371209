package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/pkg/logging"
	"golang.org/x/time/rate"
)

// Outcome is the result of a fallback delivery attempt.
type Outcome string

const (
	// OutcomeDirect means the private message reached the user.
	OutcomeDirect Outcome = "direct"

	// OutcomeResponder means one of the fallback responders delivered it.
	OutcomeResponder Outcome = "responder"

	// OutcomeOrigin means the message was posted visibly in the origin
	// channel, annotated for the intended recipient.
	OutcomeOrigin Outcome = "origin"

	// OutcomeLost means every delivery channel failed.
	OutcomeLost Outcome = "lost"
)

// Responder is one fallback delivery strategy, tried in order after a direct
// DM fails.
type Responder interface {
	// Name identifies the strategy in logs.
	Name() string

	// Deliver attempts to deliver the message.
	Deliver(content string) error
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc struct {
	ResponderName string
	Fn            func(content string) error
}

func (r ResponderFunc) Name() string { return r.ResponderName }

func (r ResponderFunc) Deliver(content string) error { return r.Fn(content) }

// Notifier delivers best-effort private messages. Delivery failures are
// logged, never escalated to the actor that triggered the notification.
type Notifier struct {
	// l is the logger.
	l *slog.Logger

	// s is the discord session.
	s Session

	// limiter paces outbound DMs.
	limiter *rate.Limiter

	// removeAfter is how long a visible origin-channel fallback message
	// stays before it is deleted.
	removeAfter time.Duration
}

// NewNotifier creates a notifier over the session.
func NewNotifier(l *slog.Logger, s Session) *Notifier {
	return &Notifier{
		l:           l,
		s:           s,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 5),
		removeAfter: 10 * time.Second,
	}
}

// NotifyPrivately sends a DM to the user and reports whether it was
// delivered.
func (n *Notifier) NotifyPrivately(ctx context.Context, userID, content string) bool {
	if err := n.limiter.Wait(ctx); err != nil {
		n.l.Warn("DM rate limit wait cancelled", slog.String(logging.KeyError, err.Error()))
		return false
	}

	dm, err := n.s.UserChannelCreate(userID)
	if err != nil {
		n.l.Warn("Error creating DM channel", slog.String("user", userID), slog.String(logging.KeyError, err.Error()))
		return false
	}

	if _, err := n.s.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{Content: content}); err != nil {
		n.l.Warn("Error sending DM", slog.String("user", userID), slog.String(logging.KeyError, err.Error()))
		return false
	}
	return true
}

// DeliverWithFallback attempts a direct DM first, then each responder in
// order. If every channel fails the message is posted visibly in the origin
// channel annotated for the recipient and removed after a delay. Only total
// exhaustion is reported as OutcomeLost.
func (n *Notifier) DeliverWithFallback(ctx context.Context, userID, content string, responders []Responder, originChannelID string) Outcome {
	if n.NotifyPrivately(ctx, userID, content) {
		return OutcomeDirect
	}

	for _, r := range responders {
		if err := r.Deliver(content); err != nil {
			n.l.Warn("Fallback delivery failed",
				slog.String("responder", r.Name()),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}
		return OutcomeResponder
	}

	// Last resort: post in the origin channel and remove it shortly after.
	msg, err := n.s.ChannelMessageSendComplex(originChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> %s", userID, content),
	})
	if err != nil {
		n.l.Error("All delivery channels exhausted",
			slog.String("user", userID),
			slog.String(logging.KeyError, err.Error()),
		)
		return OutcomeLost
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(n.removeAfter):
		}
		if err := n.s.ChannelMessageDelete(originChannelID, msg.ID); err != nil {
			n.l.Warn("Error removing fallback message", slog.String(logging.KeyError, err.Error()))
		}
	}()
	return OutcomeOrigin
}

// PostTransient posts a visible message in the channel and removes it after
// the given lifetime.
func (n *Notifier) PostTransient(ctx context.Context, channelID, content string, lifetime time.Duration) error {
	msg, err := n.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: content})
	if err != nil {
		return fmt.Errorf("error sending transient message: %w", err)
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(lifetime):
		}
		if err := n.s.ChannelMessageDelete(channelID, msg.ID); err != nil {
			n.l.Warn("Error removing transient message", slog.String(logging.KeyError, err.Error()))
		}
	}()
	return nil
}
