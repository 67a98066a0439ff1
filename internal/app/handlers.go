// Package app holds the bot's behaviour: every inbound event is journaled
// once and then answered.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/lookupbot/core/logger"
	"github.com/m3rciful/lookupbot/internal/journal"
	"github.com/m3rciful/lookupbot/internal/lookup"
	"github.com/m3rciful/lookupbot/internal/menu"
)

// UnsupportedNotice answers presses on buttons that no longer route anywhere.
const UnsupportedNotice = "Unsupported action"

// Journal records inbound events.
type Journal interface {
	Append(ctx context.Context, e journal.Entry) error
}

// Lookuper runs the external call for a lookup action.
type Lookuper interface {
	Run(ctx context.Context, a menu.ActionID) (lookup.Result, error)
}

// Handlers answers inbound events.
type Handlers struct {
	menu    *menu.Menu
	lookups Lookuper
	journal Journal
	now     func() time.Time
}

// Option customizes Handlers.
type Option func(*Handlers)

// WithClock overrides the time source used for journal rows.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) { h.now = now }
}

// NewHandlers wires handlers over an immutable menu.
func NewHandlers(m *menu.Menu, l Lookuper, j Journal, opts ...Option) (*Handlers, error) {
	if m == nil || l == nil || j == nil {
		return nil, errors.New("app: menu, lookuper and journal are required")
	}
	h := &Handlers{menu: m, lookups: l, journal: j, now: time.Now}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

// Menu returns the menu the handlers render.
func (h *Handlers) Menu() *menu.Menu { return h.menu }

// record appends the event. Failures are logged: the reply still goes out.
func (h *Handlers) record(conv Conversation, motion journal.Motion, action, outcome string) {
	u := conv.User()
	ctx := conv.Context()
	err := h.journal.Append(ctx, journal.Entry{
		UserID:  u.ID,
		Handle:  u.Username,
		Motion:  motion,
		Action:  action,
		At:      h.now(),
		Outcome: outcome,
	})
	if err != nil {
		logger.LogEvent(ctx, logger.Journal, slog.LevelError, "journal.append",
			slog.String("status", "fail"),
			slog.String("action", action),
			slog.String("motion", string(motion)),
			slog.String("err", err.Error()),
		)
	}
}

// Start answers the typed start command with the root prompt.
func (h *Handlers) Start(conv Conversation) error {
	h.record(conv, journal.MotionTyping, menu.None, menu.None)
	return conv.SendText(menu.RootPrompt, h.menu.StartMarkup())
}

// OpenMenu shows the main menu, in place when the event came from a button.
func (h *Handlers) OpenMenu(conv Conversation, motion journal.Motion) error {
	h.record(conv, motion, string(menu.ActionStart), "")
	if conv.Editable() && !conv.ShowsMedia() && h.menu.Kind() == menu.KeyboardInline {
		return conv.EditText(menu.MainPrompt, h.menu.Markup())
	}
	return conv.SendText(menu.MainPrompt, h.menu.Markup())
}

// Lookup runs action, journals the rendered outcome and replies with the menu attached.
func (h *Handlers) Lookup(conv Conversation, action menu.ActionID, motion journal.Motion) error {
	res, err := h.lookups.Run(conv.Context(), action)
	if err != nil {
		h.record(conv, motion, menu.None, menu.None)
		return fmt.Errorf("app: lookup %s: %w", action, err)
	}
	h.record(conv, motion, string(action), res.Outcome())

	markup := h.menu.Markup()
	inPlace := conv.Editable() && h.menu.Kind() == menu.KeyboardInline
	if res.MediaURL != "" {
		if inPlace {
			return conv.EditPhoto(res.MediaURL, res.Text, markup)
		}
		return conv.SendPhoto(res.MediaURL, res.Text, markup)
	}
	// A photo message cannot be edited into text.
	if inPlace && !conv.ShowsMedia() {
		return conv.EditText(res.Text, markup)
	}
	return conv.SendText(res.Text, markup)
}

// Unknown echoes unrecognized text.
func (h *Handlers) Unknown(conv Conversation) error {
	h.record(conv, journal.MotionTyping, menu.None, menu.None)
	return conv.Reply(`Вы написали "` + conv.Text() + `", я не знаю такой команды`)
}

// UnknownCallback journals a press on a button that routes nowhere. The press
// itself is answered with UnsupportedNotice by the callback router.
func (h *Handlers) UnknownCallback(conv Conversation) error {
	h.record(conv, journal.MotionButton, menu.None, menu.None)
	return nil
}
