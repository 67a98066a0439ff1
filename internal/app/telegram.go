package app

import (
	"context"

	"github.com/m3rciful/lookupbot/core/logger"
	tghelpers "github.com/m3rciful/lookupbot/core/telegram/helpers"
	"github.com/m3rciful/lookupbot/core/telegram/ui"
	"github.com/m3rciful/lookupbot/internal/journal"
	"github.com/m3rciful/lookupbot/internal/menu"

	tele "gopkg.in/telebot.v4"
)

// teleConversation adapts a telebot context; sends go through the async dispatcher.
type teleConversation struct {
	c tele.Context
}

// Converse wraps c as a Conversation.
func Converse(c tele.Context) Conversation { return teleConversation{c: c} }

func (t teleConversation) Context() context.Context { return tghelpers.BuildContext(t.c) }

func (t teleConversation) User() User {
	s := t.c.Sender()
	if s == nil {
		return User{}
	}
	return User{ID: s.ID, Username: s.Username}
}

func (t teleConversation) Text() string { return t.c.Text() }

func (t teleConversation) Editable() bool {
	cb := t.c.Callback()
	return cb != nil && cb.Message != nil && cb.Message.ID != 0
}

func (t teleConversation) ShowsMedia() bool {
	cb := t.c.Callback()
	return cb != nil && cb.Message != nil && cb.Message.Photo != nil
}

func (t teleConversation) SendText(text string, markup *tele.ReplyMarkup) error {
	return tghelpers.SendText(t.c, text, markup)
}

func (t teleConversation) EditText(text string, markup *tele.ReplyMarkup) error {
	return tghelpers.EditText(t.c, text, markup)
}

func (t teleConversation) SendPhoto(url, caption string, markup *tele.ReplyMarkup) error {
	return tghelpers.SendPhoto(t.c, url, caption, markup)
}

func (t teleConversation) EditPhoto(url, caption string, markup *tele.ReplyMarkup) error {
	return tghelpers.EditPhoto(t.c, url, caption, markup)
}

func (t teleConversation) Reply(text string) error {
	return tghelpers.ReplyText(t.c, text)
}

// Bindings exposes Handlers as telebot handler funcs.
type Bindings struct {
	h *Handlers
}

var _ ui.FallbackProvider = Bindings{}

// Bind returns telebot bindings for h.
func Bind(h *Handlers) Bindings { return Bindings{h: h} }

// StartCommand handles the typed start command.
func (b Bindings) StartCommand() tele.HandlerFunc {
	return func(c tele.Context) error { return b.h.Start(Converse(c)) }
}

// StartButton handles the «Старт» button.
func (b Bindings) StartButton() tele.HandlerFunc {
	return func(c tele.Context) error { return b.h.OpenMenu(Converse(c), journal.MotionButton) }
}

// LookupButton handles a menu button for a.
func (b Bindings) LookupButton(a menu.ActionID) tele.HandlerFunc {
	return b.lookup(a, journal.MotionButton)
}

// LookupCommand handles the slash command for a.
func (b Bindings) LookupCommand(a menu.ActionID) tele.HandlerFunc {
	return b.lookup(a, journal.MotionAPI)
}

func (b Bindings) lookup(a menu.ActionID, motion journal.Motion) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.StoreContext(c, logger.WithAction(tghelpers.BuildContext(c), string(a)))
		return b.h.Lookup(Converse(c), a, motion)
	}
}

// UnknownText resolves reply-keyboard labels before echoing the text back.
func (b Bindings) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		a, ok := b.h.Menu().ResolveLabel(c.Text())
		switch {
		case !ok:
			return b.h.Unknown(Converse(c))
		case a == menu.ActionStart:
			return b.h.OpenMenu(Converse(c), journal.MotionButton)
		default:
			return b.lookup(a, journal.MotionButton)(c)
		}
	}
}

// UnknownCallback journals presses on buttons outside the current menu.
func (b Bindings) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error { return b.h.UnknownCallback(Converse(c)) }
}

// UnknownMessage echoes messages without text, such as stickers or photos.
func (b Bindings) UnknownMessage() tele.HandlerFunc {
	return func(c tele.Context) error { return b.h.Unknown(Converse(c)) }
}
