package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/lookupbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const (
	// RootPrompt accompanies the single «Старт» control.
	RootPrompt = "Нажмите «Старт», чтобы открыть меню API-запросов:"
	// MainPrompt accompanies the main menu.
	MainPrompt = "Выберите один из трёх API-запросов:"
)

// KeyboardKind selects how menu options are rendered.
type KeyboardKind string

const (
	KeyboardInline KeyboardKind = "inline"
	KeyboardReply  KeyboardKind = "reply"
)

// ParseKeyboard accepts "inline" (default when empty) or "reply".
func ParseKeyboard(s string) (KeyboardKind, error) {
	switch KeyboardKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyboardInline:
		return KeyboardInline, nil
	case KeyboardReply:
		return KeyboardReply, nil
	}
	return "", fmt.Errorf("menu: invalid keyboard %q; allowed: inline, reply", s)
}

// DefaultActions is the price/fact/directory menu.
func DefaultActions() []ActionID {
	return []ActionID{ActionPrice, ActionFact, ActionDirectory}
}

// ImageActions is the image/fact/profile menu.
func ImageActions() []ActionID {
	return []ActionID{ActionImage, ActionFact, ActionProfile}
}

// Option is a label bound to an action.
type Option struct {
	Label  string
	Action ActionID
}

// Menu is the immutable set of options shown to every user.
// Where a user is in the menu is implied by the keyboard they were last sent.
type Menu struct {
	options []Option
	kind    KeyboardKind
	labels  map[string]ActionID
}

// New validates actions and builds a Menu.
func New(actions []ActionID, kind KeyboardKind) (*Menu, error) {
	if len(actions) == 0 {
		return nil, errors.New("menu: no actions configured")
	}
	if kind != KeyboardInline && kind != KeyboardReply {
		return nil, fmt.Errorf("menu: invalid keyboard %q", kind)
	}
	m := &Menu{kind: kind, labels: map[string]ActionID{ActionStart.Label(): ActionStart}}
	for _, a := range actions {
		if !a.IsLookup() {
			return nil, fmt.Errorf("%w: %q is not a lookup", ErrUnknownAction, a)
		}
		if _, dup := m.labels[a.Label()]; dup {
			return nil, fmt.Errorf("menu: duplicate action %q", a)
		}
		m.labels[a.Label()] = a
		m.options = append(m.options, Option{Label: a.Label(), Action: a})
	}
	return m, nil
}

// Options returns a copy of the menu options in display order.
func (m *Menu) Options() []Option {
	return append([]Option(nil), m.options...)
}

// Actions returns the lookup actions in display order.
func (m *Menu) Actions() []ActionID {
	out := make([]ActionID, len(m.options))
	for i, o := range m.options {
		out[i] = o.Action
	}
	return out
}

// Kind reports the keyboard style.
func (m *Menu) Kind() KeyboardKind { return m.kind }

// Contains reports whether a is reachable from this menu, including start.
func (m *Menu) Contains(a ActionID) bool {
	if a == ActionStart {
		return true
	}
	for _, o := range m.options {
		if o.Action == a {
			return true
		}
	}
	return false
}

// ResolveLabel maps reply-keyboard text to its action. Inline menus never
// produce label text, so only reply menus resolve.
func (m *Menu) ResolveLabel(text string) (ActionID, bool) {
	if m.kind != KeyboardReply {
		return "", false
	}
	a, ok := m.labels[text]
	return a, ok
}

// StartMarkup renders the single «Старт» control.
// A fresh markup is built per call since telebot rewrites inline button data on send.
func (m *Menu) StartMarkup() *tele.ReplyMarkup {
	if m.kind == KeyboardReply {
		return keyboard.ReplyButtons([]string{ActionStart.Label()})
	}
	return keyboard.InlineButtons([]keyboard.InlineBtn{{Text: ActionStart.Label(), Unique: string(ActionStart)}})
}

// Markup renders the main menu, one option per row.
func (m *Menu) Markup() *tele.ReplyMarkup {
	if m.kind == KeyboardReply {
		rows := make([][]string, len(m.options))
		for i, o := range m.options {
			rows[i] = []string{o.Label}
		}
		return keyboard.ReplyButtons(rows...)
	}
	btns := make([]keyboard.InlineBtn, len(m.options))
	for i, o := range m.options {
		btns[i] = keyboard.InlineBtn{Text: o.Label, Unique: string(o.Action)}
	}
	return keyboard.InlineButtons(btns)
}
