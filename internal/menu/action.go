// Package menu defines the closed set of actions the bot understands and the
// keyboards that expose them.
package menu

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned for identifiers outside the action catalog.
var ErrUnknownAction = errors.New("menu: unknown action")

// ActionID identifies a menu choice or command.
type ActionID string

const (
	ActionStart     ActionID = "start"
	ActionPrice     ActionID = "price-lookup"
	ActionFact      ActionID = "fact-lookup"
	ActionDirectory ActionID = "directory-search"
	ActionImage     ActionID = "random-image"
	ActionProfile   ActionID = "random-profile"
)

// None is written in place of an action or outcome when there is none.
const None = "NONE"

type descriptor struct {
	label       string
	command     string
	description string
}

var catalog = map[ActionID]descriptor{
	ActionStart:     {label: "Старт", command: "/start", description: "Открыть меню"},
	ActionPrice:     {label: "Курс Bitcoin", command: "/price", description: "Курс Bitcoin"},
	ActionFact:      {label: "Факт о котах", command: "/fact", description: "Факт о котах"},
	ActionDirectory: {label: "Данные World Bank", command: "/directory", description: "Поиск World Bank"},
	ActionImage:     {label: "Случайная собака", command: "/image", description: "Случайная собака"},
	ActionProfile:   {label: "Случайный пользователь", command: "/profile", description: "Случайный пользователь"},
}

var lookupOrder = []ActionID{ActionPrice, ActionFact, ActionDirectory, ActionImage, ActionProfile}

// ParseAction returns the ActionID for s or ErrUnknownAction.
func ParseAction(s string) (ActionID, error) {
	id := ActionID(strings.TrimSpace(s))
	if _, ok := catalog[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return id, nil
}

// Lookups lists every action backed by a third-party API, in catalog order.
func Lookups() []ActionID {
	return append([]ActionID(nil), lookupOrder...)
}

func (a ActionID) String() string { return string(a) }

// IsLookup reports whether a triggers an external call.
func (a ActionID) IsLookup() bool {
	_, ok := catalog[a]
	return ok && a != ActionStart
}

// Label is the button text shown for a.
func (a ActionID) Label() string { return catalog[a].label }

// Command is the slash command bound to a.
func (a ActionID) Command() string { return catalog[a].command }

// Description is shown next to the command in the Telegram command menu.
func (a ActionID) Description() string { return catalog[a].description }
