package app

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// User is the sender of an inbound event.
type User struct {
	ID       int64
	Username string
}

// Conversation is the outbound side of one inbound event.
type Conversation interface {
	Context() context.Context
	User() User
	Text() string

	// Editable reports whether the event came from a button on a message
	// the bot can edit in place.
	Editable() bool
	// ShowsMedia reports whether that message carries a photo.
	ShowsMedia() bool

	SendText(text string, markup *tele.ReplyMarkup) error
	EditText(text string, markup *tele.ReplyMarkup) error
	SendPhoto(url, caption string, markup *tele.ReplyMarkup) error
	EditPhoto(url, caption string, markup *tele.ReplyMarkup) error
	Reply(text string) error
}
