package router

import (
	"time"

	tg "github.com/m3rciful/lookupbot/core/telegram"
	"github.com/m3rciful/lookupbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextRoutes builds the OnText route: an exact command (or alias) match runs the
// command handler, anything else goes to the registry text fallback.
func TextRoutes(reg *tg.Registry) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if key, cmd, ok := reg.LookupCommand(text); ok {
			return handleWithSummary(c, normalizeHandlerName(key), start, "", func() error {
				return cmd.Handler(c)
			})
		}

		if fb := reg.TextFallback(); fb != nil {
			return handleWithSummary(c, "fallback", start, "fallback", func() error {
				return fb(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "fallback", nil)
		return nil
	}

	return []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}}
}

// messageEndpoints are the non-text message kinds a user can send from the
// chat input. OnMedia covers photos, stickers, voice, audio, video and documents.
var messageEndpoints = []string{tele.OnMedia, tele.OnContact, tele.OnLocation, tele.OnVenue, tele.OnDice}

// MessageRoutes sends every non-text message to the registry message fallback.
func MessageRoutes(reg *tg.Registry) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if fb := reg.MessageFallback(); fb != nil {
			return handleWithSummary(c, "fallback.message", start, "fallback", func() error {
				return fb(c)
			})
		}
		logHandlerSummary(c, "unknown_message", start, "fallback", nil)
		return nil
	}
	wrapped := middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler))

	routes := make([]tg.Route, 0, len(messageEndpoints))
	for _, ep := range messageEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: wrapped})
	}
	return routes
}
