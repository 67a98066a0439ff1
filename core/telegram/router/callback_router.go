package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/lookupbot/core/telegram"
	"github.com/m3rciful/lookupbot/core/telegram/callbacks"
	"github.com/m3rciful/lookupbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute returns the OnCallback route that dispatches button presses
// through the registry. Every press is acknowledged before its handler runs;
// presses with no registered callback are answered with the registry notice.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key := callbacks.Key(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		cbHandler, ok := reg.GetCallback(key)
		if !ok {
			extras = append(extras, slog.String("reason", "not_found"))
			_ = c.Respond(&tele.CallbackResponse{Text: reg.CallbackNotice()})
			return handleWithSummary(c, name, start, "fallback", func() error {
				if fallback := reg.CallbackNotFound(); fallback != nil {
					return fallback(c)
				}
				return nil
			}, extras...)
		}

		_ = c.Respond()
		return handleWithSummary(c, name, start, "", func() error {
			return cbHandler(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
