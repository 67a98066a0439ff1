package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/lookupbot/core/logger"
	"github.com/m3rciful/lookupbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// sendAsync queues run on the dispatcher and counts the message once it is
// accepted. The worker may deliver it after the handler has returned.
func sendAsync(c tele.Context, action, endpoint string, markup *tele.ReplyMarkup, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return runCounted(c, markup, run)
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return runCounted(c, markup, run)
		}
		return err
	}
	countSend(c, markup)
	return nil
}

func runCounted(c tele.Context, markup *tele.ReplyMarkup, run func() error) error {
	if err := run(); err != nil {
		return err
	}
	countSend(c, markup)
	return nil
}

// SendText sends plain text to the current recipient with optional reply markup.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: markup}
	return sendAsync(c, "send.text", "sendMessage", markup, func() error {
		return c.Send(text, opts)
	})
}

// ReplyText answers the incoming message, quoting it.
func ReplyText(c tele.Context, text string) error {
	return sendAsync(c, "send.reply", "sendMessage", nil, func() error {
		return c.Reply(text)
	})
}

// SendPhoto sends a photo by URL with a caption and optional reply markup.
func SendPhoto(c tele.Context, url, caption string, markup *tele.ReplyMarkup) error {
	photo := &tele.Photo{File: tele.FromURL(url), Caption: caption}
	opts := &tele.SendOptions{ReplyMarkup: markup}
	return sendAsync(c, "send.photo", "sendPhoto", markup, func() error {
		return c.Send(photo, opts)
	})
}

// EditText replaces the text of the message the callback came from.
// Edits run inline: the pressed message must change before the next press is handled.
func EditText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return runCounted(c, markup, func() error {
		return c.Edit(text, &tele.SendOptions{ReplyMarkup: markup})
	})
}

// EditPhoto replaces the media of the message the callback came from with a photo.
func EditPhoto(c tele.Context, url, caption string, markup *tele.ReplyMarkup) error {
	photo := &tele.Photo{File: tele.FromURL(url), Caption: caption}
	return runCounted(c, markup, func() error {
		return c.Edit(photo, &tele.SendOptions{ReplyMarkup: markup})
	})
}
