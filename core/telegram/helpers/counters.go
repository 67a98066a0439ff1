package helpers

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "send_counters"

// sendCounters tallies outbound messages accepted while one update is handled.
type sendCounters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

// TrackSends attaches fresh counters to c. Repeated calls within the same
// update keep the existing counters.
func TrackSends(c tele.Context) {
	if c == nil {
		return
	}
	if _, ok := c.Get(countersKey).(*sendCounters); ok {
		return
	}
	c.Set(countersKey, &sendCounters{})
}

// Counters returns how many messages were sent or queued for c and whether
// any of them carried a keyboard.
func Counters(c tele.Context) (int, bool) {
	if c == nil {
		return 0, false
	}
	sc, ok := c.Get(countersKey).(*sendCounters)
	if !ok {
		return 0, false
	}
	return int(sc.messages.Load()), sc.keyboard.Load()
}

func countSend(c tele.Context, markup *tele.ReplyMarkup) {
	TrackSends(c)
	sc, ok := c.Get(countersKey).(*sendCounters)
	if !ok {
		return
	}
	sc.messages.Add(1)
	if markup != nil {
		sc.keyboard.Store(true)
	}
}
