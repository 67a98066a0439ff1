package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse splits a callback into its routing key and payload.
// Telebot fills Unique when the data carries its \f<unique>|<payload> encoding;
// otherwise the raw data is parsed the same way.
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	parts := strings.SplitN(raw, "|", 2)
	key := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return key, payload
}

// Key returns the routing key of the callback carried by c, if any.
func Key(c tele.Context) string {
	key, _ := Parse(c.Callback())
	return key
}
