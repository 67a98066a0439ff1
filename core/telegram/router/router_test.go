package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tg "github.com/m3rciful/lookupbot/core/telegram"
	"github.com/m3rciful/lookupbot/core/telegram/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

// apiRecorder answers every Bot API call with success and remembers the method names.
type apiRecorder struct {
	mu      sync.Mutex
	methods []string
}

func (r *apiRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	_, _ = io.Copy(io.Discard, req.Body)
	r.mu.Lock()
	r.methods = append(r.methods, req.URL.Path[strings.LastIndex(req.URL.Path, "/")+1:])
	r.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
}

func (r *apiRecorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.methods...)
}

func newTestBot(t *testing.T) (*tele.Bot, *apiRecorder) {
	t.Helper()
	rec := &apiRecorder{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	bot, err := tele.NewBot(tele.Settings{URL: srv.URL, Token: "1:test", Offline: true})
	require.NoError(t, err)
	return bot, rec
}

func textUpdate(id int, text string) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			ID:     id,
			Text:   text,
			Chat:   &tele.Chat{ID: 10, Type: tele.ChatPrivate},
			Sender: &tele.User{ID: 20, Username: "alice"},
		},
	}
}

func callbackUpdate(id int, unique string) tele.Update {
	return tele.Update{
		ID: id,
		Callback: &tele.Callback{
			ID:     "cb",
			Unique: unique,
			Sender: &tele.User{ID: 20, Username: "alice"},
			Message: &tele.Message{
				ID:   5,
				Chat: &tele.Chat{ID: 10, Type: tele.ChatPrivate},
			},
		},
	}
}

func TestTextRouteMatchesExactCommand(t *testing.T) {
	bot, _ := newTestBot(t)
	reg := tg.NewRegistry()

	var got []string
	require.NoError(t, reg.RegisterCommand("/fact", commands.Command{
		Handler: func(c tele.Context) error { got = append(got, "fact:"+c.Text()); return nil },
	}))
	reg.SetTextFallback(func(c tele.Context) error { got = append(got, "fallback:"+c.Text()); return nil })

	route := TextRoutes(reg)[0]
	assert.Equal(t, tele.OnText, route.Endpoint)

	require.NoError(t, route.Handler(bot.NewContext(textUpdate(101, "/fact"))))
	require.NoError(t, route.Handler(bot.NewContext(textUpdate(102, "/fact now"))))
	require.NoError(t, route.Handler(bot.NewContext(textUpdate(103, "hello"))))

	assert.Equal(t, []string{"fact:/fact", "fallback:/fact now", "fallback:hello"}, got)
}

func TestTextRouteWithoutFallback(t *testing.T) {
	bot, _ := newTestBot(t)
	route := TextRoutes(tg.NewRegistry())[0]
	assert.NoError(t, route.Handler(bot.NewContext(textUpdate(104, "anything"))))
}

func TestTextRouteRecoversPanic(t *testing.T) {
	bot, _ := newTestBot(t)
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand("/boom", commands.Command{
		Handler: func(tele.Context) error { panic("kaboom") },
	}))

	err := TextRoutes(reg)[0].Handler(bot.NewContext(textUpdate(105, "/boom")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestCallbackRouteAcknowledgesBeforeHandler(t *testing.T) {
	bot, rec := newTestBot(t)
	reg := tg.NewRegistry()

	var seenBefore []string
	require.NoError(t, reg.RegisterCallback("price-lookup", func(tele.Context) error {
		seenBefore = rec.calls()
		return nil
	}))

	route := CallbackRoute(reg)
	assert.Equal(t, tele.OnCallback, route.Endpoint)
	require.NoError(t, route.Handler(bot.NewContext(callbackUpdate(201, "price-lookup"))))

	assert.Equal(t, []string{"answerCallbackQuery"}, seenBefore)
}

func TestCallbackRouteUnknownKeyAnsweredBeforeNotFound(t *testing.T) {
	bot, rec := newTestBot(t)
	reg := tg.NewRegistry()

	var fallbackKey string
	var seenBefore []string
	reg.SetCallbackNotFound(func(c tele.Context) error {
		fallbackKey = c.Callback().Unique
		seenBefore = rec.calls()
		return nil
	})

	require.NoError(t, CallbackRoute(reg).Handler(bot.NewContext(callbackUpdate(202, "weather"))))
	assert.Equal(t, "weather", fallbackKey)
	assert.Equal(t, []string{"answerCallbackQuery"}, seenBefore)
	assert.Equal(t, []string{"answerCallbackQuery"}, rec.calls())
}

func TestMessageRoutesUseMessageFallback(t *testing.T) {
	bot, _ := newTestBot(t)
	reg := tg.NewRegistry()
	routes := MessageRoutes(reg)
	require.NotEmpty(t, routes)
	assert.Equal(t, tele.OnMedia, routes[0].Endpoint)

	upd := textUpdate(301, "")
	upd.Message.Sticker = &tele.Sticker{}
	assert.NoError(t, routes[0].Handler(bot.NewContext(upd)))

	var handled int
	reg.SetMessageFallback(func(tele.Context) error { handled++; return nil })
	for i, r := range routes {
		require.NoError(t, r.Handler(bot.NewContext(textUpdate(302+i, ""))))
	}
	assert.Equal(t, len(routes), handled)
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "unknown", normalizeHandlerName("  "))
	assert.Equal(t, "price", normalizeHandlerName("/Price"))
	assert.Equal(t, "random_image", normalizeHandlerName("random image"))
}
