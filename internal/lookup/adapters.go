package lookup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/lookupbot/core/telegram/format"
	"github.com/m3rciful/lookupbot/internal/menu"
)

const (
	unknownValue = "неизвестно"
	imageCaption = "Случайная собака"
)

// DefaultEndpoints returns the built-in endpoint for every lookup action.
func DefaultEndpoints() map[menu.ActionID]string {
	return map[menu.ActionID]string{
		menu.ActionPrice: "https://api.coindesk.com/v1/bpi/currentprice.json",
		menu.ActionFact:  "https://catfact.ninja/fact",
		menu.ActionDirectory: "https://search.worldbank.org/api/v3/wds" +
			"?format=json&qterm=energy&display_title=water&fl=display_title&rows=2&os=20",
		menu.ActionImage:   "https://dog.ceo/api/breeds/image/random",
		menu.ActionProfile: "https://randomuser.me/api/",
	}
}

// adapter turns a 200 body into a Result; ok=false is a soft failure.
type adapter struct {
	parse   func(body []byte) (Result, bool)
	failure func(status int) string
}

var adapters = map[menu.ActionID]adapter{
	menu.ActionPrice: {
		parse: parsePrice,
		failure: func(status int) string {
			return fmt.Sprintf("Ошибка при получении курса Bitcoin (HTTP %d)", status)
		},
	},
	menu.ActionFact: {
		parse:   parseFact,
		failure: func(int) string { return "Не удалось получить факт о котах." },
	},
	menu.ActionDirectory: {
		parse:   parseDirectory,
		failure: func(int) string { return "Ошибка при запросе к World Bank." },
	},
	menu.ActionImage: {
		parse: parseImage,
		failure: func(status int) string {
			return fmt.Sprintf("Ошибка при получении изображения (HTTP %d)", status)
		},
	},
	menu.ActionProfile: {
		parse: parseProfile,
		failure: func(status int) string {
			return fmt.Sprintf("Ошибка при получении случайного пользователя (HTTP %d)", status)
		},
	},
}

// text accepts a JSON string or a bare number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	if string(b) == "null" {
		*t = ""
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("lookup: unexpected value %s", b)
	}
	*t = text(b)
	return nil
}

func (t text) blank() bool { return strings.TrimSpace(string(t)) == "" }

func parsePrice(body []byte) (Result, bool) {
	var payload struct {
		BPI map[string]struct {
			Rate text `json:"rate"`
		} `json:"bpi"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, false
	}
	var b strings.Builder
	b.WriteString("💰 Текущая цена Bitcoin:")
	for _, code := range []string{"USD", "GBP", "EUR"} {
		cur, ok := payload.BPI[code]
		if !ok || cur.Rate.blank() {
			return Result{}, false
		}
		fmt.Fprintf(&b, "\n%s: %s", code, cur.Rate)
	}
	return Result{Text: b.String()}, true
}

func parseFact(body []byte) (Result, bool) {
	var payload struct {
		Fact text `json:"fact"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Fact.blank() {
		return Result{}, false
	}
	return Result{Text: "🐱 Факт о котах:\n" + string(payload.Fact)}, true
}

func parseDirectory(body []byte) (Result, bool) {
	var payload struct {
		Rows []struct {
			DisplayTitle *string `json:"display_title"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Rows) == 0 {
		return Result{}, false
	}
	titles := make([]string, 0, len(payload.Rows))
	for _, r := range payload.Rows {
		if r.DisplayTitle == nil {
			return Result{}, false
		}
		titles = append(titles, *r.DisplayTitle)
	}
	return Result{Text: "Результаты поиска World Bank:\n" + strings.Join(titles, "\n")}, true
}

func parseImage(body []byte) (Result, bool) {
	var payload struct {
		Message text `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message.blank() {
		return Result{}, false
	}
	return Result{Text: imageCaption, MediaURL: string(payload.Message)}, true
}

func parseProfile(body []byte) (Result, bool) {
	var payload struct {
		Results []struct {
			Name struct {
				Title string `json:"title"`
				First string `json:"first"`
				Last  string `json:"last"`
			} `json:"name"`
			Email    *string `json:"email"`
			Location struct {
				Country *string `json:"country"`
			} `json:"location"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Results) == 0 {
		return Result{}, false
	}
	u := payload.Results[0]
	name := strings.Join(strings.Fields(strings.Join([]string{u.Name.Title, u.Name.First, u.Name.Last}, " ")), " ")
	if name == "" {
		name = unknownValue
	}
	return Result{Text: fmt.Sprintf("Случайный пользователь:\nИмя: %s\nEmail: %s\nСтрана: %s",
		name,
		format.DerefString(u.Email, unknownValue),
		format.DerefString(u.Location.Country, unknownValue),
	)}, true
}
