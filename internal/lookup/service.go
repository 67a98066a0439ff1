// Package lookup performs the third-party API calls behind each menu action
// and renders their responses as chat text.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/m3rciful/lookupbot/core/logger"
	"github.com/m3rciful/lookupbot/internal/menu"
)

// Result is what a lookup shows the user. MediaURL is set only for images,
// with Text as the caption.
type Result struct {
	Text     string
	MediaURL string
	// Status is the upstream HTTP status, 0 on transport failure.
	Status int
	// Failed marks a soft failure rendered as text.
	Failed bool
}

// Outcome is the value journaled for the lookup.
func (r Result) Outcome() string {
	if r.MediaURL != "" {
		return r.MediaURL
	}
	return r.Text
}

// Service maps actions to endpoints and formats the responses.
// Upstream failures never surface as errors.
type Service struct {
	fetcher   Fetcher
	endpoints map[menu.ActionID]string
}

// NewService copies endpoints over the defaults; empty values keep the default.
func NewService(f Fetcher, endpoints map[menu.ActionID]string) (*Service, error) {
	if f == nil {
		return nil, fmt.Errorf("lookup: nil fetcher")
	}
	eps := DefaultEndpoints()
	for a, u := range endpoints {
		if _, ok := adapters[a]; !ok {
			return nil, fmt.Errorf("%w: %q has no lookup", menu.ErrUnknownAction, a)
		}
		if u != "" {
			eps[a] = u
		}
	}
	return &Service{fetcher: f, endpoints: eps}, nil
}

// Endpoint returns the URL queried for a.
func (s *Service) Endpoint(a menu.ActionID) string { return s.endpoints[a] }

// Run performs the lookup for a. The only error is menu.ErrUnknownAction.
func (s *Service) Run(ctx context.Context, a menu.ActionID) (Result, error) {
	ad, ok := adapters[a]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", menu.ErrUnknownAction, a)
	}
	start := time.Now()
	url := s.endpoints[a]

	status, body, err := s.fetcher.Fetch(ctx, url)
	res := Result{Status: status}
	if err == nil && status == http.StatusOK {
		if parsed, ok := ad.parse(body); ok {
			res.Text, res.MediaURL = parsed.Text, parsed.MediaURL
		} else {
			res.Failed = true
		}
	} else {
		res.Failed = true
	}
	if res.Failed {
		if err != nil {
			res.Status = 0
		}
		res.Text = ad.failure(res.Status)
	}

	outcome := "ok"
	if res.Failed {
		outcome = "soft_fail"
	}
	attrs := []slog.Attr{
		slog.String("action", string(a)),
		slog.String("outcome", outcome),
		slog.Int("http_code", res.Status),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	level := slog.LevelInfo
	if res.Failed {
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Lookup, level, "lookup.done", attrs...)
	return res, nil
}
