package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 10 * time.Second

// Fetcher performs one GET and returns the status code and body.
// A transport failure is reported as an error with status 0.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (int, []byte, error)
}

// FetcherOptions configures NewRestyFetcher.
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// RestyFetcher is a Fetcher backed by one pooled resty client shared by all users.
type RestyFetcher struct {
	client *resty.Client
}

// NewRestyFetcher builds a client with a per-call timeout, no retries and no cookie jar.
func NewRestyFetcher(opts FetcherOptions) *RestyFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetCookieJar(nil).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	return &RestyFetcher{client: client}
}

// Fetch implements Fetcher.
func (f *RestyFetcher) Fetch(ctx context.Context, url string) (int, []byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return 0, nil, fmt.Errorf("http get %s: %w", url, err)
	}
	return resp.StatusCode(), resp.Body(), nil
}
