package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/lookupbot/core/telegram/netutil"
)

const (
	defaultClientTimeout = 30 * time.Second
	pollHeadroom         = 10 * time.Second
)

// BuildHTTPClient returns the Bot API client. Long polling holds requests
// open, so the overall timeout is raised above pollTimeout when needed.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{
		Timeout: max(defaultClientTimeout, pollTimeout+pollHeadroom),
		Transport: &netutil.RetryTransport{
			Base:     transport,
			Attempts: 4,
			Backoff:  2 * time.Second,
		},
	}
}
