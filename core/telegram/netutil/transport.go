package netutil

import (
	"net/http"
	"time"
)

// RetryTransport repeats a request whose previous attempt failed with an error
// accepted by ShouldRetry. Requests with a body are retried only when the body
// can be rebuilt through GetBody.
type RetryTransport struct {
	Base     http.RoundTripper
	Attempts int
	Backoff  time.Duration
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := max(t.Attempts, 1)

	resp, err := base.RoundTrip(req)
	for attempt := 1; err != nil && attempt < attempts && ShouldRetry(err); attempt++ {
		next, ok := rewind(req)
		if !ok {
			break
		}
		timer := time.NewTimer(t.Backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
		resp, err = base.RoundTrip(next)
	}
	return resp, err
}

func rewind(req *http.Request) (*http.Request, bool) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	next.Body = body
	return next, true
}
