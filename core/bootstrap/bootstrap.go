package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	coreconfig "github.com/m3rciful/lookupbot/core/config"
	"github.com/m3rciful/lookupbot/core/logger"
)

// Resource is an infrastructure dependency opened after the logger is ready.
type Resource struct {
	Name string
	Open func() (io.Closer, error)
}

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config    *coreconfig.Config
	Resources []Resource

	LoggerInit func(*coreconfig.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	closers []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// Run initializes the logger and opens resources in order.
// If a resource fails to open, the ones already opened are closed.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	for _, r := range opts.Resources {
		if r.Open == nil {
			continue
		}
		c, err := r.Open()
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: %s initialization failed: %w", r.Name, err)
		}
		logger.L.Info("resource opened",
			slog.String("component", "bootstrap"),
			slog.String("event", "resource.open"),
			slog.String("name", r.Name),
		)
		if c != nil {
			res.closers = append(res.closers, namedCloser{name: r.Name, c: c})
		}
	}
	return res, nil
}

// Close releases resources in reverse order of opening.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		nc := r.closers[i]
		if err := nc.c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", nc.name, err))
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
