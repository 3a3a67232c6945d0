package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/trendfarm/pkg/logger"
)

// ErrNoProviders is returned by FirstSuccess for an empty provider list
var ErrNoProviders = errors.New("no providers configured")

// Provider is one named way of producing a T
type Provider[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// FirstSuccess runs providers one at a time, in order, and returns the
// first result along with the provider name. Later providers are not
// invoked. When every provider fails only the last error is returned.
func FirstSuccess[T any](ctx context.Context, log *logger.Logger, providers []Provider[T]) (T, string, error) {
	var zero T
	if len(providers) == 0 {
		return zero, "", ErrNoProviders
	}

	var lastErr error
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}

		plog := log.WithProvider(p.Name)
		result, err := p.Run(ctx)
		if err == nil {
			plog.Info().Msg("Provider succeeded")
			return result, p.Name, nil
		}

		lastErr = fmt.Errorf("%s: %w", p.Name, err)
		plog.Warn().Err(err).Msg("Provider failed, trying next")
	}
	return zero, "", lastErr
}
