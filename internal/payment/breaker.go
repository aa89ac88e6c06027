package payment

import (
	"errors"
	"fmt"
	"time"

	"checkout-be/internal/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
	breakerInterval         = time.Minute
)

// newIntentBreaker guards provider create calls. After a run of consecutive
// failures the breaker opens and checkout pages fall back to "no payment
// action" without waiting on a dead provider.
func newIntentBreaker(name string) *gobreaker.CircuitBreaker[*Intent] {
	return gobreaker.NewCircuitBreaker[*Intent](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		// A rejected request says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrProviderRejected)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("payment provider breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func executeIntent(cb *gobreaker.CircuitBreaker[*Intent], fn func() (*Intent, error)) (*Intent, error) {
	intent, err := cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, cb.Name(), err)
	}
	return intent, err
}
