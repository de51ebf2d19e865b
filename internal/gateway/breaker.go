package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// newCircuitBreaker trips on transport failures and 5xx responses. Client errors such as
// 404 or 400 and requests cancelled by the caller do not count against the backend.
func newCircuitBreaker[T any](cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[T] {
	st := gobreaker.Settings{
		Name:        "catalog-gateway",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[T](st)
}

func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var re *catalog.RemoteError
	if !errors.As(err, &re) {
		return false
	}
	return re.Status > 0 && re.Status < http.StatusInternalServerError
}
