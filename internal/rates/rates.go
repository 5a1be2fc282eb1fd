// Package rates supplies the benchmark interest rate used by the
// private-lending cap.
package rates

import (
	"context"
	"log/slog"

	"github.com/joy7758/redline/internal/domain"
)

// DefaultLPR is the 1-year loan prime rate reference value (3.45%).
// A live deployment would sync this from the legal database; the core
// treats it as a documented constant.
const DefaultLPR = 0.0345

// Provider supplies the benchmark rate. Single synchronous lookup per
// call; no retries, no caching.
type Provider interface {
	BenchmarkRate(ctx context.Context, simulateFailure bool) (float64, error)
}

// StaticProvider returns a fixed reference rate, or an Unavailable fault
// when asked to simulate a desynchronized legal database.
type StaticProvider struct {
	Rate float64
}

// NewStaticProvider creates a provider pinned to DefaultLPR.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{Rate: DefaultLPR}
}

// BenchmarkRate implements Provider. The simulated failure must surface
// as an Unavailable error rather than a degraded value; the caller
// decides whether to propagate or substitute a static fallback.
func (p *StaticProvider) BenchmarkRate(ctx context.Context, simulateFailure bool) (float64, error) {
	if simulateFailure {
		slog.ErrorContext(ctx, "legal database desynchronized, static fallback source engaged",
			"error_code", domain.CodeUnavailable,
		)
		return 0, domain.NewUnavailable("legal database desynchronized, switched to static fallback source")
	}
	return p.Rate, nil
}
