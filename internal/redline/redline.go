// Package redline implements the statutory-cap checks: the private-lending
// interest ceiling and the labor-contract training-cost ceiling.
package redline

import (
	"context"
	"fmt"

	"github.com/joy7758/redline/internal/domain"
	"github.com/joy7758/redline/internal/rates"
)

// Legal bases cited in check outcomes.
const (
	LendingLegalBasis = "《最高人民法院关于审理民间借贷案件适用法律若干问题的规定》"
	LaborLegalBasis   = "《中华人民共和国劳动合同法》第二十二条"
)

// LendingCheck is the success outcome of the private-lending check.
// The capped value is the validated rate itself, never a silently
// modified one: out-of-bounds rates are rejected, not clamped.
type LendingCheck struct {
	RiskLevel   domain.RiskLevel `json:"risk_level"`
	Message     string           `json:"message"`
	CappedValue float64          `json:"capped_value"`
}

// Interceptor evaluates statutory caps against caller-supplied values.
type Interceptor struct {
	rates rates.Provider
}

// NewInterceptor creates an interceptor backed by the given rate provider.
func NewInterceptor(provider rates.Provider) *Interceptor {
	return &Interceptor{rates: provider}
}

// CheckPrivateLendingRate validates an agreed interest rate against the
// statutory ceiling of LendingRateMultiplier times the benchmark LPR.
//
// A rate over the limit fails with InvalidInput carrying the structured
// violation. A rate lookup failure propagates as Unavailable unchanged;
// the two fault classes stay distinguishable to the caller.
func (i *Interceptor) CheckPrivateLendingRate(ctx context.Context, rate float64, simulateFailure bool) (*LendingCheck, error) {
	lpr, err := i.rates.BenchmarkRate(ctx, simulateFailure)
	if err != nil {
		return nil, err
	}

	limit := lpr * domain.LendingRateMultiplier
	if rate > limit {
		violation := domain.RedLineViolation{
			RiskLevel:  domain.RiskCritical,
			LegalBasis: LendingLegalBasis,
			Limit:      limit,
			Provided:   rate,
		}
		return nil, domain.NewInvalidInput(
			fmt.Sprintf("约定利率 (%.2f%%) 超过法律保护上限 (%.2f%%)", rate*100, limit*100),
			violation.Details(),
		)
	}

	return &LendingCheck{
		RiskLevel:   domain.RiskLow,
		Message:     "利率在法律保护范围内。",
		CappedValue: rate,
	}, nil
}

// LaborContractCeiling computes the liquidated-damages ceiling for a
// service-period breach: the share of training cost apportioned to the
// unperformed months. It never rejects on the amount itself; comparing a
// claimed amount against the ceiling is the caller's business.
func LaborContractCeiling(trainingCost float64, totalMonths, remainingMonths int) (float64, error) {
	if totalMonths <= 0 {
		return 0, domain.NewInvalidInput("服务期总月数必须大于0", map[string]any{
			"total_months": totalMonths,
		})
	}
	return trainingCost / float64(totalMonths) * float64(remainingMonths), nil
}
