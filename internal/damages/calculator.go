// Package damages implements the liquidated-damages calculator: a per-call
// dispatch over the enumerated calculation scenarios.
package damages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joy7758/redline/internal/domain"
	"github.com/joy7758/redline/internal/redline"
)

// Consumer-contract advisory, appended once when the weight flags a
// consumer contract. Never alters the numeric formula.
const (
	consumerLegalBasis = "《消费者权益保护法》"
	consumerMessage    = "消费者合同，建议法院在裁量时更加倾向于保护消费者权益，严格审查格式条款。"
)

// Input carries every scenario-specific parameter of one calculation.
// Which fields matter depends on the scenario; the rest are ignored.
type Input struct {
	Scenario domain.Scenario

	// general_contract / judicial_evaluation
	ActualLoss        float64
	ExpectationLoss   float64
	MitigationBenefit float64
	Weight            *domain.DiscretionaryWeight

	// private_lending
	Rate float64

	// labor_contract
	TrainingCost    float64
	TotalMonths     int
	RemainingMonths int

	// Fault injection for the rate lookup (testing aid).
	SimulateDBFailure bool

	// Correlation identifier, caller-supplied or generated upstream.
	TraceID string
}

// Calculator routes a calculation request to the correct regime and
// assembles the result payload. Stateless per request.
type Calculator struct {
	interceptor *redline.Interceptor
}

// New creates a calculator backed by the given red-line interceptor.
func New(interceptor *redline.Interceptor) *Calculator {
	return &Calculator{interceptor: interceptor}
}

// Calculate runs one damages calculation. InvalidInput and Unavailable
// failures from the interceptors propagate unchanged; the boundary
// serializes them. Emits exactly one log entry per invocation.
func (c *Calculator) Calculate(ctx context.Context, in *Input) (*domain.CalculationResult, error) {
	slog.InfoContext(ctx, "starting damages calculation",
		"scenario", in.Scenario,
		"trace_id", in.TraceID,
	)

	result := &domain.CalculationResult{
		Scenario:    in.Scenario,
		Adjustments: []domain.Annotation{},
		TraceID:     in.TraceID,
	}

	switch in.Scenario {
	case domain.ScenarioPrivateLending:
		check, err := c.interceptor.CheckPrivateLendingRate(ctx, in.Rate, in.SimulateDBFailure)
		if err != nil {
			return nil, err
		}
		// This scenario answers "is this rate legal", not "what is owed":
		// the suggestion is the validated rate itself.
		result.FinalSuggestion = check.CappedValue
		return result, nil

	case domain.ScenarioLaborContract:
		ceiling, err := redline.LaborContractCeiling(in.TrainingCost, in.TotalMonths, in.RemainingMonths)
		if err != nil {
			return nil, err
		}
		result.Adjustments = append(result.Adjustments, domain.Annotation{
			Message:    fmt.Sprintf("劳动合同违约金上限为服务期尚未履行部分所应分摊的培训费用 (%.2f)。", ceiling),
			LegalBasis: redline.LaborLegalBasis,
		})
		result.FinalSuggestion = ceiling
		return result, nil

	case domain.ScenarioGeneralContract, domain.ScenarioJudicialEvaluation:
		c.calculateGeneral(in, result)
		return result, nil

	default:
		// ParseScenario rejects unknown tags at the boundary; reaching
		// here means a caller bypassed it.
		return nil, domain.NewInvalidInput("unknown scenario: "+string(in.Scenario), map[string]any{
			"scenario": string(in.Scenario),
		})
	}
}

// calculateGeneral applies the base formula
// L = max(0, actual + expectation - mitigation), then the discretionary
// markup: final = L * (1 + gamma). A computed penalty is never negative.
func (c *Calculator) calculateGeneral(in *Input, result *domain.CalculationResult) {
	loss := in.ActualLoss + in.ExpectationLoss - in.MitigationBenefit
	if loss < 0 {
		loss = 0
	}
	result.BaseLoss = &loss

	gamma := 0.0
	if in.Weight != nil {
		breakdown := in.Weight.Gamma()
		gamma = breakdown.Gamma
		result.Gamma = &breakdown

		if in.Weight.IsConsumerContract {
			result.Adjustments = append(result.Adjustments, domain.Annotation{
				Type:       "consumer_protection",
				Message:    consumerMessage,
				LegalBasis: consumerLegalBasis,
			})
		}
	}

	result.FinalSuggestion = loss * (1.0 + gamma)
}
