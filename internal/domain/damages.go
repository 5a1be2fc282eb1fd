package domain

// Legal-domain constants. Fixed by statute and judicial interpretation,
// not tunable at runtime; a statutory amendment is a single-point change here.
const (
	// GammaCoefficient scales the discretionary markup a court may apply.
	GammaCoefficient = 0.3

	// LendingRateMultiplier caps private-lending interest at this multiple
	// of the benchmark LPR. Exact, no tolerance band.
	LendingRateMultiplier = 4.0

	// Fault score domain: 1.0 slight negligence, 2.0 malice / gross negligence.
	FaultScoreMin = 1.0
	FaultScoreMax = 2.0

	// Performance ratio domain: fraction of the contract already performed.
	PerformanceRatioMin = 0.0
	PerformanceRatioMax = 1.0

	// AdvisoryPenaltyThreshold is the judicial-practice line above which an
	// agreed penalty is generally treated as excessive relative to the loss.
	AdvisoryPenaltyThreshold = 0.3
)

// Scenario selects the calculation regime. Closed set; unknown tags are
// rejected at parse time rather than silently treated as general_contract.
type Scenario string

const (
	ScenarioGeneralContract    Scenario = "general_contract"
	ScenarioPrivateLending     Scenario = "private_lending"
	ScenarioLaborContract      Scenario = "labor_contract"
	ScenarioJudicialEvaluation Scenario = "judicial_evaluation"
)

// ParseScenario validates a scenario tag. An empty tag defaults to
// general_contract; anything outside the enumerated set is an InvalidInput.
func ParseScenario(s string) (Scenario, error) {
	switch Scenario(s) {
	case "":
		return ScenarioGeneralContract, nil
	case ScenarioGeneralContract, ScenarioPrivateLending, ScenarioLaborContract, ScenarioJudicialEvaluation:
		return Scenario(s), nil
	default:
		return "", NewInvalidInput("unknown scenario: "+s, map[string]any{"scenario": s})
	}
}

// DiscretionaryWeight captures the court's latitude to adjust a penalty
// based on performance and fault. Immutable once constructed; built fresh
// per calculation and discarded afterwards.
type DiscretionaryWeight struct {
	PerformanceRatio            float64 `json:"performance_ratio"`
	FaultScore                  float64 `json:"fault_score"`
	ExpectationInterestIncluded bool    `json:"expectation_interest_included"`
	IsConsumerContract          bool    `json:"is_consumer_contract"`
}

// NewDiscretionaryWeight clamps both inputs into their legal domains.
// No unclamped value may reach the multiplication step.
func NewDiscretionaryWeight(performanceRatio, faultScore float64, expectationIncluded, consumer bool) DiscretionaryWeight {
	return DiscretionaryWeight{
		PerformanceRatio:            Clamp(performanceRatio, PerformanceRatioMin, PerformanceRatioMax),
		FaultScore:                  Clamp(faultScore, FaultScoreMin, FaultScoreMax),
		ExpectationInterestIncluded: expectationIncluded,
		IsConsumerContract:          consumer,
	}
}

// GammaBreakdown exposes the components of the adjustment coefficient.
type GammaBreakdown struct {
	W1    float64 `json:"w1"` // 1 - performance_ratio, floored at 0
	W2    float64 `json:"w2"` // fault_score
	Gamma float64 `json:"gamma"`
}

// Gamma computes the discretionary adjustment coefficient
// gamma = GammaCoefficient * (1 - performance) * fault, in [0, 0.6]
// over the clamped input domain. The consumer flag never alters gamma.
func (w DiscretionaryWeight) Gamma() GammaBreakdown {
	w1 := 1.0 - w.PerformanceRatio
	if w1 < 0 {
		w1 = 0
	}
	w2 := w.FaultScore
	return GammaBreakdown{W1: w1, W2: w2, Gamma: GammaCoefficient * w1 * w2}
}

// Annotation is an advisory note attached to a calculation result,
// always paired with its legal basis.
type Annotation struct {
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	LegalBasis string `json:"legal_basis"`
}

// CalculationResult is the structured outcome of a damages calculation.
// Produced once per invocation, immutable, serialized to the caller.
type CalculationResult struct {
	Scenario        Scenario        `json:"scenario"`
	Adjustments     []Annotation    `json:"adjustments"`
	FinalSuggestion float64         `json:"final_suggestion"`
	BaseLoss        *float64        `json:"base_loss,omitempty"`
	Gamma           *GammaBreakdown `json:"gamma_calculation,omitempty"`
	TraceID         string          `json:"causal_trace_id,omitempty"`
}

// Clamp bounds v into [lo, hi]. The evaluation boundary uses it to bound
// resolved inputs before a weight is constructed.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
