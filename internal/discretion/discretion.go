// Package discretion evaluates judicial discretion over penalty
// adjustment, resolving evidence references against the identifier store.
package discretion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joy7758/redline/internal/damages"
	"github.com/joy7758/redline/internal/domain"
	"github.com/joy7758/redline/internal/resources"
)

// StandardsRef points evaluation reports at the discretion-standards
// catalog document.
const StandardsRef = resources.URIDiscretionStandards

// FormulaExpression is the human-readable formula recorded in reports.
const FormulaExpression = "penalty = loss * (1 + 0.3 * (1 - performance) * fault)"

// ParamValue is a request parameter that is either a raw number or a
// reference to a stored record (a legal://pid/ URI).
type ParamValue struct {
	Value float64
	PID   string
	IsRef bool
}

// UnmarshalJSON accepts a JSON number or a PID string. Any other string
// is rejected; silent coercion of a typo into a zero would corrupt the
// evaluation.
func (p *ParamValue) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*p = ParamValue{Value: num}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parameter must be a number or a PID string")
	}
	if !domain.IsPID(s) {
		return fmt.Errorf("string parameter must be a %s reference, got %q", domain.PIDPrefix, s)
	}
	*p = ParamValue{PID: s, IsRef: true}
	return nil
}

// MarshalJSON renders raw values as numbers and references as strings.
func (p ParamValue) MarshalJSON() ([]byte, error) {
	if p.IsRef {
		return json.Marshal(p.PID)
	}
	return json.Marshal(p.Value)
}

// ResolvedInput is one evaluation input after reference resolution.
type ResolvedInput struct {
	Value     float64 `json:"value"`
	SourcePID string  `json:"source_pid,omitempty"`
}

// Formula records the computation applied, component by component.
type Formula struct {
	Expression string             `json:"expression"`
	Components map[string]float64 `json:"components"`
}

// Report is the persisted outcome of one discretion evaluation.
type Report struct {
	EvaluationID string                   `json:"evaluation_id"`
	ContractPID  string                   `json:"contract_pid,omitempty"`
	Inputs       map[string]ResolvedInput `json:"inputs"`
	Formula      Formula                  `json:"formula"`
	Result       Result                   `json:"result"`
	StandardsRef string                   `json:"standards_ref"`
	ReportPID    string                   `json:"report_pid,omitempty"`
	TraceID      string                   `json:"causal_trace_id,omitempty"`
}

// Result carries the numeric outcome.
type Result struct {
	SuggestedPenalty float64 `json:"suggested_penalty"`
}

// Resolver turns parameter references into concrete record fields.
type Resolver struct {
	provider *resources.Provider
}

// NewResolver creates a resolver over the resource provider.
func NewResolver(provider *resources.Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve extracts the named numeric field from a referenced record, or
// returns the raw value untouched. An unresolvable reference degrades to
// zero with a warning; evidence gaps must not abort an evaluation.
func (r *Resolver) Resolve(ctx context.Context, p ParamValue, field string) ResolvedInput {
	if !p.IsRef {
		return ResolvedInput{Value: p.Value}
	}

	handle := domain.HandleFromPID(p.PID)
	rec, err := r.provider.ResolveRecord(ctx, handle)
	if err != nil {
		slog.WarnContext(ctx, "evidence reference unresolvable, degrading to zero",
			"pid", p.PID, "field", field, "error", err)
		return ResolvedInput{}
	}

	var content map[string]json.RawMessage
	if err := json.Unmarshal(rec.Content, &content); err != nil {
		slog.WarnContext(ctx, "evidence record is not an object, degrading to zero",
			"pid", p.PID, "field", field, "error", err)
		return ResolvedInput{}
	}

	raw, ok := content[field]
	if !ok {
		slog.WarnContext(ctx, "evidence record lacks expected field, degrading to zero",
			"pid", p.PID, "field", field)
		return ResolvedInput{}
	}

	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		slog.WarnContext(ctx, "evidence field is not numeric, degrading to zero",
			"pid", p.PID, "field", field, "error", err)
		return ResolvedInput{}
	}

	return ResolvedInput{Value: value, SourcePID: p.PID}
}

// Evaluator runs judicial discretion evaluations and publishes the
// resulting reports for citation.
type Evaluator struct {
	resolver   *Resolver
	calculator *damages.Calculator
	store      domain.Store
}

// NewEvaluator wires the resolver, calculator and store together.
func NewEvaluator(resolver *Resolver, calculator *damages.Calculator, store domain.Store) *Evaluator {
	return &Evaluator{resolver: resolver, calculator: calculator, store: store}
}

// Evaluate resolves the three discretion factors, applies the penalty
// formula and publishes the report to the identifier store with the
// contract as provenance parent. The returned report carries its own PID.
func (e *Evaluator) Evaluate(ctx context.Context, loss, performance, fault ParamValue, contractPID, traceID string) (*Report, error) {
	lossIn := e.resolver.Resolve(ctx, loss, "amount")
	perfIn := e.resolver.Resolve(ctx, performance, "ratio")
	faultIn := e.resolver.Resolve(ctx, fault, "score")

	if lossIn.Value < 0 {
		slog.WarnContext(ctx, "negative loss clamped to zero", "value", lossIn.Value)
		lossIn.Value = 0
	}
	if clamped := domain.Clamp(perfIn.Value, domain.PerformanceRatioMin, domain.PerformanceRatioMax); clamped != perfIn.Value {
		slog.WarnContext(ctx, "performance ratio clamped", "value", perfIn.Value, "clamped", clamped)
		perfIn.Value = clamped
	}
	if clamped := domain.Clamp(faultIn.Value, domain.FaultScoreMin, domain.FaultScoreMax); clamped != faultIn.Value {
		slog.WarnContext(ctx, "fault score clamped", "value", faultIn.Value, "clamped", clamped)
		faultIn.Value = clamped
	}

	weight := domain.NewDiscretionaryWeight(perfIn.Value, faultIn.Value, false, false)
	calcResult, err := e.calculator.Calculate(ctx, &damages.Input{
		Scenario:   domain.ScenarioJudicialEvaluation,
		ActualLoss: lossIn.Value,
		Weight:     &weight,
		TraceID:    traceID,
	})
	if err != nil {
		return nil, err
	}

	breakdown := weight.Gamma()
	report := &Report{
		EvaluationID: uuid.NewString(),
		ContractPID:  contractPID,
		Inputs: map[string]ResolvedInput{
			"loss":        lossIn,
			"performance": perfIn,
			"fault":       faultIn,
		},
		Formula: Formula{
			Expression: FormulaExpression,
			Components: map[string]float64{
				"loss":  lossIn.Value,
				"w1":    breakdown.W1,
				"w2":    breakdown.W2,
				"gamma": breakdown.Gamma,
			},
		},
		Result:       Result{SuggestedPenalty: calcResult.FinalSuggestion},
		StandardsRef: StandardsRef,
		TraceID:      traceID,
	}

	pid, err := e.store.Put(ctx, report, map[string]string{
		"type":          "judicial_evaluation",
		"evaluation_id": report.EvaluationID,
	}, contractPID)
	if err != nil {
		// The evaluation itself succeeded; a publish failure only loses
		// citability, so surface it.
		return nil, fmt.Errorf("failed to publish evaluation report: %w", err)
	}
	report.ReportPID = pid

	slog.InfoContext(ctx, "judicial discretion evaluated",
		"evaluation_id", report.EvaluationID,
		"report_pid", pid,
		"contract_pid", contractPID,
		"suggested_penalty", report.Result.SuggestedPenalty,
		"trace_id", traceID,
	)

	return report, nil
}
