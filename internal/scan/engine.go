// Package scan provides the CEL-based contract risk scanner.
package scan

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/joy7758/redline/internal/domain"
)

// Engine compiles and evaluates contract scan rules. Rules are CEL
// boolean expressions over the contract text; a true result flags the
// rule's risk.
type Engine struct {
	mu         sync.RWMutex
	env        *cel.Env
	compiled   []*compiledRule
	byID       map[string]*compiledRule
	maxWorkers int
}

type compiledRule struct {
	rule    *domain.ScanRule
	program cel.Program
}

// NewEngine creates a scan engine.
func NewEngine(maxWorkers int) (*Engine, error) {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	env, err := cel.NewEnv(
		cel.Variable("text", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:        env,
		byID:       make(map[string]*compiledRule),
		maxWorkers: maxWorkers,
	}, nil
}

// ValidateRule compiles a rule without loading it.
func (e *Engine) ValidateRule(rule *domain.ScanRule) error {
	if rule == nil {
		return fmt.Errorf("scan rule is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileRule(rule)
	return err
}

// LoadRule compiles and loads a rule. A rule with a known ID replaces
// the earlier version in place, preserving report ordering.
func (e *Engine) LoadRule(rule *domain.ScanRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileRule(rule)
	if err != nil {
		return err
	}

	if existing, ok := e.byID[rule.ID]; ok {
		*existing = *compiled
		return nil
	}

	e.compiled = append(e.compiled, compiled)
	e.byID[rule.ID] = compiled
	return nil
}

// LoadRules compiles and loads multiple rules, skipping disabled ones.
func (e *Engine) LoadRules(rules []*domain.ScanRule) error {
	for _, rule := range rules {
		if rule.Enabled {
			if err := e.LoadRule(rule); err != nil {
				return err
			}
		}
	}
	return nil
}

// Evaluate runs every loaded rule in the requested categories against
// the contract text in parallel and returns flagged risks in rule load
// order.
func (e *Engine) Evaluate(ctx context.Context, text string, categories []string) ([]domain.ScanRisk, error) {
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	e.mu.RLock()
	rules := make([]*compiledRule, 0, len(e.compiled))
	for _, r := range e.compiled {
		if len(wanted) == 0 || wanted[r.rule.Category] {
			rules = append(rules, r)
		}
	}
	e.mu.RUnlock()

	if len(rules) == 0 {
		return nil, nil
	}

	activation := map[string]any{"text": text}

	hits := make([]bool, len(rules))
	errs := make([]error, len(rules))
	var wg sync.WaitGroup

	// Limit concurrency with semaphore
	sem := make(chan struct{}, e.maxWorkers)

	for i, rule := range rules {
		wg.Add(1)
		go func(idx int, r *compiledRule) {
			defer wg.Done()

			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			out, _, err := r.program.Eval(activation)
			if err != nil {
				errs[idx] = fmt.Errorf("rule %s: %w", r.rule.ID, err)
				return
			}
			if b, ok := out.(types.Bool); ok {
				hits[idx] = bool(b)
			}
		}(i, rule)
	}

	wg.Wait()

	var risks []domain.ScanRisk
	for i, rule := range rules {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if hits[i] {
			risks = append(risks, domain.ScanRisk{
				Type:        rule.rule.Category,
				Level:       rule.rule.Level,
				Description: rule.rule.Description,
				Suggestion:  rule.rule.Suggestion,
				LegalBasis:  rule.rule.LegalBasis,
			})
		}
	}

	return risks, nil
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiled)
}

// LoadedRules returns the currently loaded rule definitions.
func (e *Engine) LoadedRules() []*domain.ScanRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*domain.ScanRule, 0, len(e.compiled))
	for _, c := range e.compiled {
		rules = append(rules, c.rule)
	}
	return rules
}

// ReloadRules clears all existing rules and loads new ones.
func (e *Engine) ReloadRules(rules []*domain.ScanRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var newCompiled []*compiledRule
	newByID := make(map[string]*compiledRule)

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		compiled, err := e.compileRule(rule)
		if err != nil {
			return err
		}
		newCompiled = append(newCompiled, compiled)
		newByID[rule.ID] = compiled
	}

	e.compiled = newCompiled
	e.byID = newByID
	return nil
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled = nil
	e.byID = make(map[string]*compiledRule)
	return nil
}

func (e *Engine) compileRule(rule *domain.ScanRule) (*compiledRule, error) {
	ast, issues := e.env.Compile(rule.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", rule.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("rule %s: expression must return bool, got %s", rule.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", rule.ID, err)
	}

	return &compiledRule{rule: rule, program: program}, nil
}
