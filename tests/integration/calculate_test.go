//go:build integration
// +build integration

// Package integration provides end-to-end tests for the Redline liquidated
// damages engine.
//
// These tests verify the COMPLETE calculation pipeline:
//
//	Request → Red-Line Interceptors → Discretion Formula → Report → PID Store
//
// Run with: go test -tags=integration -v ./tests/integration/...
//
// UNDERSTANDING THE DOMAIN:
//
// 1. CALCULATION: A liquidated damages suggestion for a contract dispute.
//    Base loss L = max(0, actual + expectation - mitigation), then
//    final = L * (1 + gamma) where gamma = 0.3 * (1 - performance) * fault.
//
// 2. RED LINE: A statutory cap that cannot be crossed. Private lending
//    interest is capped at LPR x 4 (3.45% x 4 = 13.8%); requests above it
//    are REJECTED, not clamped. Labor contract penalties are capped at the
//    pro-rata unamortized training cost.
//
// 3. PID: A persistent identifier for a stored record. Evaluation and scan
//    reports are published to the store and come back as legal://pid/<uuid>
//    URIs, resolvable via GET /resource.
//
// NOTE: The default rate limit (10 requests/minute) is too low for the full
// suite. Start the server with REDLINE_RATE_LIMIT=100000 before running.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// TestConfig holds test environment configuration
type TestConfig struct {
	BaseURL string
}

func getTestConfig() TestConfig {
	baseURL := os.Getenv("REDLINE_TEST_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return TestConfig{BaseURL: baseURL}
}

// ============================================================================
// API Request/Response Types (matching Redline's API contract)
// ============================================================================

// CalculateRequest is the payload sent to POST /damages/calculate
type CalculateRequest struct {
	Scenario          string   `json:"scenario"`
	ActualLoss        float64  `json:"actual_loss"`
	ExpectationLoss   float64  `json:"expectation_loss"`
	MitigationBenefit float64  `json:"mitigation_benefit"`
	PerformanceRatio  *float64 `json:"performance_ratio,omitempty"`
	FaultScore        *float64 `json:"fault_score,omitempty"`
	IsConsumer        bool     `json:"is_consumer_contract"`
	Rate              float64  `json:"rate,omitempty"`
	TrainingCost      float64  `json:"training_cost,omitempty"`
	TotalMonths       int      `json:"total_months,omitempty"`
	RemainingMonths   int      `json:"remaining_months,omitempty"`
}

// CalculateResponse is what POST /damages/calculate returns
type CalculateResponse struct {
	Scenario        string  `json:"scenario"`
	FinalSuggestion float64 `json:"final_suggestion"`
	BaseLoss        float64 `json:"base_loss"`
	Gamma           *struct {
		W1    float64 `json:"w1"`
		W2    float64 `json:"w2"`
		Gamma float64 `json:"gamma"`
	} `json:"gamma_calculation"`
	Adjustments []struct {
		Type       string `json:"type"`
		Message    string `json:"message"`
		LegalBasis string `json:"legal_basis"`
	} `json:"adjustments"`
	TraceID  string         `json:"causal_trace_id"`
	Metadata map[string]any `json:"metadata"`
}

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// EvaluateRequest is the payload sent to POST /discretion/evaluate.
// Each parameter is either a raw number or a legal://pid/ reference.
type EvaluateRequest struct {
	Loss        any    `json:"loss"`
	Performance any    `json:"performance"`
	Fault       any    `json:"fault"`
	ContractPID string `json:"contract_pid,omitempty"`
}

// EvaluateResponse is what POST /discretion/evaluate returns
type EvaluateResponse struct {
	EvaluationID string `json:"evaluation_id"`
	Inputs       map[string]struct {
		Value     float64 `json:"value"`
		SourcePID string  `json:"source_pid"`
	} `json:"inputs"`
	Formula struct {
		Expression string             `json:"expression"`
		Components map[string]float64 `json:"components"`
	} `json:"formula"`
	Result struct {
		SuggestedPenalty float64 `json:"suggested_penalty"`
	} `json:"result"`
	StandardsRef string `json:"standards_ref"`
	ReportPID    string `json:"report_pid"`
}

// ============================================================================
// Test Helper Functions
// ============================================================================

func postJSON(t *testing.T, config TestConfig, path string, payload any) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	httpReq, err := http.NewRequest("POST", config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	return resp.StatusCode, respBody
}

func calculate(t *testing.T, config TestConfig, req CalculateRequest) CalculateResponse {
	t.Helper()

	status, body := postJSON(t, config, "/damages/calculate", req)
	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", status, string(body))
	}

	var result CalculateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body: %s)", err, string(body))
	}
	return result
}

func floatPtr(v float64) *float64 { return &v }

// ============================================================================
// SCENARIO 1: General Contract Without Discretionary Weight
// ============================================================================

func TestGeneralContract_NoWeight(t *testing.T) {
	/*
	   SCENARIO: A plain 10,000 yuan loss with no performance or fault data

	   EXPECTED BEHAVIOR:
	   - Base loss L = 10000 + 0 - 0 = 10000
	   - No weight supplied, so gamma = 0
	   - Final suggestion = 10000
	*/
	config := getTestConfig()

	result := calculate(t, config, CalculateRequest{
		Scenario:   "general_contract",
		ActualLoss: 10000,
	})

	if result.FinalSuggestion != 10000 {
		t.Errorf("Expected suggestion 10000, got %.2f", result.FinalSuggestion)
	}
	if result.TraceID == "" {
		t.Error("Missing causal_trace_id")
	}

	t.Logf("✓ General contract: suggestion=%.2f", result.FinalSuggestion)
}

// ============================================================================
// SCENARIO 2: Discretionary Weight Applied
// ============================================================================

func TestGeneralContract_DiscretionaryWeight(t *testing.T) {
	/*
	   SCENARIO: 10,000 yuan loss, half performed, elevated fault (1.5)

	   EXPECTED BEHAVIOR:
	   - gamma = 0.3 * (1 - 0.5) * 1.5 = 0.225
	   - Final suggestion = 10000 * 1.225 = 12250
	*/
	config := getTestConfig()

	result := calculate(t, config, CalculateRequest{
		Scenario:         "general_contract",
		ActualLoss:       10000,
		PerformanceRatio: floatPtr(0.5),
		FaultScore:       floatPtr(1.5),
	})

	if result.FinalSuggestion != 12250 {
		t.Errorf("Expected suggestion 12250, got %.2f", result.FinalSuggestion)
	}
	if result.Gamma == nil {
		t.Fatal("Missing gamma_calculation breakdown")
	}
	if result.Gamma.Gamma != 0.225 {
		t.Errorf("Expected gamma 0.225, got %.4f", result.Gamma.Gamma)
	}

	t.Logf("✓ Weighted calculation: gamma=%.3f, suggestion=%.2f",
		result.Gamma.Gamma, result.FinalSuggestion)
}

// ============================================================================
// SCENARIO 3: Private Lending Cap Boundary
// ============================================================================

func TestLendingRate_ExactCap(t *testing.T) {
	/*
	   SCENARIO: Annualized rate of exactly LPR x 4 (0.0345 * 4 = 0.138)

	   EXPECTED BEHAVIOR:
	   - The cap is inclusive: exactly 13.8% passes
	   - Final suggestion equals the capped value

	   WHY THIS TEST:
	   Boundary conditions catch off-by-one errors in the interceptor.
	*/
	config := getTestConfig()

	result := calculate(t, config, CalculateRequest{
		Scenario: "private_lending",
		Rate:     0.138,
	})

	if result.FinalSuggestion <= 0 {
		t.Errorf("Expected positive capped value at the boundary, got %.4f", result.FinalSuggestion)
	}

	t.Logf("✓ Boundary test passed: 13.80%% exactly → suggestion=%.4f", result.FinalSuggestion)
}

func TestLendingRate_AboveCap_Rejected(t *testing.T) {
	/*
	   SCENARIO: Annualized rate of 40%, far above LPR x 4

	   EXPECTED BEHAVIOR:
	   - HTTP 400 with code -32602
	   - Details carry risk_level Critical, the statutory limit, and the
	     provided rate so the caller can see how far over they were
	*/
	config := getTestConfig()

	status, body := postJSON(t, config, "/damages/calculate", CalculateRequest{
		Scenario: "private_lending",
		Rate:     0.40,
	})

	if status != http.StatusBadRequest {
		t.Fatalf("Expected 400 for rate above cap, got %d: %s", status, string(body))
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal error: %v (body: %s)", err, string(body))
	}
	if errResp.Code != -32602 {
		t.Errorf("Expected code -32602, got %d", errResp.Code)
	}
	if errResp.Details["risk_level"] != "Critical" {
		t.Errorf("Expected risk_level Critical, got %v", errResp.Details["risk_level"])
	}

	t.Logf("✓ Red line held: 40%% rejected with code=%d, details=%v", errResp.Code, errResp.Details)
}

// ============================================================================
// SCENARIO 4: Labor Contract Pro-Rata Ceiling
// ============================================================================

func TestLaborContract_ProRataCeiling(t *testing.T) {
	/*
	   SCENARIO: 10,000 yuan training cost, 60-month service term,
	   36 months remaining when the employee leaves

	   EXPECTED BEHAVIOR:
	   - Ceiling = 10000 / 60 * 36 = 6000
	*/
	config := getTestConfig()

	result := calculate(t, config, CalculateRequest{
		Scenario:        "labor_contract",
		TrainingCost:    10000,
		TotalMonths:     60,
		RemainingMonths: 36,
	})

	if result.FinalSuggestion != 6000 {
		t.Errorf("Expected ceiling 6000, got %.2f", result.FinalSuggestion)
	}

	t.Logf("✓ Labor ceiling: suggestion=%.2f", result.FinalSuggestion)
}

// ============================================================================
// SCENARIO 5: Judicial Discretion Evaluation With Provenance
// ============================================================================

func TestDiscretionEvaluation_PublishesReport(t *testing.T) {
	/*
	   SCENARIO: Raw numeric inputs, full round trip

	   EXPECTED BEHAVIOR:
	   - suggested_penalty = 10000 * (1 + 0.3 * 0.5 * 1.5) = 12250
	   - The report is published to the PID store and the response carries
	     a resolvable report_pid
	   - GET /resource for the report_pid returns a JSON-LD ComplianceReport
	*/
	config := getTestConfig()

	status, body := postJSON(t, config, "/discretion/evaluate", EvaluateRequest{
		Loss:        10000.0,
		Performance: 0.5,
		Fault:       1.5,
	})
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", status, string(body))
	}

	var result EvaluateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body: %s)", err, string(body))
	}

	if result.Result.SuggestedPenalty != 12250 {
		t.Errorf("Expected penalty 12250, got %.2f", result.Result.SuggestedPenalty)
	}
	if result.EvaluationID == "" {
		t.Error("Missing evaluation_id")
	}
	if !strings.HasPrefix(result.ReportPID, "legal://pid/") {
		t.Fatalf("Expected legal://pid/ report reference, got %q", result.ReportPID)
	}

	// The published report must resolve through the resource endpoint.
	resp, err := http.Get(config.BaseURL + "/resource?uri=" + result.ReportPID)
	if err != nil {
		t.Fatalf("Failed to fetch report resource: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 resolving report PID, got %d", resp.StatusCode)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("Failed to decode JSON-LD report: %v", err)
	}
	if doc["@type"] != "ComplianceReport" {
		t.Errorf("Expected @type ComplianceReport, got %v", doc["@type"])
	}

	t.Logf("✓ Evaluation round trip: penalty=%.2f, report=%s",
		result.Result.SuggestedPenalty, result.ReportPID)
}

func TestDiscretionEvaluation_UnresolvableReferenceDegrades(t *testing.T) {
	/*
	   SCENARIO: Loss given as a PID reference that does not exist

	   EXPECTED BEHAVIOR:
	   - The evaluation does NOT fail; the unresolvable input degrades to 0
	   - suggested_penalty = 0
	*/
	config := getTestConfig()

	status, body := postJSON(t, config, "/discretion/evaluate", EvaluateRequest{
		Loss:        "legal://pid/00000000-0000-0000-0000-000000000000",
		Performance: 0.5,
		Fault:       1.5,
	})
	if status != http.StatusOK {
		t.Fatalf("Expected 200 despite bad reference, got %d: %s", status, string(body))
	}

	var result EvaluateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if result.Result.SuggestedPenalty != 0 {
		t.Errorf("Expected penalty 0 for unresolvable loss, got %.2f", result.Result.SuggestedPenalty)
	}

	t.Logf("✓ Unresolvable reference degraded to zero")
}

// ============================================================================
// SCENARIO 6: Input Validation
// ============================================================================

func TestUnknownScenario_Error(t *testing.T) {
	/*
	   SCENARIO: Request with an unrecognized scenario tag

	   EXPECTED: HTTP 400 Bad Request
	*/
	config := getTestConfig()

	status, body := postJSON(t, config, "/damages/calculate", CalculateRequest{
		Scenario:   "criminal_fine",
		ActualLoss: 1000,
	})

	if status != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown scenario, got %d: %s", status, string(body))
	}

	t.Logf("✓ Validation test passed: unknown scenario → HTTP %d", status)
}

func TestZeroServiceTerm_Error(t *testing.T) {
	/*
	   SCENARIO: Labor contract with a zero-month service term

	   EXPECTED: HTTP 400 (an undefined ceiling must be rejected, not zeroed)
	*/
	config := getTestConfig()

	status, body := postJSON(t, config, "/damages/calculate", CalculateRequest{
		Scenario:        "labor_contract",
		TrainingCost:    10000,
		TotalMonths:     0,
		RemainingMonths: 0,
	})

	if status != http.StatusBadRequest {
		t.Errorf("Expected 400 for zero service term, got %d: %s", status, string(body))
	}

	t.Logf("✓ Validation test passed: zero service term → HTTP %d", status)
}

// ============================================================================
// SCENARIO 7: Response Compliance Metadata
// ============================================================================

func TestResponseComplianceMetadata(t *testing.T) {
	/*
	   SCENARIO: Verify every calculation response carries the content
	   governance block injected by the masking layer.

	   This ensures the API contract is stable for downstream audit tooling.
	*/
	config := getTestConfig()

	result := calculate(t, config, CalculateRequest{
		Scenario:   "general_contract",
		ActualLoss: 100,
	})

	compliance, ok := result.Metadata["gb_45438_compliance"].(map[string]any)
	if !ok {
		t.Fatalf("Missing metadata.gb_45438_compliance: %v", result.Metadata)
	}
	if compliance["watermark"] == "" {
		t.Error("Missing compliance watermark")
	}
	if compliance["model_version"] == "" {
		t.Error("Missing compliance model_version")
	}

	t.Logf("✓ Compliance metadata present: %v", compliance)
}
