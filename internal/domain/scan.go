package domain

// ScanRule defines a contract risk-scan rule: a CEL expression over the
// contract text that flags a risk when it evaluates to true.
type ScanRule struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"` // "jurisdiction", "penalty", "liability"
	Level       RiskLevel `json:"level"`
	Expression  string    `json:"expression"`
	Description string    `json:"description"`
	Suggestion  string    `json:"suggestion"`
	LegalBasis  string    `json:"legal_basis,omitempty"`
	Enabled     bool      `json:"enabled"`
}

// Scan categories.
const (
	ScanCategoryJurisdiction = "jurisdiction"
	ScanCategoryPenalty      = "penalty"
	ScanCategoryLiability    = "liability"
)

// ScanRisk is one flagged finding of a contract scan.
type ScanRisk struct {
	Type        string    `json:"type"`
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
	Suggestion  string    `json:"suggestion"`
	LegalBasis  string    `json:"legal_basis,omitempty"`
}

// Scan statuses.
const (
	ScanStatusPass  = "通过"
	ScanStatusRisks = "发现风险"
)

// ScanReport is the outcome of a contract risk scan. Published to the
// identifier store so later evaluations can reference it.
type ScanReport struct {
	Status         string     `json:"status"`
	RiskCount      int        `json:"risk_count,omitempty"`
	Risks          []ScanRisk `json:"risks,omitempty"`
	Message        string     `json:"message,omitempty"`
	Recommendation string     `json:"recommendation"`
	ReportPID      string     `json:"report_pid,omitempty"`
	RelatedTo      string     `json:"related_to,omitempty"`
}

// ClauseAnalysis is the compliance assessment of a single clause.
type ClauseAnalysis struct {
	ClauseType       string   `json:"clause_type"`
	ClauseText       string   `json:"clause_text"`
	ComplianceStatus string   `json:"compliance_status"`
	LegalBasis       []string `json:"legal_basis"`
	Suggestions      []string `json:"suggestions"`
}

// Suggestion is a static advice template for a risk type.
type Suggestion struct {
	Title           string   `json:"title"`
	Recommendations []string `json:"recommendations"`
	Template        string   `json:"template,omitempty"`
	Context         string   `json:"context,omitempty"`
}
