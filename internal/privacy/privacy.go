// Package privacy masks personal information in outgoing payloads and
// screens incoming arguments for sensitive-data requests, per PIPL.
package privacy

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ComplianceProcessor is recorded in injected compliance metadata.
const ComplianceProcessor = "PrivacyPreservingMasker"

// ModelVersion tags generated content for the GB 45438 watermark.
const ModelVersion = "Legal-CN-v0.2.0"

// Masker rewrites PII in strings: phone numbers, ID-card numbers, bank
// accounts and email addresses. Masking order matters: ID cards before
// accounts, or an 18-digit ID would be swallowed by the account pattern.
type Masker struct {
	phone   *regexp.Regexp
	idCard  *regexp.Regexp
	account *regexp.Regexp
	email   *regexp.Regexp
}

// NewMasker compiles the masking patterns.
func NewMasker() *Masker {
	return &Masker{
		phone:   regexp.MustCompile(`\b1[3-9]\d{9}\b`),
		idCard:  regexp.MustCompile(`\b(?:[1-9]\d{16}[\dXx]|[1-9]\d{14})\b`),
		account: regexp.MustCompile(`\b\d{16,19}\b`),
		email:   regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`),
	}
}

// MaskString rewrites every recognized PII token in text.
func (m *Masker) MaskString(text string) string {
	text = m.phone.ReplaceAllStringFunc(text, func(s string) string {
		return s[:3] + "****" + s[len(s)-4:]
	})

	text = m.idCard.ReplaceAllStringFunc(text, func(s string) string {
		if len(s) == 15 {
			return s[:6] + "******" + s[len(s)-3:]
		}
		return s[:6] + "********" + s[len(s)-4:]
	})

	text = m.account.ReplaceAllStringFunc(text, func(s string) string {
		return "**** " + s[len(s)-4:]
	})

	text = m.email.ReplaceAllStringFunc(text, func(s string) string {
		at := strings.IndexByte(s, '@')
		return s[:1] + "***" + s[at:]
	})

	return text
}

// MaskJSON recursively masks every string value of a JSON document.
// Keys are left untouched.
func (m *Masker) MaskJSON(raw json.RawMessage) (json.RawMessage, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode payload for masking: %w", err)
	}

	masked, err := json.Marshal(m.maskValue(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode masked payload: %w", err)
	}
	return masked, nil
}

func (m *Masker) maskValue(v any) any {
	switch t := v.(type) {
	case string:
		return m.MaskString(t)
	case []any:
		for i, item := range t {
			t[i] = m.maskValue(item)
		}
		return t
	case map[string]any:
		for k, item := range t {
			t[k] = m.maskValue(item)
		}
		return t
	default:
		return v
	}
}

// ComplianceMetadata is the GB 45438 provenance block injected into
// masked responses.
type ComplianceMetadata struct {
	Timestamp    string `json:"timestamp"`
	ModelVersion string `json:"model_version"`
	Watermark    string `json:"watermark"`
	Processor    string `json:"processor"`
}

// NewComplianceMetadata builds the metadata block for the current time.
func NewComplianceMetadata() ComplianceMetadata {
	return ComplianceMetadata{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		ModelVersion: ModelVersion,
		Watermark:    "AI Generated Content - PIPL Compliant",
		Processor:    ComplianceProcessor,
	}
}

// InjectCompliance merges the gb_45438_compliance block into a JSON
// object's metadata field. Non-object payloads pass through unchanged.
func InjectCompliance(raw json.RawMessage) json.RawMessage {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return raw
	}

	meta, _ := doc["metadata"].(map[string]any)
	if meta == nil {
		meta = make(map[string]any)
	}
	meta["gb_45438_compliance"] = NewComplianceMetadata()
	doc["metadata"] = meta

	out, err := json.Marshal(doc)
	if err != nil {
		return raw
	}
	return out
}

// sensitiveFields trigger explicit-consent screening on inputs.
var sensitiveFields = []string{
	"medical_record", "病历",
	"biometric", "生物特征",
	"face_id", "人脸",
	"fingerprint", "指纹",
	"genetic", "基因",
}

// CheckSensitiveInput reports whether the raw request mentions a
// sensitive personal-information category, returning the matched
// keyword. Such requests need explicit user confirmation first.
func CheckSensitiveInput(raw []byte) (string, bool) {
	lowered := strings.ToLower(string(raw))
	for _, keyword := range sensitiveFields {
		if strings.Contains(lowered, keyword) {
			return keyword, true
		}
	}
	return "", false
}
