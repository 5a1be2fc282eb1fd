package scan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joy7758/redline/internal/domain"
)

// Scanner runs contract scans and publishes the reports for citation.
type Scanner struct {
	engine *Engine
	store  domain.Store
}

// NewScanner wires the scan engine to the identifier store. The store
// may be nil; reports are then returned without being published.
func NewScanner(engine *Engine, store domain.Store) *Scanner {
	return &Scanner{engine: engine, store: store}
}

// Scan evaluates the requested check categories against the contract
// text and publishes the report. relatedPID optionally links the report
// to a stored contract for provenance.
func (s *Scanner) Scan(ctx context.Context, contractText string, checkTypes []string, relatedPID, traceID string) (*domain.ScanReport, error) {
	if strings.TrimSpace(contractText) == "" {
		return nil, domain.NewInvalidInput("contract text is required", nil)
	}

	risks, err := s.engine.Evaluate(ctx, contractText, checkTypes)
	if err != nil {
		return nil, fmt.Errorf("scan evaluation failed: %w", err)
	}

	report := &domain.ScanReport{RelatedTo: relatedPID}
	if len(risks) == 0 {
		report.Status = domain.ScanStatusPass
		report.Message = "初步检查未发现明显法律风险"
		report.Recommendation = "建议结合具体业务场景进行深度审计"
	} else {
		report.Status = domain.ScanStatusRisks
		report.RiskCount = len(risks)
		report.Risks = risks
		report.Recommendation = "建议咨询专业律师进行详细审查"
	}

	if s.store != nil {
		pid, err := s.store.Put(ctx, report, map[string]string{"type": "scan_report"}, relatedPID)
		if err != nil {
			return nil, fmt.Errorf("failed to publish scan report: %w", err)
		}
		report.ReportPID = pid
	}

	slog.InfoContext(ctx, "contract scanned",
		"status", report.Status,
		"risk_count", report.RiskCount,
		"report_pid", report.ReportPID,
		"trace_id", traceID,
	)

	return report, nil
}

// AnalyzeClause assesses a single clause for compliance, anchored on the
// clause type's statutory basis.
func AnalyzeClause(clauseText, clauseType string) *domain.ClauseAnalysis {
	analysis := &domain.ClauseAnalysis{
		ClauseType:       clauseType,
		ClauseText:       clauseText,
		ComplianceStatus: "需要审查",
		LegalBasis:       []string{},
		Suggestions:      []string{},
	}

	switch clauseType {
	case domain.ScanCategoryPenalty:
		analysis.LegalBasis = append(analysis.LegalBasis,
			"《民法典》第585条 - 违约金条款",
			"最高人民法院关于适用《民法典》合同编的解释",
		)
		if strings.Contains(clauseText, "%") || strings.Contains(clauseText, "倍") {
			analysis.Suggestions = append(analysis.Suggestions, "注意违约金比例,避免被认定为过高")
		}
		analysis.ComplianceStatus = "基本合规"

	case domain.ScanCategoryJurisdiction:
		analysis.LegalBasis = append(analysis.LegalBasis, "《民事诉讼法》第34条 - 协议管辖")

		domestic := false
		for _, place := range []string{"北京", "上海", "深圳", "广州"} {
			if strings.Contains(clauseText, place) {
				domestic = true
				break
			}
		}
		if domestic {
			analysis.ComplianceStatus = "合规"
		} else {
			analysis.Suggestions = append(analysis.Suggestions, "建议选择与合同有实际联系的地点")
		}
	}

	return analysis
}

// GetSuggestion returns the advice template for a risk type, falling
// back to general advice for unknown types.
func GetSuggestion(riskType, context string) *domain.Suggestion {
	var s domain.Suggestion

	switch riskType {
	case domain.ScanCategoryJurisdiction:
		s = domain.Suggestion{
			Title: "管辖权条款建议",
			Recommendations: []string{
				"优先选择仲裁方式解决争议,效率更高",
				"建议选择: 北京仲裁委员会、上海仲裁委员会、深圳国际仲裁院",
				"如选择诉讼,应选择与合同履行地或被告住所地有关的法院",
			},
			Template: "因本合同引起的或与本合同有关的任何争议,均应提交[北京仲裁委员会]按照其仲裁规则进行仲裁。仲裁裁决是终局的,对双方均有约束力。",
		}
	case domain.ScanCategoryPenalty:
		s = domain.Suggestion{
			Title: "违约金条款建议",
			Recommendations: []string{
				"违约金数额应当合理,一般不超过实际损失的30%",
				"可以约定违约金的计算方法,如按日计算",
				"建议同时约定损害赔偿的计算方法",
			},
			Template: "一方违约的,应向守约方支付违约金,违约金金额为合同总价款的[10%-30%]。违约金不足以弥补实际损失的,守约方有权要求赔偿实际损失。",
		}
	case domain.ScanCategoryLiability:
		s = domain.Suggestion{
			Title: "责任条款建议",
			Recommendations: []string{
				"不得免除故意或重大过失造成的责任",
				"责任限制应当公平合理",
				"建议明确不可抗力的处理方式",
			},
			Template: "除因故意或重大过失造成的损失外,任何一方对本合同项下的间接损失、预期利润损失不承担赔偿责任。",
		}
	default:
		s = domain.Suggestion{
			Title: "通用法律建议",
			Recommendations: []string{
				"确保合同各方主体资格合法",
				"明确合同标的、数量、质量、价款等主要条款",
				"约定明确的履行期限和履行方式",
				"建议聘请专业律师进行合同审查",
			},
		}
	}

	s.Context = context
	return &s
}
