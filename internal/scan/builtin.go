package scan

import "github.com/joy7758/redline/internal/domain"

// BuiltinRules returns the default contract scan ruleset. Jurisdiction
// rules are mutually exclusive: the Hong Kong rule suppresses itself
// when a foreign forum is also present, so a contract naming both only
// flags the higher risk.
func BuiltinRules() []*domain.ScanRule {
	return []*domain.ScanRule{
		{
			ID:          "jurisdiction-foreign",
			Category:    domain.ScanCategoryJurisdiction,
			Level:       domain.RiskHigh,
			Expression:  `text.contains('纽约') || text.contains('New York')`,
			Description: "检测到非中国境内管辖权条款",
			Suggestion:  "建议修改为: 北京仲裁委员会或上海仲裁委员会",
			Enabled:     true,
		},
		{
			ID:       "jurisdiction-hongkong",
			Category: domain.ScanCategoryJurisdiction,
			Level:    domain.RiskMedium,
			Expression: `(text.contains('香港') || text.contains('Hong Kong')) && ` +
				`!(text.contains('纽约') || text.contains('New York'))`,
			Description: "检测到香港管辖权条款",
			Suggestion:  "如涉及内地业务,建议使用内地仲裁机构",
			Enabled:     true,
		},
		{
			ID:          "penalty-missing",
			Category:    domain.ScanCategoryPenalty,
			Level:       domain.RiskMedium,
			Expression:  `!text.contains('违约金') && !text.contains('赔偿')`,
			Description: "未检测到违约金或赔偿条款",
			Suggestion:  "建议根据《民法典》第585条增加违约金约定",
			LegalBasis:  "《民法典》第585条",
			Enabled:     true,
		},
		{
			ID:          "penalty-excessive",
			Category:    domain.ScanCategoryPenalty,
			Level:       domain.RiskHigh,
			Expression:  `text.contains('100%') || text.contains('全额')`,
			Description: "违约金比例可能过高",
			Suggestion:  "根据司法实践,违约金一般不超过合同金额的30%",
			LegalBasis:  "《民法典》第585条",
			Enabled:     true,
		},
		{
			ID:          "liability-waiver",
			Category:    domain.ScanCategoryLiability,
			Level:       domain.RiskHigh,
			Expression:  `text.contains('不承担任何责任') || text.contains('免除全部责任')`,
			Description: "检测到可能无效的免责条款",
			Suggestion:  "根据《民法典》第506条,免除故意或重大过失责任的条款无效",
			LegalBasis:  "《民法典》第506条",
			Enabled:     true,
		},
	}
}
