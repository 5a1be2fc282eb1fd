package scan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/joy7758/redline/internal/domain"
	"github.com/joy7758/redline/internal/repository"
)

func newTestScanner(t *testing.T) (*Scanner, domain.Store) {
	t.Helper()
	engine, err := NewEngine(4)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.LoadRules(BuiltinRules()); err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	store, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("repository.New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewScanner(engine, store), store
}

var allChecks = []string{
	domain.ScanCategoryJurisdiction,
	domain.ScanCategoryPenalty,
	domain.ScanCategoryLiability,
}

func TestScanCleanContract(t *testing.T) {
	s, _ := newTestScanner(t)

	text := "双方约定违约金为合同总价的10%，争议提交北京仲裁委员会仲裁。"
	report, err := s.Scan(context.Background(), text, allChecks, "", "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if report.Status != domain.ScanStatusPass {
		t.Errorf("status = %q, want %q (risks: %+v)", report.Status, domain.ScanStatusPass, report.Risks)
	}
	if report.Message == "" || report.Recommendation == "" {
		t.Error("pass report missing message or recommendation")
	}
}

func TestScanFlagsRisks(t *testing.T) {
	s, _ := newTestScanner(t)
	ctx := context.Background()

	t.Run("foreign jurisdiction is high risk", func(t *testing.T) {
		report, err := s.Scan(ctx, "争议由纽约法院管辖。本合同约定违约金。", allChecks, "", "")
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if report.Status != domain.ScanStatusRisks || report.RiskCount != 1 {
			t.Fatalf("report = %+v", report)
		}
		risk := report.Risks[0]
		if risk.Type != domain.ScanCategoryJurisdiction || risk.Level != domain.RiskHigh {
			t.Errorf("risk = %+v", risk)
		}
	})

	t.Run("hong kong jurisdiction is medium risk", func(t *testing.T) {
		report, err := s.Scan(ctx, "争议适用香港法律。违约金条款见附件。", allChecks, "", "")
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if report.RiskCount != 1 || report.Risks[0].Level != domain.RiskMedium {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("foreign forum shadows hong kong", func(t *testing.T) {
		report, err := s.Scan(ctx, "争议可在纽约或香港解决。违约金另行约定。", allChecks, "", "")
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if report.RiskCount != 1 || report.Risks[0].Level != domain.RiskHigh {
			t.Errorf("expected only the high-risk finding, got %+v", report.Risks)
		}
	})

	t.Run("missing penalty clause", func(t *testing.T) {
		report, err := s.Scan(ctx, "甲方向乙方交付货物。", []string{domain.ScanCategoryPenalty}, "", "")
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if report.RiskCount != 1 || report.Risks[0].Type != domain.ScanCategoryPenalty {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("excessive penalty ratio", func(t *testing.T) {
		report, err := s.Scan(ctx, "违约方应支付全额违约金。", []string{domain.ScanCategoryPenalty}, "", "")
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if report.RiskCount != 1 || report.Risks[0].Level != domain.RiskHigh {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("void liability waiver", func(t *testing.T) {
		report, err := s.Scan(ctx, "甲方对任何损失不承担任何责任。", []string{domain.ScanCategoryLiability}, "", "")
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if report.RiskCount != 1 || report.Risks[0].LegalBasis != "《民法典》第506条" {
			t.Errorf("report = %+v", report)
		}
	})
}

func TestScanScopesToRequestedCategories(t *testing.T) {
	s, _ := newTestScanner(t)

	// Jurisdiction risk present but only penalty checks requested.
	report, err := s.Scan(context.Background(), "由纽约法院管辖。约定违约金10%。", []string{domain.ScanCategoryPenalty}, "", "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if report.Status != domain.ScanStatusPass {
		t.Errorf("report = %+v, want pass", report)
	}
}

func TestScanPublishesReport(t *testing.T) {
	s, store := newTestScanner(t)
	ctx := context.Background()

	contractPID, _ := store.Put(ctx, map[string]string{"text": "合同"}, nil, "")

	report, err := s.Scan(ctx, "不承担任何责任", allChecks, contractPID, "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if report.ReportPID == "" {
		t.Fatal("report was not published")
	}

	rec, err := store.GetByHandle(ctx, domain.HandleFromPID(report.ReportPID))
	if err != nil {
		t.Fatalf("GetByHandle() error = %v", err)
	}
	if rec.ParentPID != contractPID {
		t.Errorf("parent_pid = %q, want %q", rec.ParentPID, contractPID)
	}
}

func TestScanRejectsEmptyText(t *testing.T) {
	s, _ := newTestScanner(t)
	_, err := s.Scan(context.Background(), "   ", allChecks, "", "")
	if domain.KindOf(err) != domain.KindInvalidInput {
		t.Fatalf("error kind = %v, want invalid_input", domain.KindOf(err))
	}
}

func TestEngineRejectsInvalidExpressions(t *testing.T) {
	engine, err := NewEngine(2)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	t.Run("syntax error", func(t *testing.T) {
		err := engine.ValidateRule(&domain.ScanRule{ID: "bad", Expression: "text.contains("})
		if err == nil {
			t.Fatal("expected a compile error")
		}
	})

	t.Run("non-bool output", func(t *testing.T) {
		err := engine.ValidateRule(&domain.ScanRule{ID: "bad", Expression: "text"})
		if err == nil {
			t.Fatal("expected an output-type error")
		}
	})
}

func TestAnalyzeClause(t *testing.T) {
	t.Run("penalty clause with ratio", func(t *testing.T) {
		a := AnalyzeClause("违约金为合同金额的20%", domain.ScanCategoryPenalty)
		if a.ComplianceStatus != "基本合规" {
			t.Errorf("status = %q", a.ComplianceStatus)
		}
		if len(a.LegalBasis) != 2 || len(a.Suggestions) != 1 {
			t.Errorf("analysis = %+v", a)
		}
	})

	t.Run("domestic jurisdiction clause", func(t *testing.T) {
		a := AnalyzeClause("争议由北京仲裁委员会仲裁", domain.ScanCategoryJurisdiction)
		if a.ComplianceStatus != "合规" {
			t.Errorf("status = %q", a.ComplianceStatus)
		}
	})

	t.Run("unanchored jurisdiction clause", func(t *testing.T) {
		a := AnalyzeClause("争议另行协商", domain.ScanCategoryJurisdiction)
		if a.ComplianceStatus != "需要审查" || len(a.Suggestions) != 1 {
			t.Errorf("analysis = %+v", a)
		}
	})

	t.Run("unknown clause type", func(t *testing.T) {
		a := AnalyzeClause("保密义务", "confidentiality")
		if a.ComplianceStatus != "需要审查" {
			t.Errorf("status = %q", a.ComplianceStatus)
		}
	})
}

func TestGetSuggestion(t *testing.T) {
	for _, riskType := range allChecks {
		s := GetSuggestion(riskType, "")
		if s.Title == "" || len(s.Recommendations) == 0 || s.Template == "" {
			t.Errorf("suggestion for %s incomplete: %+v", riskType, s)
		}
	}

	t.Run("unknown type falls back to general", func(t *testing.T) {
		s := GetSuggestion("unknown", "ctx")
		if s.Title != "通用法律建议" {
			t.Errorf("title = %q", s.Title)
		}
		if s.Context != "ctx" {
			t.Errorf("context = %q", s.Context)
		}
	})
}
