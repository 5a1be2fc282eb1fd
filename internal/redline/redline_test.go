package redline

import (
	"context"
	"math"
	"testing"

	"github.com/joy7758/redline/internal/domain"
	"github.com/joy7758/redline/internal/rates"
)

func TestCheckPrivateLendingRate(t *testing.T) {
	ic := NewInterceptor(rates.NewStaticProvider())
	limit := rates.DefaultLPR * domain.LendingRateMultiplier // 0.138

	t.Run("rate at the exact limit passes", func(t *testing.T) {
		check, err := ic.CheckPrivateLendingRate(context.Background(), limit, false)
		if err != nil {
			t.Fatalf("CheckPrivateLendingRate() error = %v", err)
		}
		if check.RiskLevel != domain.RiskLow {
			t.Errorf("risk = %v, want Low", check.RiskLevel)
		}
		if check.CappedValue != limit {
			t.Errorf("capped value = %v, want %v", check.CappedValue, limit)
		}
	})

	t.Run("rate just above the limit is rejected with details", func(t *testing.T) {
		provided := limit + 1e-6
		_, err := ic.CheckPrivateLendingRate(context.Background(), provided, false)
		derr := domain.AsError(err)
		if derr.Kind != domain.KindInvalidInput {
			t.Fatalf("kind = %v, want invalid_input", derr.Kind)
		}
		if derr.Details["risk_level"] != string(domain.RiskCritical) {
			t.Errorf("risk_level = %v, want Critical", derr.Details["risk_level"])
		}
		if derr.Details["legal_basis"] != LendingLegalBasis {
			t.Errorf("legal_basis = %v", derr.Details["legal_basis"])
		}
		if got := derr.Details["limit"].(float64); math.Abs(got-limit) > 1e-12 {
			t.Errorf("limit = %v, want %v", got, limit)
		}
		if got := derr.Details["provided"].(float64); got != provided {
			t.Errorf("provided = %v, want %v", got, provided)
		}
	})

	t.Run("simulated source failure surfaces unavailable", func(t *testing.T) {
		_, err := ic.CheckPrivateLendingRate(context.Background(), 0.05, true)
		if domain.KindOf(err) != domain.KindUnavailable {
			t.Fatalf("kind = %v, want unavailable", domain.KindOf(err))
		}
	})
}

func TestLaborContractCeiling(t *testing.T) {
	t.Run("pro-rata apportionment", func(t *testing.T) {
		ceiling, err := LaborContractCeiling(10000, 60, 36)
		if err != nil {
			t.Fatalf("LaborContractCeiling() error = %v", err)
		}
		if ceiling != 6000 {
			t.Errorf("ceiling = %v, want 6000", ceiling)
		}
	})

	t.Run("fully served period yields zero", func(t *testing.T) {
		ceiling, err := LaborContractCeiling(10000, 24, 0)
		if err != nil {
			t.Fatalf("LaborContractCeiling() error = %v", err)
		}
		if ceiling != 0 {
			t.Errorf("ceiling = %v, want 0", ceiling)
		}
	})

	t.Run("non-positive total months rejected", func(t *testing.T) {
		for _, months := range []int{0, -12} {
			if _, err := LaborContractCeiling(10000, months, 6); domain.KindOf(err) != domain.KindInvalidInput {
				t.Errorf("total=%d: kind = %v, want invalid_input", months, domain.KindOf(err))
			}
		}
	})
}
