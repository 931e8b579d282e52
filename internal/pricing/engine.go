package pricing

import (
	"math"

	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/models"
)

// DefaultRule is the platform-wide fallback used when no pricing rule is
// active at commit time. Rates match the platform seed values.
var DefaultRule = models.PricingRule{
	Name:                 "platform_default",
	CommissionFreelancer: 0.10,
	CommissionShop:       0.05,
	IsActive:             true,
}

// Breakdown splits a gross amount into platform fee and provider net.
//
// The fee is rounded half-up to 2 decimals; the net is gross - fee, so
// Gross == PlatformFee + ProviderNet holds exactly and any one-cent
// rounding discrepancy lands on the fee, never the net.
func Breakdown(gross float64, isFreelancer bool, rule *models.PricingRule) (models.FinancialBreakdown, error) {
	if gross < 0 {
		return models.FinancialBreakdown{}, httperr.ErrBusiness("invalid_amount")
	}
	if rule == nil {
		rule = &DefaultRule
	}

	rate := rule.CommissionShop
	if isFreelancer {
		rate = rule.CommissionFreelancer
	}
	if rate < 0 || rate > 1 {
		return models.FinancialBreakdown{}, httperr.ErrBusiness("invalid_commission_rate")
	}

	grossCents := roundHalfUpCents(gross)
	feeCents := roundHalfUpCents(float64(grossCents) / 100 * rate)
	netCents := grossCents - feeCents

	return models.FinancialBreakdown{
		Gross:       float64(grossCents) / 100,
		PlatformFee: float64(feeCents) / 100,
		ProviderNet: float64(netCents) / 100,
		RuleName:    rule.Name,
		Rate:        rate,
	}, nil
}

func roundHalfUpCents(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}
