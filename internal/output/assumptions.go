package output

import (
	"fmt"

	"github.com/vorsorge/rentenplan/internal/domain"
)

// KeyAssumptions lists the modeling assumptions rendered in detailed outputs
func KeyAssumptions(rules domain.TaxYearRules) []string {
	cg := rules.CapitalGains
	return []string{
		fmt.Sprintf("Tax year %d rules held constant for the whole projection", rules.Year),
		fmt.Sprintf("Abgeltungsteuer %s plus Soli %s on taxable gains", FormatPercentage(cg.FlatRate.Mul(hundred)), FormatPercentage(cg.SolidarityRate.Mul(hundred))),
		fmt.Sprintf("Basiszins %s, Vorabpauschale at %s of it", FormatPercentage(cg.BaseRatePercent), FormatPercentage(cg.BaseYieldFactor.Mul(hundred))),
		fmt.Sprintf("Sparerpauschbetrag %s (single) / %s (married)", FormatCurrency(cg.SaverAllowanceSingle), FormatCurrency(cg.SaverAllowanceMarried)),
		fmt.Sprintf("Half-income taxation from age %d after %d years", rules.Pension.HalfIncomeMinAge, rules.Pension.HalfIncomeMinYearsHeld),
		"Returns are deterministic and constant; no inflation adjustment",
	}
}
