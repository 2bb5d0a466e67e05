// Package formscript generates the JavaScript embedded in the interactive PDF report.
// The script is rendered from the same tax-year table the Go engines use and carries
// fixtures computed by those engines, so the document can verify itself with selfTest().
package formscript

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// Tolerance is the largest deviation selfTest accepts between the script and the Go core
var Tolerance = decimal.RequireFromString("0.01")

//go:embed script.js.tmpl
var scriptSource string

var scriptTemplate = template.Must(template.New("formscript").Funcs(template.FuncMap{
	"num":   func(v decimal.Decimal) string { return v.String() },
	"quote": quote,
	"args":  jsArgs,
}).Parse(scriptSource))

// Fixture is one call into the generated script together with the value the Go core computed
type Fixture struct {
	Name     string          `json:"name"`
	Function string          `json:"function"`
	Args     []any           `json:"args"`
	Expected decimal.Decimal `json:"expected"`
}

// Generator renders the form script for one tax year
type Generator struct {
	Rules  domain.TaxYearRules
	taxes  *calculation.TaxCalculator
	engine *calculation.CalculationEngine
}

// NewGenerator creates a generator for the given tax-year rules
func NewGenerator(rules domain.TaxYearRules) *Generator {
	return &Generator{
		Rules:  rules,
		taxes:  calculation.NewTaxCalculatorWithRules(rules),
		engine: calculation.NewCalculationEngineWithRules(rules),
	}
}

// Generate writes the script to w
func (g *Generator) Generate(w io.Writer) error {
	fixtures, err := g.Fixtures()
	if err != nil {
		return fmt.Errorf("failed to compute fixtures: %w", err)
	}
	data := struct {
		Rules     domain.TaxYearRules
		Fixtures  []Fixture
		Tolerance decimal.Decimal
	}{g.Rules, fixtures, Tolerance}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render form script: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Script returns the rendered script as a string
func (g *Generator) Script() (string, error) {
	var sb strings.Builder
	if err := g.Generate(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Fixtures computes the conformance set the script checks itself against
func (g *Generator) Fixtures() ([]Fixture, error) {
	var out []Fixture
	income := g.taxes.Income

	for _, x := range []int64{10000, 11604, 15000, 17005, 40000, 66760, 120000, 300000} {
		v := decimal.NewFromInt(x)
		out = append(out,
			Fixture{fmt.Sprintf("income tax single %d", x), "incomeTax", []any{x, false}, income.CalculateIncomeTax(v, domain.Single)},
			Fixture{fmt.Sprintf("income tax married %d", x), "incomeTax", []any{x, true}, income.CalculateIncomeTax(v, domain.Married)},
		)
	}

	for _, tax := range []int64{15000, 20000, 30000, 60000} {
		v := decimal.NewFromInt(tax)
		out = append(out, Fixture{fmt.Sprintf("solidarity surcharge %d", tax), "solidaritySurcharge", []any{tax, false},
			income.CalculateSolidaritySurcharge(v, domain.Single)})
	}
	out = append(out, Fixture{"church tax 9%", "churchTax", []any{10000, 0, dec("0.09")},
		income.CalculateChurchTax(decimal.NewFromInt(10000), decimal.Zero, dec("0.09"))})

	assessments := []domain.TaxCalculationInput{
		{GrossIncome: decimal.NewFromInt(60000), MaritalStatus: domain.Single},
		{GrossIncome: decimal.NewFromInt(85000), MaritalStatus: domain.Married, ChurchTaxRate: dec("0.09"), Children: 2},
		{GrossIncome: decimal.NewFromInt(150000), MaritalStatus: domain.Single, ChurchTaxRate: dec("0.08"), SpecialExpenses: decimal.NewFromInt(4000)},
	}
	for _, in := range assessments {
		res := income.Calculate(in)
		deductions := in.SpecialExpenses.Add(in.ExtraordinaryExpenses)
		out = append(out, Fixture{
			Name:     fmt.Sprintf("total income tax %s %s", in.MaritalStatus, in.GrossIncome),
			Function: "totalIncomeTax",
			Args:     []any{in.GrossIncome, in.MaritalStatus.IsMarried(), in.ChurchTaxRate, deductions, in.Children},
			Expected: res.TotalTax,
		})
	}

	inv := g.taxes.Investment
	base := g.Rules.CapitalGains.BaseRatePercent
	out = append(out,
		Fixture{"vorabpauschale capped by base yield", "vorabpauschale", []any{dec("50000"), base, dec("0.002"), dec("3500")},
			inv.CalculateVorabpauschale(dec("50000"), base, dec("0.002"), dec("3500"))},
		Fixture{"vorabpauschale capped by gain", "vorabpauschale", []any{dec("50000"), base, dec("0.005"), dec("500")},
			inv.CalculateVorabpauschale(dec("50000"), base, dec("0.005"), dec("500"))},
		Fixture{"capital gains tax", "capitalGainsTax", []any{dec("1000"), 0},
			inv.CapitalGainsTax(dec("1000"), decimal.Zero)},
		Fixture{"capital gains tax with church tax", "capitalGainsTax", []any{dec("1000"), dec("0.09")},
			inv.CapitalGainsTax(dec("1000"), dec("0.09"))},
	)

	pension := g.taxes.Pension
	for _, age := range []int{60, 62, 65, 67} {
		out = append(out, Fixture{fmt.Sprintf("ertragsanteil %d", age), "ertragsanteilPercent", []any{age}, pension.ErtragsanteilPercent(age)})
	}

	payoutRate := g.Rules.Pension.DefaultPayoutTaxRate
	payment := calculation.PensionPayment{MonthlyPension: dec("800"), GuaranteedPension: dec("650"), Age: 67, StartAge: 67}
	products := []struct {
		product    domain.Product
		halfIncome bool
	}{
		{domain.FundPlan{}, false},
		{domain.InsurancePension{AnnuityFactor: domain.DefaultAnnuityFactor}, false},
		{domain.InsurancePension{AnnuityFactor: domain.DefaultAnnuityFactor}, true},
		{domain.RiesterPension{AnnuityFactor: domain.DefaultAnnuityFactor}, false},
		{domain.RuerupPension{AnnuityFactor: domain.DefaultAnnuityFactor}, false},
		{domain.OccupationalPension{AnnuityFactor: domain.DefaultAnnuityFactor}, false},
		{domain.UnknownProduct{Identifier: "sofortrente"}, false},
	}
	for _, pc := range products {
		settings := domain.TaxSettings{PayoutTaxRate: payoutRate, UseHalfIncomeTaxation: pc.halfIncome}
		res := pension.TaxForProduct(pc.product, payment, settings)
		name := fmt.Sprintf("pension tax %s", pc.product.Type())
		if pc.halfIncome {
			name += " half income"
		}
		out = append(out, Fixture{name, "pensionTax", []any{
			string(pc.product.Type()), payment.MonthlyPension, payment.GuaranteedPension,
			payment.Age, payment.StartAge, pc.halfIncome, payoutRate,
		}, res.Tax})
	}

	lumpSettings := domain.TaxSettings{PayoutTaxRate: payoutRate}
	for _, ls := range []struct{ age, held int }{{67, 30}, {60, 30}, {67, 5}} {
		res := pension.CalculateLumpSumTax(dec("120000"), dec("80000"), ls.age, ls.held, lumpSettings)
		out = append(out, Fixture{fmt.Sprintf("lump sum age %d held %d", ls.age, ls.held), "lumpSumTax",
			[]any{dec("120000"), dec("80000"), ls.age, ls.held, payoutRate, 0}, res.Tax})
	}

	accumulated, err := g.accumulationFixtures()
	if err != nil {
		return nil, err
	}
	return append(out, accumulated...), nil
}

// accumulationFixtures runs the projection engine on tax-deferred products and records
// the value at the end of the saving phase plus the pension it converts into
func (g *Generator) accumulationFixtures() ([]Fixture, error) {
	const years = 20
	plans := []domain.SimulationParams{
		{
			Name:                "ruerup",
			Product:             domain.ProductSpec{Type: domain.ProductRuerup},
			StartInvestment:     dec("5000"),
			MonthlyContribution: dec("300"),
			ExpectedReturn:      dec("0.05"),
			ManagementFee:       dec("0.01"),
			FrontLoadFee:        dec("0.03"),
		},
		{
			Name:                "riester",
			Product:             domain.ProductSpec{Type: domain.ProductRiester, Children: 2},
			MonthlyContribution: dec("150"),
			ExpectedReturn:      dec("0.04"),
			ManagementFee:       dec("0.008"),
			FrontLoadFee:        dec("0.02"),
			FrontLoadMode:       domain.FrontLoadPerContribution,
		},
		{
			Name:                "occupational",
			Product:             domain.ProductSpec{Type: domain.ProductOccupational, EmployerSubsidyRate: dec("0.2")},
			MonthlyContribution: dec("200"),
			ExpectedReturn:      dec("0.045"),
			ManagementFee:       dec("0.006"),
		},
	}

	var out []Fixture
	for _, p := range plans {
		p.CurrentAge = 40
		p.RetirementAge = 40 + years
		p.FinalAge = 40 + years - 1
		p.TaxSettings = domain.DefaultTaxSettings(g.Rules, domain.Single)

		result, err := g.engine.Simulate(context.Background(), p)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", p.Name, err)
		}
		gross := result.Final().GrossValue
		perContribution := p.FrontLoadMode == domain.FrontLoadPerContribution
		out = append(out, Fixture{
			Name:     "accumulate " + p.Name,
			Function: "accumulate",
			Args: []any{string(p.Product.Type), p.StartInvestment, p.MonthlyContribution, p.ExpectedReturn,
				p.ManagementFee, p.FrontLoadFee, perContribution, years, p.Product.Children, p.Product.EmployerSubsidyRate},
			Expected: gross,
		})

		monthly := gross.Div(decimal.NewFromInt(10000)).Mul(domain.DefaultAnnuityFactor).Round(2)
		out = append(out, Fixture{
			Name:     "monthly pension " + p.Name,
			Function: "monthlyPension",
			Args:     []any{gross, domain.DefaultAnnuityFactor, 0},
			Expected: monthly,
		})
	}
	return out, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quote(s string) (string, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

// jsArgs renders fixture arguments as a JavaScript argument list
func jsArgs(args []any) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case decimal.Decimal:
			parts[i] = v.String()
		case int:
			parts[i] = strconv.Itoa(v)
		case int64:
			parts[i] = strconv.FormatInt(v, 10)
		case bool:
			parts[i] = strconv.FormatBool(v)
		case string:
			q, err := quote(v)
			if err != nil {
				return "", err
			}
			parts[i] = q
		default:
			return "", fmt.Errorf("unsupported fixture argument %T", a)
		}
	}
	return strings.Join(parts, ", "), nil
}
