package formscript

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dop251/goja"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorsorge/rentenplan/internal/domain"
)

func TestGenerate_EmbedsRuleConstants(t *testing.T) {
	script, err := NewGenerator(domain.Rules2024()).Script()
	require.NoError(t, err)

	for _, want := range []string{
		"tax year 2024",
		"basicAllowance: 11604,",
		"zone2Constant: 1025.38,",
		"zone4Subtract: 18936.88",
		"allowanceMarried: 36936,",
		"childReliefPerChild: 9312,",
		"baseYieldFactor: 0.7",
		"halfIncomeMinAge: 62,",
		"ertragsanteil: [[0, 59], [2, 58]",
		"[97, 1]]",
		"riesterChild: 300,",
		"var RP_TOLERANCE = 0.01;",
	} {
		assert.Contains(t, script, want)
	}
}

func TestGenerate_DefinesFunctions(t *testing.T) {
	script, err := NewGenerator(domain.Rules2024()).Script()
	require.NoError(t, err)

	for _, fn := range []string{
		"incomeTax", "solidaritySurcharge", "churchTax", "totalIncomeTax", "vorabpauschale",
		"capitalGainsTax", "ertragsanteilPercent", "pensionTax", "lumpSumTax",
		"monthlyPension", "annualSubsidy", "accumulate", "selfTest",
	} {
		assert.Contains(t, script, "function "+fn+"(", "missing %s", fn)
	}
	assert.NotContains(t, script, "<no value>")
	assert.NotContains(t, script, "{{")
}

func TestGenerate_FollowsRules(t *testing.T) {
	rules := domain.Rules2024()
	rules.Year = 2025
	rules.IncomeTax.BasicAllowance = decimal.NewFromInt(12096)

	script, err := NewGenerator(rules).Script()
	require.NoError(t, err)
	assert.Contains(t, script, "year: 2025,")
	assert.Contains(t, script, "basicAllowance: 12096,")
	assert.NotContains(t, script, "basicAllowance: 11604,")
}

func TestFixtures(t *testing.T) {
	fixtures, err := NewGenerator(domain.Rules2024()).Fixtures()
	require.NoError(t, err)

	byName := make(map[string]Fixture, len(fixtures))
	for _, f := range fixtures {
		_, dup := byName[f.Name]
		assert.False(t, dup, "duplicate fixture %q", f.Name)
		byName[f.Name] = f
	}

	tests := []struct {
		name     string
		expected string
	}{
		{"income tax single 11604", "0"},
		{"income tax single 40000", "7495"},
		{"income tax married 120000", "29360"},
		{"solidarity surcharge 15000", "0"},
		{"church tax 9%", "900"},
		{"capital gains tax", "263.75"},
		{"ertragsanteil 62", "21"},
		{"ertragsanteil 67", "17"},
		{"pension tax fund", "0"},
		{"pension tax riester", "200"},
		{"pension tax insurance_pension", "34"},
		{"pension tax insurance_pension half income", "100"},
		{"pension tax sofortrente", "34"},
		{"lump sum age 67 held 30", "5000"},
		{"lump sum age 60 held 30", "10550"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := byName[tt.name]
			require.True(t, ok, "fixture %q missing", tt.name)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(f.Expected),
				"%s: expected %s, got %s", tt.name, tt.expected, f.Expected)
		})
	}
}

func TestFixtures_Accumulation(t *testing.T) {
	fixtures, err := NewGenerator(domain.Rules2024()).Fixtures()
	require.NoError(t, err)

	var accumulate, pensions int
	for _, f := range fixtures {
		switch f.Function {
		case "accumulate":
			accumulate++
			assert.True(t, f.Expected.GreaterThan(decimal.Zero), f.Name)
			assert.Len(t, f.Args, 10)
		case "monthlyPension":
			pensions++
		}
	}
	assert.Equal(t, 3, accumulate)
	assert.Equal(t, 3, pensions)
}

func TestGenerate_WritesFixtures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewGenerator(domain.Rules2024()).Generate(&buf))
	script := buf.String()

	assert.Contains(t, script, `{name: "income tax single 40000", fn: "incomeTax", args: [40000, false], expected: 7495}`)
	assert.Contains(t, script, `fn: "pensionTax", args: ["riester", 800, 650, 67, 67, false, 0.25], expected: 200}`)
	assert.Contains(t, script, `fn: "lumpSumTax", args: [120000, 80000, 67, 30, 0.25, 0], expected: 5000}`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(script), "}"))
}

func TestJSArgs(t *testing.T) {
	got, err := jsArgs([]any{"fund", decimal.RequireFromString("1.50"), 3, int64(4), true})
	require.NoError(t, err)
	assert.Equal(t, `"fund", 1.5, 3, 4, true`, got)

	_, err = jsArgs([]any{3.5})
	assert.Error(t, err)
}

type selfTestReport struct {
	Passed   int      `json:"passed"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures"`
}

// runSelfTest evaluates the script in a JavaScript runtime and returns selfTest()
func runSelfTest(t *testing.T, script string) selfTestReport {
	t.Helper()
	vm := goja.New()
	_, err := vm.RunString(script)
	require.NoError(t, err)

	out, err := vm.RunString("JSON.stringify(selfTest())")
	require.NoError(t, err)

	var report selfTestReport
	require.NoError(t, json.Unmarshal([]byte(out.String()), &report))
	return report
}

func TestSelfTest_ScriptMatchesGoCore(t *testing.T) {
	tests := []struct {
		name  string
		rules func() domain.TaxYearRules
	}{
		{"built-in year", domain.Rules2024},
		{"changed allowance", func() domain.TaxYearRules {
			r := domain.Rules2024()
			r.Year = 2025
			r.IncomeTax.BasicAllowance = decimal.NewFromInt(12096)
			return r
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.rules())
			script, err := g.Script()
			require.NoError(t, err)
			fixtures, err := g.Fixtures()
			require.NoError(t, err)

			report := runSelfTest(t, script)
			assert.Zero(t, report.Failed, strings.Join(report.Failures, "\n"))
			assert.Equal(t, len(fixtures), report.Passed)
		})
	}
}

func TestSelfTest_DetectsDrift(t *testing.T) {
	script, err := NewGenerator(domain.Rules2024()).Script()
	require.NoError(t, err)
	require.Contains(t, script, "basicAllowance: 11604,")

	drifted := strings.Replace(script, "basicAllowance: 11604,", "basicAllowance: 11000,", 1)
	report := runSelfTest(t, drifted)
	assert.Positive(t, report.Failed)
}
