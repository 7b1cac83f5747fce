package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/debt-engine/conventional"
	"github.com/warp/debt-engine/mudarabah"
	"github.com/warp/debt-engine/simulation"
)

// resolve builds a ParamSet around a single value under test and
// resolves it at period t.
func resolve(t *testing.T, v Value, at int) simulation.PeriodInputs {
	t.Helper()
	p, err := v.Param(simulation.ParamExpenses)
	require.NoError(t, err)

	set := simulation.ParamSet{
		ProfitMargin: simulation.ConstantFloat(0),
		Expenses:     p,
		Reinvestment: simulation.ConstantFloat(0),
		Dividend:     simulation.ConstantFloat(0),
	}
	in, err := set.At(at)
	require.NoError(t, err)
	return in
}

// =============================================================================
// CURVES
// =============================================================================

func TestLinearValue_RampsWithPeriod(t *testing.T) {
	v := LinearValue(500, 2.5)
	assert.True(t, resolve(t, v, 0).Expenses.Equal(dec(500)))
	assert.True(t, resolve(t, v, 4).Expenses.Equal(dec(510)))
	assert.True(t, resolve(t, v, 100).Expenses.Equal(dec(750)))
}

func TestStepValue_SwitchesAtThreshold(t *testing.T) {
	v := StepValue(800, 1200, 24)
	assert.True(t, resolve(t, v, 0).Expenses.Equal(dec(800)))
	assert.True(t, resolve(t, v, 23).Expenses.Equal(dec(800)))
	assert.True(t, resolve(t, v, 24).Expenses.Equal(dec(1200)))
	assert.True(t, resolve(t, v, 100).Expenses.Equal(dec(1200)))
}

func TestValue_UnsetFailsWithParameterName(t *testing.T) {
	var v Value
	_, err := v.Param("profit_margin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profit_margin")
}

// =============================================================================
// YAML PARSING
// =============================================================================

const scenarioYAML = `
scenarios:
  - id: corner-shop
    name: Corner shop
    model: conventional
    initial_capital: 50000
    profit_margin: 0.04
    expenses:
      kind: linear
      base: 500
      slope: 2.5
    initial_capital_reinvestment:
      kind: step
      before: 5000
      after: 0
      at: 10
    interest_rate: 0.06
    loan_period_years: 4
    time_period: 120
    grace_period: 12
`

func TestParse_ScalarAndCurveValues(t *testing.T) {
	defs, err := Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "corner-shop", def.ID)
	assert.Equal(t, conventional.ModelName, def.Model)
	assert.Equal(t, 120, def.TimePeriod)

	assert.True(t, resolve(t, def.ProfitMargin, 7).Expenses.Equal(dec(0.04)))
	assert.True(t, resolve(t, def.Expenses, 10).Expenses.Equal(dec(525)))
	assert.True(t, resolve(t, def.Reinvestment, 9).Expenses.Equal(dec(5000)))
	assert.True(t, resolve(t, def.Reinvestment, 10).Expenses.Equal(dec(0)))

	// The definition must build a runnable model.
	cfg, err := def.ConventionalConfig()
	require.NoError(t, err)
	_, err = conventional.New(cfg)
	assert.NoError(t, err)
}

func TestParse_UnknownModelRejected(t *testing.T) {
	_, err := Parse([]byte(`
scenarios:
  - id: bad
    model: leveraged-buyout
    profit_margin: 0.04
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leveraged-buyout")
}

func TestParse_MissingIDRejected(t *testing.T) {
	_, err := Parse([]byte(`
scenarios:
  - model: conventional
    profit_margin: 0.04
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestParse_UnknownCurveKindRejected(t *testing.T) {
	_, err := Parse([]byte(`
scenarios:
  - id: bad-curve
    model: conventional
    profit_margin:
      kind: sinusoid
      base: 0.04
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sinusoid")
}

// =============================================================================
// BUILT-INS
// =============================================================================

func TestBuiltins_AllRunnable(t *testing.T) {
	for _, def := range Builtins() {
		var (
			res simulation.Result
			err error
		)
		switch def.Model {
		case conventional.ModelName:
			cfg, cfgErr := def.ConventionalConfig()
			require.NoError(t, cfgErr, def.ID)
			m, newErr := conventional.New(cfg)
			require.NoError(t, newErr, def.ID)
			res, err = m.Simulate(def.TimePeriod, def.GracePeriod)
		case mudarabah.ModelName:
			cfg, cfgErr := def.MudarabahConfig()
			require.NoError(t, cfgErr, def.ID)
			m, newErr := mudarabah.New(cfg)
			require.NoError(t, newErr, def.ID)
			res, err = m.Simulate(def.TimePeriod, def.GracePeriod)
		default:
			t.Fatalf("%s: unknown model %q", def.ID, def.Model)
		}
		require.NoError(t, err, def.ID)
		assert.NotEqual(t, simulation.OutcomeUnresolved, res.Outcome, def.ID)
	}
}

func TestBuiltins_DemoOutcomes(t *testing.T) {
	defs := Builtins()

	def, ok := Find(defs, "bakery-conventional")
	require.True(t, ok)
	cfg, err := def.ConventionalConfig()
	require.NoError(t, err)
	m, err := conventional.New(cfg)
	require.NoError(t, err)
	res, err := m.Simulate(def.TimePeriod, def.GracePeriod)
	require.NoError(t, err)
	assert.Equal(t, simulation.OutcomeSuccess, res.Outcome)

	def, ok = Find(defs, "loss-making")
	require.True(t, ok)
	cfg, err = def.ConventionalConfig()
	require.NoError(t, err)
	m, err = conventional.New(cfg)
	require.NoError(t, err)
	res, err = m.Simulate(def.TimePeriod, def.GracePeriod)
	require.NoError(t, err)
	assert.Equal(t, simulation.OutcomeLoss, res.Outcome)
	assert.Equal(t, def.GracePeriod, res.T)
}

func TestFind_UnknownID(t *testing.T) {
	_, ok := Find(Builtins(), "no-such-scenario")
	assert.False(t, ok)
}
