package conventional

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/debt-engine/simulation"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// bakeryConfig is the canonical demo business: 100k principal at 5%
// compounding over 5 years, 5% margin, 500/month expenses, drawing 10k
// of principal into working capital each month.
func bakeryConfig() Config {
	return Config{
		InitialCapital:  d(100000),
		CurrentCapital:  d(0),
		ProfitMargin:    simulation.ConstantFloat(0.05),
		Expenses:        simulation.ConstantFloat(500),
		Reinvestment:    simulation.ConstantFloat(10000),
		InterestRate:    d(0.05),
		LoanPeriodYears: 5,
	}
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_DerivesLoanTerms(t *testing.T) {
	m, err := New(bakeryConfig())
	require.NoError(t, err)

	// 100000 * 1.05^5 = 127628.15625, repaid over 60 months
	assert.Equal(t, "127628.16", m.BankLoan().Round(2).String())
	assert.Equal(t, "2127.14", m.Installment().Round(2).String())
	assert.True(t, m.BusinessLoan().Equal(m.BankLoan().Neg()),
		"repayment ledger starts at -bank_loan")
	assert.Equal(t, simulation.OutcomeUnresolved, m.Outcome())
}

func TestNew_RejectsNonPositiveLoanPeriod(t *testing.T) {
	for _, years := range []int{0, -3} {
		cfg := bakeryConfig()
		cfg.LoanPeriodYears = years
		_, err := New(cfg)
		assert.True(t, simulation.IsInputError(err), "loan period %d should be rejected", years)
	}
}

// =============================================================================
// TERMINATION
// =============================================================================

func TestSimulate_BakeryRepaysWithinSchedule(t *testing.T) {
	m, err := New(bakeryConfig())
	require.NoError(t, err)

	res, err := m.Simulate(120, 12)
	require.NoError(t, err)

	assert.Equal(t, simulation.OutcomeSuccess, res.Outcome)
	assert.Equal(t, 59, res.T, "60 equal installments clear the loan at t=59")
	assert.True(t, res.BankLoan.IsZero())
	assert.True(t, res.CurrentCapital.IsPositive())
	assert.False(t, res.WithinGracePeriod)

	// The ledger closes: everything owed was paid.
	assert.True(t, m.BusinessLoan().IsZero())
	assert.Equal(t, "127628.16", m.TotalRepaid().Round(2).String())
}

func TestSimulate_LossDeclaredAtGraceBoundary(t *testing.T) {
	cfg := bakeryConfig()
	cfg.ProfitMargin = simulation.ConstantFloat(0)
	cfg.Expenses = simulation.ConstantFloat(1000)

	m, err := New(cfg)
	require.NoError(t, err)

	res, err := m.Simulate(120, 12)
	require.NoError(t, err)

	assert.Equal(t, simulation.OutcomeLoss, res.Outcome)
	assert.Equal(t, 12, res.T, "loss fires exactly at the grace boundary, not before")
	assert.True(t, res.NetProfit.IsNegative())
	assert.True(t, res.WithinGracePeriod)
	assert.True(t, res.BankLoan.IsPositive(), "debt remains outstanding on a loss")
}

func TestSimulate_TimeoutPastRepaymentDeadline(t *testing.T) {
	// A deeply insolvent business that still services the installments
	// clears the loan on schedule but is never viable, so the run
	// crosses the deadline and times out.
	cfg := bakeryConfig()
	cfg.CurrentCapital = d(-10000000)
	cfg.ProfitMargin = simulation.ConstantFloat(0)
	cfg.Expenses = simulation.ConstantFloat(0)
	cfg.Reinvestment = simulation.ConstantFloat(0)

	m, err := New(cfg)
	require.NoError(t, err)

	res, err := m.Simulate(200, 1000)
	require.NoError(t, err)

	assert.Equal(t, simulation.OutcomeTimeout, res.Outcome)
	assert.Equal(t, 61, res.T, "timeout fires at the first period past loan_period*12")
}

func TestSimulate_ExhaustedHorizonIsTimeout(t *testing.T) {
	m, err := New(bakeryConfig())
	require.NoError(t, err)

	// Horizon far too short to repay anything meaningful.
	res, err := m.Simulate(3, 100)
	require.NoError(t, err)

	assert.Equal(t, simulation.OutcomeTimeout, res.Outcome)
	assert.Equal(t, 3, res.T)
	assert.True(t, res.BankLoan.IsPositive())
}

// =============================================================================
// REPAYMENT SCHEDULE
// =============================================================================

func TestSimulate_BankLoanNeverIncreasesOrGoesNegative(t *testing.T) {
	m, err := New(bakeryConfig())
	require.NoError(t, err)

	_, err = m.Simulate(120, 12)
	require.NoError(t, err)

	loans := m.Values().BankLoans()
	require.NotEmpty(t, loans)
	for i, loan := range loans {
		assert.False(t, loan.IsNegative(), "bank_loan negative at t=%d", i)
		if i > 0 {
			assert.True(t, loan.LessThanOrEqual(loans[i-1]),
				"bank_loan increased at t=%d", i)
		}
	}
}

func TestSimulate_FinalInstallmentClamped(t *testing.T) {
	// At 0% interest over 1 year the installment is 1000/12, which does
	// not divide evenly: the 13th period pays only the residual balance.
	cfg := Config{
		InitialCapital:  d(1000),
		CurrentCapital:  d(1000),
		ProfitMargin:    simulation.ConstantFloat(0.5),
		Expenses:        simulation.ConstantFloat(0),
		Reinvestment:    simulation.ConstantFloat(100),
		InterestRate:    d(0),
		LoanPeriodYears: 1,
	}
	m, err := New(cfg)
	require.NoError(t, err)

	res, err := m.Simulate(120, 0)
	require.NoError(t, err)
	require.Equal(t, simulation.OutcomeSuccess, res.Outcome)

	payments := m.Values().DebtPayments()
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p)
	}
	assert.True(t, total.Equal(d(1000)), "payments must sum to exactly the loan, got %s", total)
	assert.True(t, m.BankLoan().IsZero(), "balance must reach exactly zero, got %s", m.BankLoan())

	last := payments[len(payments)-1]
	assert.True(t, last.LessThan(m.Installment()),
		"final payment %s should be clamped below the installment %s", last, m.Installment())
}

// =============================================================================
// PARAMETERS
// =============================================================================

func TestSimulate_ConstantAndFunctionParametersMatch(t *testing.T) {
	constant, err := New(bakeryConfig())
	require.NoError(t, err)

	cfg := bakeryConfig()
	cfg.ProfitMargin = simulation.Vary(func(int) decimal.Decimal { return d(0.05) })
	cfg.Expenses = simulation.Vary(func(int) decimal.Decimal { return d(500) })
	cfg.Reinvestment = simulation.Vary(func(int) decimal.Decimal { return d(10000) })
	varying, err := New(cfg)
	require.NoError(t, err)

	resA, err := constant.Simulate(120, 12)
	require.NoError(t, err)
	resB, err := varying.Simulate(120, 12)
	require.NoError(t, err)

	assert.Equal(t, resA.Outcome, resB.Outcome)
	assert.Equal(t, resA.T, resB.T)

	a, b := constant.Values().Records(), varying.Values().Records()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, a[i].CurrentCapital.Equal(b[i].CurrentCapital), "current_capital differs at t=%d", i)
		assert.True(t, a[i].BankLoan.Equal(b[i].BankLoan), "bank_loan differs at t=%d", i)
		assert.True(t, a[i].NetProfit.Equal(b[i].NetProfit), "net_profit differs at t=%d", i)
	}
}

func TestSimulate_UnsetDividendEqualsZeroDividend(t *testing.T) {
	unset, err := New(bakeryConfig())
	require.NoError(t, err)

	cfg := bakeryConfig()
	cfg.Dividend = simulation.ConstantFloat(0)
	zero, err := New(cfg)
	require.NoError(t, err)

	resA, err := unset.Simulate(120, 12)
	require.NoError(t, err)
	resB, err := zero.Simulate(120, 12)
	require.NoError(t, err)

	assert.Equal(t, resA, resB)
}

func TestSimulate_DividendOutOfRangeFailsBeforeAnyMutation(t *testing.T) {
	cfg := bakeryConfig()
	cfg.Dividend = simulation.ConstantFloat(1.5)
	m, err := New(cfg)
	require.NoError(t, err)

	_, err = m.Simulate(120, 12)
	require.Error(t, err)
	assert.True(t, errors.Is(err, simulation.ErrInvalidParameterRange))

	// The failing period left no trace.
	assert.Equal(t, 0, m.Values().Len())
	assert.Equal(t, "127628.16", m.BankLoan().Round(2).String())
	assert.True(t, m.TotalRepaid().IsZero())
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestSimulate_SecondCallRejected(t *testing.T) {
	m, err := New(bakeryConfig())
	require.NoError(t, err)

	_, err = m.Simulate(120, 12)
	require.NoError(t, err)

	_, err = m.Simulate(120, 12)
	assert.ErrorIs(t, err, simulation.ErrSimulationConsumed)
}

func TestSimulate_NegativeHorizonRejected(t *testing.T) {
	m, err := New(bakeryConfig())
	require.NoError(t, err)

	_, err = m.Simulate(-1, 12)
	assert.ErrorIs(t, err, simulation.ErrNegativeHorizon)

	// The rejection did not consume the instance.
	_, err = m.Simulate(120, 12)
	assert.NoError(t, err)
}
