/*
Package conventional models the effect of a fixed-interest bank loan on
a business.

PURPOSE:
  Implements the compounding-interest financing paradigm: the full
  amount owed is computed up front as principal*(1+rate)^years, and the
  business pays it back in fixed monthly installments (straight-line
  amortization) while operating period by period.

KEY BEHAVIORS:
  - The installment is computed ONCE at construction and never
    recalculated as the balance shrinks; only the final payment is
    adjusted downward when it would overshoot the remaining balance,
    and the overshoot is credited back into that period's profit.
  - The loan must be cleared within loan_period*12 months; a run that
    blows past that deadline times out.
  - A model instance is single-use: Simulate mutates capital and loan
    state in place, so a second call is rejected rather than silently
    continuing from mutated state.

SEE ALSO:
  - simulation/: Shared parameter resolution, classification, records
  - mudarabah/: The profit/loss-sharing sibling model
*/
package conventional

import (
	"github.com/shopspring/decimal"

	"github.com/warp/debt-engine/simulation"
)

// ModelName identifies this financing paradigm in runs and narration.
const ModelName = "conventional"

// Config carries the construction-time economic parameters.
type Config struct {
	// InitialCapital is the principal loaned to the business.
	InitialCapital decimal.Decimal
	// CurrentCapital is the equity the business starts with.
	CurrentCapital decimal.Decimal

	ProfitMargin simulation.Param
	Expenses     simulation.Param
	// Reinvestment is the amount drawn from InitialCapital into working
	// capital each period.
	Reinvestment simulation.Param
	// Dividend is the fraction of net profit paid out to the owner.
	// Optional; unset means 0.
	Dividend simulation.Param

	// InterestRate is the bank's compounding rate.
	InterestRate decimal.Decimal
	// LoanPeriodYears is the repayment horizon in years.
	LoanPeriodYears int

	// Observer receives per-period narration. Optional.
	Observer simulation.PeriodObserver
}

// Model is a single simulation run of a conventionally financed
// business. Construct with New; instances are not safe for concurrent
// use and Simulate may be called once.
type Model struct {
	initialCapital decimal.Decimal
	currentCapital decimal.Decimal
	bankLoan       decimal.Decimal
	businessLoan   decimal.Decimal

	params       simulation.ParamSet
	interestRate decimal.Decimal
	installment  decimal.Decimal // fixed monthly repayment
	deadline     int             // loan period in months

	observer    simulation.PeriodObserver
	series      simulation.Series
	outcome     simulation.Outcome
	totalRepaid decimal.Decimal
	consumed    bool
}

// New constructs the model and derives the loan terms:
// bank_loan = initial_capital*(1+rate)^years, repaid in
// loan_period*12 equal installments.
func New(cfg Config) (*Model, error) {
	if cfg.LoanPeriodYears <= 0 {
		return nil, &simulation.InvalidParameterTypeError{Param: "loan_period", Value: cfg.LoanPeriodYears}
	}
	if !cfg.Dividend.IsSet() {
		cfg.Dividend = simulation.Constant(decimal.Zero)
	}
	if cfg.Observer == nil {
		cfg.Observer = simulation.NopObserver{}
	}

	one := decimal.NewFromInt(1)
	bankLoan := cfg.InitialCapital.Mul(one.Add(cfg.InterestRate).Pow(decimal.NewFromInt(int64(cfg.LoanPeriodYears))))
	months := cfg.LoanPeriodYears * 12

	return &Model{
		initialCapital: cfg.InitialCapital,
		currentCapital: cfg.CurrentCapital,
		bankLoan:       bankLoan,
		businessLoan:   bankLoan.Neg(),
		params: simulation.ParamSet{
			ProfitMargin: cfg.ProfitMargin,
			Expenses:     cfg.Expenses,
			Reinvestment: cfg.Reinvestment,
			Dividend:     cfg.Dividend,
		},
		interestRate: cfg.InterestRate,
		installment:  bankLoan.Div(decimal.NewFromInt(int64(months))),
		deadline:     months,
		observer:     cfg.Observer,
	}, nil
}

// Simulate steps the business from t=0 to t=timePeriod inclusive, or
// until a terminal outcome fires. gracePeriod is the period index by
// which the business must show positive net profit or positive equity.
func (m *Model) Simulate(timePeriod, gracePeriod int) (simulation.Result, error) {
	if timePeriod < 0 || gracePeriod < 0 {
		return simulation.Result{}, simulation.ErrNegativeHorizon
	}
	if m.consumed {
		return simulation.Result{}, simulation.ErrSimulationConsumed
	}
	m.consumed = true

	m.observer.BeginRun(simulation.RunInfo{
		Model:       ModelName,
		BankCapital: m.initialCapital,
		BankLoan:    m.bankLoan,
		Rate:        m.interestRate,
	})

	var (
		lastT         int
		lastNetProfit decimal.Decimal
	)

	for t := 0; t <= timePeriod; t++ {
		// Resolve dynamic parameters before any state mutation.
		in, err := m.params.At(t)
		if err != nil {
			// The partial series recorded so far remains valid history.
			return simulation.Result{}, err
		}

		startInitial := m.initialCapital
		startCurrent := m.currentCapital

		// Draw from the remaining principal into working capital. When
		// the configured draw exceeds what is left, draw everything.
		var investment decimal.Decimal
		if m.initialCapital.Sub(in.Reinvestment).Sign() >= 0 {
			investment = in.Reinvestment.Add(m.currentCapital)
			m.initialCapital = m.initialCapital.Sub(in.Reinvestment)
		} else {
			investment = m.initialCapital.Add(m.currentCapital)
			m.initialCapital = decimal.Zero
		}

		profit := investment.Mul(in.ProfitMargin)

		// Fixed installment, clamped in the final payment period. Once
		// the loan reaches zero this branch is skipped for good.
		repayment := decimal.Zero
		if m.bankLoan.IsPositive() {
			if m.installment.LessThanOrEqual(m.bankLoan) {
				repayment = m.installment
				m.bankLoan = m.bankLoan.Sub(repayment)
			} else {
				overshoot := m.installment.Sub(m.bankLoan)
				repayment = m.bankLoan
				m.bankLoan = decimal.Zero
				// The business keeps what it didn't need to pay.
				profit = profit.Add(overshoot)
			}
			m.businessLoan = m.businessLoan.Add(repayment)
			m.totalRepaid = m.totalRepaid.Add(repayment)
		}

		netProfit := profit.Sub(repayment.Add(in.Expenses))

		retained := netProfit.Mul(decimal.NewFromInt(1).Sub(in.Dividend))
		m.currentCapital = m.currentCapital.Add(retained).Add(investment)

		m.series.Append(simulation.Record{
			T:              t,
			InitialCapital: startInitial,
			CurrentCapital: startCurrent,
			BankLoan:       m.bankLoan,
			DebtPayment:    repayment,
			NetProfit:      netProfit,
		})

		m.observer.ObservePeriod(simulation.PeriodReport{
			T:               t,
			StartingCapital: startInitial,
			CurrentCapital:  startCurrent,
			Investment:      investment,
			Profit:          profit,
			DebtPayment:     repayment,
			NetProfit:       netProfit,
			BankLoan:        m.bankLoan,
			EndingCapital:   m.currentCapital,
		})

		lastT, lastNetProfit = t, netProfit

		outcome, final := simulation.Classify(simulation.TerminationInputs{
			T:                 t,
			GracePeriod:       gracePeriod,
			BankLoan:          m.bankLoan,
			NetProfit:         netProfit,
			CurrentCapital:    m.currentCapital,
			RepaymentDeadline: m.deadline,
		})
		if final {
			m.outcome = outcome
			break
		}
	}

	// Exhausting the horizon with debt outstanding is a timeout, not an
	// unclassified state.
	if m.outcome == simulation.OutcomeUnresolved {
		m.outcome = simulation.OutcomeTimeout
	}

	res := simulation.Result{
		Outcome:           m.outcome,
		T:                 lastT,
		NetProfit:         lastNetProfit.Round(2),
		CurrentCapital:    m.currentCapital.Round(2),
		BankLoan:          m.bankLoan.Round(2),
		WithinGracePeriod: lastT <= gracePeriod,
	}
	m.observer.EndRun(res, m.totalRepaid)
	return res, nil
}

// Values returns the per-period record series for external reporting.
func (m *Model) Values() *simulation.Series { return &m.series }

// Outcome returns the terminal status, or OutcomeUnresolved before
// Simulate has finished.
func (m *Model) Outcome() simulation.Outcome { return m.outcome }

// BankLoan returns the outstanding balance owed to the lender.
func (m *Model) BankLoan() decimal.Decimal { return m.bankLoan }

// BusinessLoan returns the repayment ledger: it starts at -bank_loan
// and rises toward zero as installments are paid. Bookkeeping only.
func (m *Model) BusinessLoan() decimal.Decimal { return m.businessLoan }

// Installment returns the fixed monthly repayment derived at
// construction.
func (m *Model) Installment() decimal.Decimal { return m.installment }

// TotalRepaid returns the cumulative amount paid to the bank.
func (m *Model) TotalRepaid() decimal.Decimal { return m.totalRepaid }
