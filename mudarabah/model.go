/*
Package mudarabah models the effect of a profit-and-loss-sharing
(Mudarabah) partnership loan on a business.

PURPOSE:
  Implements the partnership financing paradigm: the lender adds a
  simple markup to the principal (no compounding) and is repaid a
  fixed share of each period's realized net profit instead of fixed
  installments. There is no amortization schedule and therefore no
  repayment deadline.

KEY DIFFERENCES FROM THE CONVENTIONAL MODEL:
  1. bank_loan = principal*(1+fee), markup applied once
  2. Expenses are deducted BEFORE the lender's share, so the bank
     shares in realized profit, not gross profit
  3. Repayment varies with profit; loss periods pay nothing, so the
     outstanding balance never grows
  4. Absent success or loss the run carries a provisional timeout that
     becomes final only when the horizon is exhausted

SEE ALSO:
  - simulation/: Shared parameter resolution, classification, records
  - conventional/: The fixed-interest sibling model
*/
package mudarabah

import (
	"github.com/shopspring/decimal"

	"github.com/warp/debt-engine/simulation"
)

// ModelName identifies this financing paradigm in runs and narration.
const ModelName = "mudarabah"

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

	// BankFee is the lender's one-time markup on the principal.
	BankFee decimal.Decimal
	// BankShare is the lender's fraction of realized net profit.
	BankShare decimal.Decimal

	// Observer receives per-period narration. Optional.
	Observer simulation.PeriodObserver
}

// Model is a single simulation run of a Mudarabah-financed business.
// Construct with New; instances are not safe for concurrent use and
// Simulate may be called once.
type Model struct {
	initialCapital decimal.Decimal
	currentCapital decimal.Decimal
	bankLoan       decimal.Decimal
	businessLoan   decimal.Decimal

	params        simulation.ParamSet
	bankFee       decimal.Decimal
	bankShare     decimal.Decimal
	businessShare decimal.Decimal

	observer    simulation.PeriodObserver
	series      simulation.Series
	outcome     simulation.Outcome
	totalRepaid decimal.Decimal
	consumed    bool
}

// New constructs the model and derives the loan terms:
// bank_loan = initial_capital*(1+fee), business_loan = -initial_capital.
func New(cfg Config) (*Model, error) {
	if !cfg.Dividend.IsSet() {
		cfg.Dividend = simulation.Constant(decimal.Zero)
	}
	if cfg.Observer == nil {
		cfg.Observer = simulation.NopObserver{}
	}

	one := decimal.NewFromInt(1)
	return &Model{
		initialCapital: cfg.InitialCapital,
		currentCapital: cfg.CurrentCapital,
		bankLoan:       cfg.InitialCapital.Mul(one.Add(cfg.BankFee)),
		businessLoan:   cfg.InitialCapital.Neg(),
		params: simulation.ParamSet{
			ProfitMargin: cfg.ProfitMargin,
			Expenses:     cfg.Expenses,
			Reinvestment: cfg.Reinvestment,
			Dividend:     cfg.Dividend,
		},
		bankFee:       cfg.BankFee,
		bankShare:     cfg.BankShare,
		businessShare: one.Sub(cfg.BankShare),
		observer:      cfg.Observer,
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
		Rate:        m.bankFee,
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

		// Expenses come out before the lender's share: the bank shares
		// realized profit, not gross profit.
		netProfit := profit.Sub(in.Expenses)

		// Profit-sharing repayment: a share of positive net profit,
		// clamped against the remaining balance. Loss periods pay
		// nothing, which keeps the balance non-increasing.
		repayment := decimal.Zero
		if m.bankLoan.IsPositive() && netProfit.IsPositive() {
			repayment = netProfit.Mul(m.bankShare)
			netProfit = netProfit.Sub(repayment)
			if repayment.LessThanOrEqual(m.bankLoan) {
				m.bankLoan = m.bankLoan.Sub(repayment)
			} else {
				overshoot := repayment.Sub(m.bankLoan)
				repayment = m.bankLoan
				m.bankLoan = decimal.Zero
				// The business keeps what it didn't need to pay.
				netProfit = netProfit.Add(overshoot)
			}
			m.businessLoan = m.businessLoan.Add(repayment)
			m.totalRepaid = m.totalRepaid.Add(repayment)
		}

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

		// No repayment deadline: the outcome stays a provisional
		// timeout until success or loss fires, or the horizon runs out.
		outcome, final := simulation.Classify(simulation.TerminationInputs{
			T:                 t,
			GracePeriod:       gracePeriod,
			BankLoan:          m.bankLoan,
			NetProfit:         netProfit,
			CurrentCapital:    m.currentCapital,
			RepaymentDeadline: simulation.NoDeadline,
		})
		m.outcome = outcome
		if final {
			break
		}
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

// BusinessLoan returns the repayment ledger: it starts at
// -initial_capital and rises as profit shares are paid. Bookkeeping
// only, never consulted by termination logic.
func (m *Model) BusinessLoan() decimal.Decimal { return m.businessLoan }

// BusinessShare returns the borrower's retained fraction of net profit.
func (m *Model) BusinessShare() decimal.Decimal { return m.businessShare }

// TotalRepaid returns the cumulative amount paid to the bank.
func (m *Model) TotalRepaid() decimal.Decimal { return m.totalRepaid }
