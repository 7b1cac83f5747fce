/*
outcome.go - Termination classification shared by both models

PURPOSE:
  Classifies the end-of-period state of a run into an explicit outcome.
  Both financing models evaluate the same conditions in the same
  priority order; they differ only in whether an unpaid loan has a
  repayment deadline.

PRIORITY ORDER (first match wins, every period):
  1. Success: loan fully repaid (within the deadline, if any) and the
     business is viable (positive net profit or positive equity)
  2. Loss:    at the grace-period boundary the business still shows
     negative net profit or negative equity
  3. Timeout: the repayment deadline has passed with debt outstanding

  Success is deliberately checked before loss, so a business that
  clears its loan exactly at the grace boundary succeeds.

DEADLINE-FREE MODELS:
  A profit-sharing loan has no amortization schedule, so there is no
  deadline to blow past. Absent success or loss the classifier returns
  a PROVISIONAL timeout each period; the caller keeps the latest one
  and finalizes it only when the simulation horizon is exhausted.
  There is no unclassified terminal state: exhausting the horizon
  without an explicit match is a timeout.
*/
package simulation

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// OUTCOME - Terminal status of a run
// =============================================================================

type Outcome int

const (
	// OutcomeUnresolved is the zero value: the run has not terminated.
	OutcomeUnresolved Outcome = iota
	// OutcomeSuccess: the loan was fully repaid by a viable business.
	OutcomeSuccess
	// OutcomeLoss: the business showed negative net profit or negative
	// equity at the grace-period boundary.
	OutcomeLoss
	// OutcomeTimeout: the run ended with debt outstanding, either past
	// the repayment deadline or by exhausting the simulation horizon.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeLoss:
		return "loss"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unresolved"
	}
}

// ParseOutcome is the inverse of Outcome.String. Unknown strings map
// to OutcomeUnresolved.
func ParseOutcome(s string) Outcome {
	switch s {
	case "success":
		return OutcomeSuccess
	case "loss":
		return OutcomeLoss
	case "timeout":
		return OutcomeTimeout
	default:
		return OutcomeUnresolved
	}
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// NoDeadline marks a model without a repayment deadline.
const NoDeadline = -1

// TerminationInputs capture the end-of-period state the classifier needs.
type TerminationInputs struct {
	T           int
	GracePeriod int

	BankLoan       decimal.Decimal
	NetProfit      decimal.Decimal
	CurrentCapital decimal.Decimal

	// RepaymentDeadline is the last period index by which the loan may
	// be repaid (loan_period in months for amortized loans). Use
	// NoDeadline for profit-sharing models.
	RepaymentDeadline int
}

// Classify returns the outcome for the period and whether it is final.
// A non-final outcome is provisional: the caller retains it and keeps
// stepping.
func Classify(in TerminationInputs) (Outcome, bool) {
	deadline := in.RepaymentDeadline >= 0

	switch {
	case in.BankLoan.IsZero() &&
		(!deadline || in.T <= in.RepaymentDeadline) &&
		(in.NetProfit.IsPositive() || in.CurrentCapital.IsPositive()):
		return OutcomeSuccess, true

	case in.T == in.GracePeriod &&
		(in.NetProfit.IsNegative() || in.CurrentCapital.IsNegative()):
		return OutcomeLoss, true

	case deadline && in.T > in.RepaymentDeadline:
		return OutcomeTimeout, true

	case !deadline:
		// No schedule to miss: provisional timeout until success or
		// loss fires, or the horizon runs out.
		return OutcomeTimeout, false
	}
	return OutcomeUnresolved, false
}

// =============================================================================
// RESULT - What Simulate returns
// =============================================================================

// Result is the terminal state of a run. Monetary values are rounded
// to 2 decimal places.
type Result struct {
	Outcome        Outcome
	T              int
	NetProfit      decimal.Decimal
	CurrentCapital decimal.Decimal
	BankLoan       decimal.Decimal

	// WithinGracePeriod reports whether termination happened at or
	// before the grace period. Auxiliary reporting info on every path.
	WithinGracePeriod bool
}
