/*
observer.go - Injectable narration sink

PURPOSE:
  Keeps human-readable narration out of the simulation core. Models
  report each period to a PeriodObserver; a verbose run plugs in the
  log-backed observer, everything else gets the no-op. Observers have
  no effect on computed results.
*/
package simulation

import (
	"log"

	"github.com/shopspring/decimal"
)

// RunInfo describes a run at the moment it starts.
type RunInfo struct {
	Model       string // "conventional" or "mudarabah"
	BankCapital decimal.Decimal
	BankLoan    decimal.Decimal
	Rate        decimal.Decimal // interest rate or bank fee
}

// PeriodReport is the narration payload for one period.
type PeriodReport struct {
	T               int
	StartingCapital decimal.Decimal // initial_capital entering the period
	CurrentCapital  decimal.Decimal // equity entering the period
	Investment      decimal.Decimal
	Profit          decimal.Decimal
	DebtPayment     decimal.Decimal
	NetProfit       decimal.Decimal
	BankLoan        decimal.Decimal // outstanding after payment
	EndingCapital   decimal.Decimal // equity after the period
}

// PeriodObserver receives narration events from a running simulation.
type PeriodObserver interface {
	BeginRun(info RunInfo)
	ObservePeriod(rep PeriodReport)
	EndRun(res Result, totalRepaid decimal.Decimal)
}

// =============================================================================
// IMPLEMENTATIONS
// =============================================================================

// NopObserver discards everything. Used when verbose narration is off.
type NopObserver struct{}

func (NopObserver) BeginRun(RunInfo)               {}
func (NopObserver) ObservePeriod(PeriodReport)     {}
func (NopObserver) EndRun(Result, decimal.Decimal) {}

// LogObserver narrates every period to a standard logger.
type LogObserver struct {
	Logger *log.Logger
}

func NewLogObserver(logger *log.Logger) *LogObserver {
	if logger == nil {
		logger = log.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) BeginRun(info RunInfo) {
	o.Logger.Printf("%s simulation: bank capital %s, bank loan (@%s) %s",
		info.Model, info.BankCapital.StringFixed(2), info.Rate, info.BankLoan.StringFixed(2))
}

func (o *LogObserver) ObservePeriod(rep PeriodReport) {
	o.Logger.Printf("t=%d starting capital %s, current capital %s", rep.T,
		rep.StartingCapital.StringFixed(2), rep.CurrentCapital.StringFixed(2))
	o.Logger.Printf("t=%d invested %s, profit %s, paid to bank %s, net profit %s", rep.T,
		rep.Investment.StringFixed(2), rep.Profit.StringFixed(2),
		rep.DebtPayment.StringFixed(2), rep.NetProfit.StringFixed(2))
	o.Logger.Printf("t=%d loan remaining %s, reinvested %s", rep.T,
		rep.BankLoan.StringFixed(2), rep.EndingCapital.StringFixed(2))
}

func (o *LogObserver) EndRun(res Result, totalRepaid decimal.Decimal) {
	o.Logger.Printf("end of simulation: %s at t=%d (%s grace period), loan remaining %s, loan paid %s, net profit %s, current capital %s",
		res.Outcome, res.T, within(res.WithinGracePeriod),
		res.BankLoan.StringFixed(2), totalRepaid.StringFixed(2),
		res.NetProfit.StringFixed(2), res.CurrentCapital.StringFixed(2))
}

func within(b bool) string {
	if b {
		return "within"
	}
	return "after"
}
