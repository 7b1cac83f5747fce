/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the simulation domain from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Monetary values are serialized as decimal strings, never floats, so
  clients see exactly what the engine computed.

PARAMETERS:
  Dynamic parameters accept either a raw JSON number (constant) or a
  curve object, e.g. {"kind":"linear","base":500,"slope":2.5} or
  {"kind":"step","before":800,"after":1200,"at":24}, mirroring the
  scenario YAML format.

SEE ALSO:
  - handlers.go: Uses these types
  - scenario/curves.go: Curve semantics
*/
package api

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/debt-engine/scenario"
	"github.com/warp/debt-engine/simulation"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// =============================================================================
// PARAMETER SPEC - number-or-curve, as it appears in JSON
// =============================================================================

// ParamSpec is a dynamic parameter in a request body.
type ParamSpec struct {
	value scenario.Value
	set   bool
}

type curveJSON struct {
	Kind   string  `json:"kind"`
	Base   float64 `json:"base"`
	Slope  float64 `json:"slope"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	At     int     `json:"at"`
}

func (p *ParamSpec) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		p.value = scenario.Number(f)
		p.set = true
		return nil
	}
	var spec curveJSON
	if err := json.Unmarshal(b, &spec); err != nil {
		return fmt.Errorf("parameter: expected a number or a curve object")
	}
	switch spec.Kind {
	case scenario.KindLinear:
		p.value = scenario.LinearValue(spec.Base, spec.Slope)
	case scenario.KindStep:
		p.value = scenario.StepValue(spec.Before, spec.After, spec.At)
	case scenario.KindConstant:
		p.value = scenario.Number(spec.Base)
	default:
		return fmt.Errorf("parameter: unknown curve kind %q", spec.Kind)
	}
	p.set = true
	return nil
}

// Param builds the simulation parameter, or fails with an
// InvalidParameterTypeError naming the parameter.
func (p ParamSpec) Param(name string) (simulation.Param, error) {
	if !p.set {
		return simulation.Param{}, &simulation.InvalidParameterTypeError{Param: name, Value: nil}
	}
	return p.value.Param(name)
}

// IsSet reports whether the request supplied this parameter at all.
func (p ParamSpec) IsSet() bool { return p.set }

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SimulationRequest is the shared part of both model requests.
type SimulationRequest struct {
	InitialCapital float64   `json:"initial_capital"`
	CurrentCapital float64   `json:"current_capital"`
	ProfitMargin   ParamSpec `json:"profit_margin"`
	Expenses       ParamSpec `json:"expenses"`
	Reinvestment   ParamSpec `json:"initial_capital_reinvestment"`
	Dividend       ParamSpec `json:"dividend_payment"`

	TimePeriod  int  `json:"time_period"`
	GracePeriod int  `json:"grace_period"`
	Verbose     bool `json:"verbose"`
}

// ConventionalRequest runs the fixed-interest model.
type ConventionalRequest struct {
	SimulationRequest
	InterestRate    float64 `json:"interest_rate"`
	LoanPeriodYears int     `json:"loan_period_years"`
}

// MudarabahRequest runs the profit/loss-sharing model.
type MudarabahRequest struct {
	SimulationRequest
	BankFee   float64 `json:"bank_fee"`
	BankShare float64 `json:"bank_share"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResultDTO is the terminal state of a run.
type ResultDTO struct {
	Outcome           string `json:"outcome"`
	T                 int    `json:"t"`
	NetProfit         string `json:"net_profit"`
	CurrentCapital    string `json:"current_capital"`
	BankLoan          string `json:"bank_loan"`
	WithinGracePeriod bool   `json:"within_grace_period"`
}

// RecordDTO is one recorded simulation period.
type RecordDTO struct {
	T              int    `json:"t"`
	InitialCapital string `json:"initial_capital"`
	CurrentCapital string `json:"current_capital"`
	BankLoan       string `json:"bank_loan"`
	DebtPayment    string `json:"debt_payment"`
	NetProfit      string `json:"net_profit"`
}

// SimulationResponse is a completed run with its series.
type SimulationResponse struct {
	RunID  string      `json:"run_id,omitempty"`
	Model  string      `json:"model"`
	Result ResultDTO   `json:"result"`
	Series []RecordDTO `json:"series"`
}

// RunSummaryDTO is a recorded run without its series.
type RunSummaryDTO struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Result    ResultDTO `json:"result"`
	CreatedAt string    `json:"created_at"`
}

// ScenarioDTO describes a preset scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Model       string `json:"model"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func resultDTO(res simulation.Result) ResultDTO {
	return ResultDTO{
		Outcome:           res.Outcome.String(),
		T:                 res.T,
		NetProfit:         res.NetProfit.String(),
		CurrentCapital:    res.CurrentCapital.String(),
		BankLoan:          res.BankLoan.String(),
		WithinGracePeriod: res.WithinGracePeriod,
	}
}

func recordDTOs(records []simulation.Record) []RecordDTO {
	out := make([]RecordDTO, len(records))
	for i, r := range records {
		out[i] = RecordDTO{
			T:              r.T,
			InitialCapital: r.InitialCapital.String(),
			CurrentCapital: r.CurrentCapital.String(),
			BankLoan:       r.BankLoan.String(),
			DebtPayment:    r.DebtPayment.String(),
			NetProfit:      r.NetProfit.String(),
		}
	}
	return out
}
