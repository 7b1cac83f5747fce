/*
Package scenario provides named, ready-to-run simulation setups.

PURPOSE:
  Bundles a financing model choice, its economic parameters, and the
  simulation horizons into a single definition that can be listed,
  loaded from a YAML file, and run via the API. Ships a handful of
  built-in demo scenarios.

YAML FORMAT:
  scenarios:
    - id: bakery-conventional
      name: Bakery (conventional loan)
      model: conventional
      initial_capital: 100000
      current_capital: 0
      profit_margin: 0.05
      expenses:
        kind: linear
        base: 500
        slope: 2.5
      interest_rate: 0.05
      loan_period_years: 5
      initial_capital_reinvestment: 10000
      time_period: 120
      grace_period: 12

  Dynamic parameters accept either a plain number or a curve object
  (kind: linear|step) for time-varying values.

SEE ALSO:
  - curves.go: Curve builders behind the YAML curve objects
  - api/: Exposes scenarios over HTTP
*/
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warp/debt-engine/conventional"
	"github.com/warp/debt-engine/mudarabah"
	"github.com/warp/debt-engine/simulation"
)

// =============================================================================
// DEFINITION
// =============================================================================

// Definition is a complete, runnable simulation setup.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Model       string `yaml:"model"` // "conventional" or "mudarabah"

	InitialCapital float64 `yaml:"initial_capital"`
	CurrentCapital float64 `yaml:"current_capital"`

	ProfitMargin Value `yaml:"profit_margin"`
	Expenses     Value `yaml:"expenses"`
	Reinvestment Value `yaml:"initial_capital_reinvestment"`
	Dividend     Value `yaml:"dividend_payment"`

	// Conventional terms
	InterestRate    float64 `yaml:"interest_rate"`
	LoanPeriodYears int     `yaml:"loan_period_years"`

	// Mudarabah terms
	BankFee   float64 `yaml:"bank_fee"`
	BankShare float64 `yaml:"bank_share"`

	TimePeriod  int `yaml:"time_period"`
	GracePeriod int `yaml:"grace_period"`
}

// ConventionalConfig builds the conventional model configuration.
func (d Definition) ConventionalConfig() (conventional.Config, error) {
	params, err := d.params()
	if err != nil {
		return conventional.Config{}, err
	}
	return conventional.Config{
		InitialCapital:  dec(d.InitialCapital),
		CurrentCapital:  dec(d.CurrentCapital),
		ProfitMargin:    params.ProfitMargin,
		Expenses:        params.Expenses,
		Reinvestment:    params.Reinvestment,
		Dividend:        params.Dividend,
		InterestRate:    dec(d.InterestRate),
		LoanPeriodYears: d.LoanPeriodYears,
	}, nil
}

// MudarabahConfig builds the mudarabah model configuration.
func (d Definition) MudarabahConfig() (mudarabah.Config, error) {
	params, err := d.params()
	if err != nil {
		return mudarabah.Config{}, err
	}
	return mudarabah.Config{
		InitialCapital: dec(d.InitialCapital),
		CurrentCapital: dec(d.CurrentCapital),
		ProfitMargin:   params.ProfitMargin,
		Expenses:       params.Expenses,
		Reinvestment:   params.Reinvestment,
		Dividend:       params.Dividend,
		BankFee:        dec(d.BankFee),
		BankShare:      dec(d.BankShare),
	}, nil
}

func (d Definition) params() (simulation.ParamSet, error) {
	var (
		set simulation.ParamSet
		err error
	)
	if set.ProfitMargin, err = d.ProfitMargin.Param(simulation.ParamProfitMargin); err != nil {
		return simulation.ParamSet{}, err
	}
	if set.Expenses, err = d.Expenses.Param(simulation.ParamExpenses); err != nil {
		return simulation.ParamSet{}, err
	}
	if set.Reinvestment, err = d.Reinvestment.Param(simulation.ParamReinvestment); err != nil {
		return simulation.ParamSet{}, err
	}
	if !d.Dividend.set {
		set.Dividend = simulation.Constant(decZero)
		return set, nil
	}
	if set.Dividend, err = d.Dividend.Param(simulation.ParamDividend); err != nil {
		return simulation.ParamSet{}, err
	}
	return set, nil
}

// =============================================================================
// YAML FILE LOADING
// =============================================================================

type file struct {
	Scenarios []Definition `yaml:"scenarios"`
}

// Load reads scenario definitions from a YAML file.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	return Parse(data)
}

// Parse decodes scenario definitions from YAML bytes.
func Parse(data []byte) ([]Definition, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	for i, d := range f.Scenarios {
		if d.ID == "" {
			return nil, fmt.Errorf("scenario %d: missing id", i)
		}
		if d.Model != conventional.ModelName && d.Model != mudarabah.ModelName {
			return nil, fmt.Errorf("scenario %q: unknown model %q", d.ID, d.Model)
		}
	}
	return f.Scenarios, nil
}

// =============================================================================
// BUILT-IN SCENARIOS
// =============================================================================

// Builtins returns the demo scenarios shipped with the server.
func Builtins() []Definition {
	return []Definition{
		{
			ID:              "bakery-conventional",
			Name:            "Bakery (conventional loan)",
			Description:     "100k principal at 5% compounding over 5 years, repaid in fixed monthly installments",
			Model:           conventional.ModelName,
			InitialCapital:  100000,
			ProfitMargin:    Number(0.05),
			Expenses:        Number(500),
			InterestRate:    0.05,
			LoanPeriodYears: 5,
			Reinvestment:    Number(10000),
			TimePeriod:      120,
			GracePeriod:     12,
		},
		{
			ID:             "bakery-mudarabah",
			Name:           "Bakery (Mudarabah partnership)",
			Description:    "100k principal with a 5% markup, the bank taking 30% of realized net profit",
			Model:          mudarabah.ModelName,
			InitialCapital: 100000,
			ProfitMargin:   Number(0.2),
			Expenses:       Number(500),
			BankFee:        0.05,
			BankShare:      0.3,
			Reinvestment:   Number(10000),
			TimePeriod:     120,
			GracePeriod:    12,
		},
		{
			ID:              "loss-making",
			Name:            "Loss-making business",
			Description:     "Zero margin with running expenses; declared a loss at the grace boundary",
			Model:           conventional.ModelName,
			InitialCapital:  100000,
			ProfitMargin:    Number(0),
			Expenses:        Number(1000),
			InterestRate:    0.05,
			LoanPeriodYears: 5,
			Reinvestment:    Number(10000),
			TimePeriod:      120,
			GracePeriod:     12,
		},
		{
			ID:             "ramping-margins",
			Name:           "Ramping margins",
			Description:    "Mudarabah partnership where margins improve as the business matures",
			Model:          mudarabah.ModelName,
			InitialCapital: 100000,
			ProfitMargin:   LinearValue(0.02, 0.005),
			Expenses:       StepValue(800, 1200, 24),
			BankFee:        0.05,
			BankShare:      0.4,
			Reinvestment:   Number(8000),
			Dividend:       Number(0.1),
			TimePeriod:     240,
			GracePeriod:    18,
		},
	}
}

// Find returns the definition with the given id.
func Find(defs []Definition, id string) (Definition, bool) {
	for _, d := range defs {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}
