/*
Package simulation provides the core debt-repayment simulation engine.

PURPOSE:
  This package contains the model-agnostic pieces shared by both
  financing models: dynamic parameter resolution, outcome
  classification, the per-period record series, the narration sink,
  and run persistence interfaces. The financing models themselves
  (conventional, mudarabah) live in their own packages and drive this
  engine period by period.

KEY CONCEPTS IN THIS FILE (param.go):
  - Param: A dynamic model input - either a constant or a pure
    function of the period index t
  - ParamSet: The four dynamic inputs every model resolves each period
  - PeriodInputs: The concrete values for one period

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Explicit variants: Constant vs. time-varying is a tagged type,
     not a runtime type test scattered through the loop
  3. Purity: Time-varying functions are queries of t only; the engine
     invokes each exactly once per period, in a fixed order, and never
     caches the result

USAGE:
  params := simulation.ParamSet{
      ProfitMargin: simulation.ConstantFloat(0.05),
      Expenses:     simulation.ConstantFloat(500),
      Reinvestment: simulation.Vary(func(t int) decimal.Decimal {
          return decimal.NewFromInt(int64(10000 - 100*t))
      }),
      Dividend:     simulation.ConstantFloat(0),
  }
  in, err := params.At(3) // values for period t=3

SEE ALSO:
  - outcome.go: Termination classification
  - record.go: Per-period record series
  - errors.go: Parameter error types
*/
package simulation

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PARAM - Constant or time-varying model input
// =============================================================================

type paramKind int

const (
	paramUnset paramKind = iota
	paramConstant
	paramVarying
)

// Param is a dynamic model input. The zero value is unset and fails
// resolution; construct with Constant, ConstantFloat, Vary, or ParamFrom.
type Param struct {
	kind     paramKind
	constant decimal.Decimal
	fn       func(t int) decimal.Decimal
}

// Constant returns a Param that resolves to v for every period.
func Constant(v decimal.Decimal) Param {
	return Param{kind: paramConstant, constant: v}
}

// ConstantFloat is a convenience wrapper around Constant.
func ConstantFloat(v float64) Param {
	return Constant(decimal.NewFromFloat(v))
}

// Vary returns a Param backed by a pure function of the period index.
// The function is invoked exactly once per period, in ascending t.
func Vary(fn func(t int) decimal.Decimal) Param {
	return Param{kind: paramVarying, fn: fn}
}

// IsSet reports whether the Param was constructed (vs. the zero value).
func (p Param) IsSet() bool { return p.kind != paramUnset }

// ParamFrom coerces an untyped value into a Param. Accepted kinds:
// float64, float32, int, int64, decimal.Decimal,
// func(int) decimal.Decimal, func(int) float64. Anything else fails
// with an InvalidParameterTypeError naming the parameter.
//
// This is the entry point for config and API surfaces where parameter
// values arrive untyped; Go callers should prefer the typed
// constructors above.
func ParamFrom(name string, v any) (Param, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return Constant(x), nil
	case float64:
		return ConstantFloat(x), nil
	case float32:
		return ConstantFloat(float64(x)), nil
	case int:
		return Constant(decimal.NewFromInt(int64(x))), nil
	case int64:
		return Constant(decimal.NewFromInt(x)), nil
	case func(int) decimal.Decimal:
		if x == nil {
			return Param{}, &InvalidParameterTypeError{Param: name, Value: v}
		}
		return Vary(x), nil
	case func(int) float64:
		if x == nil {
			return Param{}, &InvalidParameterTypeError{Param: name, Value: v}
		}
		return Vary(func(t int) decimal.Decimal {
			return decimal.NewFromFloat(x(t))
		}), nil
	default:
		return Param{}, &InvalidParameterTypeError{Param: name, Value: v}
	}
}

// resolve evaluates the parameter for period t. Time-varying values
// are never cached: the backing function is called once per period.
func resolve(name string, p Param, t int) (decimal.Decimal, error) {
	switch p.kind {
	case paramConstant:
		return p.constant, nil
	case paramVarying:
		return p.fn(t), nil
	default:
		return decimal.Zero, &InvalidParameterTypeError{Param: name, Value: nil}
	}
}

// =============================================================================
// PARAM SET - The four dynamic inputs shared by both models
// =============================================================================

// Canonical parameter names, used in errors and external surfaces.
const (
	ParamProfitMargin = "profit_margin"
	ParamExpenses     = "expenses"
	ParamReinvestment = "initial_capital_reinvestment"
	ParamDividend     = "dividend_payment"
)

// ParamSet bundles the four dynamic inputs of a model.
type ParamSet struct {
	ProfitMargin Param
	Expenses     Param
	Reinvestment Param
	Dividend     Param
}

// PeriodInputs are the resolved values for a single period.
type PeriodInputs struct {
	ProfitMargin decimal.Decimal
	Expenses     decimal.Decimal
	Reinvestment decimal.Decimal
	Dividend     decimal.Decimal
}

// At resolves every parameter for period t, each exactly once, in a
// fixed order. The resolved dividend must lie in [0, 1] inclusive;
// a violation fails with an InvalidParameterRangeError before the
// caller mutates any state for the period.
func (s ParamSet) At(t int) (PeriodInputs, error) {
	var in PeriodInputs
	var err error

	if in.Reinvestment, err = resolve(ParamReinvestment, s.Reinvestment, t); err != nil {
		return PeriodInputs{}, err
	}
	if in.ProfitMargin, err = resolve(ParamProfitMargin, s.ProfitMargin, t); err != nil {
		return PeriodInputs{}, err
	}
	if in.Expenses, err = resolve(ParamExpenses, s.Expenses, t); err != nil {
		return PeriodInputs{}, err
	}
	if in.Dividend, err = resolve(ParamDividend, s.Dividend, t); err != nil {
		return PeriodInputs{}, err
	}

	if in.Dividend.IsNegative() || in.Dividend.GreaterThan(decimal.NewFromInt(1)) {
		return PeriodInputs{}, &InvalidParameterRangeError{
			Param: ParamDividend,
			Value: in.Dividend,
			T:     t,
		}
	}
	return in, nil
}
