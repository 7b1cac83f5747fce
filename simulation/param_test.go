/*
param_test.go - Specification tests for dynamic parameter resolution

PURPOSE:
  These tests document the parameter contract:
  1. Constants and functions of t are the only accepted kinds
  2. A function is invoked exactly once per parameter per period
  3. A constant and a function returning that constant resolve
     identically
  4. The dividend must resolve into [0, 1], checked for both kinds
*/
package simulation_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/debt-engine/simulation"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func constantSet() simulation.ParamSet {
	return simulation.ParamSet{
		ProfitMargin: simulation.ConstantFloat(0.05),
		Expenses:     simulation.ConstantFloat(500),
		Reinvestment: simulation.ConstantFloat(10000),
		Dividend:     simulation.ConstantFloat(0),
	}
}

// =============================================================================
// ACCEPTED KINDS
// =============================================================================

func TestParamFrom_AcceptsNumbersAndFunctions(t *testing.T) {
	cases := []struct {
		name  string
		value any
		at    int
		want  decimal.Decimal
	}{
		{"float64", 0.05, 0, d(0.05)},
		{"int", 500, 7, d(500)},
		{"decimal", d(1.25), 3, d(1.25)},
		{"func decimal", func(t int) decimal.Decimal { return decimal.NewFromInt(int64(t * 2)) }, 4, d(8)},
		{"func float64", func(t int) float64 { return float64(t) + 0.5 }, 3, d(3.5)},
	}

	for _, tc := range cases {
		p, err := simulation.ParamFrom("profit_margin", tc.value)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		set := constantSet()
		set.ProfitMargin = p
		in, err := set.At(tc.at)
		if err != nil {
			t.Fatalf("%s: resolve: %v", tc.name, err)
		}
		if !in.ProfitMargin.Equal(tc.want) {
			t.Errorf("%s: resolved %s, want %s", tc.name, in.ProfitMargin, tc.want)
		}
	}
}

func TestParamFrom_RejectsOtherKinds(t *testing.T) {
	for _, v := range []any{"0.05", true, []float64{1}, nil, func(a, b int) float64 { return 0 }} {
		_, err := simulation.ParamFrom("expenses", v)
		if err == nil {
			t.Fatalf("expected error for %T", v)
		}
		if !errors.Is(err, simulation.ErrInvalidParameterType) {
			t.Errorf("error for %T should wrap ErrInvalidParameterType, got %v", v, err)
		}
		var typeErr *simulation.InvalidParameterTypeError
		if !errors.As(err, &typeErr) {
			t.Fatalf("error for %T should be InvalidParameterTypeError", v)
		}
		if typeErr.Param != "expenses" {
			t.Errorf("error should name the parameter, got %q", typeErr.Param)
		}
	}
}

func TestParamSet_At_UnsetParameterFails(t *testing.T) {
	set := constantSet()
	set.Reinvestment = simulation.Param{} // zero value, never constructed

	_, err := set.At(0)
	if !errors.Is(err, simulation.ErrInvalidParameterType) {
		t.Fatalf("expected ErrInvalidParameterType, got %v", err)
	}
	var typeErr *simulation.InvalidParameterTypeError
	if errors.As(err, &typeErr) && typeErr.Param != simulation.ParamReinvestment {
		t.Errorf("error should name %q, got %q", simulation.ParamReinvestment, typeErr.Param)
	}
}

// =============================================================================
// RESOLUTION SEMANTICS
// =============================================================================

func TestParamSet_At_ConstantAndFunctionResolveIdentically(t *testing.T) {
	// A constant p and the function func(t) { return p } must produce
	// the same value at every period.
	constants := constantSet()
	functions := simulation.ParamSet{
		ProfitMargin: simulation.Vary(func(int) decimal.Decimal { return d(0.05) }),
		Expenses:     simulation.Vary(func(int) decimal.Decimal { return d(500) }),
		Reinvestment: simulation.Vary(func(int) decimal.Decimal { return d(10000) }),
		Dividend:     simulation.Vary(func(int) decimal.Decimal { return d(0) }),
	}

	for at := 0; at <= 24; at++ {
		a, err := constants.At(at)
		if err != nil {
			t.Fatalf("constants at t=%d: %v", at, err)
		}
		b, err := functions.At(at)
		if err != nil {
			t.Fatalf("functions at t=%d: %v", at, err)
		}
		if !a.ProfitMargin.Equal(b.ProfitMargin) || !a.Expenses.Equal(b.Expenses) ||
			!a.Reinvestment.Equal(b.Reinvestment) || !a.Dividend.Equal(b.Dividend) {
			t.Fatalf("t=%d: constant and function resolution differ: %+v vs %+v", at, a, b)
		}
	}
}

func TestParamSet_At_InvokesFunctionOncePerPeriod(t *testing.T) {
	calls := 0
	set := constantSet()
	set.Expenses = simulation.Vary(func(int) decimal.Decimal {
		calls++
		return d(500)
	})

	for at := 0; at < 5; at++ {
		if _, err := set.At(at); err != nil {
			t.Fatalf("resolve at t=%d: %v", at, err)
		}
	}
	if calls != 5 {
		t.Errorf("expected exactly one invocation per period (5 total), got %d", calls)
	}
}

// =============================================================================
// DIVIDEND RANGE
// =============================================================================

func TestParamSet_At_DividendMustBeWithinUnitInterval(t *testing.T) {
	set := constantSet()
	set.Dividend = simulation.ConstantFloat(1.5)

	_, err := set.At(0)
	if !errors.Is(err, simulation.ErrInvalidParameterRange) {
		t.Fatalf("expected ErrInvalidParameterRange, got %v", err)
	}
	var rangeErr *simulation.InvalidParameterRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected InvalidParameterRangeError, got %v", err)
	}
	if rangeErr.Param != simulation.ParamDividend {
		t.Errorf("error should name %q, got %q", simulation.ParamDividend, rangeErr.Param)
	}
	if !rangeErr.Value.Equal(d(1.5)) {
		t.Errorf("error should carry the offending value, got %s", rangeErr.Value)
	}
}

func TestParamSet_At_DividendRangeCheckedForFunctions(t *testing.T) {
	// The range check applies after resolution, so a function that
	// strays out of [0, 1] at a later period fails at that period.
	set := constantSet()
	set.Dividend = simulation.Vary(func(at int) decimal.Decimal {
		if at >= 3 {
			return d(-0.1)
		}
		return d(0.2)
	})

	for at := 0; at < 3; at++ {
		if _, err := set.At(at); err != nil {
			t.Fatalf("t=%d should resolve, got %v", at, err)
		}
	}
	_, err := set.At(3)
	var rangeErr *simulation.InvalidParameterRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected InvalidParameterRangeError at t=3, got %v", err)
	}
	if rangeErr.T != 3 {
		t.Errorf("error should carry the period, got t=%d", rangeErr.T)
	}
}

func TestParamSet_At_DividendBoundariesAreInclusive(t *testing.T) {
	for _, v := range []float64{0, 1} {
		set := constantSet()
		set.Dividend = simulation.ConstantFloat(v)
		if _, err := set.At(0); err != nil {
			t.Errorf("dividend %v should be allowed, got %v", v, err)
		}
	}
}
