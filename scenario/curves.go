/*
curves.go - Declarative time-varying parameter values

PURPOSE:
  Dynamic parameters are functions of the period index, which cannot
  travel through YAML or JSON. A Value is the declarative stand-in: a
  plain number, or a small curve description (linear ramp, step) that
  builds the function on this side of the wire.
*/
package scenario

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/debt-engine/simulation"
)

var decZero = decimal.Zero

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// =============================================================================
// CURVE BUILDERS
// =============================================================================

// Linear returns a parameter that resolves to base + slope*t.
func Linear(base, slope float64) simulation.Param {
	b, s := dec(base), dec(slope)
	return simulation.Vary(func(t int) decimal.Decimal {
		return b.Add(s.Mul(decimal.NewFromInt(int64(t))))
	})
}

// Step returns a parameter that resolves to before while t < at, and
// after from t = at onward.
func Step(before, after float64, at int) simulation.Param {
	b, a := dec(before), dec(after)
	return simulation.Vary(func(t int) decimal.Decimal {
		if t < at {
			return b
		}
		return a
	})
}

// =============================================================================
// VALUE - number-or-curve, as it appears in YAML
// =============================================================================

// Curve kinds accepted in scenario files and API requests.
const (
	KindConstant = "constant"
	KindLinear   = "linear"
	KindStep     = "step"
)

// Value is a dynamic parameter as written in a scenario file: either a
// plain scalar or a curve mapping.
type Value struct {
	set      bool
	kind     string
	constant float64

	// linear
	base, slope float64

	// step
	before, after float64
	at            int
}

// Number returns a constant Value.
func Number(v float64) Value {
	return Value{set: true, kind: KindConstant, constant: v}
}

// LinearValue returns a linear-ramp Value (base + slope*t).
func LinearValue(base, slope float64) Value {
	return Value{set: true, kind: KindLinear, base: base, slope: slope}
}

// StepValue returns a step Value (before until t=at, then after).
func StepValue(before, after float64, at int) Value {
	return Value{set: true, kind: KindStep, before: before, after: after, at: at}
}

// Param builds the simulation parameter this Value describes. The name
// is only used in errors.
func (v Value) Param(name string) (simulation.Param, error) {
	switch {
	case !v.set:
		return simulation.Param{}, &simulation.InvalidParameterTypeError{Param: name, Value: nil}
	case v.kind == KindConstant:
		return simulation.ConstantFloat(v.constant), nil
	case v.kind == KindLinear:
		return Linear(v.base, v.slope), nil
	case v.kind == KindStep:
		return Step(v.before, v.after, v.at), nil
	}
	return simulation.Param{}, &simulation.InvalidParameterTypeError{Param: name, Value: v.kind}
}

// curveSpec mirrors the YAML mapping form of a Value.
type curveSpec struct {
	Kind   string  `yaml:"kind"`
	Base   float64 `yaml:"base"`
	Slope  float64 `yaml:"slope"`
	Before float64 `yaml:"before"`
	After  float64 `yaml:"after"`
	At     int     `yaml:"at"`
}

// UnmarshalYAML accepts either a scalar number or a curve mapping.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("parameter value: %w", err)
		}
		*v = Number(f)
		return nil
	case yaml.MappingNode:
		var spec curveSpec
		if err := node.Decode(&spec); err != nil {
			return fmt.Errorf("parameter curve: %w", err)
		}
		switch spec.Kind {
		case KindLinear:
			*v = LinearValue(spec.Base, spec.Slope)
		case KindStep:
			*v = StepValue(spec.Before, spec.After, spec.At)
		case KindConstant:
			*v = Number(spec.Base)
		default:
			return fmt.Errorf("parameter curve: unknown kind %q", spec.Kind)
		}
		return nil
	default:
		return fmt.Errorf("parameter value: expected a number or a curve mapping")
	}
}
