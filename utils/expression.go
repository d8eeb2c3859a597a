package utils

import (
	"fmt"

	goeval "github.com/edisonguo/govaluate"
)

// ParamExpression wraps a parsed arithmetic expression used as a rescale
// rule parameter. Expressions may only reference the variables accepted
// by ParseParamExpression so that a typo in a config file fails at load
// time rather than mid-run.
type ParamExpression struct {
	Text string
	expr *goeval.EvaluableExpression
}

func ParseParamExpression(text string, validVariables map[string]struct{}) (*ParamExpression, error) {
	expr, err := goeval.NewEvaluableExpression(text)
	if err != nil {
		return nil, fmt.Errorf("invalid parameter expression '%s': %v", text, err)
	}

	for _, token := range expr.Tokens() {
		if token.Kind == goeval.VARIABLE {
			varName, ok := token.Value.(string)
			if !ok {
				return nil, fmt.Errorf("variable token '%v' failed to cast string", token.Value)
			}
			if _, found := validVariables[varName]; !found {
				return nil, fmt.Errorf("variable %v is not supported. Valid variables are %v", varName, validVariables)
			}
		}
	}

	return &ParamExpression{Text: text, expr: expr}, nil
}

// Evaluate computes the expression against the supplied variable values.
func (p *ParamExpression) Evaluate(variables map[string]interface{}) (float64, error) {
	result, err := p.expr.Evaluate(variables)
	if err != nil {
		return 0, fmt.Errorf("eval '%v' error: %v", p.Text, err)
	}

	switch val := result.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	}
	return 0, fmt.Errorf("failed to cast eval result '%v' to float64 for '%v'", result, p.Text)
}

// ParamValue is a rescale rule parameter that is either a plain number
// or an arithmetic expression over the resolved output range, e.g.
// threshold_out: "176/255 * max_out". Unset values stay unset so the
// resolver can apply method defaults.
type ParamValue struct {
	set  bool
	num  float64
	expr *ParamExpression
}

// Float returns a ParamValue holding a plain number.
func Float(v float64) ParamValue {
	return ParamValue{set: true, num: v}
}

func (p *ParamValue) IsSet() bool {
	return p != nil && p.set
}

// Resolve returns the parameter value, evaluating the expression with
// the supplied variables if the parameter was given as one.
func (p *ParamValue) Resolve(variables map[string]interface{}) (float64, error) {
	if !p.set {
		return 0, fmt.Errorf("parameter value is unset")
	}
	if p.expr != nil {
		return p.expr.Evaluate(variables)
	}
	return p.num, nil
}

// ParamVariables are the variable names a ParamValue expression may
// reference. They are bound by the rule resolver once the output range
// is known.
var ParamVariables = map[string]struct{}{
	"min_out": struct{}{},
	"max_out": struct{}{},
	"min_in":  struct{}{},
	"max_in":  struct{}{},
}

// PixelVariables are the variable names a per-pixel scaling expression
// may reference: the pixel value plus the resolved ranges.
var PixelVariables = map[string]struct{}{
	"x":       struct{}{},
	"min_out": struct{}{},
	"max_out": struct{}{},
	"min_in":  struct{}{},
	"max_in":  struct{}{},
}

func (p *ParamValue) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var num float64
	if err := unmarshal(&num); err == nil {
		p.set = true
		p.num = num
		return nil
	}

	var text string
	if err := unmarshal(&text); err != nil {
		return err
	}

	expr, err := ParseParamExpression(text, ParamVariables)
	if err != nil {
		return err
	}
	p.set = true
	p.expr = expr
	return nil
}
