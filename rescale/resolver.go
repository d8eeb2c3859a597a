package rescale

import (
	"fmt"

	"github.com/wroberts4/polar2grid/colormap"
	"github.com/wroberts4/polar2grid/utils"
)

// ProductMeta carries the identification attributes of a gridded
// product, used to match it against the rescale rule set.
type ProductMeta struct {
	ProductName string
	DataKind    string
	Satellite   string
	Instrument  string
	GridName    string
	Reader      string
	Units       string
}

// NoRuleMatchError is returned when no configured rule matches a
// product. It names the product so a misconfigured rule set can be
// diagnosed from the error alone.
type NoRuleMatchError struct {
	ProductName string
}

func (e *NoRuleMatchError) Error() string {
	return fmt.Sprintf("no rescaling method configured for %s", e.ProductName)
}

// findRule returns the most specific matching rule. Specificity is the
// number of identification fields a rule sets; ties go to the
// later-loaded rule so site configs override base configs.
func (rs *RuleSet) findRule(meta *ProductMeta, dataType string, incByOne bool) (*Rule, error) {
	bestScore := -1
	var best *Rule
	for i := range rs.rules {
		rule := &rs.rules[i]
		if !rule.matches(meta, dataType, incByOne) {
			continue
		}
		if score := rule.idFieldCount(); score >= bestScore {
			bestScore = score
			best = rule
		}
	}
	if best == nil {
		return nil, &NoRuleMatchError{ProductName: meta.ProductName}
	}
	return best, nil
}

// Resolve finds the configuration rule for a product and expands it
// into a complete option bundle: the method, every configured parameter
// with expressions evaluated, output range defaults from the target
// data type (top reduced by one when incByOne reserves zero), units
// defaulted from the product, the caller's fill value, and any
// referenced colormap loaded and ranged. The returned options are not
// mutated by later rescaling calls.
func (rs *RuleSet) Resolve(meta ProductMeta, dataType string, incByOne bool, fillValue float64) (*ScaleOptions, error) {
	rule, err := rs.findRule(&meta, dataType, incByOne)
	if err != nil {
		return nil, err
	}

	method, customFn, err := lookupMethod(rule.Method)
	if err != nil {
		return nil, fmt.Errorf("product %s: %v", meta.ProductName, err)
	}

	minOut, maxOut, err := utils.DtypeRange(dataType)
	if err != nil {
		return nil, fmt.Errorf("product %s: %v", meta.ProductName, err)
	}
	if incByOne {
		maxOut--
	}

	opts := &ScaleOptions{
		Method:      method,
		Func:        customFn,
		MinOut:      minOut,
		MaxOut:      maxOut,
		FillOut:     fillValue,
		M:           1,
		Percent:     0.5,
		Units:       meta.Units,
		TableName:   rule.TableName,
		Alpha:       true,
		SeparateRGB: true,
		Clip:        true,
		MaskClip:    rule.MaskClip,
		IncByOne:    incByOne,
	}
	if method == MethodCustom {
		opts.CustomName = rule.Method
	}
	if method == MethodLookup && opts.TableName == "" {
		opts.TableName = "crefl"
	}
	if rule.Units != "" {
		opts.Units = rule.Units
	}

	// Expression parameters see the output range first so min_in/max_in
	// may be derived from it, then the resolved input range.
	vars := map[string]interface{}{"min_out": opts.MinOut, "max_out": opts.MaxOut}
	if rule.MinOut.IsSet() {
		if opts.MinOut, err = rule.MinOut.Resolve(vars); err != nil {
			return nil, fmt.Errorf("product %s: min_out: %v", meta.ProductName, err)
		}
	}
	if rule.MaxOut.IsSet() {
		if opts.MaxOut, err = rule.MaxOut.Resolve(vars); err != nil {
			return nil, fmt.Errorf("product %s: max_out: %v", meta.ProductName, err)
		}
	}
	if opts.MinOut > opts.MaxOut {
		return nil, fmt.Errorf("product %s: min_out %f is greater than max_out %f", meta.ProductName, opts.MinOut, opts.MaxOut)
	}
	vars["min_out"] = opts.MinOut
	vars["max_out"] = opts.MaxOut

	resolveParam := func(name string, p *utils.ParamValue, dst **float64) error {
		if !p.IsSet() {
			return nil
		}
		v, err := p.Resolve(vars)
		if err != nil {
			return fmt.Errorf("product %s: %s: %v", meta.ProductName, name, err)
		}
		*dst = &v
		return nil
	}

	if err := resolveParam("min_in", &rule.MinIn, &opts.MinIn); err != nil {
		return nil, err
	}
	if err := resolveParam("max_in", &rule.MaxIn, &opts.MaxIn); err != nil {
		return nil, err
	}
	if opts.MinIn != nil && opts.MaxIn != nil && *opts.MinIn > *opts.MaxIn {
		return nil, fmt.Errorf("product %s: min_in %f is greater than max_in %f", meta.ProductName, *opts.MinIn, *opts.MaxIn)
	}
	if opts.MinIn != nil {
		vars["min_in"] = *opts.MinIn
	}
	if opts.MaxIn != nil {
		vars["max_in"] = *opts.MaxIn
	}

	var m, b, threshold, offset, percent *float64
	if err := resolveParam("m", &rule.M, &m); err != nil {
		return nil, err
	}
	if err := resolveParam("b", &rule.B, &b); err != nil {
		return nil, err
	}
	if err := resolveParam("threshold", &rule.Threshold, &threshold); err != nil {
		return nil, err
	}
	if err := resolveParam("threshold_out", &rule.ThresholdOut, &opts.ThresholdOut); err != nil {
		return nil, err
	}
	if err := resolveParam("inner_mult", &rule.InnerMult, &opts.InnerMult); err != nil {
		return nil, err
	}
	if err := resolveParam("outer_mult", &rule.OuterMult, &opts.OuterMult); err != nil {
		return nil, err
	}
	if err := resolveParam("offset", &rule.Offset, &offset); err != nil {
		return nil, err
	}
	if err := resolveParam("percent", &rule.Percent, &percent); err != nil {
		return nil, err
	}
	if m != nil {
		opts.M = *m
	}
	if b != nil {
		opts.B = *b
	}
	if threshold != nil {
		opts.Threshold = *threshold
	}
	if offset != nil {
		opts.Offset = *offset
	}
	if percent != nil {
		opts.Percent = *percent
	}

	// Flip defaults depend on the method: brightness temperatures and
	// cloud top temperatures are conventionally displayed inverted.
	switch method {
	case MethodLinearBrightnessTemperature, MethodCtt:
		opts.Flip = true
	}
	if rule.Flip != nil {
		opts.Flip = *rule.Flip
	}
	if rule.Alpha != nil {
		opts.Alpha = *rule.Alpha
	}
	if rule.Clip != nil {
		opts.Clip = *rule.Clip
	}
	if rule.SeparateRGB != nil {
		opts.SeparateRGB = *rule.SeparateRGB
	}

	if rule.Expr != "" {
		expr, err := utils.ParseParamExpression(rule.Expr, utils.PixelVariables)
		if err != nil {
			return nil, fmt.Errorf("product %s: %v", meta.ProductName, err)
		}
		opts.Expr = expr
	}

	if rule.Colormap != "" {
		cmap, err := colormap.Load(rule.Colormap)
		if err != nil {
			return nil, fmt.Errorf("product %s: %v", meta.ProductName, err)
		}
		if opts.MinIn != nil && opts.MaxIn != nil {
			cmap.SetRange(*opts.MinIn, *opts.MaxIn)
		}
		opts.Colormap = cmap
	}

	if err := validateOptions(meta.ProductName, rule, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// validateOptions rejects rules that leave a method's required
// parameters unset, so a bad configuration fails at resolution with the
// product named instead of mid-scaling.
func validateOptions(productName string, rule *Rule, opts *ScaleOptions) error {
	missing := func(param string) error {
		return fmt.Errorf("product %s: method '%s' requires parameter '%s'", productName, rule.Method, param)
	}

	switch opts.Method {
	case MethodLinearBasic, MethodUnlinear:
		if !rule.M.IsSet() {
			return missing("m")
		}
		if !rule.B.IsSet() {
			return missing("b")
		}
	case MethodBrightnessTemperature:
		if !rule.Threshold.IsSet() {
			return missing("threshold")
		}
		if opts.MinIn == nil {
			return missing("min_in")
		}
		if opts.MaxIn == nil {
			return missing("max_in")
		}
	case MethodTemperatureDifference, MethodLst, MethodLookup:
		if opts.MinIn == nil {
			return missing("min_in")
		}
		if opts.MaxIn == nil {
			return missing("max_in")
		}
		if opts.Method == MethodLookup {
			if _, err := lookupTableByName(opts.TableName); err != nil {
				return fmt.Errorf("product %s: %v", productName, err)
			}
		}
	case MethodPalettize, MethodColorize, MethodWaterTempPalettize:
		if opts.Colormap == nil {
			return missing("colormap")
		}
	case MethodExpression:
		if opts.Expr == nil {
			return missing("expr")
		}
	}

	switch opts.MaskClip {
	case "", "min", "max", "both":
	default:
		return fmt.Errorf("product %s: unknown mask_clip mode '%s'", productName, opts.MaskClip)
	}
	return nil
}
