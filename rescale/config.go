package rescale

import (
	"fmt"
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"

	"github.com/wroberts4/polar2grid/utils"
)

// Rule is one rescaling configuration section. The identification
// fields select which products the rule applies to; an empty field
// matches anything. The method and parameter fields configure the
// scaling itself. Numeric parameters may be written as expressions over
// the resolved output range, e.g. threshold_out: "176/255 * max_out".
type Rule struct {
	// Identification fields.
	ProductName string `yaml:"product_name"`
	DataKind    string `yaml:"data_kind"`
	Satellite   string `yaml:"satellite"`
	Instrument  string `yaml:"instrument"`
	GridName    string `yaml:"grid_name"`
	Reader      string `yaml:"reader"`
	Units       string `yaml:"units"`
	DataType    string `yaml:"data_type"`
	IncByOne    *bool  `yaml:"inc_by_one"`

	Method string `yaml:"method"`

	// Method parameters.
	MinOut       utils.ParamValue `yaml:"min_out"`
	MaxOut       utils.ParamValue `yaml:"max_out"`
	MinIn        utils.ParamValue `yaml:"min_in"`
	MaxIn        utils.ParamValue `yaml:"max_in"`
	M            utils.ParamValue `yaml:"m"`
	B            utils.ParamValue `yaml:"b"`
	Threshold    utils.ParamValue `yaml:"threshold"`
	ThresholdOut utils.ParamValue `yaml:"threshold_out"`
	InnerMult    utils.ParamValue `yaml:"inner_mult"`
	OuterMult    utils.ParamValue `yaml:"outer_mult"`
	Offset       utils.ParamValue `yaml:"offset"`
	Percent      utils.ParamValue `yaml:"percent"`
	Flip         *bool            `yaml:"flip"`
	TableName    string           `yaml:"table_name"`
	Colormap     string           `yaml:"colormap"`
	Expr         string           `yaml:"expr"`
	Alpha        *bool            `yaml:"alpha"`

	// Application policy.
	Clip        *bool  `yaml:"clip"`
	MaskClip    string `yaml:"mask_clip"`
	SeparateRGB *bool  `yaml:"separate_rgb"`
}

// idFieldCount returns how many identification fields the rule sets,
// which is its specificity when competing with other matching rules.
func (r *Rule) idFieldCount() int {
	count := 0
	for _, f := range []string{r.ProductName, r.DataKind, r.Satellite, r.Instrument, r.GridName, r.Reader, r.Units, r.DataType} {
		if f != "" {
			count++
		}
	}
	if r.IncByOne != nil {
		count++
	}
	return count
}

// matches reports whether every identification field the rule sets
// agrees with the product.
func (r *Rule) matches(meta *ProductMeta, dataType string, incByOne bool) bool {
	for _, pair := range [][2]string{
		{r.ProductName, meta.ProductName},
		{r.DataKind, meta.DataKind},
		{r.Satellite, meta.Satellite},
		{r.Instrument, meta.Instrument},
		{r.GridName, meta.GridName},
		{r.Reader, meta.Reader},
		{r.Units, meta.Units},
		{r.DataType, dataType},
	} {
		if pair[0] != "" && pair[0] != pair[1] {
			return false
		}
	}
	if r.IncByOne != nil && *r.IncByOne != incByOne {
		return false
	}
	return true
}

// Config is the on-disk form of a rescale configuration file: an
// ordered list of rule sections.
type Config struct {
	Rescales []Rule `yaml:"rescales"`
}

// RuleSet holds every loaded rule in load order. It is built once at
// startup and treated as immutable afterwards, so it can be shared
// read-only across concurrent rescaling calls.
type RuleSet struct {
	rules []Rule
}

// LoadRuleSet reads one or more YAML rescale configuration files in
// order. Rules from later files win specificity ties against earlier
// ones, which is how a site config overrides the base config.
func LoadRuleSet(filenames ...string) (*RuleSet, error) {
	if len(filenames) == 0 {
		return nil, fmt.Errorf("no rescale configuration files supplied")
	}

	ruleSet := &RuleSet{}
	for _, filename := range filenames {
		contents, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read '%s': %v", filename, err)
		}

		var config Config
		if err := yaml.Unmarshal(contents, &config); err != nil {
			return nil, fmt.Errorf("parse '%s': %v", filename, err)
		}
		if len(config.Rescales) == 0 {
			log.Printf("rescale: configuration file '%s' contains no rescale sections", filename)
		}

		for i := range config.Rescales {
			if config.Rescales[i].Method == "" {
				return nil, fmt.Errorf("%s: rescale section %d has no method", filename, i)
			}
			if _, _, err := lookupMethod(config.Rescales[i].Method); err != nil {
				return nil, fmt.Errorf("%s: rescale section %d: %v", filename, i, err)
			}
		}
		ruleSet.rules = append(ruleSet.rules, config.Rescales...)
	}

	return ruleSet, nil
}

// NewRuleSet builds a rule set directly, mainly for callers that manage
// their own configuration storage.
func NewRuleSet(rules []Rule) *RuleSet {
	return &RuleSet{rules: rules}
}
