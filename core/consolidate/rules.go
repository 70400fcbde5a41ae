package consolidate

import (
	"strings"

	"github.com/dfattal/david-gpt-sub005/model"
)

// curatedRules maps known variant spellings onto their canonical entity
// name. The table is read-only at run time; matching is case-sensitive
// on the variant strings so that casing-only variants can be listed
// explicitly.
var curatedRules = []model.ConsolidationRule{
	{
		PrimaryName: "OLED",
		Kind:        model.KindTechnology,
		Variants:    []string{"oled", "Oled", "organic light-emitting diode", "organic LED"},
		Description: "Organic light-emitting diode display technology",
	},
	{
		PrimaryName: "LCD",
		Kind:        model.KindTechnology,
		Variants:    []string{"lcd", "Lcd", "liquid crystal display", "liquid-crystal display"},
		Description: "Liquid crystal display technology",
	},
	{
		PrimaryName: "lightfield display",
		Kind:        model.KindTechnology,
		Variants:    []string{"light field display", "light-field display", "LF display"},
	},
	{
		PrimaryName: "autostereoscopic display",
		Kind:        model.KindTechnology,
		Variants:    []string{"auto-stereoscopic display", "glasses-free 3D display", "glasses free 3D display"},
	},
	{
		PrimaryName: "eye-tracking",
		Kind:        model.KindTechnology,
		Variants:    []string{"eye tracking", "eyetracking", "gaze tracking"},
	},
	{
		PrimaryName: "lenticular lens",
		Kind:        model.KindComponent,
		Variants:    []string{"lenticular lenses", "lenticular lens array", "lenticular array"},
	},
	{
		PrimaryName: "parallax barrier",
		Kind:        model.KindComponent,
		Variants:    []string{"parallax barriers", "switchable parallax barrier"},
	},
	{
		PrimaryName: "Leia Inc",
		Kind:        model.KindOrganization,
		Variants:    []string{"Leia", "LEIA", "Leia Inc.", "Leia, Inc."},
	},
}

// RuleIndex is a lookup structure over a rule table, keyed by kind and
// variant string.
type RuleIndex struct {
	byVariant map[string]*model.ConsolidationRule
}

// NewRuleIndex builds a lookup index over the given rule table. The
// primary name itself is indexed too, so rule resolution is idempotent.
func NewRuleIndex(rules []model.ConsolidationRule) *RuleIndex {
	index := &RuleIndex{byVariant: map[string]*model.ConsolidationRule{}}
	for i := range rules {
		rule := &rules[i]
		index.byVariant[ruleKey(rule.PrimaryName, rule.Kind)] = rule
		for _, variant := range rule.Variants {
			index.byVariant[ruleKey(variant, rule.Kind)] = rule
		}
	}
	return index
}

// DefaultRuleIndex returns the index over the built-in curated rules.
func DefaultRuleIndex() *RuleIndex {
	return NewRuleIndex(curatedRules)
}

// Lookup returns the rule covering the given name within a kind, or nil.
func (r *RuleIndex) Lookup(name string, kind model.EntityKind) *model.ConsolidationRule {
	return r.byVariant[ruleKey(name, kind)]
}

// Rules returns the curated rule table.
func (r *RuleIndex) Rules() []*model.ConsolidationRule {
	seen := map[*model.ConsolidationRule]bool{}
	var rules []*model.ConsolidationRule
	for _, rule := range r.byVariant {
		if !seen[rule] {
			seen[rule] = true
			rules = append(rules, rule)
		}
	}
	return rules
}

func ruleKey(name string, kind model.EntityKind) string {
	return string(kind) + "\x00" + strings.TrimSpace(name)
}
