package domain

import (
	"fmt"
	"regexp"
)

// Rule maps a pattern to the label value it assigns.
type Rule struct {
	Value   string
	Pattern *regexp.Regexp
}

// RuleSet holds ordered heuristic rules per label field. Within a field
// the first matching rule wins.
type RuleSet struct {
	order []string
	rules map[string][]Rule
}

// NewRuleSet returns an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{rules: make(map[string][]Rule)}
}

// Add appends a case-insensitive rule for field.
func (r *RuleSet) Add(field, value, pattern string) error {
	if !IsLabelField(field) {
		return fmt.Errorf("%w: unknown rule field %q", ErrInvalidInput, field)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("%w: rule %s/%s: %v", ErrInvalidInput, field, value, err)
	}
	if _, ok := r.rules[field]; !ok {
		r.order = append(r.order, field)
	}
	r.rules[field] = append(r.rules[field], Rule{Value: value, Pattern: re})
	return nil
}

// Fields returns the fields with rules, in insertion order.
func (r *RuleSet) Fields() []string {
	return append([]string(nil), r.order...)
}

// Len returns the total number of rules.
func (r *RuleSet) Len() int {
	n := 0
	for _, rules := range r.rules {
		n += len(rules)
	}
	return n
}

// Match returns the value of the first rule for field matching text.
func (r *RuleSet) Match(field, text string) string {
	for _, rule := range r.rules[field] {
		if rule.Pattern.MatchString(text) {
			return rule.Value
		}
	}
	return ""
}
