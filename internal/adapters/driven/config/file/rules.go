package file

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// fieldAliases maps legacy rule keys onto label fields.
var fieldAliases = map[string]string{
	"model_type": domain.FieldModel,
}

// LoadRules reads heuristic rules from a YAML file.
func LoadRules(path string) (*domain.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules parses rules keyed by label field. Each field holds either a
// mapping of value to pattern, or a list of {value, pattern} entries.
// Document order is kept so the first listed rule wins.
//
//	doc_type:
//	  SOP: '\bsop\b|standard operating procedure'
//	  Manual: 'manual|user guide'
//	model:
//	  - value: S50
//	    pattern: 's-?50\b'
func ParseRules(data []byte) (*domain.RuleSet, error) {
	rules := domain.NewRuleSet()

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}
	if len(root.Content) == 0 {
		return rules, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: rules must be a mapping of field to patterns (line %d)",
			domain.ErrConfigInvalid, doc.Line)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		field := strings.TrimSpace(doc.Content[i].Value)
		if alias, ok := fieldAliases[field]; ok {
			field = alias
		}
		if err := addFieldRules(rules, field, doc.Content[i+1]); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func addFieldRules(rules *domain.RuleSet, field string, node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if err := rules.Add(field, node.Content[i].Value, node.Content[i+1].Value); err != nil {
				return fmt.Errorf("line %d: %w", node.Content[i].Line, err)
			}
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			var entry struct {
				Value   string `yaml:"value"`
				Label   string `yaml:"label"`
				Pattern string `yaml:"pattern"`
			}
			if err := item.Decode(&entry); err != nil {
				return fmt.Errorf("%w: line %d: %v", domain.ErrConfigInvalid, item.Line, err)
			}
			if entry.Value == "" {
				entry.Value = entry.Label
			}
			if entry.Value == "" || entry.Pattern == "" {
				return fmt.Errorf("%w: line %d: rule needs a value and a pattern", domain.ErrConfigInvalid, item.Line)
			}
			if err := rules.Add(field, entry.Value, entry.Pattern); err != nil {
				return fmt.Errorf("line %d: %w", item.Line, err)
			}
		}
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		fallthrough
	default:
		return fmt.Errorf("%w: line %d: rules for %q must be a mapping or a list",
			domain.ErrConfigInvalid, node.Line, field)
	}
	return nil
}
