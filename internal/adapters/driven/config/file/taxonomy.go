package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

type taxonomyFile struct {
	DocType     []string  `yaml:"doc_type"`
	ProductLine []string  `yaml:"product_line"`
	Model       yaml.Node `yaml:"model"`

	SoftwareVersion struct {
		Series     yaml.Node `yaml:"series"`
		AllowOther bool      `yaml:"allow_other"`
	} `yaml:"software_version"`

	HardwareVersion struct {
		Options        []string            `yaml:"options"`
		Global         []string            `yaml:"global"`
		ModelSpecific  map[string][]string `yaml:"model_specific"`
		AllowOtherText bool                `yaml:"allow_other_text"`
	} `yaml:"hardware_version"`

	Subsystem       []string `yaml:"subsystem"`
	Audience        []string `yaml:"audience"`
	Priority        []string `yaml:"priority"`
	Lifecycle       []string `yaml:"lifecycle"`
	Confidentiality []string `yaml:"confidentiality"`

	Defaults struct {
		Priority        string `yaml:"priority"`
		Lifecycle       string `yaml:"lifecycle"`
		Confidentiality string `yaml:"confidentiality"`
	} `yaml:"defaults"`

	Template *struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Fields      []struct {
			Key         string   `yaml:"key"`
			Label       string   `yaml:"label"`
			Type        string   `yaml:"type"`
			Options     []string `yaml:"options"`
			OptionsFrom string   `yaml:"options_from"`
		} `yaml:"fields"`
	} `yaml:"template"`
}

// LoadTaxonomy reads the controlled vocabulary from a YAML file.
func LoadTaxonomy(path string) (*domain.Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %s: %w", path, err)
	}
	tax, err := ParseTaxonomy(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return tax, nil
}

// ParseTaxonomy parses a taxonomy document. The model and software series
// mappings keep their document order.
func ParseTaxonomy(data []byte) (*domain.Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	models, err := orderedLists(&f.Model, "model")
	if err != nil {
		return nil, err
	}
	series, err := orderedLists(&f.SoftwareVersion.Series, "software_version.series")
	if err != nil {
		return nil, err
	}

	tax := &domain.Taxonomy{
		DocTypes:              f.DocType,
		ProductLines:          f.ProductLine,
		Models:                models,
		SoftwareSeries:        series,
		SoftwareAllowOther:    f.SoftwareVersion.AllowOther,
		HardwareOptions:       f.HardwareVersion.Options,
		HardwareGlobal:        f.HardwareVersion.Global,
		HardwareModelSpecific: f.HardwareVersion.ModelSpecific,
		HardwareAllowOther:    f.HardwareVersion.AllowOtherText,
		Subsystems:            f.Subsystem,
		Audiences:             f.Audience,
		Priorities:            f.Priority,
		Lifecycles:            f.Lifecycle,
		Confidentiality:       f.Confidentiality,
		Defaults: domain.LabelDefaults{
			Priority:        f.Defaults.Priority,
			Lifecycle:       f.Defaults.Lifecycle,
			Confidentiality: f.Defaults.Confidentiality,
		},
		Template: domain.DefaultTemplate(),
	}

	if f.Template != nil {
		def := domain.TemplateDefinition{
			Name:        f.Template.Name,
			Description: f.Template.Description,
		}
		for _, field := range f.Template.Fields {
			if !domain.IsLabelField(field.Key) {
				return nil, fmt.Errorf("%w: template field %q is not a label field", domain.ErrConfigInvalid, field.Key)
			}
			if field.OptionsFrom != "" {
				if _, ok := tax.Options(field.OptionsFrom); !ok {
					return nil, fmt.Errorf("%w: template field %q draws options from unknown list %q",
						domain.ErrConfigInvalid, field.Key, field.OptionsFrom)
				}
			}
			def.Fields = append(def.Fields, domain.TemplateField{
				Key:         field.Key,
				Label:       field.Label,
				Type:        field.Type,
				Options:     field.Options,
				OptionsFrom: field.OptionsFrom,
			})
		}
		if def.Name == "" {
			def.Name = tax.Template.Name
		}
		if len(def.Fields) == 0 {
			def.Fields = tax.Template.Fields
		}
		tax.Template = def
	}

	return tax, nil
}

// orderedLists decodes a mapping of name to string list, keeping key order.
func orderedLists(node *yaml.Node, name string) ([]domain.NamedValues, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must be a mapping (line %d)", domain.ErrConfigInvalid, name, node.Line)
	}
	out := make([]domain.NamedValues, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var values []string
		if err := node.Content[i+1].Decode(&values); err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", domain.ErrConfigInvalid, name, node.Content[i].Value, err)
		}
		out = append(out, domain.NamedValues{Name: node.Content[i].Value, Values: values})
	}
	return out, nil
}
