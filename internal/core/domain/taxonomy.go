package domain

// NamedValues is an ordered, named list of allowed values.
type NamedValues struct {
	Name   string
	Values []string
}

// GenericSeries is the software series offered regardless of model.
const GenericSeries = "generic"

// DefaultModels is the model list used for product lines without their own.
const DefaultModels = "default"

// Taxonomy is the controlled vocabulary for labels.
type Taxonomy struct {
	DocTypes     []string
	ProductLines []string

	// Models is keyed by product line, with an optional "default" entry.
	Models []NamedValues

	SoftwareSeries     []NamedValues
	SoftwareAllowOther bool

	HardwareOptions       []string
	HardwareGlobal        []string
	HardwareModelSpecific map[string][]string
	HardwareAllowOther    bool

	Subsystems      []string
	Audiences       []string
	Priorities      []string
	Lifecycles      []string
	Confidentiality []string

	Defaults LabelDefaults
	Template TemplateDefinition
}

func lookup(lists []NamedValues, name string) ([]string, bool) {
	for _, l := range lists {
		if l.Name == name {
			return l.Values, true
		}
	}
	return nil, false
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ModelsFor returns the models of a product line, falling back to the
// default list.
func (t *Taxonomy) ModelsFor(productLine string) []string {
	if models, ok := lookup(t.Models, productLine); ok {
		return models
	}
	models, _ := lookup(t.Models, DefaultModels)
	return models
}

// AllModels returns every model across product lines, first seen first.
func (t *Taxonomy) AllModels() []string {
	var out []string
	for _, line := range t.ProductLines {
		out = appendUnique(out, t.ModelsFor(line)...)
	}
	return out
}

// ProductLineForModel returns the single product line listing model.
// Models listed only in the default list, or under several product
// lines, are ambiguous.
func (t *Taxonomy) ProductLineForModel(model string) (string, bool) {
	if t == nil || model == "" {
		return "", false
	}
	found := ""
	for _, entry := range t.Models {
		if entry.Name == DefaultModels || !contains(entry.Values, model) {
			continue
		}
		if found != "" && found != entry.Name {
			return "", false
		}
		found = entry.Name
	}
	return found, found != ""
}

// SoftwareOptions lists allowed software versions. Named series come
// first when includeSeries is set, then the generic series, then "Other"
// when overrides are allowed.
func (t *Taxonomy) SoftwareOptions(includeSeries bool) []string {
	var out []string
	if includeSeries {
		for _, s := range t.SoftwareSeries {
			if s.Name == GenericSeries {
				continue
			}
			out = append(out, s.Values...)
		}
	}
	generic, _ := lookup(t.SoftwareSeries, GenericSeries)
	out = append(out, generic...)
	if t.SoftwareAllowOther {
		out = append(out, OtherValue)
	}
	return out
}

// HardwareOptionsFor lists hardware versions for a model: model-specific
// values first, then the shared options.
func (t *Taxonomy) HardwareOptionsFor(model string) []string {
	var out []string
	if model != "" {
		out = appendUnique(out, t.HardwareModelSpecific[model]...)
	}
	out = appendUnique(out, t.HardwareOptions...)
	out = appendUnique(out, t.HardwareGlobal...)
	if t.HardwareAllowOther {
		out = appendUnique(out, OtherValue)
	}
	return out
}

// Options returns the allowed values of an enumerated field.
func (t *Taxonomy) Options(field string) ([]string, bool) {
	switch field {
	case FieldDocType:
		return t.DocTypes, true
	case FieldProductLine:
		return t.ProductLines, true
	case FieldModel:
		return t.AllModels(), true
	case FieldSoftwareVersion:
		return t.SoftwareOptions(true), true
	case FieldHardwareVersion:
		return t.HardwareOptionsFor(""), true
	case FieldSubsystem:
		return t.Subsystems, true
	case FieldAudience:
		return t.Audiences, true
	case FieldPriority:
		return t.Priorities, true
	case FieldLifecycle:
		return t.Lifecycles, true
	case FieldConfidentiality:
		return t.Confidentiality, true
	}
	return nil, false
}

// CandidateValues returns the allowed values per enumerated field.
func (t *Taxonomy) CandidateValues() map[string][]string {
	out := make(map[string][]string, len(enumFields))
	for _, field := range enumFields {
		values, _ := t.Options(field)
		if values == nil {
			values = []string{}
		}
		out[field] = values
	}
	return out
}

// Allows reports whether value is acceptable for field. Empty values and
// fields without a configured list are always accepted, as is everything
// when no taxonomy is loaded.
func (t *Taxonomy) Allows(field, value string) bool {
	if t == nil || value == "" {
		return true
	}
	values, ok := t.Options(field)
	if !ok || len(values) == 0 {
		return true
	}
	if field == FieldHardwareVersion {
		return contains(values, value) || t.allowsModelHardware(value)
	}
	return contains(values, value)
}

func (t *Taxonomy) allowsModelHardware(value string) bool {
	for _, values := range t.HardwareModelSpecific {
		if contains(values, value) {
			return true
		}
	}
	return false
}

// LabelDefaults returns the configured defaults, falling back to the
// built-in values per field.
func (t *Taxonomy) LabelDefaults() LabelDefaults {
	d := DefaultLabelDefaults()
	if t == nil {
		return d
	}
	if t.Defaults.Priority != "" {
		d.Priority = t.Defaults.Priority
	}
	if t.Defaults.Lifecycle != "" {
		d.Lifecycle = t.Defaults.Lifecycle
	}
	if t.Defaults.Confidentiality != "" {
		d.Confidentiality = t.Defaults.Confidentiality
	}
	return d
}
