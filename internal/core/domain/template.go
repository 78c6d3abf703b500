package domain

// TemplateField is one field of the remote metadata template.
type TemplateField struct {
	// Key is the label field the value is taken from.
	Key string

	// Label is the display name used on the remote side.
	Label string

	// Type is the remote field type, e.g. "picklist" or "text".
	Type string

	// Options are the allowed values for picklists.
	Options []string

	// OptionsFrom names a taxonomy field to expand into Options.
	OptionsFrom string
}

// TemplateDefinition describes the remote metadata template.
type TemplateDefinition struct {
	Name        string
	Description string
	Fields      []TemplateField
}

// MetadataValue is one value written to a file's template.
type MetadataValue struct {
	Key   string
	Label string
	Value string
}

var defaultFieldLabels = map[string]string{
	FieldDocType:              "Doc Type",
	FieldProductLine:          "Product Line",
	FieldModel:                "Model",
	FieldSoftwareVersion:      "Software Version",
	FieldSoftwareVersionOther: "Software Version (Other)",
	FieldHardwareVersion:      "Hardware Version",
	FieldHardwareVersionOther: "Hardware Version (Other)",
	FieldSubsystem:            "Subsystem",
	FieldAudience:             "Audience",
	FieldPriority:             "Priority",
	FieldLifecycle:            "Lifecycle",
	FieldConfidentiality:      "Confidentiality",
	FieldKeywords:             "Keywords",
}

// DefaultFieldLabel returns the display name of a label field.
func DefaultFieldLabel(key string) string {
	return defaultFieldLabels[key]
}

// DefaultTemplate returns the template used when the taxonomy does not
// define one.
func DefaultTemplate() TemplateDefinition {
	def := TemplateDefinition{
		Name:        "Document Classification",
		Description: "Document labels maintained by doclabel",
	}
	for _, key := range labelFields {
		field := TemplateField{Key: key, Label: defaultFieldLabels[key], Type: "text"}
		if contains(enumFields, key) {
			field.Type = "picklist"
			field.OptionsFrom = key
		}
		def.Fields = append(def.Fields, field)
	}
	return def
}

// Expand resolves OptionsFrom against the taxonomy and fills missing
// field labels. The receiver is not modified.
func (d TemplateDefinition) Expand(t *Taxonomy) TemplateDefinition {
	out := TemplateDefinition{Name: d.Name, Description: d.Description}
	for _, f := range d.Fields {
		if f.Label == "" {
			f.Label = DefaultFieldLabel(f.Key)
		}
		if f.OptionsFrom != "" && t != nil {
			if values, ok := t.Options(f.OptionsFrom); ok {
				f.Options = append([]string(nil), values...)
			}
		}
		out.Fields = append(out.Fields, f)
	}
	return out
}

// Payload builds the metadata values for a label. Empty values are left
// out; an empty result means there is nothing to write.
func (d TemplateDefinition) Payload(l Label) []MetadataValue {
	var out []MetadataValue
	for _, f := range d.Fields {
		value := l.Get(f.Key)
		if value == "" {
			continue
		}
		out = append(out, MetadataValue{Key: f.Key, Label: f.Label, Value: value})
	}
	return out
}
