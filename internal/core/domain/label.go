package domain

import (
	"fmt"
	"strings"
	"time"
)

// LabelSource records who produced a label.
type LabelSource string

const (
	SourceHeuristic LabelSource = "heuristic"
	SourceLLM       LabelSource = "llm"
	SourceHuman     LabelSource = "human"
)

// IsValid reports whether the source is known.
func (s LabelSource) IsValid() bool {
	switch s {
	case SourceHeuristic, SourceLLM, SourceHuman:
		return true
	}
	return false
}

// Confidence assigned per label source.
const (
	HeuristicConfidence = 0.6
	AssistedConfidence  = 0.9
	HumanConfidence     = 1.0
)

// EscalationThreshold is the confidence below which heuristic labels are
// sent to the assisted classifier.
const EscalationThreshold = 0.8

// RequiredFields are the fields a heuristic label must fill to avoid
// escalation.
func RequiredFields() []string {
	return []string{FieldDocType, FieldProductLine, FieldModel}
}

// OtherValue is the sentinel that requires a companion free-text field.
const OtherValue = "Other"

// MaxOverrideLength bounds the free-text software and hardware overrides.
const MaxOverrideLength = 64

// Label field keys. They double as storage column names and as the
// keys the assisted classifier is asked to return.
const (
	FieldDocType              = "doc_type"
	FieldProductLine          = "product_line"
	FieldModel                = "model"
	FieldSoftwareVersion      = "software_version"
	FieldSoftwareVersionOther = "software_version_other"
	FieldHardwareVersion      = "hardware_version"
	FieldHardwareVersionOther = "hardware_version_other"
	FieldSubsystem            = "subsystem"
	FieldAudience             = "audience"
	FieldPriority             = "priority"
	FieldLifecycle            = "lifecycle"
	FieldConfidentiality      = "confidentiality"
	FieldKeywords             = "keywords"
)

var labelFields = []string{
	FieldDocType,
	FieldProductLine,
	FieldModel,
	FieldSoftwareVersion,
	FieldSoftwareVersionOther,
	FieldHardwareVersion,
	FieldHardwareVersionOther,
	FieldSubsystem,
	FieldAudience,
	FieldPriority,
	FieldLifecycle,
	FieldConfidentiality,
	FieldKeywords,
}

var enumFields = []string{
	FieldDocType,
	FieldProductLine,
	FieldModel,
	FieldSoftwareVersion,
	FieldHardwareVersion,
	FieldSubsystem,
	FieldAudience,
	FieldPriority,
	FieldLifecycle,
	FieldConfidentiality,
}

// LabelFields returns every label field key in canonical order.
func LabelFields() []string {
	out := make([]string, len(labelFields))
	copy(out, labelFields)
	return out
}

// EnumFields returns the fields whose values come from the taxonomy.
func EnumFields() []string {
	out := make([]string, len(enumFields))
	copy(out, enumFields)
	return out
}

// IsLabelField reports whether key names a label field.
func IsLabelField(key string) bool {
	for _, f := range labelFields {
		if f == key {
			return true
		}
	}
	return false
}

// LabelDefaults fills fields a classifier left empty.
type LabelDefaults struct {
	Priority        string
	Lifecycle       string
	Confidentiality string
}

// DefaultLabelDefaults returns the built-in defaults.
func DefaultLabelDefaults() LabelDefaults {
	return LabelDefaults{
		Priority:        "normal",
		Lifecycle:       "active",
		Confidentiality: "internal",
	}
}

// Label is the classification attached to one document.
type Label struct {
	FileID string

	DocType              string
	ProductLine          string
	Model                string
	SoftwareVersion      string
	SoftwareVersionOther string
	HardwareVersion      string
	HardwareVersionOther string
	Subsystem            string
	Audience             string
	Priority             string
	Lifecycle            string
	Confidentiality      string

	// Keywords is a comma-and-space joined list.
	Keywords string

	Source      LabelSource
	Confidence  float64
	NeedsReview bool

	// SyncedHash is the payload hash last pushed to the drive.
	SyncedHash string

	UpdatedAt time.Time
}

func (l *Label) field(key string) *string {
	switch key {
	case FieldDocType:
		return &l.DocType
	case FieldProductLine:
		return &l.ProductLine
	case FieldModel:
		return &l.Model
	case FieldSoftwareVersion:
		return &l.SoftwareVersion
	case FieldSoftwareVersionOther:
		return &l.SoftwareVersionOther
	case FieldHardwareVersion:
		return &l.HardwareVersion
	case FieldHardwareVersionOther:
		return &l.HardwareVersionOther
	case FieldSubsystem:
		return &l.Subsystem
	case FieldAudience:
		return &l.Audience
	case FieldPriority:
		return &l.Priority
	case FieldLifecycle:
		return &l.Lifecycle
	case FieldConfidentiality:
		return &l.Confidentiality
	case FieldKeywords:
		return &l.Keywords
	}
	return nil
}

// Get returns the value of a label field, or "" for unknown keys.
func (l Label) Get(key string) string {
	if p := l.field(key); p != nil {
		return *p
	}
	return ""
}

// Set assigns a label field. Values are trimmed; keywords are normalised.
func (l *Label) Set(key, value string) error {
	p := l.field(key)
	if p == nil {
		return fmt.Errorf("%w: unknown label field %q", ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)
	if key == FieldKeywords {
		value = JoinKeywords(ParseKeywords(value))
	}
	*p = value
	return nil
}

// Values returns the label fields as a map keyed by field.
func (l Label) Values() map[string]string {
	out := make(map[string]string, len(labelFields))
	for _, key := range labelFields {
		out[key] = l.Get(key)
	}
	return out
}

// LabelFromValues builds a label from field values, ignoring unknown keys.
func LabelFromValues(values map[string]string) Label {
	var l Label
	for key, v := range values {
		_ = l.Set(key, v)
	}
	return l
}

// IsEmpty reports whether every label field is blank.
func (l Label) IsEmpty() bool {
	for _, key := range labelFields {
		if l.Get(key) != "" {
			return false
		}
	}
	return true
}

// MissingAny reports whether any of the given fields is blank.
func (l Label) MissingAny(fields []string) bool {
	for _, key := range fields {
		if l.Get(key) == "" {
			return true
		}
	}
	return false
}

// ApplyDefaults fills blank priority, lifecycle and confidentiality.
func (l *Label) ApplyDefaults(d LabelDefaults) {
	if l.Priority == "" {
		l.Priority = d.Priority
	}
	if l.Lifecycle == "" {
		l.Lifecycle = d.Lifecycle
	}
	if l.Confidentiality == "" {
		l.Confidentiality = d.Confidentiality
	}
}

// Validate enforces the sentinel rules: "Other" versions need a bounded
// free-text override, and an "Other" doc type needs keywords.
func (l Label) Validate() error {
	if err := checkOverride("software version", l.SoftwareVersion, l.SoftwareVersionOther); err != nil {
		return err
	}
	if err := checkOverride("hardware version", l.HardwareVersion, l.HardwareVersionOther); err != nil {
		return err
	}
	if l.DocType == OtherValue && len(ParseKeywords(l.Keywords)) == 0 {
		return fmt.Errorf("%w: doc type %q requires at least one keyword", ErrInvalidLabel, OtherValue)
	}
	return nil
}

func checkOverride(name, value, override string) error {
	if value != OtherValue {
		return nil
	}
	override = strings.TrimSpace(override)
	if override == "" {
		return fmt.Errorf("%w: %s %q requires a free-text value", ErrInvalidLabel, name, OtherValue)
	}
	if len([]rune(override)) > MaxOverrideLength {
		return fmt.Errorf("%w: %s override exceeds %d characters", ErrInvalidLabel, name, MaxOverrideLength)
	}
	return nil
}

// DropUnbackedSentinels clears "Other" values that lack their companion
// field so automatically produced labels never violate Validate.
func (l *Label) DropUnbackedSentinels() {
	if l.SoftwareVersion == OtherValue && checkOverride("", l.SoftwareVersion, l.SoftwareVersionOther) != nil {
		l.SoftwareVersion = ""
		l.SoftwareVersionOther = ""
	}
	if l.HardwareVersion == OtherValue && checkOverride("", l.HardwareVersion, l.HardwareVersionOther) != nil {
		l.HardwareVersion = ""
		l.HardwareVersionOther = ""
	}
	if l.DocType == OtherValue && len(ParseKeywords(l.Keywords)) == 0 {
		l.DocType = ""
	}
}

// ParseKeywords splits a comma or semicolon separated list, trimming
// entries and dropping blanks and case-insensitive duplicates.
func ParseKeywords(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// JoinKeywords joins keywords the way they are stored and synced.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}
