package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

func TestParseRules_MappingKeepsOrder(t *testing.T) {
	rules, err := ParseRules([]byte(`
doc_type:
  SOP: 'standard operating|\bsop\b'
  Manual: 'manual'
  PCN: 'change notice'
model_type:
  S50: 's-?50'
`))
	require.NoError(t, err)

	assert.Equal(t, []string{domain.FieldDocType, domain.FieldModel}, rules.Fields())
	assert.Equal(t, "SOP", rules.Match(domain.FieldDocType, "Standard Operating Manual"))
	assert.Equal(t, "S50", rules.Match(domain.FieldModel, "s50 wiring"))
}

func TestParseRules_ListForm(t *testing.T) {
	rules, err := ParseRules([]byte(`
subsystem:
  - value: Drive
    pattern: 'motor|drive'
  - label: Brushes
    pattern: 'brush'
`))
	require.NoError(t, err)

	assert.Equal(t, "Drive", rules.Match(domain.FieldSubsystem, "drive motor"))
	assert.Equal(t, "Brushes", rules.Match(domain.FieldSubsystem, "side brush"))
}

func TestParseRules_Errors(t *testing.T) {
	tests := map[string]string{
		"not a mapping":   "- a\n- b\n",
		"unknown field":   "colour:\n  red: red\n",
		"bad regex":       "model:\n  S50: '('\n",
		"scalar rules":    "model: S50\n",
		"missing pattern": "model:\n  - value: S50\n",
		"broken yaml":     "model: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRules([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseRules_EmptyAndNull(t *testing.T) {
	rules, err := ParseRules(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rules.Len())

	rules, err = ParseRules([]byte("model:\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, rules.Len())
}

func TestLoadRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regex.yml")
	require.NoError(t, os.WriteFile(path, []byte("doc_type:\n  SOP: sop\n"), 0600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 1, rules.Len())

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
