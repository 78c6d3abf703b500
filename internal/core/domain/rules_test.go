package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_FirstMatchWins(t *testing.T) {
	rules := NewRuleSet()
	require.NoError(t, rules.Add(FieldDocType, "SOP", `\bsop\b|standard operating`))
	require.NoError(t, rules.Add(FieldDocType, "Manual", `manual`))
	require.NoError(t, rules.Add(FieldModel, "S50", `s-?50`))

	assert.Equal(t, "SOP", rules.Match(FieldDocType, "Standard Operating Manual"))
	assert.Equal(t, "Manual", rules.Match(FieldDocType, "service MANUAL"))
	assert.Equal(t, "", rules.Match(FieldDocType, "brochure"))
	assert.Equal(t, "S50", rules.Match(FieldModel, "S-50 guide"))
	assert.Equal(t, []string{FieldDocType, FieldModel}, rules.Fields())
	assert.Equal(t, 3, rules.Len())
}

func TestRuleSet_Add_Errors(t *testing.T) {
	rules := NewRuleSet()

	err := rules.Add("colour", "red", "red")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = rules.Add(FieldModel, "bad", "(")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
