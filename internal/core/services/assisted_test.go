package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/doclabel/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

func seedHeuristic(t *testing.T, store *memory.DocumentStore, label domain.Label, excerpt string) {
	t.Helper()
	seedExtracted(t, store, label.FileID, label.FileID+".pdf", excerpt)
	label.Source = domain.SourceHeuristic
	if label.Confidence == 0 {
		label.Confidence = domain.HeuristicConfidence
	}
	require.NoError(t, store.UpsertLabel(context.Background(), label))
}

func newAssisted(store *memory.DocumentStore, llm driven.LLMService) *AssistedClassifier {
	return NewAssistedClassifier(store, llm, fakePrompts{}, sampleTaxonomy(), AssistedConfig{})
}

func TestAssistedClassifier_DisabledWithoutService(t *testing.T) {
	store := memory.NewDocumentStore()
	seedHeuristic(t, store, domain.Label{FileID: "a"}, "text")

	report, err := newAssisted(store, nil).Classify(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Disabled)

	label, err := store.GetLabel(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceHeuristic, label.Source)
}

func TestAssistedClassifier_OverwritesLabel(t *testing.T) {
	store := memory.NewDocumentStore()
	seedHeuristic(t, store, domain.Label{FileID: "doc", DocType: "SOP", Subsystem: "Laser"}, strings.Repeat("x", 6000))
	llm := &fakeLLM{replies: []string{"```json\n" + `{
		"doc_type": "Manual",
		"product_line": "Scrubbers",
		"model": "S50",
		"software_version": "Other",
		"software_version_other": "AIO7-beta",
		"hardware_version": "9.9",
		"hardware_version_other": "ignored",
		"subsystem": "",
		"audience": "technician",
		"priority": "urgent",
		"lifecycle": "",
		"confidentiality": "public",
		"keywords": ["brush", "deck"]
	}` + "\n```"}}

	report, err := newAssisted(store, llm).Classify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Considered)
	assert.Equal(t, 1, report.Labelled)

	label, err := store.GetLabel(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLLM, label.Source)
	assert.InDelta(t, 0.9, label.Confidence, 1e-9)
	assert.True(t, label.NeedsReview)
	assert.Equal(t, "Manual", label.DocType)
	assert.Equal(t, "S50", label.Model)
	assert.Equal(t, "Other", label.SoftwareVersion)
	assert.Equal(t, "AIO7-beta", label.SoftwareVersionOther)
	assert.Empty(t, label.HardwareVersion, "values outside the candidate list are cleared")
	assert.Empty(t, label.HardwareVersionOther)
	assert.Empty(t, label.Subsystem, "full overwrite drops the heuristic subsystem")
	assert.Equal(t, "normal", label.Priority, "invalid priority falls back to the default")
	assert.Equal(t, "active", label.Lifecycle)
	assert.Equal(t, "public", label.Confidentiality)
	assert.Equal(t, "brush, deck", label.Keywords)

	require.Len(t, llm.messages, 1)
	msgs := llm.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "doc_type, product_line, model")
	assert.Contains(t, msgs[1].Content, "Filename: doc.pdf")
	assert.Contains(t, msgs[1].Content, strings.Repeat("x", PromptExcerptChars))
	assert.NotContains(t, msgs[1].Content, strings.Repeat("x", PromptExcerptChars+1))
	assert.Contains(t, msgs[1].Content, `"doc_type":["SOP","Manual","PCN","Other"]`)
	assert.True(t, llm.opts[0].JSONMode)
	assert.Equal(t, DefaultAssistedMaxTokens, llm.opts[0].MaxTokens)
}

func TestAssistedClassifier_DegradedOutcomesKeepPriorLabel(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "provider error", err: errors.New("connection refused")},
		{name: "malformed json", reply: "I think this is an SOP"},
		{name: "other doc type without keywords", reply: `{"doc_type":"Other","keywords":""}`},
		{name: "other hardware without override", reply: `{"doc_type":"SOP","hardware_version":"Other"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewDocumentStore()
			seedHeuristic(t, store, domain.Label{FileID: "doc", DocType: "SOP"}, "text")
			llm := &fakeLLM{replies: []string{tt.reply}, errs: []error{tt.err}}

			report, err := newAssisted(store, llm).Classify(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, report.Degraded)
			assert.Zero(t, report.Labelled)

			label, err := store.GetLabel(context.Background(), "doc")
			require.NoError(t, err)
			assert.Equal(t, domain.SourceHeuristic, label.Source)
			assert.Equal(t, "SOP", label.DocType)
		})
	}
}

func TestAssistedClassifier_OnlyEscalatesWeakLabels(t *testing.T) {
	store := memory.NewDocumentStore()
	complete := domain.Label{FileID: "complete", DocType: "SOP", ProductLine: "Scrubbers", Model: "S50", Confidence: 0.85}
	weak := domain.Label{FileID: "weak", DocType: "SOP", ProductLine: "Scrubbers", Model: "S50"}
	seedHeuristic(t, store, complete, "a")
	seedHeuristic(t, store, weak, "b")
	llm := &fakeLLM{replies: []string{`{"doc_type":"PCN","product_line":"Scrubbers","model":"S1"}`}}

	report, err := newAssisted(store, llm).Classify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Considered)
	assert.Equal(t, 1, llm.calls)

	label, err := store.GetLabel(context.Background(), "weak")
	require.NoError(t, err)
	assert.Equal(t, "PCN", label.DocType)
	assert.Equal(t, "S1", label.Model)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
}
