package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Ensure AssistedClassifier implements the interface.
var _ driving.Classifier = (*AssistedClassifier)(nil)

// PromptExcerptChars bounds the excerpt sent to the model.
const PromptExcerptChars = 5000

// DefaultAssistedMaxTokens bounds the model reply when no limit is configured.
const DefaultAssistedMaxTokens = 1024

// AssistedConfig tunes the model call.
type AssistedConfig struct {
	MaxTokens   int
	Temperature float64
}

// AssistedOutcome is the result of classifying one document with the model.
type AssistedOutcome struct {
	FileID string

	// Label is set when the model produced a usable label.
	Label *domain.Label

	// Err explains why the document was left unchanged.
	Err error
}

// Labelled reports whether a label was produced.
func (o AssistedOutcome) Labelled() bool {
	return o.Label != nil
}

// AssistedClassifier escalates weak heuristic labels to a language model.
type AssistedClassifier struct {
	store    driven.DocumentStore
	llm      driven.LLMService
	prompts  driven.PromptStore
	taxonomy *domain.Taxonomy
	cfg      AssistedConfig
}

// NewAssistedClassifier creates an assisted classifier. A nil llm
// disables the stage.
func NewAssistedClassifier(
	store driven.DocumentStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	taxonomy *domain.Taxonomy,
	cfg AssistedConfig,
) *AssistedClassifier {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultAssistedMaxTokens
	}
	if taxonomy == nil {
		taxonomy = &domain.Taxonomy{}
	}
	return &AssistedClassifier{
		store:    store,
		llm:      llm,
		prompts:  prompts,
		taxonomy: taxonomy,
		cfg:      cfg,
	}
}

// Close releases the model client.
func (c *AssistedClassifier) Close() error {
	if c.llm == nil {
		return nil
	}
	return c.llm.Close()
}

// Classify relabels heuristic labels that miss a required field or fall
// below the escalation threshold. Model failures leave the document's
// label untouched and are counted as degraded.
func (c *AssistedClassifier) Classify(ctx context.Context) (*driving.ClassifyReport, error) {
	if c.llm == nil {
		logger.Info("Assisted classification disabled")
		return &driving.ClassifyReport{Disabled: true}, nil
	}

	docs, err := c.store.ListForAssisted(ctx, domain.RequiredFields(), domain.EscalationThreshold)
	if err != nil {
		return nil, fmt.Errorf("list documents for assisted classification: %w", err)
	}

	logger.Section("classify llm")
	logger.Info("Escalating %d documents to %s", len(docs), c.llm.ModelName())
	report := &driving.ClassifyReport{Considered: len(docs)}

	for i, doc := range docs {
		outcome := c.ClassifyDocument(ctx, doc)
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !outcome.Labelled() {
			report.Degraded++
			logger.Warn("Keeping heuristic label for %s: %v", doc.Path, outcome.Err)
			continue
		}
		if err := c.store.UpsertLabel(ctx, *outcome.Label); err != nil {
			return report, fmt.Errorf("save label %s: %w", doc.FileID, err)
		}
		report.Labelled++
		logger.Progress("classify llm", i+1, len(docs), 10)
	}

	logger.Info("Assisted labels written: %d, degraded: %d", report.Labelled, report.Degraded)
	return report, nil
}

// ClassifyDocument asks the model for a label. It never writes to the store.
func (c *AssistedClassifier) ClassifyDocument(ctx context.Context, doc domain.Document) AssistedOutcome {
	out := AssistedOutcome{FileID: doc.FileID}
	if c.llm == nil {
		out.Err = domain.ErrLLMUnavailable
		return out
	}

	messages, err := c.buildMessages(doc)
	if err != nil {
		out.Err = err
		return out
	}

	reply, err := c.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		out.Err = fmt.Errorf("model call: %w", err)
		return out
	}

	label, err := c.parseLabel(doc.FileID, reply)
	if err != nil {
		out.Err = err
		return out
	}
	out.Label = label
	return out
}

func (c *AssistedClassifier) buildMessages(doc domain.Document) ([]driven.ChatMessage, error) {
	system, err := c.loadPrompt(driven.PromptClassifySystem)
	if err != nil {
		return nil, err
	}
	user, err := c.loadPrompt(driven.PromptClassifyUser)
	if err != nil {
		return nil, err
	}

	candidates, err := json.Marshal(c.taxonomy.CandidateValues())
	if err != nil {
		return nil, fmt.Errorf("encode candidate values: %w", err)
	}

	system = strings.ReplaceAll(system, "{{fields}}", strings.Join(domain.EnumFields(), ", "))
	user = strings.NewReplacer(
		"{{filename}}", doc.Name,
		"{{excerpt}}", domain.TruncateRunes(doc.ExcerptText(), PromptExcerptChars),
		"{{candidates}}", string(candidates),
	).Replace(user)

	return []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, nil
}

func (c *AssistedClassifier) loadPrompt(name string) (string, error) {
	if c.prompts == nil {
		return "", fmt.Errorf("%w: no prompt store", domain.ErrLLMUnavailable)
	}
	prompt, err := c.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return prompt, nil
}

// errMalformedReply marks model output that is not a JSON object.
var errMalformedReply = errors.New("malformed model reply")

// parseLabel turns the model reply into a label. Values outside the
// candidate lists are cleared; a label that still breaks the sentinel
// rules is rejected.
func (c *AssistedClassifier) parseLabel(fileID, reply string) (*domain.Label, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedReply, err)
	}

	label := domain.Label{FileID: fileID}
	for _, field := range domain.LabelFields() {
		_ = label.Set(field, stringValue(raw[field]))
	}
	for _, field := range domain.EnumFields() {
		value := label.Get(field)
		if !c.taxonomy.Allows(field, value) {
			logger.Debug("Dropping %s=%q for %s: not a candidate value", field, value, fileID)
			_ = label.Set(field, "")
		}
	}
	if label.SoftwareVersion != domain.OtherValue {
		label.SoftwareVersionOther = ""
	}
	if label.HardwareVersion != domain.OtherValue {
		label.HardwareVersionOther = ""
	}

	label.ApplyDefaults(c.taxonomy.LabelDefaults())
	if err := label.Validate(); err != nil {
		return nil, err
	}

	label.Source = domain.SourceLLM
	label.Confidence = domain.AssistedConfidence
	label.NeedsReview = true
	return &label, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// stringValue flattens a decoded JSON value into label text.
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}
