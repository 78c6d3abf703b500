package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Ensure HeuristicClassifier implements the interface.
var _ driving.Classifier = (*HeuristicClassifier)(nil)

// HeuristicClassifier labels documents with ordered regular expression rules.
type HeuristicClassifier struct {
	store    driven.DocumentStore
	rules    *domain.RuleSet
	taxonomy *domain.Taxonomy
}

// NewHeuristicClassifier creates a heuristic classifier. The taxonomy may
// be nil, in which case product lines are not inferred and built-in
// defaults apply.
func NewHeuristicClassifier(store driven.DocumentStore, rules *domain.RuleSet, taxonomy *domain.Taxonomy) *HeuristicClassifier {
	if rules == nil {
		rules = domain.NewRuleSet()
	}
	return &HeuristicClassifier{store: store, rules: rules, taxonomy: taxonomy}
}

// Classify labels every extracted document that has no label yet.
func (c *HeuristicClassifier) Classify(ctx context.Context) (*driving.ClassifyReport, error) {
	docs, err := c.store.ListForHeuristics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents for heuristics: %w", err)
	}

	logger.Section("classify heuristic")
	report := &driving.ClassifyReport{Considered: len(docs)}
	if c.rules.Len() == 0 {
		logger.Warn("No heuristic rules loaded; labels will only carry defaults")
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		label := c.Label(doc)
		if err := c.store.UpsertLabel(ctx, label); err != nil {
			return report, fmt.Errorf("save label %s: %w", doc.FileID, err)
		}
		report.Labelled++
		logger.Progress("classify heuristic", i+1, len(docs), 100)
	}

	logger.Info("Heuristic labels written: %d", report.Labelled)
	return report, nil
}

// Label computes the heuristic label for a document. For each field the
// first matching rule wins; unmatched fields stay empty.
func (c *HeuristicClassifier) Label(doc domain.Document) domain.Label {
	text := doc.Name + " " + doc.ExcerptText()

	label := domain.Label{FileID: doc.FileID}
	for _, field := range c.rules.Fields() {
		_ = label.Set(field, c.rules.Match(field, text))
	}

	if label.ProductLine == "" && label.Model != "" && c.taxonomy != nil {
		if line, ok := c.taxonomy.ProductLineForModel(label.Model); ok {
			label.ProductLine = line
		}
	}

	label.DropUnbackedSentinels()
	label.ApplyDefaults(c.taxonomy.LabelDefaults())
	label.Source = domain.SourceHeuristic
	label.Confidence = domain.HeuristicConfidence
	label.NeedsReview = true
	return label
}
