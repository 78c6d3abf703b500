package driving

import "context"

// Classifier labels documents in the inventory.
type Classifier interface {
	// Classify labels every eligible document.
	Classify(ctx context.Context) (*ClassifyReport, error)
}

// ClassifyReport summarises a classification run.
type ClassifyReport struct {
	// Considered is the number of eligible documents.
	Considered int

	// Labelled is the number of labels written.
	Labelled int

	// Degraded counts documents left unchanged because the model call or
	// its output was unusable.
	Degraded int

	// Disabled is set when the classifier had nothing to run with.
	Disabled bool
}
