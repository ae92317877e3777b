package ai

import "context"

// Client sends the extracted document text to the model and returns the raw
// JSON text of its answer. It never retries.
type Client interface {
	Complete(ctx context.Context, documentText string) (string, error)
}
