package grants

import (
	"context"
	"io"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *GrantAnalysis) error
	// Get returns (nil, nil) when the id is absent.
	Get(ctx context.Context, id AnalysisID) (*GrantAnalysis, error)
	// List returns every stored analysis, newest first.
	List(ctx context.Context) ([]*GrantAnalysis, error)
	// Delete of an absent id is not an error.
	Delete(ctx context.Context, id AnalysisID) error
	UpdateNotes(ctx context.Context, id AnalysisID, notes string) error
}

// Extractor port: PDF bytes to trimmed plain text.
type Extractor interface {
	ExtractText(data []byte) (string, error)
}

// SheetValidator port: raw model output to a validated DecisionSheet.
type SheetValidator interface {
	Validate(raw string) (*DecisionSheet, error)
}

// DocumentArchive port (penyimpanan PDF asli, optional)
type DocumentArchive interface {
	Put(ctx context.Context, id AnalysisID, data []byte) error
	Open(ctx context.Context, id AnalysisID) (io.ReadCloser, error)
	Remove(ctx context.Context, id AnalysisID) error
}
