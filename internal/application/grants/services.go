package grants

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/grantsheet/internal/application"
	"github.com/bryanwahyu/grantsheet/internal/domain/ai"
	domain "github.com/bryanwahyu/grantsheet/internal/domain/grants"
)

const (
	// DefaultMaxUploadBytes is the largest accepted PDF (10 MiB).
	DefaultMaxUploadBytes int64 = 10 * 1024 * 1024
	PDFContentType              = "application/pdf"
)

// Service implements the grant analysis use-cases.
// Safe for concurrent use as long as its collaborators are.
type Service struct {
	Extractor domain.Extractor
	AI        ai.Client
	Validator domain.SheetValidator
	Repo      domain.Repository
	// Archive is optional; nil disables PDF archiving.
	Archive domain.DocumentArchive
	Clock   application.Clock
	NewID   func() domain.AnalysisID
	Logger  *zap.Logger
	// MaxUploadBytes defaults to DefaultMaxUploadBytes when zero.
	MaxUploadBytes int64
}

func (s *Service) uploadLimit() int64 {
	if s.MaxUploadBytes <= 0 {
		return DefaultMaxUploadBytes
	}
	return s.MaxUploadBytes
}

func (s *Service) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

func (s *Service) newID() domain.AnalysisID {
	if s.NewID == nil {
		return domain.AnalysisID(uuid.New().String())
	}
	return s.NewID()
}

//
// ==== USE CASES ====
//

// UploadedFile is one multipart file part as received.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// AnalyzeResult carries the analysis and whether it reached storage.
type AnalyzeResult struct {
	Analysis  *domain.GrantAnalysis
	Persisted bool
}

// CheckUpload applies the upload gate. A nil file means no file part.
func CheckUpload(f *UploadedFile, limit int64) error {
	switch {
	case f == nil:
		return &domain.UploadError{Reason: domain.UploadMissingFile}
	case f.ContentType != PDFContentType:
		return &domain.UploadError{Reason: domain.UploadNotPDF}
	case f.Size > limit || int64(len(f.Data)) > limit:
		return &domain.UploadError{Reason: domain.UploadTooLarge}
	}
	return nil
}

// Analyze runs upload check, extraction, model call, validation and
// assembly. Storage and archiving are best-effort: their failures are
// logged and reported through Persisted, never returned.
func (s *Service) Analyze(ctx context.Context, f *UploadedFile) (AnalyzeResult, error) {
	if err := CheckUpload(f, s.uploadLimit()); err != nil {
		return AnalyzeResult{}, err
	}

	text, err := s.Extractor.ExtractText(f.Data)
	if err != nil {
		s.log().Info("pdf extraction failed", zap.String("file", f.Name), zap.Error(err))
		return AnalyzeResult{}, err
	}

	raw, err := s.AI.Complete(ctx, text)
	if err != nil {
		s.log().Warn("completion failed", zap.String("file", f.Name), zap.Error(err))
		return AnalyzeResult{}, err
	}

	sheet, err := s.Validator.Validate(raw)
	if err != nil {
		s.log().Warn("decision sheet rejected", zap.String("file", f.Name), zap.Error(err))
		return AnalyzeResult{}, err
	}

	a := Assemble(s.newID(), s.now().Now(), f.Name, text, *sheet)
	res := AnalyzeResult{Analysis: a, Persisted: true}

	if err := s.Repo.Save(ctx, a); err != nil {
		s.log().Warn("analysis not persisted", zap.String("id", string(a.ID)), zap.Error(err))
		res.Persisted = false
		return res, nil
	}
	if s.Archive != nil {
		if err := s.Archive.Put(ctx, a.ID, f.Data); err != nil {
			s.log().Warn("pdf not archived", zap.String("id", string(a.ID)), zap.Error(err))
		}
	}
	s.log().Info("analysis stored",
		zap.String("id", string(a.ID)),
		zap.String("recommendation", string(a.Recommendation)))
	return res, nil
}

// History lists every stored analysis, newest first.
func (s *Service) History(ctx context.Context) ([]*domain.GrantAnalysis, error) {
	return s.Repo.List(ctx)
}

// Get returns the analysis or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id domain.AnalysisID) (*domain.GrantAnalysis, error) {
	a, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return a, nil
}

// Delete removes the record; deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, id domain.AnalysisID) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.Archive != nil {
		if err := s.Archive.Remove(ctx, id); err != nil {
			s.log().Warn("archived pdf not removed", zap.String("id", string(id)), zap.Error(err))
		}
	}
	return nil
}

// UpdateNotes replaces the personal notes; empty notes are allowed.
func (s *Service) UpdateNotes(ctx context.Context, id domain.AnalysisID, notes string) error {
	return s.Repo.UpdateNotes(ctx, id, notes)
}

// ExportText renders the stored decision sheet for the clipboard.
func (s *Service) ExportText(ctx context.Context, id domain.AnalysisID) (string, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return a.DecisionSheet.PlainText(), nil
}

// ErrArchiveDisabled is returned by Document when no archive is configured.
var ErrArchiveDisabled = errors.New("document archive disabled")

// Document opens the archived original PDF of a stored analysis.
func (s *Service) Document(ctx context.Context, id domain.AnalysisID) (io.ReadCloser, string, error) {
	if s.Archive == nil {
		return nil, "", ErrArchiveDisabled
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.Archive.Open(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return rc, documentName(a.Title), nil
}

var unsafeNameChars = strings.NewReplacer("/", " ", "\\", " ", "\"", "'", "\n", " ", "\r", " ")

func documentName(title string) string {
	name := strings.TrimSpace(unsafeNameChars.Replace(title))
	if name == "" {
		name = "analyse"
	}
	return name + ".pdf"
}
