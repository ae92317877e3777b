package grants

import (
	"errors"
	"fmt"
)

// Extraction failures (document's fault, never retried automatically).
var (
	ErrEncryptedDocument = errors.New("pdf is password protected")
	ErrInvalidFormat     = errors.New("input is not a valid pdf")
	ErrExtractionFailed  = errors.New("pdf text extraction failed")
	// ErrNoText comes wrapped in ErrExtractionFailed (scanned documents).
	ErrNoText = errors.New("pdf contains no extractable text")
)

// Decision sheet failures. Every SheetError also matches ErrAnalysisFailed.
var (
	ErrAnalysisFailed   = errors.New("analysis failed")
	ErrMalformedJSON    = errors.New("malformed json")
	ErrMissingField     = errors.New("missing field")
	ErrInvalidStructure = errors.New("invalid structure")
)

// Storage failures.
var (
	ErrNotFound           = errors.New("analysis not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// UploadReason tells why an upload was rejected before extraction.
type UploadReason string

const (
	UploadMissingFile UploadReason = "missing_file"
	UploadNotPDF      UploadReason = "not_pdf"
	UploadTooLarge    UploadReason = "too_large"
)

// UploadError is the client's fault; it is never retried.
type UploadError struct {
	Reason UploadReason
}

func (e *UploadError) Error() string { return "invalid upload: " + string(e.Reason) }

// SheetError reports which part of the model output broke the contract.
// Field holds the top-level field for ErrMissingField and the section for
// ErrInvalidStructure.
type SheetError struct {
	Kind  error
	Field string
	Err   error
}

func (e *SheetError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return msg
}

func (e *SheetError) Is(target error) bool {
	return target == ErrAnalysisFailed || target == e.Kind
}

func (e *SheetError) Unwrap() error { return e.Err }
