package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation utilities

// MaxNotesLength caps personal notes, in characters.
const MaxNotesLength = 20000

var analysisIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateAnalysisID validates the id taken from a path or query string
func ValidateAnalysisID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis ID cannot be empty")
	}
	if !analysisIDPattern.MatchString(id) {
		return fmt.Errorf("invalid analysis ID format (alphanumeric, dash, underscore only, max 128 chars)")
	}
	return nil
}

// ValidateNotes checks encoding and length of personal notes. Notes are
// stored as sent, so a NUL byte is refused rather than stripped.
func ValidateNotes(notes string) error {
	if !utf8.ValidString(notes) {
		return fmt.Errorf("notes must be valid UTF-8")
	}
	if strings.ContainsRune(notes, 0) {
		return fmt.Errorf("notes must not contain NUL bytes")
	}
	if n := utf8.RuneCountInString(notes); n > MaxNotesLength {
		return fmt.Errorf("notes too long: %d characters (max %d)", n, MaxNotesLength)
	}
	return nil
}
