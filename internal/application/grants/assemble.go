package grants

import (
	"strings"
	"time"

	domain "github.com/bryanwahyu/grantsheet/internal/domain/grants"
)

const (
	maxTitleRunes    = 100
	minTitleRunes    = 10
	untitledFallback = "Appel à projets sans titre"
)

var filenameSpacer = strings.NewReplacer("_", " ", "-", " ")

// DeriveTitle takes the first non-empty line of the text, cut to 100
// characters, when it is longer than 10 characters. Otherwise it falls back
// to the filename without its .pdf suffix, underscores and hyphens as spaces.
func DeriveTitle(text, filename string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r := []rune(line)
		if len(r) > maxTitleRunes {
			r = r[:maxTitleRunes]
		}
		if len(r) > minTitleRunes {
			return string(r)
		}
		break
	}

	name := filename
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	name = filenameSpacer.Replace(name)
	if strings.TrimSpace(name) == "" {
		return untitledFallback
	}
	return name
}

// Assemble builds the record persisted for one successful analysis.
func Assemble(id domain.AnalysisID, now time.Time, filename, text string, sheet domain.DecisionSheet) *domain.GrantAnalysis {
	return &domain.GrantAnalysis{
		ID:             id,
		Title:          DeriveTitle(text, filename),
		UploadDate:     now.UTC(),
		PDFText:        text,
		DecisionSheet:  sheet,
		Recommendation: sheet.FinalRecommendation.Decision,
	}
}
