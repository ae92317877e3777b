package grants

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "github.com/bryanwahyu/grantsheet/internal/domain/grants"
)

func TestDeriveTitle(t *testing.T) {
	long := strings.Repeat("é", 150)

	cases := []struct {
		name, text, file, want string
	}{
		{"first line", "\n\n  Appel à Projets Résilience 2025  \nSuite", "x.pdf", "Appel à Projets Résilience 2025"},
		{"short line falls back", "Ref#123\nAppel à projets long", "my_grant-call.pdf", "my grant call"},
		{"exactly ten chars falls back", "0123456789", "appel.pdf", "appel"},
		{"truncated to 100 runes", long, "x.pdf", strings.Repeat("é", 100)},
		{"uppercase extension", "", "Fonds_Vert.PDF", "Fonds Vert"},
		{"no extension", "", "dossier", "dossier"},
		{"nothing usable", "   ", ".pdf", untitledFallback},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, DeriveTitle(c.text, c.file))
		})
	}
}

func TestAssembleCopiesRecommendation(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	for _, d := range domain.Decisions {
		s := sheet()
		s.FinalRecommendation.Decision = d

		a := Assemble("id-1", at, "appel.pdf", "Appel à Projets Résilience 2025", s)
		assert.Equal(t, domain.AnalysisID("id-1"), a.ID)
		assert.Equal(t, d, a.Recommendation)
		assert.Equal(t, d, a.DecisionSheet.FinalRecommendation.Decision)
		assert.Equal(t, "Appel à Projets Résilience 2025", a.Title)
		assert.Equal(t, "Appel à Projets Résilience 2025", a.PDFText)
		assert.Equal(t, time.UTC, a.UploadDate.Location())
		assert.True(t, a.UploadDate.Equal(at))
		assert.Nil(t, a.PersonalNotes)
	}
}
