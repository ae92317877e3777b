package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemPromptCarriesContract(t *testing.T) {
	p := GetSystemPrompt()
	for _, f := range RequiredFields {
		assert.Contains(t, p, `"`+f+`"`)
	}
	for _, v := range []string{
		`"YES" | "NO" | "UNCERTAIN"`,
		`"Low" | "Medium" | "Heavy"`,
		`"worth-pursuing" | "needs-verification" | "skip"`,
		`"justification"`, `"deadline"`, `"projectPeriod"`, `"estimatedHours"`, `"reasons"`,
	} {
		assert.Contains(t, p, v)
	}
	assert.Contains(t, p, "N'invente AUCUNE information.")
	assert.Contains(t, p, "Réponds UNIQUEMENT avec ce JSON")
}

func TestUserPromptEmbedsText(t *testing.T) {
	p := GetUserPrompt("Appel à projets 2025")
	assert.True(t, strings.HasSuffix(p, "\n\nAppel à projets 2025"))
}
