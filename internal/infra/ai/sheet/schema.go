package sheet

import (
	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
	"github.com/bryanwahyu/grantsheet/internal/infra/ai/prompt"
)

// nonEmpty matches a string holding at least one non-blank character.
var nonEmpty = map[string]any{"type": "string", "minLength": 1, "pattern": `\S`}

func text(strict bool) map[string]any {
	if strict {
		return nonEmpty
	}
	return map[string]any{"type": "string"}
}

func required(strict bool, enum []string) map[string]any {
	s := map[string]any{"type": "string", "minLength": 1}
	if strict {
		s["pattern"] = `\S`
		if len(enum) > 0 {
			s["enum"] = enum
		}
	}
	return s
}

func strs[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// sectionSchemas returns one JSON Schema per top-level field. Lenient mode
// checks only what the presence contract demands; strict mode adds the enum
// value sets and non-blank free text.
func sectionSchemas(strict bool) map[string]map[string]any {
	deadlinesRequired := []string{"complexity", "deadline"}
	if strict {
		deadlinesRequired = append(deadlinesRequired, "projectPeriod")
	}

	return map[string]map[string]any{
		prompt.FieldExecutiveSummary: text(strict),
		prompt.FieldFinancialTerms:   text(strict),
		prompt.FieldBlockersRisks:    text(strict),
		prompt.FieldEligibility: {
			"type":     "object",
			"required": []string{"verdict", "justification"},
			"properties": map[string]any{
				"verdict":       required(strict, strs(grants.Verdicts)),
				"justification": required(strict, nil),
			},
		},
		prompt.FieldDeadlinesWorkload: {
			"type":     "object",
			"required": deadlinesRequired,
			"properties": map[string]any{
				"deadline":       required(strict, nil),
				"projectPeriod":  text(strict),
				"complexity":     required(strict, strs(grants.Complexities)),
				"estimatedHours": map[string]any{"type": []string{"number", "null"}},
			},
		},
		prompt.FieldFinalRecommendation: {
			"type":     "object",
			"required": []string{"decision", "reasons"},
			"properties": map[string]any{
				"decision": required(strict, strs(grants.Decisions)),
				"reasons": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
	}
}
