package grants

import (
	"fmt"
	"strconv"
	"strings"
)

// Badge colour used by the exporters.
type Badge string

const (
	BadgeGreen  Badge = "green"
	BadgeYellow Badge = "yellow"
	BadgeRed    Badge = "red"
)

// BadgeFor maps any verdict, complexity or decision value to its badge.
// Unknown values get the neutral yellow badge.
func BadgeFor(value string) Badge {
	switch value {
	case string(VerdictYes), string(ComplexityLow), string(DecisionWorthPursuing):
		return BadgeGreen
	case string(VerdictNo), string(ComplexityHeavy), string(DecisionSkip):
		return BadgeRed
	default:
		return BadgeYellow
	}
}

// VerdictLabel returns the French label; unknown values are returned as-is.
func VerdictLabel(v Verdict) string {
	switch v {
	case VerdictYes:
		return "✅ OUI"
	case VerdictNo:
		return "❌ NON"
	case VerdictUncertain:
		return "⚠️ INCERTAIN"
	default:
		return string(v)
	}
}

// RecommendationLabel returns the French label; unknown values are returned as-is.
func RecommendationLabel(d Decision) string {
	switch d {
	case DecisionWorthPursuing:
		return "✅ À creuser"
	case DecisionNeedsVerification:
		return "⚠️ À vérifier"
	case DecisionSkip:
		return "❌ À ignorer"
	default:
		return string(d)
	}
}

// PlainText renders the sheet in the clipboard export format.
func (s DecisionSheet) PlainText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "RÉSUMÉ EXÉCUTIF\n%s\n\n", s.ExecutiveSummary)
	fmt.Fprintf(&b, "ÉLIGIBILITÉ: %s\n%s\n\n", s.Eligibility.Verdict, s.Eligibility.Justification)
	fmt.Fprintf(&b, "TERMES FINANCIERS\n%s\n\n", s.FinancialTerms)

	dw := s.DeadlinesWorkload
	fmt.Fprintf(&b, "DÉLAIS & CHARGE DE TRAVAIL\nDeadline: %s\nPériode: %s\nComplexité: %s\n",
		dw.Deadline, dw.ProjectPeriod, dw.Complexity)
	if dw.EstimatedHours != nil && *dw.EstimatedHours != 0 {
		fmt.Fprintf(&b, "Heures estimées: %sh\n", strconv.FormatFloat(*dw.EstimatedHours, 'f', -1, 64))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "POINTS BLOQUANTS & RISQUES\n%s\n\n", s.BlockersRisks)
	fmt.Fprintf(&b, "RECOMMANDATION FINALE: %s\nRaisons:\n", RecommendationLabel(s.FinalRecommendation.Decision))
	for i, r := range s.FinalRecommendation.Reasons {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	return strings.TrimSpace(b.String())
}
