package prompt

import "fmt"

// Fields of the decision sheet, in the order the model is asked to emit them.
const (
	FieldExecutiveSummary    = "executiveSummary"
	FieldEligibility         = "eligibility"
	FieldFinancialTerms      = "financialTerms"
	FieldDeadlinesWorkload   = "deadlinesWorkload"
	FieldBlockersRisks       = "blockersRisks"
	FieldFinalRecommendation = "finalRecommendation"
)

// RequiredFields is the mandatory top-level field set of the decision sheet.
var RequiredFields = []string{
	FieldExecutiveSummary,
	FieldEligibility,
	FieldFinancialTerms,
	FieldDeadlinesWorkload,
	FieldBlockersRisks,
	FieldFinalRecommendation,
}

const systemPrompt = `Tu es un expert senior en financements publics français pour collectivités territoriales.
Ta mission est d'aider un chargé de mission à décider rapidement si un appel à projets mérite d'être poursuivi.

Analyse le document fourni et produis une fiche décisionnelle structurée en JSON avec EXACTEMENT les champs suivants :

{
  "executiveSummary": "Résumé en 10 lignes maximum",
  "eligibility": {
    "verdict": "YES" | "NO" | "UNCERTAIN",
    "justification": "Justification détaillée de l'éligibilité"
  },
  "financialTerms": "Montants, taux de subvention et contraintes financières",
  "deadlinesWorkload": {
    "deadline": "Date limite de dépôt",
    "projectPeriod": "Période du projet",
    "complexity": "Low" | "Medium" | "Heavy",
    "estimatedHours": nombre d'heures estimées (optionnel)
  },
  "blockersRisks": "Points bloquants, risques ou ambiguïtés",
  "finalRecommendation": {
    "decision": "worth-pursuing" | "needs-verification" | "skip",
    "reasons": ["raison 1", "raison 2", "raison 3"]
  }
}

N'invente AUCUNE information.
Si une donnée est absente ou floue, indique-le explicitement dans le texte.
Utilise un ton administratif clair et professionnel.
Réponds UNIQUEMENT avec ce JSON, sans markdown ni texte supplémentaire.

Contexte: Commune de 100 000 habitants.`

// GetSystemPrompt provides the persona, the exact JSON field set and the output rules.
func GetSystemPrompt() string {
	return systemPrompt
}

// GetUserPrompt wraps the extracted document text.
func GetUserPrompt(documentText string) string {
	return fmt.Sprintf("Voici le texte de l'appel à projets à analyser :\n\n%s", documentText)
}
