package grants

import (
	"time"
)

// AnalysisID tipe untuk GrantAnalysis
type AnalysisID string

// Verdict enum (eligibility)
type Verdict string

const (
	VerdictYes       Verdict = "YES"
	VerdictNo        Verdict = "NO"
	VerdictUncertain Verdict = "UNCERTAIN"
)

// Complexity enum (deadlines & workload)
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHeavy  Complexity = "Heavy"
)

// Decision enum (final recommendation)
type Decision string

const (
	DecisionWorthPursuing     Decision = "worth-pursuing"
	DecisionNeedsVerification Decision = "needs-verification"
	DecisionSkip              Decision = "skip"
)

// Verdicts, Complexities and Decisions list the documented value sets in contract order.
var (
	Verdicts     = []Verdict{VerdictYes, VerdictNo, VerdictUncertain}
	Complexities = []Complexity{ComplexityLow, ComplexityMedium, ComplexityHeavy}
	Decisions    = []Decision{DecisionWorthPursuing, DecisionNeedsVerification, DecisionSkip}
)

func (v Verdict) Valid() bool {
	for _, x := range Verdicts {
		if v == x {
			return true
		}
	}
	return false
}

func (c Complexity) Valid() bool {
	for _, x := range Complexities {
		if c == x {
			return true
		}
	}
	return false
}

func (d Decision) Valid() bool {
	for _, x := range Decisions {
		if d == x {
			return true
		}
	}
	return false
}

// Eligibility value object
type Eligibility struct {
	Verdict       Verdict `json:"verdict"`
	Justification string  `json:"justification"`
}

// DeadlinesWorkload value object
type DeadlinesWorkload struct {
	Deadline       string     `json:"deadline"`
	ProjectPeriod  string     `json:"projectPeriod"`
	Complexity     Complexity `json:"complexity"`
	EstimatedHours *float64   `json:"estimatedHours,omitempty"`
}

// FinalRecommendation value object
type FinalRecommendation struct {
	Decision Decision `json:"decision"`
	Reasons  []string `json:"reasons"`
}

// DecisionSheet is the six-section analysis produced per document.
type DecisionSheet struct {
	ExecutiveSummary    string              `json:"executiveSummary"`
	Eligibility         Eligibility         `json:"eligibility"`
	FinancialTerms      string              `json:"financialTerms"`
	DeadlinesWorkload   DeadlinesWorkload   `json:"deadlinesWorkload"`
	BlockersRisks       string              `json:"blockersRisks"`
	FinalRecommendation FinalRecommendation `json:"finalRecommendation"`
}

// Aggregate Root: GrantAnalysis
//
// Only PersonalNotes changes after creation. Recommendation mirrors
// DecisionSheet.FinalRecommendation.Decision as of creation time.
type GrantAnalysis struct {
	ID             AnalysisID    `json:"id"`
	Title          string        `json:"title"`
	UploadDate     time.Time     `json:"uploadDate"`
	PDFText        string        `json:"pdfText"`
	DecisionSheet  DecisionSheet `json:"decisionSheet"`
	Recommendation Decision      `json:"recommendation"`
	PersonalNotes  *string       `json:"personalNotes,omitempty"`
}
