package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	appgrants "github.com/bryanwahyu/grantsheet/internal/application/grants"
	"github.com/bryanwahyu/grantsheet/internal/domain/ai"
	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
	"github.com/bryanwahyu/grantsheet/internal/infra/ai/prompt"
)

// User-facing messages.
const (
	msgMissingFile     = "Aucun fichier fourni"
	msgNotPDF          = "Le fichier doit être un PDF"
	msgTooLarge        = "Le fichier ne doit pas dépasser %s"
	msgEncrypted       = "Le PDF est protégé par mot de passe. Veuillez fournir un PDF non chiffré."
	msgInvalidPDF      = "Le fichier fourni n'est pas un PDF valide."
	msgNoText          = "Le PDF ne contient aucun texte extractible. Les documents scannés ne sont pas pris en charge."
	msgExtraction      = "Erreur lors de l'analyse du PDF."
	msgRateLimited     = "Limite de requêtes atteinte. Veuillez réessayer dans 1 minute."
	msgEmptyResponse   = "Aucune réponse reçue de l'IA"
	msgCompletion      = "Erreur d'analyse IA. Veuillez réessayer."
	msgMalformed       = "L'IA a renvoyé une réponse mal formatée. Veuillez réessayer."
	msgMissingField    = "Champ manquant dans la réponse IA: "
	msgBadEligibility  = "Structure d'éligibilité invalide"
	msgBadDeadlines    = "Structure de délais/charge invalide"
	msgBadFinal        = "Structure de recommandation invalide"
	msgBadSection      = "Structure invalide dans la réponse IA: "
	msgUnexpected      = "Erreur inattendue lors du traitement"
	msgHistory         = "Erreur lors de la récupération de l'historique"
	msgMissingID       = "ID manquant"
	msgInvalidID       = "ID invalide"
	msgDelete          = "Erreur lors de la suppression"
	msgNotFound        = "Analyse non trouvée"
	msgFetch           = "Erreur lors de la récupération"
	msgMissingNotes    = "personalNotes manquant dans le body"
	msgInvalidNotes    = "Notes invalides"
	msgUpdate          = "Erreur lors de la mise à jour"
	msgNoDocument      = "Document original non disponible"
	upstreamRetryAfter = "60"
)

// apiError is what the client sees: one status, one message.
type apiError struct {
	status     int
	message    string
	retryAfter string
}

// badRequest is returned by handlers for input they reject themselves.
type badRequest struct{ message string }

func (e *badRequest) Error() string { return e.message }

// tooLargeMessage names the configured ceiling, "10MB" by default.
func tooLargeMessage(limit int64) string {
	if limit > 0 && limit%(1<<20) == 0 {
		return fmt.Sprintf(msgTooLarge, fmt.Sprintf("%dMB", limit>>20))
	}
	return fmt.Sprintf(msgTooLarge, fmt.Sprintf("%d octets", limit))
}

var sectionMessages = map[string]string{
	prompt.FieldEligibility:         msgBadEligibility,
	prompt.FieldDeadlinesWorkload:   msgBadDeadlines,
	prompt.FieldFinalRecommendation: msgBadFinal,
}

// classify maps an error from the service to its HTTP rendering. fallback is
// the message for storage and unknown failures of the calling endpoint.
// uploadLimit is only used to word the too-large message.
func classify(err error, fallback string, uploadLimit int64) apiError {
	var (
		br *badRequest
		ue *grants.UploadError
		se *grants.SheetError
	)
	switch {
	case errors.As(err, &br):
		return apiError{status: http.StatusBadRequest, message: br.message}
	case errors.As(err, &ue):
		msg := msgMissingFile
		switch ue.Reason {
		case grants.UploadNotPDF:
			msg = msgNotPDF
		case grants.UploadTooLarge:
			msg = tooLargeMessage(uploadLimit)
		}
		return apiError{status: http.StatusBadRequest, message: msg}

	case errors.Is(err, grants.ErrEncryptedDocument):
		return apiError{status: http.StatusUnprocessableEntity, message: msgEncrypted}
	case errors.Is(err, grants.ErrInvalidFormat):
		return apiError{status: http.StatusUnprocessableEntity, message: msgInvalidPDF}
	case errors.Is(err, grants.ErrNoText):
		return apiError{status: http.StatusUnprocessableEntity, message: msgNoText}
	case errors.Is(err, grants.ErrExtractionFailed):
		return apiError{status: http.StatusUnprocessableEntity, message: msgExtraction}

	case errors.Is(err, ai.ErrRateLimited):
		return apiError{status: http.StatusServiceUnavailable, message: msgRateLimited, retryAfter: upstreamRetryAfter}
	case errors.Is(err, ai.ErrEmptyResponse):
		return apiError{status: http.StatusInternalServerError, message: msgEmptyResponse}
	case errors.Is(err, ai.ErrCompletionFailed):
		return apiError{status: http.StatusInternalServerError, message: msgCompletion}

	case errors.As(err, &se):
		return apiError{status: http.StatusInternalServerError, message: sheetMessage(se)}

	case errors.Is(err, grants.ErrNotFound):
		return apiError{status: http.StatusNotFound, message: msgNotFound}
	case errors.Is(err, appgrants.ErrArchiveDisabled):
		return apiError{status: http.StatusNotFound, message: msgNoDocument}
	}
	return apiError{status: http.StatusInternalServerError, message: fallback}
}

func sheetMessage(se *grants.SheetError) string {
	switch se.Kind {
	case grants.ErrMalformedJSON:
		return msgMalformed
	case grants.ErrMissingField:
		return msgMissingField + se.Field
	case grants.ErrInvalidStructure:
		if msg, ok := sectionMessages[se.Field]; ok {
			return msg
		}
		return msgBadSection + se.Field
	}
	return msgMalformed
}
