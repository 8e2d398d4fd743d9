package services

import (
	"github.com/maxaizer/solon/internal/clients/gemini"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/pkg/errors"
	"strings"
)

var (
	ErrCredential = errors.New("credential rejected")
	ErrParse      = errors.New("reply parse failure")
	ErrTransport  = errors.New("transport failure")
)

// credentialNotFoundPhrase is what the API answers for keys without an enabled billing project.
const credentialNotFoundPhrase = "Requested entity was not found"

// RecommendationError carries a kind (one of ErrCredential, ErrParse, ErrTransport),
// the underlying cause and a message for the user in the profile language.
type RecommendationError struct {
	Kind    error
	Message string
	Err     error
}

func (e *RecommendationError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *RecommendationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newParseFailure(language models.Language, cause error) *RecommendationError {
	return &RecommendationError{
		Kind:    ErrParse,
		Message: language.Pick("Sincronización interrumpida.", "Synchronization interrupted."),
		Err:     cause,
	}
}

func classifyTransportError(language models.Language, err error) *RecommendationError {
	if IsCredentialError(err) {
		return &RecommendationError{
			Kind:    ErrCredential,
			Message: language.Pick("API Key Error: Facturación requerida.", "API Key Error: Billing required."),
			Err:     err,
		}
	}
	return &RecommendationError{
		Kind:    ErrTransport,
		Message: genericFailureMessage(language),
		Err:     err,
	}
}

// IsCredentialError reports whether a transport error means the key is missing, invalid or unbilled.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCredential) || errors.Is(err, gemini.ErrNoAPIKey) {
		return true
	}
	return strings.Contains(err.Error(), credentialNotFoundPhrase)
}

// FailureMessage is what the session shows for a failed request. Parse and transport failures
// share the generic message.
func FailureMessage(err error, language models.Language) string {
	var recommendationErr *RecommendationError
	if errors.As(err, &recommendationErr) && errors.Is(err, ErrCredential) {
		return recommendationErr.Message
	}
	return genericFailureMessage(language)
}

func genericFailureMessage(language models.Language) string {
	return language.Pick("Error en sincronización de patrones.", "Pattern synchronization error.")
}

// ClassifyFailure is used by sessions to decide what a failed request means for the user.
func ClassifyFailure(err error, language models.Language) (string, bool) {
	return FailureMessage(err, language), errors.Is(err, ErrCredential)
}
