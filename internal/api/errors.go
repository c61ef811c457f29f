package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-vocab/internal/api/shared"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/service"
	"github.com/phrazzld/scry-vocab/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
//
// Conflicts and persistence failures are checked first because they wrap
// the store error that caused them.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrScheduleConflict):
		return http.StatusConflict

	case errors.Is(err, domain.ErrPersistenceFailure):
		return http.StatusInternalServerError

	case errors.Is(err, domain.ErrCardNotSchedulable),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusUnprocessableEntity

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidResponseTime),
		errors.Is(err, domain.ErrInvalidDifficultyRating),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrInvalidCardType),
		errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrScheduleConflict):
		return "Card was modified concurrently, retry the request"
	case errors.Is(err, domain.ErrPersistenceFailure):
		return "The request could not be stored"
	case errors.Is(err, domain.ErrCardNotSchedulable):
		return "Card cannot be reviewed"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return "Card status does not allow this action"
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrVocabularyNotFound):
		return "Vocabulary not found"
	case store.IsNotFoundError(err):
		return "Resource not found"
	case errors.Is(err, domain.ErrInvalidRating):
		return "Quality rating must be between 0 and 5"
	case errors.Is(err, domain.ErrInvalidResponseTime):
		return "Response time cannot be negative"
	case errors.Is(err, domain.ErrInvalidDifficultyRating):
		return "Difficulty rating must be between 1 and 5"
	case errors.Is(err, service.ErrInvalidCardType):
		return "Unknown card type"
	case errors.Is(err, service.ErrInvalidLimit):
		return "Limit must be positive"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return fmt.Sprintf("Invalid %s", verr.Field)
		}
		return "Validation error"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message that
// names the first failing field by its JSON name.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	first := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", first.Field(), getValidationTagMessage(first.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid", "uuid4":
		return "must be a UUID"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "card_type":
		return "unknown card type"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message for unmapped server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
