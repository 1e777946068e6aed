package api

import (
	stderrors "errors"
	"net/http"

	"github.com/vytor/wordflow/internal/errors"
	"github.com/vytor/wordflow/internal/logger"
	"github.com/vytor/wordflow/internal/validation"
)

type errorBody struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []validation.FieldError `json:"details,omitempty"`
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var details validation.Errors
	appErr, ok := errors.As(err)
	switch {
	case ok:
	case stderrors.As(err, &details):
		appErr = errors.NewValidationError(details[0].Field, details[0].Message)
		appErr.Message = details.Error()
	default:
		// Wrap unknown errors as internal errors
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	writeJSON(w, appErr.Status, map[string]errorBody{
		"error": {Code: appErr.Code, Message: appErr.Message, Details: details},
	})
}
