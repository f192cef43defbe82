package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/progression"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Error codes carried in ErrorEnvelope.
const (
	CodeInvalidInput     = "invalid_input"
	CodeInvalidJSON      = "invalid_json"
	CodeLocked           = "locked"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal"
)

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondErr maps domain errors to a status and code.
func respondErr(c *gin.Context, err error) {
	var (
		progInput *progression.InputError
		chatInput *chat.InputError
		locked    *progression.LockedError
	)
	switch {
	case errors.As(err, &progInput), errors.As(err, &chatInput):
		RespondError(c, http.StatusBadRequest, CodeInvalidInput, err)
	case errors.As(err, &locked):
		RespondError(c, http.StatusForbidden, CodeLocked, err)
	case errors.Is(err, progression.ErrUnknownLesson):
		RespondError(c, http.StatusNotFound, CodeNotFound, err)
	default:
		RespondError(c, http.StatusInternalServerError, CodeInternal, err)
	}
}
