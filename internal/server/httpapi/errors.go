package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tijori/tijori/internal/common"
)

// Response messages shared by several endpoints.
const (
	msgMissingToken     = "Access token is missing"
	msgInvalidToken     = "Invalid access token"
	msgAccountGone      = "User no longer exists"
	msgAlreadyLoggedIn  = "Already logged in."
	msgInvalidEmail     = "Invalid email"
	msgInvalidPassword  = "Invalid password."
	msgInternal         = "Internal server error"
	msgCollectionAbsent = "Collection not found or access denied."
	msgFileAbsent       = "File not found or access denied."
)

type messageResponse struct {
	Message string `json:"message"`
}

// errText overrides the generic messages for one endpoint.
type errText struct {
	invalid  string
	notFound string
	conflict string
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// statusOf maps a service error to a status code and response message.
func statusOf(err error, txt errText) (int, string) {
	switch {
	case errors.Is(err, common.ErrMissingToken):
		return http.StatusUnauthorized, msgMissingToken
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, msgInvalidToken
	case errors.Is(err, common.ErrAccountGone):
		return http.StatusForbidden, msgAccountGone
	case errors.Is(err, common.ErrAlreadyAuthenticated):
		return http.StatusConflict, msgAlreadyLoggedIn
	case errors.Is(err, common.ErrInvalidEmail):
		return http.StatusUnauthorized, msgInvalidEmail
	case errors.Is(err, common.ErrInvalidPassword):
		return http.StatusUnauthorized, msgInvalidPassword
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, orDefault(txt.invalid, "Invalid request.")
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, orDefault(txt.notFound, "Not found.")
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, orDefault(txt.conflict, "Already exists.")
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func (s *HTTPServer) abortWithError(c *gin.Context, err error, txt errText) {
	status, msg := statusOf(err, txt)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, messageResponse{Message: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, messageResponse{Message: msg})
}
