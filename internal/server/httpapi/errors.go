package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/dmitrijs2005/cakelibrary/internal/server/services"
	"github.com/labstack/echo/v4"
)

// apiError is the JSON error body.
type apiError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *apiError) Error() string { return e.Message }

var (
	errInvalidBody  = &apiError{Status: http.StatusBadRequest, Code: "INVALID_JSON", Message: "Invalid request body"}
	errMissingToken = &apiError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Missing or invalid token"}
)

// toAPIError maps an error returned by a handler to its HTTP rendering.
// Anything unrecognized is a 500 carrying the error text.
func toAPIError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}

	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return &apiError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "Validation failed", Fields: ve.Fields}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return &apiError{Status: he.Code, Code: codeForStatus(he.Code), Message: fmt.Sprint(he.Message)}
	}

	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return &apiError{Status: http.StatusBadRequest, Code: "USER_EXISTS", Message: "User already exists"}
	case errors.Is(err, common.ErrDuplicateUsername):
		return &apiError{Status: http.StatusBadRequest, Code: "USERNAME_EXISTS", Message: "Username already exists"}
	case errors.Is(err, common.ErrMissingCredentials):
		return &apiError{Status: http.StatusBadRequest, Code: "MISSING_CREDENTIALS", Message: "Email and password are required"}
	case errors.Is(err, common.ErrInvalidCredentials):
		return &apiError{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	case errors.Is(err, common.ErrTokenExpired):
		return &apiError{Status: http.StatusUnauthorized, Code: "TOKEN_EXPIRED", Message: "Token expired"}
	case errors.Is(err, common.ErrTokenInvalid):
		return &apiError{Status: http.StatusUnauthorized, Code: "TOKEN_INVALID", Message: "Invalid token"}
	default:
		return &apiError{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: err.Error()}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL"
		}
		return http.StatusText(status)
	}
}

// handleError is echo's HTTPErrorHandler.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	ae := toAPIError(err)

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(ae.Status)
	} else {
		writeErr = c.JSON(ae.Status, ae)
	}
	if writeErr != nil {
		s.logger.Error(c.Request().Context(), "write error response", "error", writeErr)
	}
}
