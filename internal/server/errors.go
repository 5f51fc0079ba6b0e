package server

import (
	"errors"
	"net/http"

	actiondomain "github.com/clubworks/prestige/internal/action/domain"
	awarddomain "github.com/clubworks/prestige/internal/award/domain"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"github.com/clubworks/prestige/internal/hub"
	mcdomain "github.com/clubworks/prestige/internal/membershipclass/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	errorType, code := classifyErrorForLog(err)

	switch errorType {
	case "validation_error":
		return http.StatusBadRequest, errorPayload{
			Type:    errorType,
			Code:    code,
			Message: "validation error",
		}
	case "unauthenticated":
		return http.StatusUnauthorized, errorPayload{
			Type:    errorType,
			Code:    code,
			Message: "unauthenticated",
		}
	case "forbidden":
		return http.StatusForbidden, errorPayload{
			Type:    errorType,
			Code:    code,
			Message: "forbidden",
		}
	case "not_found":
		return http.StatusNotFound, errorPayload{
			Type:    errorType,
			Code:    code,
			Message: "not found",
		}
	case "conflict":
		return http.StatusConflict, errorPayload{
			Type:    errorType,
			Code:    code,
			Message: "conflict",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog maps a domain error onto its kind and code; the same
// classification drives the response status and the request log fields.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}

	switch {
	case isValidationError(err):
		return "validation_error", err.Error()
	case errors.Is(err, hub.ErrUnauthenticated):
		return "unauthenticated", err.Error()
	case errors.Is(err, hub.ErrDenied),
		errors.Is(err, awarddomain.ErrModifyOwnApproved):
		return "forbidden", err.Error()
	case isNotFoundError(err):
		return "not_found", err.Error()
	case isConflictError(err):
		return "conflict", err.Error()
	default:
		return "internal_error", "internal_error"
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, awarddomain.ErrUserRequired),
		errors.Is(err, awarddomain.ErrCategoryRequired),
		errors.Is(err, awarddomain.ErrDateRequired),
		errors.Is(err, awarddomain.ErrDescriptionEmpty),
		errors.Is(err, awarddomain.ErrNoPoints),
		errors.Is(err, awarddomain.ErrMixedPoints),
		errors.Is(err, awarddomain.ErrInvalidSign),
		errors.Is(err, awarddomain.ErrInvalidAction),
		errors.Is(err, awarddomain.ErrInvalidCategory),
		errors.Is(err, mcdomain.ErrLevelOne),
		errors.Is(err, mcdomain.ErrInvalidLevel),
		errors.Is(err, mcdomain.ErrInsufficientPrestige),
		errors.Is(err, mcdomain.ErrInvalidStage),
		errors.Is(err, mcdomain.ErrStageMismatch),
		errors.Is(err, actiondomain.ErrInvalidTarget):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, awarddomain.ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, mcdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, awarddomain.ErrAlreadyRemoved),
		errors.Is(err, mcdomain.ErrAlreadyAtLevel),
		errors.Is(err, mcdomain.ErrAlreadyHigherLevel),
		errors.Is(err, mcdomain.ErrAlreadyApproved),
		errors.Is(err, mcdomain.ErrClassRemoved),
		errors.Is(err, mcdomain.ErrAlreadyRemoved):
		return true
	default:
		return false
	}
}
