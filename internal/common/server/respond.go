package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/motormarket/motormarket/internal/common/apperr"
)

// httpStatus maps application error codes to HTTP statuses.
func httpStatus(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperr.CodePermissionDenied:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeAlreadyExists:
		return http.StatusConflict
	case apperr.CodeFailedPrecondition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes a JSON error body for err and aborts the request.
func Error(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status := httpStatus(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// never leak internals
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    string(code),
			"message": msg,
		},
	})
}
