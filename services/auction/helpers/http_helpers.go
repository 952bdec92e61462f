package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"auction-market/internal/auctionerrors"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key the auth middleware stores the caller's id under
const UserIDKey = "user_id"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	var verr *auctionerrors.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, auctionerrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusForbidden, "not allowed"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auctionerrors.ErrInvalidPrice):
		return http.StatusBadRequest, "invalid bid amount"
	case errors.Is(err, auctionerrors.ErrListingClosed):
		return http.StatusConflict, "listing is closed"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrBidNotHighEnough):
		return http.StatusConflict, "bid not higher than current bid"
	case errors.Is(err, auctionerrors.ErrReferentialConflict):
		return http.StatusConflict, "record still referenced by bids"
	case errors.Is(err, auctionerrors.ErrUsernameTaken):
		return http.StatusConflict, "username already taken"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the mapped error. Validation failures carry one message
// per form field; when field is set, other client errors are reported on it.
func RespondError(c *gin.Context, handlerName, field string, err error, ctx map[string]any) {
	status, message := MapErrorToHTTP(err)

	var verr *auctionerrors.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.JSONFieldErrors(c, status, verr.Messages(), message)
	case field != "" && status < http.StatusInternalServerError && status != http.StatusNotFound:
		utils.JSONFieldErrors(c, status, map[string]string{field: fieldMessage(err)}, message)
	default:
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	}

	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["handler"] = handlerName
	ctx["status"] = status
	ctx["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", ctx)
		return
	}
	utils.Warn(handlerName+": request rejected", ctx)
}

// fieldMessage strips the service call chain, keeping the sentinel and any detail after it
func fieldMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		auctionerrors.ErrListingClosed,
		auctionerrors.ErrInvalidPrice,
		auctionerrors.ErrBidTooLow,
		auctionerrors.ErrBidNotHighEnough,
		auctionerrors.ErrUnauthorized,
		auctionerrors.ErrUsernameTaken,
	} {
		if !errors.Is(err, sentinel) {
			continue
		}
		if i := strings.Index(msg, sentinel.Error()); i >= 0 {
			return msg[i:]
		}
		return sentinel.Error()
	}
	return msg
}

// ParseID reads a numeric path parameter, answering 400 when it is malformed
func ParseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid %s %q", param, raw), "invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// CurrentUserID returns the authenticated caller set by the auth middleware
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
