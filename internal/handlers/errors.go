package handlers

import (
	"errors"
	"net/http"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/middleware"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Error codes returned in the response body
const (
	CodeNotFound           = "NOT_FOUND"
	CodeNotPending         = "NOT_PENDING"
	CodeAlreadyDistributed = "ALREADY_DISTRIBUTED"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeConflict           = "CONFLICT"
	CodeStoreFailure       = "STORE_FAILURE"
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
)

// errorStatus maps a service error onto an HTTP status and body code.
// The specific precondition errors are checked before their category.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, services.ErrNotPending):
		return http.StatusBadRequest, CodeNotPending
	case errors.Is(err, services.ErrAlreadyDistributed):
		return http.StatusBadRequest, CodeAlreadyDistributed
	case errors.Is(err, services.ErrPreconditionFailed):
		return http.StatusBadRequest, CodePreconditionFailed
	case errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusBadRequest, CodeInsufficientFunds
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeStoreFailure
	}
}

// respondError writes the error body. Store failures are logged and their detail is hidden.
func respondError(c *gin.Context, op string, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error(op+": Request failed", "error", err, "path", c.Request.URL.Path, "request_id", c.GetString(middleware.RequestIDKey))
		_ = c.Error(err)
		message = "Internal error, please retry later"
	}
	c.JSON(status, gin.H{"success": false, "message": message, "code": code})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message, "code": CodeBadRequest})
}

// objectIDParam parses the named path parameter, writing a 400 when it is malformed
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid ID format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// adminID returns the authenticated admin set by the JWT middleware
func adminID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.UserIDKey)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated", "code": CodeUnauthorized})
		return "", false
	}
	return id, true
}
