package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	sharedError "github.com/memberhub/registry-api/internal/shared/error"
	"github.com/memberhub/registry-api/internal/shared/validator"
)

// BindJSON parses and validates a JSON request body.
// Returns true if binding succeeded, false if failed (response already sent)
//
// Usage:
//
//	var req UpdateStatusRequest
//	if !handler.BindJSON(c, &req) {
//	    return
//	}
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindFailed(c, err)
	}
	return true
}

// BindForm parses and validates a form or multipart request body.
// Same contract as BindJSON.
func BindForm(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		return bindFailed(c, err)
	}
	return true
}

func bindFailed(c *gin.Context, err error) bool {
	// Add error to context for middleware logging
	c.Error(err)

	// Check if it's a validation error
	if resp, ok := validator.ToErrorResponse(err); ok {
		c.JSON(http.StatusBadRequest, resp)
	} else {
		// Parsing error or other binding errors
		c.JSON(sharedError.InvalidRequest.Status, sharedError.InvalidRequest)
	}
	return false
}

// RespondError sends an error response with logging
//
// Usage:
//
//	if err := service.DoSomething(); err != nil {
//	    handler.RespondError(c, err, sharedError.InternalServerError)
//	    return
//	}
func RespondError(c *gin.Context, err error, errResp sharedError.ErrorResponse) {
	// Add error to context for middleware logging
	c.Error(err)

	// Send error response
	c.JSON(errResp.Status, errResp)
}

// RespondServiceError resolves a registered domain error, falling back to the
// generic 500 envelope for anything unregistered. Outside release mode the
// fallback carries the underlying error text to ease debugging.
func RespondServiceError(c *gin.Context, err error) {
	if resp, ok := sharedError.ResolveDomainError(err); ok {
		RespondError(c, err, resp)
		return
	}

	resp := sharedError.InternalServerError
	if gin.Mode() != gin.ReleaseMode {
		resp.Message = err.Error()
	}
	RespondError(c, err, resp)
}
