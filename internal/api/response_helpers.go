// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
)

// APIResponse is the standard envelope for every JSON endpoint.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError is the standard error payload.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseHelper renders the standard envelopes.
type ResponseHelper struct{}

func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusOK, response)
}

func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusCreated, response)
}

func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string) {
	response := &APIResponse{
		Success:   false,
		Error:     &APIError{Code: errorCode, Message: message},
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	c.JSON(statusCode, response)
}

func (rh *ResponseHelper) BadRequest(c *gin.Context, message string) {
	rh.Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func (rh *ResponseHelper) NotFound(c *gin.Context, message string) {
	rh.Error(c, http.StatusNotFound, "NOT_FOUND", message)
}

func (rh *ResponseHelper) InternalError(c *gin.Context, message string) {
	rh.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// HandleError maps an application error to its HTTP status and renders
// the envelope. Unknown error values fall back to a 500.
func (rh *ResponseHelper) HandleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		rh.InternalError(c, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrorTypeConfiguration:
		status = http.StatusPreconditionFailed
	case apperrors.ErrorTypeUpstream:
		status = http.StatusBadGateway
	case apperrors.ErrorTypeTimeout:
		status = http.StatusGatewayTimeout
	}

	rh.Error(c, status, appErr.Code, appErr.Message)
}

// DownloadResponse streams bytes as a file attachment.
func (rh *ResponseHelper) DownloadResponse(c *gin.Context, data []byte, filename, contentType string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
