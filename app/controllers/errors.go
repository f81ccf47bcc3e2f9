package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/siniestros-lookup/app/responses"
	"github.com/siniestros-lookup/app/services"
	"github.com/siniestros-lookup/internal/index"
)

// RequestIDKey key lưu request id trong gin.Context
const RequestIDKey = "request_id"

// errorJSON ghi ErrorResponse chuẩn
func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: c.GetString(RequestIDKey),
	})
}

// abortWithError maps service errors onto HTTP status codes.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownRegion):
		errorJSON(c, http.StatusNotFound, "UNKNOWN_REGION", err.Error())
	case errors.Is(err, index.ErrNotFound):
		errorJSON(c, http.StatusNotFound, "DATA_NOT_FOUND", err.Error())
	case errors.Is(err, index.ErrFetchFailure):
		errorJSON(c, http.StatusBadGateway, "FETCH_FAILURE", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		errorJSON(c, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
	default:
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
