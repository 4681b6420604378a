package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
	"github.com/xxxsen/otpauth/internal/pkg/response"
)

const msgServerError = "Server error"

func statusOf(err error) int {
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, appErr.ErrInvalid),
		errors.Is(err, appErr.ErrConflict),
		errors.Is(err, appErr.ErrNotFound),
		errors.Is(err, appErr.ErrExpired),
		errors.Is(err, appErr.ErrInvalidOTP):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		requestID, _ := c.Get("request_id")
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.Any("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Error(c, status, msgServerError)
		return
	}
	msg, ok := appErr.MessageOf(err)
	if !ok {
		msg = http.StatusText(status)
	}
	response.Error(c, status, msg)
}
