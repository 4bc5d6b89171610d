package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"card-backend/internal/middleware"
	"card-backend/internal/model"
)

// 对外错误提示：不暴露上游原始错误，完整错误链只写日志
const (
	msgMissingFront     = "No 'front' image file found in the request."
	msgNoExtractionData = "AI model did not return any data."
	msgSheetsNotReady   = "Backend not configured for Google Sheets."
	msgUnavailable      = "upstream service unavailable"
	msgBadResponse      = "upstream service returned an unexpected response"
	msgInternal         = "internal server error"
)

// invalid 构造对外可见的校验错误
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrValidation, fmt.Sprintf(format, args...))
}

// writeError 按错误类别写响应；op 是对外提示的前缀，如 "card extraction failed"
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, msg := http.StatusInternalServerError, op+": "+msgInternal
	switch {
	case errors.Is(err, model.ErrValidation):
		status, msg = http.StatusBadRequest, strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": ")
	case errors.Is(err, model.ErrNoExtractionData):
		msg = msgNoExtractionData
	case errors.Is(err, model.ErrConfiguration):
		msg = msgSheetsNotReady
	case errors.Is(err, model.ErrUpstreamUnavailable):
		msg = op + ": " + msgUnavailable
	case errors.Is(err, model.ErrUpstreamBadResponse):
		msg = op + ": " + msgBadResponse
	}
	_ = c.Error(err)
	logger.Warn(op,
		zap.Int("status", status),
		zap.String("request_id", middleware.RequestIDFrom(c)),
		zap.Error(err),
	)
	c.JSON(status, gin.H{"error": msg})
}
