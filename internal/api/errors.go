package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/spice-advisor/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	var provider *common.ProviderError
	switch {
	case common.IsConfigurationError(err):
		return http.StatusPreconditionFailed, "not_configured"
	case errors.As(err, &provider):
		return http.StatusBadGateway, "provider_error"
	case errors.Is(err, common.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_config"
	case errors.Is(err, common.ErrStorage):
		return http.StatusInternalServerError, "storage_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}
