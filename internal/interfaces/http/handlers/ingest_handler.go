// Package handlers implements the HTTP endpoints of the API server.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aegisai/aegis/internal/application/dto"
	"github.com/aegisai/aegis/internal/application/service"
	"github.com/aegisai/aegis/internal/interfaces/http/middleware"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// IngestHandler accepts telemetry batches.
type IngestHandler struct {
	ingestion service.IngestionService
	logger    logger.Logger
}

func NewIngestHandler(ingestion service.IngestionService, log logger.Logger) *IngestHandler {
	return &IngestHandler{
		ingestion: ingestion,
		logger:    log.WithComponent("ingest_handler"),
	}
}

// IngestML handles POST /api/v1/ingest/ml.
func (h *IngestHandler) IngestML(c *gin.Context) {
	var req dto.IngestMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(c.Request.Context(), "invalid ml ingest request", logger.Fields{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    string(constants.ErrCodeInvalidRequest),
			Message: err.Error(),
		})
		return
	}

	resp, err := h.ingestion.IngestML(c.Request.Context(), middleware.TenantID(c), &req)
	if err != nil {
		h.handleError(c, err, "ingest_ml")
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// IngestLLM handles POST /api/v1/ingest/llm.
func (h *IngestHandler) IngestLLM(c *gin.Context) {
	var req dto.IngestLLMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(c.Request.Context(), "invalid llm ingest request", logger.Fields{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    string(constants.ErrCodeInvalidRequest),
			Message: err.Error(),
		})
		return
	}

	resp, err := h.ingestion.IngestLLM(c.Request.Context(), middleware.TenantID(c), &req)
	if err != nil {
		h.handleError(c, err, "ingest_llm")
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *IngestHandler) handleError(c *gin.Context, err error, operation string) {
	appErr := errors.AsAppError(err)
	if appErr == nil {
		h.logger.Error(c.Request.Context(), "unexpected ingestion error", err, logger.Fields{
			"operation": operation,
		})
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    string(constants.ErrCodeInternal),
			Message: "internal error",
		})
		return
	}

	h.logger.Warn(c.Request.Context(), "ingestion request failed", logger.Fields{
		"operation":  operation,
		"error_code": string(appErr.Code()),
		"error":      appErr.Error(),
	})
	c.JSON(appErr.HTTPStatus(), dto.ErrorResponse{
		Code:    string(appErr.Code()),
		Message: appErr.Error(),
	})
}
