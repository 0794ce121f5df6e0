package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamfit/internal/service"
)

// AssistantHandler mantiene dependencias para los endpoints del asistente RAG.
// Con assistant nil responde 503: el resto del servicio sigue operativo.
type AssistantHandler struct {
	logger    *zap.Logger
	assistant *service.AssistantService
	store     *service.ResultStore
}

// NewAssistantHandler crea una instancia con las dependencias necesarias.
func NewAssistantHandler(logger *zap.Logger, assistant *service.AssistantService, store *service.ResultStore) *AssistantHandler {
	return &AssistantHandler{
		logger:    logger,
		assistant: assistant,
		store:     store,
	}
}

// Query maneja POST /assistant/query.
func (h *AssistantHandler) Query(c *gin.Context) {
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant not available"})
		return
	}

	var req struct {
		Query string `json:"query" binding:"required"`
		Limit int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid query request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	response := h.assistant.Query(c.Request.Context(), req.Query, req.Limit)
	c.JSON(http.StatusOK, response)
}

// Sync maneja POST /assistant/sync.
func (h *AssistantHandler) Sync(c *gin.Context) {
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant not available"})
		return
	}

	result, err := h.store.Load()
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("loading analysis result failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load analysis result"})
		return
	}

	count, err := h.assistant.SyncFromResult(c.Request.Context(), result)
	if err != nil {
		h.logger.Error("index sync failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sync candidates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "synced_candidates": count})
}

// Stats maneja GET /assistant/stats.
func (h *AssistantHandler) Stats(c *gin.Context) {
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant not available"})
		return
	}

	c.JSON(http.StatusOK, h.assistant.Stats(c.Request.Context()))
}
