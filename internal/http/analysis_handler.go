package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamfit/internal/domain"
	"teamfit/internal/service"
)

// AnalysisHandler mantiene dependencias para los endpoints de analisis.
type AnalysisHandler struct {
	logger    *zap.Logger
	analysis  *service.AnalysisService
	extractor *service.PersonalityTraitsExtractor
	store     *service.ResultStore
	assistant *service.AssistantService
	limiter   *service.RateLimiter
	autoSync  bool
}

// NewAnalysisHandler crea una instancia con las dependencias necesarias.
// assistant puede ser nil: el analisis funciona en modo degradado sin RAG.
func NewAnalysisHandler(
	logger *zap.Logger,
	analysis *service.AnalysisService,
	extractor *service.PersonalityTraitsExtractor,
	store *service.ResultStore,
	assistant *service.AssistantService,
	limiter *service.RateLimiter,
	autoSync bool,
) *AnalysisHandler {
	return &AnalysisHandler{
		logger:    logger,
		analysis:  analysis,
		extractor: extractor,
		store:     store,
		assistant: assistant,
		limiter:   limiter,
		autoSync:  autoSync,
	}
}

// Health maneja GET /health.
func (h *AnalysisHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "API is running"})
}

// Status maneja GET /status.
func (h *AnalysisHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                           "operational",
		"compatibility_analyzer_available": true,
		"assistant_available":              h.assistant != nil,
		"rate_limit_info": gin.H{
			"requests_per_second": h.limiter.RequestsPerSecond(),
		},
	})
}

// AnalyzeCompatibility maneja POST /analysis/compatibility.
func (h *AnalysisHandler) AnalyzeCompatibility(c *gin.Context) {
	var req struct {
		TeamData       domain.TeamInput `json:"team_data" binding:"required"`
		CandidatesData struct {
			Candidates []domain.CandidateInput `json:"candidates"`
		} `json:"candidates_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid compatibility analysis request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.analysis.Analyze(c.Request.Context(), req.TeamData, req.CandidatesData.Candidates)
	if err != nil {
		h.logger.Error("compatibility analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze compatibility: " + err.Error()})
		return
	}

	if err := h.store.Save(result); err != nil {
		h.logger.Error("saving analysis result failed", zap.Error(err))
	} else if h.autoSync && h.assistant != nil {
		// El sync parte recien cuando el resultado quedo persistido; best-effort,
		// sin garantia de entrega.
		go func(res *domain.AnalysisResult) {
			if _, err := h.assistant.SyncFromResult(context.Background(), res); err != nil {
				h.logger.Error("auto-sync after analysis failed", zap.Error(err))
			}
		}(result)
	}

	c.JSON(http.StatusOK, result)
}

// ExtractPersonality maneja POST /analysis/personality-extract.
func (h *AnalysisHandler) ExtractPersonality(c *gin.Context) {
	var req struct {
		CandidateData domain.CandidateInput `json:"candidate_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid personality extraction request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	traits := h.extractor.ExtractFromResponses(c.Request.Context(), req.CandidateData)

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"candidate_id":     req.CandidateData.ID,
		"candidate_name":   req.CandidateData.Name,
		"extracted_traits": traits,
	})
}
