package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"its4teacher-go/internal/model"
	"its4teacher-go/internal/service"
	"its4teacher-go/pkg/log"
)

// AnalysisHandler 结构体定义了提问分析相关的处理器。
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler 创建一个新的 AnalysisHandler 实例。
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// QuestionsRequest 是三何分类和问题链接口的请求体。
type QuestionsRequest struct {
	Questions []model.QuestionRecord `json:"questions" binding:"required"`
}

// AnalyzeTranscript 处理实录分析请求。
func (h *AnalysisHandler) AnalyzeTranscript(c *gin.Context) {
	var transcript model.Transcript
	if err := c.ShouldBindJSON(&transcript); err != nil {
		log.Warnf("[AnalysisHandler] 实录请求体解析失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	result, err := h.analysisService.AnalyzeTranscript(c.Request.Context(), transcript)
	if err != nil {
		if errors.Is(err, service.ErrEmptyTranscript) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Errorf("[AnalysisHandler] 实录分析失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "分析失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": result, "message": "success"})
}

// ClassifyThreeHe 处理三何分类请求。
func (h *AnalysisHandler) ClassifyThreeHe(c *gin.Context) {
	var req QuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[AnalysisHandler] 三何请求体解析失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	report, err := h.analysisService.ClassifyThreeHe(c.Request.Context(), req.Questions)
	if err != nil {
		log.Errorf("[AnalysisHandler] 三何分类失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "分类失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": report, "message": "success"})
}

// BuildChains 处理问题链请求。
func (h *AnalysisHandler) BuildChains(c *gin.Context) {
	var req QuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[AnalysisHandler] 问题链请求体解析失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	report, err := h.analysisService.BuildChains(c.Request.Context(), req.Questions)
	if err != nil {
		log.Errorf("[AnalysisHandler] 问题链生成失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": report, "message": "success"})
}

// Health 返回服务状态。
func (h *AnalysisHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{"status": "ok"}, "message": "success"})
}

// RegisterRoutes 在 /api/v1 下注册分析路由。
func RegisterRoutes(r *gin.Engine, h *AnalysisHandler) {
	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/health", h.Health)
		apiV1.POST("/transcripts/analyze", h.AnalyzeTranscript)

		questions := apiV1.Group("/questions")
		{
			questions.POST("/three-he", h.ClassifyThreeHe)
			questions.POST("/chains", h.BuildChains)
		}
	}
}
