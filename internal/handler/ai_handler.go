package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/webnovel/internal/pkg/errcode"
	"github.com/xxxsen/webnovel/internal/pkg/response"
	"github.com/xxxsen/webnovel/internal/service"
)

type AIHandler struct {
	ai *service.AIService
}

func NewAIHandler(ai *service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

type translateRequest struct {
	TargetLang string `json:"target_lang"`
}

func (h *AIHandler) Translate(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	translated, err := h.ai.TranslateChapter(c.Request.Context(), chapterID, req.TargetLang)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"translated": translated})
}

func (h *AIHandler) Abstract(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	abstract, err := h.ai.GenerateAbstract(c.Request.Context(), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"abstract": abstract})
}

type keyTermsRequest struct {
	MaxTerms int `json:"max_terms"`
}

func (h *AIHandler) KeyTerms(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req keyTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	terms, err := h.ai.ExtractKeyTerms(c.Request.Context(), chapterID, req.MaxTerms)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"terms": terms})
}
