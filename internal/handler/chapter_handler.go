package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/webnovel/internal/pkg/errcode"
	"github.com/xxxsen/webnovel/internal/pkg/response"
	"github.com/xxxsen/webnovel/internal/service"
)

type ChapterHandler struct {
	chapters *service.ChapterService
}

func NewChapterHandler(chapters *service.ChapterService) *ChapterHandler {
	return &ChapterHandler{chapters: chapters}
}

type chapterRequest struct {
	Title             string  `json:"title"`
	ChapterNumber     int     `json:"chapter_number"`
	Language          string  `json:"language"`
	Status            string  `json:"status"`
	ParagraphStyle    string  `json:"paragraph_style"`
	RawContent        *string `json:"raw_content"`
	OriginalChapterID *int64  `json:"original_chapter_id"`
}

func (h *ChapterHandler) Create(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req chapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	raw := ""
	if req.RawContent != nil {
		raw = *req.RawContent
	}
	chapter, err := h.chapters.Create(c.Request.Context(), getUserID(c), bookID, service.CreateChapterArgs{
		Title:             req.Title,
		ChapterNumber:     req.ChapterNumber,
		Language:          req.Language,
		Status:            req.Status,
		ParagraphStyle:    req.ParagraphStyle,
		RawContent:        raw,
		OriginalChapterID: req.OriginalChapterID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chapter)
}

func (h *ChapterHandler) Update(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req chapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	chapter, err := h.chapters.Update(c.Request.Context(), getUserID(c), chapterID, service.UpdateChapterArgs{
		Title:          req.Title,
		Language:       req.Language,
		ParagraphStyle: req.ParagraphStyle,
		RawContent:     req.RawContent,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chapter)
}

func (h *ChapterHandler) Get(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	chapter, err := h.chapters.Get(c.Request.Context(), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chapter)
}

func (h *ChapterHandler) GetByNumber(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	number, ok := parseID(c, "number")
	if !ok {
		return
	}
	chapter, err := h.chapters.GetByNumber(c.Request.Context(), bookID, int(number))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chapter)
}

func (h *ChapterHandler) List(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, offset := parsePaging(c)
	chapters, err := h.chapters.List(c.Request.Context(), bookID, c.Query("status"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chapters)
}

func (h *ChapterHandler) Delete(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.chapters.Delete(c.Request.Context(), getUserID(c), chapterID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *ChapterHandler) Publish(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	chapter, err := h.chapters.Publish(c.Request.Context(), getUserID(c), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chapter)
}

type scheduleRequest struct {
	ActiveAt int64 `json:"active_at"`
}

func (h *ChapterHandler) Schedule(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	chapter, err := h.chapters.Schedule(c.Request.Context(), getUserID(c), chapterID, req.ActiveAt)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chapter)
}

func (h *ChapterHandler) Unpublish(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	chapter, err := h.chapters.Unpublish(c.Request.Context(), getUserID(c), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chapter)
}

func (h *ChapterHandler) GetContent(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	cc, err := h.chapters.GetContent(c.Request.Context(), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cc)
}

func (h *ChapterHandler) Paragraphs(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	paragraphs, err := h.chapters.Paragraphs(c.Request.Context(), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, paragraphs)
}

type paragraphRequest struct {
	Content  string `json:"content"`
	Position *int   `json:"position"`
}

func (h *ChapterHandler) AddParagraph(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req paragraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	cc, err := h.chapters.AddParagraph(c.Request.Context(), getUserID(c), chapterID, req.Content, req.Position)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cc)
}

func (h *ChapterHandler) UpdateParagraph(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	var req paragraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	cc, err := h.chapters.UpdateParagraph(c.Request.Context(), getUserID(c), chapterID, index, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cc)
}

type mediaElementRequest struct {
	MediaID  int64 `json:"media_id"`
	Position *int  `json:"position"`
}

func (h *ChapterHandler) InsertMediaElement(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req mediaElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	cc, err := h.chapters.InsertMediaElement(c.Request.Context(), getUserID(c), chapterID, req.MediaID, req.Position)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cc)
}

func (h *ChapterHandler) DeleteElement(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	cc, err := h.chapters.DeleteElement(c.Request.Context(), getUserID(c), chapterID, index)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cc)
}

type reorderRequest struct {
	Order []int `json:"order"`
}

func (h *ChapterHandler) Reorder(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	cc, err := h.chapters.ReorderElements(c.Request.Context(), getUserID(c), chapterID, req.Order)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cc)
}

func (h *ChapterHandler) SyncMedia(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	appended, err := h.chapters.SyncMedia(c.Request.Context(), getUserID(c), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"appended": appended})
}

func (h *ChapterHandler) RebuildContent(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	length, err := h.chapters.RebuildContent(c.Request.Context(), getUserID(c), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"length": length})
}
