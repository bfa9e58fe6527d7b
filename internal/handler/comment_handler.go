package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/webnovel/internal/pkg/errcode"
	"github.com/xxxsen/webnovel/internal/pkg/response"
	"github.com/xxxsen/webnovel/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentRequest struct {
	Content      string `json:"content"`
	ElementIndex *int   `json:"element_index"`
	MediaID      *int64 `json:"media_id"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), getUserID(c), getUsername(c), chapterID, service.CreateCommentArgs{
		Content:      req.Content,
		ElementIndex: req.ElementIndex,
		MediaID:      req.MediaID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, comment)
}

func (h *CommentHandler) List(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, offset := parsePaging(c)
	views, err := h.comments.List(c.Request.Context(), chapterID, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	total, err := h.comments.Count(c.Request.Context(), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"comments": views,
		"total":    total,
	})
}

func (h *CommentHandler) Update(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), getUserID(c), c.Param("id"), req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
