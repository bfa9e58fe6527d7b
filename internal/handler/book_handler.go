package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/webnovel/internal/pkg/errcode"
	"github.com/xxxsen/webnovel/internal/pkg/response"
	"github.com/xxxsen/webnovel/internal/service"
)

type BookHandler struct {
	books *service.BookService
}

func NewBookHandler(books *service.BookService) *BookHandler {
	return &BookHandler{books: books}
}

type bookRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Language       string `json:"language"`
	Status         string `json:"status"`
	OriginalBookID *int64 `json:"original_book_id"`
}

func (h *BookHandler) Create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	book, err := h.books.Create(c.Request.Context(), getUserID(c), service.CreateBookArgs{
		Title:          req.Title,
		Description:    req.Description,
		Language:       req.Language,
		Status:         req.Status,
		OriginalBookID: req.OriginalBookID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *BookHandler) Update(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	book, err := h.books.Update(c.Request.Context(), getUserID(c), bookID, service.UpdateBookArgs{
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		Status:      req.Status,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *BookHandler) Get(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	book, err := h.books.Get(c.Request.Context(), bookID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *BookHandler) GetBySlug(c *gin.Context) {
	book, err := h.books.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *BookHandler) List(c *gin.Context) {
	limit, offset := parsePaging(c)
	owner := c.Query("owner_id")
	if c.Query("mine") == "1" {
		owner = getUserID(c)
	}
	books, err := h.books.List(c.Request.Context(), owner, c.Query("status"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, books)
}

func (h *BookHandler) RefreshStats(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	book, err := h.books.RefreshStats(c.Request.Context(), getUserID(c), bookID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *BookHandler) Delete(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.books.Delete(c.Request.Context(), getUserID(c), bookID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
