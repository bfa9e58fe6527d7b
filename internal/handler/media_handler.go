package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/webnovel/internal/pkg/errcode"
	"github.com/xxxsen/webnovel/internal/pkg/response"
	"github.com/xxxsen/webnovel/internal/service"
)

const maxUploadSize = 64 << 20

type MediaHandler struct {
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload takes a multipart form: file plus optional title/caption/alt_text/
// duration fields.
func (h *MediaHandler) Upload(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.Error(c, errcode.ErrInvalidFile, "file too large")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "open upload failed")
		return
	}
	defer file.Close()
	args := service.UploadArgs{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Title:    c.PostForm("title"),
		Caption:  c.PostForm("caption"),
		AltText:  c.PostForm("alt_text"),
	}
	if value := c.PostForm("duration"); value != "" {
		if duration, err := strconv.Atoi(value); err == nil && duration > 0 {
			args.Duration = &duration
		}
	}
	media, err := h.media.Upload(c.Request.Context(), getUserID(c), chapterID, file, args)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, media)
}

func (h *MediaHandler) List(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	medias, err := h.media.List(c.Request.Context(), chapterID, c.Query("type"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, medias)
}

type mediaUpdateRequest struct {
	Title    string `json:"title"`
	Caption  string `json:"caption"`
	AltText  string `json:"alt_text"`
	Duration *int   `json:"duration"`
}

func (h *MediaHandler) Update(c *gin.Context) {
	mediaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req mediaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	media, err := h.media.Update(c.Request.Context(), getUserID(c), mediaID, service.UpdateMediaArgs{
		Title:    req.Title,
		Caption:  req.Caption,
		AltText:  req.AltText,
		Duration: req.Duration,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, media)
}

type mediaReorderRequest struct {
	MediaIDs []int64 `json:"media_ids"`
}

func (h *MediaHandler) Reorder(c *gin.Context) {
	chapterID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req mediaReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := h.media.Reorder(c.Request.Context(), getUserID(c), chapterID, req.MediaIDs); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *MediaHandler) Delete(c *gin.Context) {
	mediaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.media.Delete(c.Request.Context(), getUserID(c), mediaID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
