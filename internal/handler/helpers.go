package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/webnovel/internal/ai"
	"github.com/xxxsen/webnovel/internal/middleware"
	"github.com/xxxsen/webnovel/internal/pkg/errcode"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
	"github.com/xxxsen/webnovel/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

func getUsername(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUsernameKey)
	username, _ := value.(string)
	return username
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, errcode.ErrInvalid, "invalid "+name)
		return 0, false
	}
	return id, true
}

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.Error(c, errcode.ErrInvalid, "invalid index")
		return 0, false
	}
	return index, true
}

func parsePaging(c *gin.Context) (limit, offset uint) {
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = uint(parsed)
		}
	}
	if value := c.Query("offset"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			offset = uint(parsed)
		}
	}
	return limit, offset
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err))
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrIndexOutOfRange):
		response.Error(c, errcode.ErrIndexOutOfRange, "index out of range")
	case errors.Is(err, appErr.ErrInvalidPermutation):
		response.Error(c, errcode.ErrInvalidPermutation, "invalid permutation")
	case errors.Is(err, appErr.ErrTypeMismatch):
		response.Error(c, errcode.ErrTypeMismatch, "element type mismatch")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrUploadFailed):
		response.Error(c, errcode.ErrUploadFailed, "upload failed")
	case errors.Is(err, appErr.ErrStorage):
		response.Error(c, errcode.ErrStorage, "storage error")
	case errors.Is(err, appErr.ErrAIUnavailable), errors.Is(err, ai.ErrUnavailable):
		response.Error(c, errcode.ErrAIUnavailable, "ai unavailable")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
