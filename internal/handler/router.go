package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/webnovel/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Books     *BookHandler
	Chapters  *ChapterHandler
	Media     *MediaHandler
	Comments  *CommentHandler
	AI        *AIHandler
	Files     *FileHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	// public reader endpoints
	api.GET("/books", deps.Books.List)
	api.GET("/books/:id", deps.Books.Get)
	api.GET("/books/slug/:slug", deps.Books.GetBySlug)
	api.GET("/books/:id/chapters", deps.Chapters.List)
	api.GET("/books/:id/chapters/:number", deps.Chapters.GetByNumber)
	api.GET("/chapters/:id", deps.Chapters.Get)
	api.GET("/chapters/:id/content", deps.Chapters.GetContent)
	api.GET("/chapters/:id/paragraphs", deps.Chapters.Paragraphs)
	api.GET("/chapters/:id/media", deps.Media.List)
	api.GET("/chapters/:id/comments", deps.Comments.List)
	api.GET("/files/*key", deps.Files.Get)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.GET("/auth/me", deps.Auth.Me)

	authGroup.POST("/books", deps.Books.Create)
	authGroup.PUT("/books/:id", deps.Books.Update)
	authGroup.DELETE("/books/:id", deps.Books.Delete)
	authGroup.POST("/books/:id/stats/refresh", deps.Books.RefreshStats)

	authGroup.POST("/books/:id/chapters", deps.Chapters.Create)
	authGroup.PUT("/chapters/:id", deps.Chapters.Update)
	authGroup.DELETE("/chapters/:id", deps.Chapters.Delete)
	authGroup.POST("/chapters/:id/publish", deps.Chapters.Publish)
	authGroup.POST("/chapters/:id/schedule", deps.Chapters.Schedule)
	authGroup.POST("/chapters/:id/unpublish", deps.Chapters.Unpublish)

	authGroup.POST("/chapters/:id/paragraphs", deps.Chapters.AddParagraph)
	authGroup.PUT("/chapters/:id/elements/:index", deps.Chapters.UpdateParagraph)
	authGroup.DELETE("/chapters/:id/elements/:index", deps.Chapters.DeleteElement)
	authGroup.POST("/chapters/:id/elements/media", deps.Chapters.InsertMediaElement)
	authGroup.POST("/chapters/:id/elements/reorder", deps.Chapters.Reorder)
	authGroup.POST("/chapters/:id/content/sync", deps.Chapters.SyncMedia)
	authGroup.POST("/chapters/:id/content/rebuild", deps.Chapters.RebuildContent)

	authGroup.POST("/chapters/:id/media", deps.Media.Upload)
	authGroup.POST("/chapters/:id/media/reorder", deps.Media.Reorder)
	authGroup.PUT("/media/:id", deps.Media.Update)
	authGroup.DELETE("/media/:id", deps.Media.Delete)

	authGroup.POST("/chapters/:id/comments", deps.Comments.Create)
	authGroup.PUT("/comments/:id", deps.Comments.Update)
	authGroup.DELETE("/comments/:id", deps.Comments.Delete)

	authGroup.POST("/chapters/:id/ai/translate", deps.AI.Translate)
	authGroup.POST("/chapters/:id/ai/abstract", deps.AI.Abstract)
	authGroup.POST("/chapters/:id/ai/key-terms", deps.AI.KeyTerms)
}
