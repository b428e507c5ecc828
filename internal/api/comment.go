package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dataset-feedback/backend/internal/auth"
	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/service"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/middleware"
)

// CommentHandler serves the public resource surface: comments, aggregate
// counts, downloads and likes, plus the moral check audit endpoints.
type CommentHandler struct {
	comments    *service.CommentService
	suggestions *service.SuggestionService
	summaries   *service.SummaryService
}

func NewCommentHandler(comments *service.CommentService, suggestions *service.SuggestionService, summaries *service.SummaryService) *CommentHandler {
	return &CommentHandler{comments: comments, suggestions: suggestions, summaries: summaries}
}

// RegisterRoutes mounts the resource routes. The group carries optional
// auth: anonymous submission is allowed, admins get extra visibility.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup, submitLimiter gin.HandlerFunc) {
	resources := rg.Group("/resources/:id")
	{
		resources.GET("/comments", h.ListComments)
		resources.POST("/comments", submitLimiter, h.SubmitComment)
		resources.GET("/aggregates", h.GetAggregates)
		resources.POST("/downloads", h.RecordDownload)
		resources.PUT("/like", h.SetLike)
	}
	rg.POST("/comments/:id/replies", h.CreateReply)
	rg.POST("/moral-check/logs", h.RecordMoralCheckAction)
	rg.GET("/moral-check/logs", h.ListMoralCheckActions)
}

type submitCommentRequest struct {
	Category              models.CommentCategory `json:"category"`
	Content               string                 `json:"content"`
	Rating                *int                   `json:"rating"`
	AttachedImageFilename *string                `json:"attached_image_filename"`
	CaptchaToken          string                 `json:"captcha_token"`
}

// SubmitComment screens the text and stores the comment when it passes.
// A flagged comment is not stored; the response carries the suggestion so
// the client can offer the rewrite and resubmit.
func (h *CommentHandler) SubmitComment(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	resourceID := c.Param("id")

	var req submitCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}

	screen, err := h.suggestions.ScreenSubmission(c.Request.Context(), caller, resourceID, req.Content, req.CaptchaToken, c.ClientIP())
	if err != nil {
		c.Error(err)
		return
	}
	if !screen.Passed {
		c.JSON(http.StatusOK, gin.H{"screen": screen})
		return
	}

	comment, err := h.comments.SubmitComment(c.Request.Context(), service.SubmitCommentRequest{
		ResourceID:            resourceID,
		Category:              req.Category,
		Content:               req.Content,
		Rating:                req.Rating,
		AttachedImageFilename: req.AttachedImageFilename,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"screen": screen, "comment": comment})
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	includeUnapproved, _ := strconv.ParseBool(c.Query("include_unapproved"))

	threads, err := h.comments.ListCommentThreads(c.Request.Context(), caller, c.Param("id"), includeUnapproved)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": threads})
}

type createReplyRequest struct {
	Content               string  `json:"content"`
	AttachedImageFilename *string `json:"attached_image_filename"`
}

func (h *CommentHandler) CreateReply(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}

	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}

	reply, err := h.comments.CreateReply(c.Request.Context(), caller, c.Param("id"), req.Content, req.AttachedImageFilename)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func (h *CommentHandler) GetAggregates(c *gin.Context) {
	agg, err := h.summaries.GetResourceAggregates(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (h *CommentHandler) RecordDownload(c *gin.Context) {
	if err := h.summaries.RecordDownload(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

type likeRequest struct {
	Liked bool `json:"liked"`
}

func (h *CommentHandler) SetLike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.summaries.SetLike(c.Request.Context(), c.Param("id"), req.Liked); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *CommentHandler) RecordMoralCheckAction(c *gin.Context) {
	var req service.RecordActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.suggestions.RecordAction(c.Request.Context(), req); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "logged"})
}

func (h *CommentHandler) ListMoralCheckActions(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}
	if err := auth.RequireAnyAdmin(caller); err != nil {
		c.Error(err)
		return
	}

	logs, err := h.suggestions.ListActions(c.Request.Context(),
		c.Query("parent_id"), models.MoralCheckParentKind(c.Query("parent_kind")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
