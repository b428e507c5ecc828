package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dataset-feedback/backend/internal/auth"
	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/service"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/middleware"
)

// AdminHandler serves the moderation surface. Every route requires an
// authenticated caller; org-level authorization happens in the services so
// unauthorized callers get the same 404 as missing rows.
type AdminHandler struct {
	queryEngine *service.FeedbackQueryEngine
	moderation  *service.ModerationService
}

func NewAdminHandler(queryEngine *service.FeedbackQueryEngine, moderation *service.ModerationService) *AdminHandler {
	return &AdminHandler{queryEngine: queryEngine, moderation: moderation}
}

// RegisterRoutes mounts the admin routes on the given group. authRequired
// must already be applied by the caller.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	{
		admin.GET("/feedbacks", h.ListFeedbacks)
		admin.GET("/organizations", h.ListOrganizations)
		admin.POST("/feedbacks/approve", h.BulkApprove)
		admin.POST("/feedbacks/delete", h.BulkDelete)
		admin.POST("/replies/:id/approve", h.ApproveReply)
		admin.PUT("/comments/:id/reaction", h.SetReaction)
	}
}

func (h *AdminHandler) ListFeedbacks(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}

	q := service.ListFeedbacksQuery{
		Sort:   service.SortKey(c.DefaultQuery("sort", string(service.SortNewest))),
		Limit:  intQuery(c, "limit", 20),
		Offset: intQuery(c, "offset", 0),
	}
	q.OrgNames = c.QueryArray("org")
	for _, t := range c.QueryArray("type") {
		q.Types = append(q.Types, models.FeedbackType(t))
	}
	for _, a := range c.QueryArray("approval") {
		if v, err := strconv.ParseBool(a); err == nil {
			q.Approvals = append(q.Approvals, v)
		}
	}

	page, err := h.queryEngine.ListFeedbacks(c.Request.Context(), caller, q)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) ListOrganizations(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}

	orgs, err := h.queryEngine.ListOrganizations(c.Request.Context(), caller)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

func (h *AdminHandler) BulkApprove(c *gin.Context) {
	h.bulkAction(c, h.moderation.BulkApprove)
}

func (h *AdminHandler) BulkDelete(c *gin.Context) {
	h.bulkAction(c, h.moderation.BulkDelete)
}

func (h *AdminHandler) bulkAction(c *gin.Context, apply func(ctx context.Context, caller auth.Caller, targets service.ModerationTargets) (*service.ModerationResult, error)) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}

	var targets service.ModerationTargets
	if err := c.ShouldBindJSON(&targets); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}

	result, err := apply(c.Request.Context(), caller, targets)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ApproveReply(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}

	if err := h.moderation.ApproveReply(c.Request.Context(), caller, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

type reactionRequest struct {
	ResponseStatus models.ResponseStatus `json:"response_status"`
	AdminLiked     bool                  `json:"admin_liked"`
}

func (h *AdminHandler) SetReaction(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}

	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}

	err := h.moderation.SetReaction(c.Request.Context(), caller, c.Param("id"), req.ResponseStatus, req.AdminLiked)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}
