package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/service"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/middleware"
)

// UtilizationHandler serves utilization records, their comments and issue
// resolutions.
type UtilizationHandler struct {
	utilizations *service.UtilizationService
	suggestions  *service.SuggestionService
}

func NewUtilizationHandler(utilizations *service.UtilizationService, suggestions *service.SuggestionService) *UtilizationHandler {
	return &UtilizationHandler{utilizations: utilizations, suggestions: suggestions}
}

func (h *UtilizationHandler) RegisterRoutes(rg *gin.RouterGroup, submitLimiter gin.HandlerFunc) {
	utils := rg.Group("/utilizations")
	{
		utils.GET("", h.ListUtilizations)
		utils.POST("", submitLimiter, h.SubmitUtilization)
		utils.GET("/:id", h.GetUtilization)
		utils.PUT("/:id", h.UpdateUtilization)
		utils.POST("/:id/comments", submitLimiter, h.SubmitComment)
		utils.POST("/:id/issue-resolutions", h.CreateIssueResolution)
	}
}

type submitUtilizationRequest struct {
	ResourceID   string `json:"resource_id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	CaptchaToken string `json:"captcha_token"`
}

func (h *UtilizationHandler) SubmitUtilization(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	var req submitUtilizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}

	if err := h.suggestions.VerifyCaptchaForResource(c.Request.Context(), caller, req.ResourceID, req.CaptchaToken, c.ClientIP()); err != nil {
		c.Error(err)
		return
	}

	util, err := h.utilizations.SubmitUtilization(c.Request.Context(), service.SubmitUtilizationRequest{
		ResourceID:  req.ResourceID,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, util)
}

func (h *UtilizationHandler) ListUtilizations(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	includeUnapproved, _ := strconv.ParseBool(c.Query("include_unapproved"))

	utils, err := h.utilizations.ListUtilizations(c.Request.Context(), caller,
		c.Query("resource_id"), c.Query("keyword"), includeUnapproved)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"utilizations": utils})
}

func (h *UtilizationHandler) GetUtilization(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	detail, err := h.utilizations.GetUtilizationDetail(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type updateUtilizationRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (h *UtilizationHandler) UpdateUtilization(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}

	var req updateUtilizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}

	err := h.utilizations.UpdateUtilization(c.Request.Context(), caller, c.Param("id"), req.Title, req.URL, req.Description)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type submitUtilizationCommentRequest struct {
	Category              models.CommentCategory `json:"category"`
	Content               string                 `json:"content"`
	AttachedImageFilename *string                `json:"attached_image_filename"`
	CaptchaToken          string                 `json:"captcha_token"`
}

// SubmitComment screens and stores a comment on a utilization. The moral
// check applies the same way as on resource comments.
func (h *UtilizationHandler) SubmitComment(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	utilizationID := c.Param("id")

	var req submitUtilizationCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}

	util, err := h.utilizations.GetUtilizationDetail(c.Request.Context(), caller, utilizationID)
	if err != nil {
		c.Error(err)
		return
	}

	screen, err := h.suggestions.ScreenSubmission(c.Request.Context(), caller,
		util.Utilization.ResourceID, req.Content, req.CaptchaToken, c.ClientIP())
	if err != nil {
		c.Error(err)
		return
	}
	if !screen.Passed {
		c.JSON(http.StatusOK, gin.H{"screen": screen})
		return
	}

	comment, err := h.utilizations.SubmitUtilizationComment(c.Request.Context(), service.SubmitUtilizationCommentRequest{
		UtilizationID:         utilizationID,
		Category:              req.Category,
		Content:               req.Content,
		AttachedImageFilename: req.AttachedImageFilename,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"screen": screen, "comment": comment})
}

type createIssueResolutionRequest struct {
	Description string `json:"description"`
}

func (h *UtilizationHandler) CreateIssueResolution(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "authentication required"))
		return
	}

	var req createIssueResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid request body"))
		return
	}

	resolution, err := h.utilizations.CreateIssueResolution(c.Request.Context(), caller, c.Param("id"), req.Description)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resolution)
}
