package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/giron-dev/giron-api/internal/middleware"
	"github.com/giron-dev/giron-api/internal/models"
	"github.com/giron-dev/giron-api/internal/service"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
	"github.com/giron-dev/giron-api/pkg/response"
)

// CommentHandler wires HTTP endpoints to the comment service.
type CommentHandler struct {
	service *service.CommentService
}

// NewCommentHandler creates a new handler.
func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{service: svc}
}

// Create godoc
// @Summary Add a comment to a post
// @Tags Comments
// @Accept json
// @Produce json
// @Param payload body models.CommentCreateRequest true "Comment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	comment, err := h.service.Create(c.Request.Context(), req, claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// List godoc
// @Summary List a user's comments
// @Tags Comments
// @Produce json
// @Param author query string true "Author username"
// @Param body query string false "Body substring"
// @Param from query string false "Created after (RFC 3339)"
// @Param to query string false "Created before (RFC 3339)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	filter := models.CommentFilter{
		Author:    c.Query("author"),
		BodyQuery: c.Query("body"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}
	if filter.Author == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "author is required"))
		return
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.FromDate = from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.ToDate = to
	}

	comments, pagination, err := h.service.ListByAuthor(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, comments, pagination)
}

// Get godoc
// @Summary Get a comment
// @Tags Comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [get]
func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, comment, nil)
}

// Update godoc
// @Summary Edit a comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param payload body models.CommentUpdateRequest true "New body"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [patch]
func (h *CommentHandler) Update(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	comment, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, comment, nil)
}

// Delete godoc
// @Summary Delete a comment
// @Tags Comments
// @Param id path string true "Comment ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.Username, models.UserRole(claims.Role)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Like godoc
// @Summary Like a comment
// @Tags Comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /comments/{id}/likes [post]
func (h *CommentHandler) Like(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	comment, err := h.service.Like(c.Request.Context(), c.Param("id"), claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, comment, nil)
}

// Unlike godoc
// @Summary Remove a like from a comment
// @Tags Comments
// @Param id path string true "Comment ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id}/likes [delete]
func (h *CommentHandler) Unlike(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Unlike(c.Request.Context(), c.Param("id"), claims.Username); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
