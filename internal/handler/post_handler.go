package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/giron-dev/giron-api/internal/middleware"
	"github.com/giron-dev/giron-api/internal/models"
	"github.com/giron-dev/giron-api/internal/service"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
	"github.com/giron-dev/giron-api/pkg/response"
)

// PostHandler wires HTTP endpoints to the post service.
type PostHandler struct {
	service *service.PostService
}

// NewPostHandler creates a new handler.
func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{service: svc}
}

// Create godoc
// @Summary Submit a post
// @Tags Posts
// @Accept json
// @Produce json
// @Param payload body models.PostCreateRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid post payload"))
		return
	}

	post, err := h.service.Create(c.Request.Context(), req, claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, post)
}

// List godoc
// @Summary List posts
// @Description Filter by author, domain, title, body and creation date, ordered by like count
// @Tags Posts
// @Produce json
// @Param author query string false "Author username"
// @Param domain query string false "Domain name"
// @Param title query string false "Title substring"
// @Param body query string false "Body substring"
// @Param from query string false "Created after (RFC 3339)"
// @Param to query string false "Created before (RFC 3339)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /posts [get]
func (h *PostHandler) List(c *gin.Context) {
	filter := models.PostFilter{
		Author:     c.Query("author"),
		Domain:     c.Query("domain"),
		TitleQuery: c.Query("title"),
		BodyQuery:  c.Query("body"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.FromDate = from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.ToDate = to
	}

	posts, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, posts, pagination)
}

// Get godoc
// @Summary Get a post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, post, nil)
}

// Update godoc
// @Summary Edit a post
// @Tags Posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body models.PostUpdateRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [patch]
func (h *PostHandler) Update(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid post payload"))
		return
	}

	post, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, post, nil)
}

// Delete godoc
// @Summary Delete a post
// @Tags Posts
// @Param id path string true "Post ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
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
// @Summary Like a post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /posts/{id}/likes [post]
func (h *PostHandler) Like(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	post, err := h.service.Like(c.Request.Context(), c.Param("id"), claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, post, nil)
}

// Unlike godoc
// @Summary Remove a like from a post
// @Tags Posts
// @Param id path string true "Post ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id}/likes [delete]
func (h *PostHandler) Unlike(c *gin.Context) {
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

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
