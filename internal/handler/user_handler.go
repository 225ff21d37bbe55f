package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giron-dev/giron-api/internal/models"
	"github.com/giron-dev/giron-api/internal/service"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
	"github.com/giron-dev/giron-api/pkg/response"
)

// UserHandler wires HTTP endpoints to the user service.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// Register godoc
// @Summary Register an account
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	info, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, info)
}

// Exists godoc
// @Summary Check whether a username is taken
// @Tags Users
// @Success 204 "username exists"
// @Failure 404 "username is free"
// @Router /users/{username} [head]
func (h *UserHandler) Exists(c *gin.Context) {
	exists, err := h.service.UsernameExists(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Status(appErrors.FromError(err).Status)
		return
	}
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangePassword godoc
// @Summary Change the account password
// @Tags Users
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param payload body models.ChangePasswordRequest true "Password change payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/{username}/password [patch]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid change password payload"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), c.Param("username"), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// TwoFactorEnabled godoc
// @Summary Check whether two-factor authentication is enabled
// @Tags Users
// @Success 204 "enabled"
// @Failure 404 "disabled"
// @Router /users/{username}/2fa [head]
func (h *UserHandler) TwoFactorEnabled(c *gin.Context) {
	enabled, err := h.service.TwoFactorEnabled(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Status(appErrors.FromError(err).Status)
		return
	}
	if !enabled {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateTwoFactorKey godoc
// @Summary Generate an authenticator enrollment key
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/{username}/2fa/key [get]
func (h *UserHandler) GenerateTwoFactorKey(c *gin.Context) {
	key, err := h.service.GenerateTwoFactorKey(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, key, nil)
}

// EnableTwoFactor godoc
// @Summary Enable two-factor authentication
// @Description Confirms enrollment with the password and an authenticator code, returning single-use recovery codes
// @Tags Users
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param payload body models.TwoFactorEnableRequest true "Enable payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/{username}/2fa [post]
func (h *UserHandler) EnableTwoFactor(c *gin.Context) {
	var req models.TwoFactorEnableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enable payload"))
		return
	}

	codes, err := h.service.EnableTwoFactor(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, codes, nil)
}

// DisableTwoFactor godoc
// @Summary Disable two-factor authentication
// @Tags Users
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param payload body models.PasswordRequest true "Password confirmation"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/{username}/2fa [delete]
func (h *UserHandler) DisableTwoFactor(c *gin.Context) {
	var req models.PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "password required"))
		return
	}

	if err := h.service.DisableTwoFactor(c.Request.Context(), c.Param("username"), req.Password); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an account
// @Tags Users
// @Param username path string true "Username"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{username} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("username")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
