package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giron-dev/giron-api/internal/models"
	"github.com/giron-dev/giron-api/internal/service"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
	"github.com/giron-dev/giron-api/pkg/response"
)

// DomainHandler wires HTTP endpoints to the domain service.
type DomainHandler struct {
	service *service.DomainService
}

// NewDomainHandler creates a new handler.
func NewDomainHandler(svc *service.DomainService) *DomainHandler {
	return &DomainHandler{service: svc}
}

// Create godoc
// @Summary Create a domain
// @Tags Domains
// @Accept json
// @Produce json
// @Param payload body models.DomainCreateRequest true "Domain payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /domains [post]
func (h *DomainHandler) Create(c *gin.Context) {
	var req models.DomainCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid domain payload"))
		return
	}

	domain, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, domain)
}

// List godoc
// @Summary List domains
// @Tags Domains
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /domains [get]
func (h *DomainHandler) List(c *gin.Context) {
	domains, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, domains, nil)
}

// Get godoc
// @Summary Get a domain by name
// @Tags Domains
// @Produce json
// @Param name path string true "Domain name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /domains/{name} [get]
func (h *DomainHandler) Get(c *gin.Context) {
	domain, err := h.service.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, domain, nil)
}
