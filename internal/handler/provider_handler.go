package handler

import (
	"net/http"

	"clinicpanel/internal/middleware"
	"clinicpanel/internal/service"
	"clinicpanel/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	providerService service.ProviderService
}

func NewProviderHandler(providerService service.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerService: providerService}
}

func (h *ProviderHandler) RegisterRoutes(router *gin.RouterGroup) {
	providers := router.Group("/api/providers", middleware.RequireAuth())
	{
		providers.GET("", h.List)
		providers.POST("", h.Create)
		providers.GET("/:id", h.Get)
		providers.PUT("/:id", h.Update)
		providers.POST("/:id/toggle", h.ToggleActive)
	}
}

// List returns providers
// @Summary      List providers
// @Tags         providers
// @Produce      json
// @Security     BearerAuth
// @Param        active  query     bool  false  "active only"
// @Success      200     {object}  response.Response{data=[]service.ProviderResponse}
// @Router       /api/providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.providerService.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, providers))
}

// Create registers a provider
// @Summary      Create provider
// @Tags         providers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ProviderRequest  true  "Provider"
// @Success      201      {object}  response.Response{data=service.ProviderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/providers [post]
func (h *ProviderHandler) Create(c *gin.Context) {
	var req service.ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	provider, err := h.providerService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, provider))
}

// Get returns one provider
// @Summary      Get provider
// @Tags         providers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Provider ID"
// @Success      200  {object}  response.Response{data=service.ProviderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/providers/{id} [get]
func (h *ProviderHandler) Get(c *gin.Context) {
	provider, err := h.providerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, provider))
}

// Update edits a provider
// @Summary      Update provider
// @Tags         providers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Provider ID"
// @Param        payload  body      service.ProviderRequest  true  "Provider"
// @Success      200      {object}  response.Response{data=service.ProviderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/providers/{id} [put]
func (h *ProviderHandler) Update(c *gin.Context) {
	var req service.ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	provider, err := h.providerService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, provider))
}

// ToggleActive flips the active flag
// @Summary      Toggle provider active
// @Tags         providers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Provider ID"
// @Success      200  {object}  response.Response{data=service.ProviderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/providers/{id}/toggle [post]
func (h *ProviderHandler) ToggleActive(c *gin.Context) {
	provider, err := h.providerService.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, provider))
}
