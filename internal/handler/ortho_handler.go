package handler

import (
	"net/http"

	"clinicpanel/internal/middleware"
	"clinicpanel/internal/service"
	"clinicpanel/internal/websocket"
	"clinicpanel/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrthoHandler struct {
	orthoService service.OrthoService
	hub          *websocket.Hub
}

func NewOrthoHandler(orthoService service.OrthoService, hub *websocket.Hub) *OrthoHandler {
	return &OrthoHandler{orthoService: orthoService, hub: hub}
}

func (h *OrthoHandler) RegisterRoutes(router *gin.RouterGroup) {
	ortho := router.Group("/api/ortho", middleware.RequireAuth())
	{
		ortho.GET("", h.List)
		ortho.POST("", h.Upsert)
		ortho.GET("/:id", h.Get)
		ortho.POST("/:id/confirm-payment", h.ConfirmPayment)
	}
}

// List returns maintenance records, optionally filtered
// @Summary      List ortho maintenances
// @Tags         ortho
// @Produce      json
// @Security     BearerAuth
// @Param        q               query  string  false  "search over patient name and work done"
// @Param        patient_id      query  string  false  "Patient ID"
// @Param        payment_status  query  string  false  "pending or paid"
// @Success      200  {object}  response.Response{data=[]service.OrthoMaintenanceResponse}
// @Router       /api/ortho [get]
func (h *OrthoHandler) List(c *gin.Context) {
	filter := service.OrthoListFilter{
		Search:        c.Query("q"),
		PatientID:     c.Query("patient_id"),
		PaymentStatus: c.Query("payment_status"),
		Limit:         queryInt(c, "limit"),
	}
	records, err := h.orthoService.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, records))
}

// Upsert creates or updates a maintenance record
// @Summary      Save ortho maintenance
// @Description  Creates or updates a maintenance visit. A charged visit carries exactly one linked ledger entry; the link is created lazily and updated in place afterwards.
// @Tags         ortho
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.OrthoMaintenanceRequest  true  "Maintenance"
// @Success      200      {object}  response.Response{data=service.OrthoMaintenanceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/ortho [post]
func (h *OrthoHandler) Upsert(c *gin.Context) {
	var req service.OrthoMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.orthoService.Upsert(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// Get returns one maintenance record
// @Summary      Get ortho maintenance
// @Tags         ortho
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Maintenance ID"
// @Success      200  {object}  response.Response{data=service.OrthoMaintenanceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/ortho/{id} [get]
func (h *OrthoHandler) Get(c *gin.Context) {
	record, err := h.orthoService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// ConfirmPayment settles a pending maintenance
// @Summary      Confirm ortho payment
// @Description  Marks the visit and its linked ledger entry paid in one step. Confirming an already-paid visit is a no-op.
// @Tags         ortho
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Maintenance ID"
// @Param        payload  body      service.ConfirmPaymentRequest  true  "Payment"
// @Success      200      {object}  response.Response{data=service.OrthoMaintenanceResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/ortho/{id}/confirm-payment [post]
func (h *OrthoHandler) ConfirmPayment(c *gin.Context) {
	var req service.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.orthoService.ConfirmPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.hub.Notify(websocket.EventPaymentConfirmed, record)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}
