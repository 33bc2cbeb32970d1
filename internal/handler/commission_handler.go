package handler

import (
	"net/http"

	"clinicpanel/internal/middleware"
	"clinicpanel/internal/service"
	"clinicpanel/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	commissionService service.CommissionService
}

func NewCommissionHandler(commissionService service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

func (h *CommissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	commissions := router.Group("/api/finance/commissions", middleware.RequireFinanceUnlock())
	{
		commissions.GET("/summary", h.Summary)
		commissions.GET("/pending", h.PendingDetail)
		commissions.GET("/provider/:id", h.ProviderTotals)
		commissions.POST("/settle/:entryId", h.Settle)
	}
}

// Summary lists per-provider commission totals
// @Summary      Commission summary
// @Description  Every active provider with this-month earned commission and all-time unsettled commission
// @Tags         commissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ProviderCommissionSummary}
// @Router       /api/finance/commissions/summary [get]
func (h *CommissionHandler) Summary(c *gin.Context) {
	summary, err := h.commissionService.Summary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// PendingDetail lists unsettled commission entries
// @Summary      Pending commission entries
// @Tags         commissions
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "max entries (cap 200)"
// @Success      200    {object}  response.Response{data=[]service.CommissionPendingEntry}
// @Router       /api/finance/commissions/pending [get]
func (h *CommissionHandler) PendingDetail(c *gin.Context) {
	entries, err := h.commissionService.PendingDetail(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// ProviderTotals returns owed and pending totals for one provider
// @Summary      Provider commission totals
// @Tags         commissions
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Provider ID"
// @Param        from  query     string  false  "period start YYYY-MM-DD"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /api/finance/commissions/provider/{id} [get]
func (h *CommissionHandler) ProviderTotals(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	owed, err := h.commissionService.Owed(ctx, id, c.Query("from"))
	if err != nil {
		fail(c, err)
		return
	}
	pending, err := h.commissionService.Pending(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"owed": owed, "pending": pending}))
}

// Settle marks one entry's commission as paid out
// @Summary      Settle a commission
// @Description  Marks the entry's commission as settled. Settling twice is a no-op.
// @Tags         commissions
// @Produce      json
// @Security     BearerAuth
// @Param        entryId  path      string  true  "Ledger entry ID"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/finance/commissions/settle/{entryId} [post]
func (h *CommissionHandler) Settle(c *gin.Context) {
	if err := h.commissionService.Settle(c.Request.Context(), c.Param("entryId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"settled": true}))
}
