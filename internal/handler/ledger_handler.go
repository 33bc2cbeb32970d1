package handler

import (
	"net/http"

	"clinicpanel/internal/middleware"
	"clinicpanel/internal/service"
	"clinicpanel/pkg/response"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/api/finance/entries", middleware.RequireFinanceUnlock())
	{
		entries.GET("", h.ListEntries)
		entries.POST("", h.CreateEntry)
		entries.GET("/:id", h.GetEntry)
		entries.PUT("/:id", h.UpdateEntry)
		entries.DELETE("/:id", h.DeleteEntry)
		entries.POST("/:id/settle", h.SettleEntry)
	}
}

// ListEntries returns filtered ledger entries with report totals
// @Summary      List ledger entries
// @Description  Returns entries matching the filters plus income/expense/pending totals and an income-by-method breakdown
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        kind            query  string  false  "income or expense"
// @Param        status          query  string  false  "paid or pending"
// @Param        payment_method  query  string  false  "canonical payment method"
// @Param        q               query  string  false  "free text over description, patient name and document"
// @Param        from            query  string  false  "YYYY-MM-DD"
// @Param        to              query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  response.Response{data=service.LedgerListResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/finance/entries [get]
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	filter := service.LedgerListFilter{
		Kind:          c.Query("kind"),
		Status:        c.Query("status"),
		PaymentMethod: c.Query("payment_method"),
		Search:        c.Query("q"),
		From:          c.Query("from"),
		To:            c.Query("to"),
		PatientID:     c.Query("patient_id"),
		CategoryID:    c.Query("category_id"),
		Limit:         queryInt(c, "limit"),
	}

	result, err := h.ledgerService.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateEntry records an income or expense
// @Summary      Create ledger entry
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.LedgerEntryRequest  true  "Entry"
// @Success      201      {object}  response.Response{data=service.LedgerEntryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/finance/entries [post]
func (h *LedgerHandler) CreateEntry(c *gin.Context) {
	var req service.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// GetEntry returns one ledger entry
// @Summary      Get ledger entry
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Entry ID"
// @Success      200  {object}  response.Response{data=service.LedgerEntryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/finance/entries/{id} [get]
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	entry, err := h.ledgerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// UpdateEntry rewrites an entry
// @Summary      Update ledger entry
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Entry ID"
// @Param        payload  body      service.LedgerEntryRequest  true  "Entry"
// @Success      200      {object}  response.Response{data=service.LedgerEntryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/finance/entries/{id} [put]
func (h *LedgerHandler) UpdateEntry(c *gin.Context) {
	var req service.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// DeleteEntry removes an entry
// @Summary      Delete ledger entry
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Entry ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/finance/entries/{id} [delete]
func (h *LedgerHandler) DeleteEntry(c *gin.Context) {
	if err := h.ledgerService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// SettleEntry marks a pending entry as paid
// @Summary      Settle pending entry
// @Description  Marks a pending entry as paid with the given method and date; cash payments are stamped with the open till
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Entry ID"
// @Param        payload  body      service.SettleEntryRequest  true  "Settlement"
// @Success      200      {object}  response.Response{data=service.LedgerEntryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/finance/entries/{id}/settle [post]
func (h *LedgerHandler) SettleEntry(c *gin.Context) {
	var req service.SettleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.Settle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}
