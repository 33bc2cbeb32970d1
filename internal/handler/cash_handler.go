package handler

import (
	"net/http"

	"clinicpanel/internal/middleware"
	"clinicpanel/internal/service"
	"clinicpanel/internal/websocket"
	"clinicpanel/pkg/response"

	"github.com/gin-gonic/gin"
)

type CashHandler struct {
	cashService service.CashService
	hub         *websocket.Hub
}

func NewCashHandler(cashService service.CashService, hub *websocket.Hub) *CashHandler {
	return &CashHandler{cashService: cashService, hub: hub}
}

func (h *CashHandler) RegisterRoutes(router *gin.RouterGroup) {
	cash := router.Group("/api/finance/cash", middleware.RequireFinanceUnlock())
	{
		cash.GET("", h.Current)
		cash.POST("/open", h.Open)
		cash.POST("/close", h.Close)
		cash.GET("/history", h.History)
	}
}

// Current returns the open till, if any, with its running expected balance
// @Summary      Current cash session
// @Tags         cash
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.CashCurrentResponse}
// @Router       /api/finance/cash [get]
func (h *CashHandler) Current(c *gin.Context) {
	current, err := h.cashService.Current(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, current))
}

// Open starts a cash session
// @Summary      Open the till
// @Description  Opens the single cash session. Fails with 409 when one is already open.
// @Tags         cash
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.OpenCashRequest  true  "Opening balance"
// @Success      201      {object}  response.Response{data=service.CashSessionResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/finance/cash/open [post]
func (h *CashHandler) Open(c *gin.Context) {
	var req service.OpenCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	session, err := h.cashService.Open(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.hub.Notify(websocket.EventTillOpened, session)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, session))
}

// Close reconciles and closes the open till
// @Summary      Close the till
// @Description  Closes the open session, computing expected balance and the discrepancy against the declared count
// @Tags         cash
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CloseCashRequest  true  "Declared balance"
// @Success      200      {object}  response.Response{data=service.CashCloseResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/finance/cash/close [post]
func (h *CashHandler) Close(c *gin.Context) {
	var req service.CloseCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.cashService.Close(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.hub.Notify(websocket.EventTillClosed, result)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// History lists closed sessions, newest first
// @Summary      Cash session history
// @Tags         cash
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "max sessions (default 30, cap 60)"
// @Success      200    {object}  response.Response{data=[]service.CashSessionResponse}
// @Router       /api/finance/cash/history [get]
func (h *CashHandler) History(c *gin.Context) {
	sessions, err := h.cashService.History(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sessions))
}
