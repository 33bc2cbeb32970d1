package handler

import (
	"net/http"

	"clinicpanel/internal/middleware"
	"clinicpanel/internal/service"
	"clinicpanel/pkg/pagination"
	"clinicpanel/pkg/response"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patientService service.PatientService
	budgetService  service.BudgetService
}

func NewPatientHandler(patientService service.PatientService, budgetService service.BudgetService) *PatientHandler {
	return &PatientHandler{patientService: patientService, budgetService: budgetService}
}

func (h *PatientHandler) RegisterRoutes(router *gin.RouterGroup) {
	patients := router.Group("/api/patients", middleware.RequireAuth())
	{
		patients.GET("", h.List)
		patients.POST("", h.Create)
		patients.GET("/:id", h.Get)
		patients.PUT("/:id", h.Update)
		patients.DELETE("/:id", h.Delete)
		patients.GET("/:id/budgets", h.ListBudgets)
		patients.GET("/:id/plan", h.ListPlanItems)
	}

	budgets := router.Group("/api/budgets", middleware.RequireAuth())
	{
		budgets.POST("", h.CreateBudget)
		budgets.POST("/:id/approve", h.ApproveBudget)
		budgets.POST("/:id/reject", h.RejectBudget)
	}

	plan := router.Group("/api/plan-items", middleware.RequireAuth())
	{
		plan.POST("", h.CreatePlanItem)
		plan.POST("/:id/toggle", h.TogglePlanItemDone)
	}
}

// List returns paginated patients
// @Summary      List patients
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        q      query     string  false  "search over name, document and phone"
// @Param        page   query     int     false  "page"
// @Param        limit  query     int     false  "page size"
// @Success      200    {object}  response.Response{data=service.PatientListResponse}
// @Router       /api/patients [get]
func (h *PatientHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	result, err := h.patientService.List(c.Request.Context(), c.Query("q"), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Create registers a patient
// @Summary      Create patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PatientRequest  true  "Patient"
// @Success      201      {object}  response.Response{data=service.PatientResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	var req service.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	patient, err := h.patientService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, patient))
}

// Get returns one patient
// @Summary      Get patient
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Patient ID"
// @Success      200  {object}  response.Response{data=service.PatientResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/patients/{id} [get]
func (h *PatientHandler) Get(c *gin.Context) {
	patient, err := h.patientService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, patient))
}

// Update edits a patient
// @Summary      Update patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Patient ID"
// @Param        payload  body      service.PatientRequest  true  "Patient"
// @Success      200      {object}  response.Response{data=service.PatientResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/patients/{id} [put]
func (h *PatientHandler) Update(c *gin.Context) {
	var req service.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	patient, err := h.patientService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, patient))
}

// Delete soft-deletes a patient
// @Summary      Delete patient
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Patient ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/patients/{id} [delete]
func (h *PatientHandler) Delete(c *gin.Context) {
	if err := h.patientService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListBudgets returns a patient's budgets
// @Summary      List patient budgets
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Patient ID"
// @Success      200  {object}  response.Response{data=[]service.BudgetResponse}
// @Router       /api/patients/{id}/budgets [get]
func (h *PatientHandler) ListBudgets(c *gin.Context) {
	budgets, err := h.budgetService.ListByPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, budgets))
}

// ListPlanItems returns a patient's treatment plan
// @Summary      List treatment plan
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Patient ID"
// @Success      200  {object}  response.Response{data=[]service.PlanItemResponse}
// @Router       /api/patients/{id}/plan [get]
func (h *PatientHandler) ListPlanItems(c *gin.Context) {
	items, err := h.budgetService.ListPlanItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// CreateBudget records a proposal
// @Summary      Create budget
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BudgetRequest  true  "Budget"
// @Success      201      {object}  response.Response{data=service.BudgetResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/budgets [post]
func (h *PatientHandler) CreateBudget(c *gin.Context) {
	var req service.BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	budget, err := h.budgetService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, budget))
}

// ApproveBudget approves and spawns the plan item
// @Summary      Approve budget
// @Description  Approves the budget and spawns its single treatment-plan item. Approving twice never duplicates the item.
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Budget ID"
// @Success      200  {object}  response.Response{data=service.BudgetResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/budgets/{id}/approve [post]
func (h *PatientHandler) ApproveBudget(c *gin.Context) {
	budget, err := h.budgetService.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, budget))
}

// RejectBudget rejects a proposal
// @Summary      Reject budget
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Budget ID"
// @Success      200  {object}  response.Response{data=service.BudgetResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/budgets/{id}/reject [post]
func (h *PatientHandler) RejectBudget(c *gin.Context) {
	budget, err := h.budgetService.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, budget))
}

// CreatePlanItem adds a manual plan item
// @Summary      Create plan item
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PlanItemRequest  true  "Plan item"
// @Success      201      {object}  response.Response{data=service.PlanItemResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/plan-items [post]
func (h *PatientHandler) CreatePlanItem(c *gin.Context) {
	var req service.PlanItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.budgetService.CreatePlanItem(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// TogglePlanItemDone flips the done flag
// @Summary      Toggle plan item done
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Plan item ID"
// @Success      200  {object}  response.Response{data=service.PlanItemResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/plan-items/{id}/toggle [post]
func (h *PatientHandler) TogglePlanItemDone(c *gin.Context) {
	item, err := h.budgetService.TogglePlanItemDone(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}
