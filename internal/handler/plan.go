package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runcoach/backend/internal/model"
)

type planService interface {
	CreatePlan(ctx context.Context, userID string, req model.PlanRequest) (*model.PlanDetailResponse, error)
	GetPlans(ctx context.Context, userID string) ([]model.Plan, error)
	GetPlanDetail(ctx context.Context, id, userID string) (*model.PlanDetailResponse, error)
}

type PlanHandler struct {
	svc planService
}

func NewPlanHandler(svc planService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

// CreatePlan godoc
// @Summary Generate a training plan
// @Description Sends the athlete profile to the coaching model and stores the
// @Description resulting plan and its workouts.
// @Tags plans
// @Accept json
// @Produce json
// @Param request body model.PlanRequest true "Athlete profile"
// @Success 200 {object} model.PlanDetailResponse
// @Failure 400,401,500,503 {object} model.ErrorResponse
// @Router /api/v1/plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	detail, err := h.svc.CreatePlan(c.Request.Context(), user.ID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetPlans godoc
// @Summary List the user's plans
// @Tags plans
// @Produce json
// @Success 200 {array} model.Plan
// @Failure 401,500 {object} model.ErrorResponse
// @Router /api/v1/plans [get]
func (h *PlanHandler) GetPlans(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	plans, err := h.svc.GetPlans(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlanDetail godoc
// @Summary Get a plan with its workouts
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} model.PlanDetailResponse
// @Failure 401,404,500 {object} model.ErrorResponse
// @Router /api/v1/plans/{id} [get]
func (h *PlanHandler) GetPlanDetail(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	detail, err := h.svc.GetPlanDetail(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, detail)
}
