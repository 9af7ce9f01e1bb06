package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runcoach/backend/internal/model"
)

type workoutService interface {
	Create(ctx context.Context, userID string, req model.CreateWorkoutRequest) (*model.Workout, error)
	Get(ctx context.Context, userID, id string) (*model.Workout, error)
	List(ctx context.Context, userID, from, to string) ([]model.Workout, error)
	Update(ctx context.Context, userID, id string, req model.UpdateWorkoutRequest) (*model.Workout, error)
}

type WorkoutHandler struct {
	svc workoutService
}

func NewWorkoutHandler(svc workoutService) *WorkoutHandler {
	return &WorkoutHandler{svc: svc}
}

// ListWorkouts godoc
// @Summary List workouts for a calendar range
// @Description Defaults to the current month when from/to are absent.
// @Tags workouts
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} model.WorkoutListResponse
// @Failure 400,401,500 {object} model.ErrorResponse
// @Router /api/v1/workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	workouts, err := h.svc.List(c.Request.Context(), user.ID, c.Query("from"), c.Query("to"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.WorkoutListResponse{Status: "success", Data: workouts})
}

// CreateWorkout godoc
// @Summary Add a workout manually
// @Tags workouts
// @Accept json
// @Produce json
// @Param request body model.CreateWorkoutRequest true "Workout"
// @Success 200 {object} model.Workout
// @Failure 400,401,500 {object} model.ErrorResponse
// @Router /api/v1/workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	w, err := h.svc.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// GetWorkout godoc
// @Summary Get a single workout
// @Tags workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} model.Workout
// @Failure 401,404,500 {object} model.ErrorResponse
// @Router /api/v1/workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	w, err := h.svc.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if w == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// UpdateWorkout godoc
// @Summary Update a workout's status or result
// @Tags workouts
// @Accept json
// @Produce json
// @Param id path string true "Workout ID"
// @Param request body model.UpdateWorkoutRequest true "Fields to update"
// @Success 200 {object} model.Workout
// @Failure 400,401,404,500 {object} model.ErrorResponse
// @Router /api/v1/workouts/{id} [patch]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	w, err := h.svc.Update(c.Request.Context(), user.ID, c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if w == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, w)
}
