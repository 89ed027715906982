package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shiftline/account-lifecycle-service/internal/lifecycle"
	"github.com/shiftline/account-lifecycle-service/internal/model"
)

// OnboardEmployeeRequest is the JSON body for POST /v1/employees.
type OnboardEmployeeRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=8"`
	FirstName    string  `json:"first_name" binding:"required"`
	LastName     string  `json:"last_name" binding:"required"`
	Role         string  `json:"role" binding:"required,oneof=manager staff"`
	Position     string  `json:"position"`
	HourlyRate   float64 `json:"hourly_rate"`
	HireDate     string  `json:"hire_date" binding:"required"`
	RestaurantID string  `json:"restaurant_id" binding:"required,uuid"`
}

func newRouter(coordinator *lifecycle.Coordinator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	v1.POST("/employees", handleOnboard(coordinator))
	v1.DELETE("/employees/:id", handleOffboard(coordinator))
	v1.DELETE("/restaurants/:id", handleTeardown(coordinator))
	return router
}

func handleOnboard(coordinator *lifecycle.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OnboardEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}
		hireDate, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hire_date must be YYYY-MM-DD"})
			return
		}
		restaurantID, _ := uuid.Parse(req.RestaurantID)

		result, err := coordinator.OnboardEmployee(c.Request.Context(), lifecycle.OnboardRequest{
			Email:        req.Email,
			Password:     req.Password,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         model.Role(req.Role),
			Position:     req.Position,
			HourlyRate:   req.HourlyRate,
			HireDate:     hireDate,
			RestaurantID: restaurantID,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"principal_id": result.PrincipalID,
			"email":        result.Email,
		})
	}
}

func handleOffboard(coordinator *lifecycle.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
			return
		}
		mode := lifecycle.ModeSelfService
		if c.Query("mode") == string(lifecycle.ModePrivileged) {
			mode = lifecycle.ModePrivileged
		}

		err = coordinator.OffboardEmployee(c.Request.Context(), lifecycle.OffboardRequest{
			EmployeeID:  employeeID,
			PrincipalID: c.Query("principal_id"),
			Mode:        mode,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "employee removed"})
	}
}

func handleTeardown(coordinator *lifecycle.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
			return
		}

		err = coordinator.TeardownRestaurant(c.Request.Context(), lifecycle.TeardownRequest{
			RestaurantID:         restaurantID,
			RequestingOwnerEmail: c.Query("owner_email"),
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "restaurant removed"})
	}
}

func statusForError(err error) int {
	switch {
	case lifecycle.IsKind(err, lifecycle.KindValidation):
		return http.StatusBadRequest
	case lifecycle.IsKind(err, lifecycle.KindNotFound):
		return http.StatusNotFound
	case lifecycle.IsKind(err, lifecycle.KindAuthorization):
		return http.StatusForbidden
	case lifecycle.IsKind(err, lifecycle.KindUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
