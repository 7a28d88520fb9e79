package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripforge/schema"
	"tripforge/services"
)

type BudgetRequest struct {
	TripID      string                 `json:"trip_id"`
	Destination string                 `json:"destination"`
	StartDate   string                 `json:"start_date" binding:"required"`
	EndDate     string                 `json:"end_date" binding:"required"`
	Travelers   schema.Traveler        `json:"travelers"`
	TotalBudget float64                `json:"total_budget" binding:"required,gt=0"`
	Components  []schema.TripComponent `json:"components"`
	DailyRates  []services.DailyRate   `json:"daily_rates"`
}

type BudgetResponse struct {
	Report schema.RawBudgetReport `json:"report"`
	Result schema.BudgetResult    `json:"result"`
}

// Budget aggregates planned components and daily estimates into a
// budget verdict. Both the raw report and the canonical result are
// returned so callers can show the per-category breakdown.
func (h *Handler) Budget(c *gin.Context) {
	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format. Use YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format. Use YYYY-MM-DD"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return
	}

	if req.Travelers.Count() <= 0 {
		req.Travelers = schema.Traveler{Adults: 1}
	}

	report := services.CalculateBudget(services.TripPlan{
		TripID:      req.TripID,
		Destination: req.Destination,
		Window:      schema.TripWindow{Start: start, End: end},
		Travelers:   req.Travelers,
		Components:  req.Components,
		TotalBudget: req.TotalBudget,
	}, req.DailyRates)

	c.JSON(http.StatusOK, BudgetResponse{
		Report: report,
		Result: schema.NormalizeBudget(report),
	})
}
