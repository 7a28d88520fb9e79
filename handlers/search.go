package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripforge/database"
	"tripforge/schema"
	"tripforge/services"
)

type SearchRequest struct {
	Query         string  `json:"query"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departure_date" binding:"required"`
	ReturnDate    string  `json:"return_date"`
	Adults        int     `json:"adults"`
	Children      int     `json:"children"`
	Infants       int     `json:"infants"`
	TravelClass   string  `json:"travel_class"`
	Budget        float64 `json:"budget"`

	// Optional per-person-per-day spend estimates for the budget check.
	DailyRates []services.DailyRate `json:"daily_rates"`
}

type SearchResponse struct {
	SearchID string                   `json:"search_id"`
	Results  services.SearchAggregate `json:"results"`
	Budget   *schema.BudgetResult     `json:"budget,omitempty"`
	Summary  string                   `json:"summary"`
}

// defaultDailyRates backs the budget check when the caller gives a
// budget but no spend estimates.
var defaultDailyRates = []services.DailyRate{
	{Category: "food", PerPersonPerDay: 60},
	{Category: "transportation", PerPersonPerDay: 20},
	{Category: "activities", PerPersonPerDay: 40},
}

// Search runs the multi-route flight fan-out, checks the result against
// the requested budget and persists the whole exchange.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Query == "" && req.Origin == "" && req.Destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide a query or origin/destination"})
		return
	}

	depDate, err := time.Parse("2006-01-02", req.DepartureDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid departure date format. Use YYYY-MM-DD"})
		return
	}
	if req.ReturnDate != "" {
		retDate, err := time.Parse("2006-01-02", req.ReturnDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid return date format. Use YYYY-MM-DD"})
			return
		}
		if !retDate.After(depDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Return date must be after departure date"})
			return
		}
	}

	if req.Adults <= 0 {
		req.Adults = 1
	}

	intent := services.SearchIntent{
		Query:         req.Query,
		Origin:        strings.TrimSpace(req.Origin),
		Destination:   strings.TrimSpace(req.Destination),
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Adults,
		Children:      req.Children,
		Infants:       req.Infants,
		TravelClass:   req.TravelClass,
	}

	agg := h.orchestrator.Search(c.Request.Context(), intent)
	log.Printf("✅ search done: %d routes, %d flights", agg.RouteCombinations, agg.TotalResults)

	// ── Budget check ──────────────────────────────────────────────────────────
	var budget *schema.BudgetResult
	if req.Budget > 0 {
		result := h.checkBudget(req, agg)
		budget = &result
	}

	// ── Summary ───────────────────────────────────────────────────────────────
	var verdict schema.BudgetResult
	if budget != nil {
		verdict = *budget
	}
	summary, err := h.ai.SummarizeSearch(agg, verdict)
	if err != nil {
		log.Printf("⚠️  AI summary failed: %v — using fallback text", err)
		summary = services.FallbackSummary(agg, verdict)
	}

	// ── Persist ───────────────────────────────────────────────────────────────
	searchID := uuid.New().String()
	aggJSON, _ := json.Marshal(agg)
	budgetJSON, _ := json.Marshal(budget)

	if h.store != nil {
		if err := h.store.SaveSearch(&database.SearchRecord{
			ID:            searchID,
			Query:         req.Query,
			Origin:        intent.Origin,
			Destination:   intent.Destination,
			DepartureDate: req.DepartureDate,
			ReturnDate:    req.ReturnDate,
			AggregateJSON: string(aggJSON),
			BudgetJSON:    string(budgetJSON),
			Summary:       summary,
		}); err != nil {
			log.Printf("❌ Failed to save search: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save search"})
			return
		}
	}

	c.JSON(http.StatusOK, SearchResponse{
		SearchID: searchID,
		Results:  agg,
		Budget:   budget,
		Summary:  summary,
	})
}

// checkBudget prices the trip as the cheapest found flight per traveler
// plus the daily spend estimates, then classifies it against the
// requested budget.
func (h *Handler) checkBudget(req SearchRequest, agg services.SearchAggregate) schema.BudgetResult {
	party := schema.Traveler{Adults: req.Adults, Children: req.Children, Infants: req.Infants}

	var components []schema.TripComponent
	if len(agg.Flights) > 0 {
		comp := schema.FlightComponent(agg.Flights[0].FlightOption)
		comp.Cost *= float64(party.Count())
		components = append(components, comp)
	}

	start, _ := time.Parse("2006-01-02", req.DepartureDate)
	end := start.AddDate(0, 0, 1)
	if req.ReturnDate != "" {
		if t, err := time.Parse("2006-01-02", req.ReturnDate); err == nil {
			end = t
		}
	}

	rates := req.DailyRates
	if len(rates) == 0 {
		rates = defaultDailyRates
	}

	report := services.CalculateBudget(services.TripPlan{
		Destination: req.Destination,
		Window:      schema.TripWindow{Start: start, End: end},
		Travelers:   party,
		Components:  components,
		TotalBudget: req.Budget,
	}, rates)

	return schema.NormalizeBudget(report)
}
