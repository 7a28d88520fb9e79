package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripforge/database"
	"tripforge/schema"
	"tripforge/services"
)

type ItineraryRequest struct {
	SearchID            string `json:"search_id" binding:"required"`
	SelectedFlightIndex int    `json:"selected_flight_index"`
	TravelerName        string `json:"traveler_name"`

	Hotel          schema.HotelOption      `json:"hotel" binding:"required"`
	Activities     []schema.ActivityOption `json:"activities"`
	Daily          []schema.DailyPlan      `json:"daily"`
	ContingencyUSD float64                 `json:"contingency_usd"`
	Tradeoffs      []string                `json:"tradeoffs"`
	Confidence     schema.Confidence       `json:"confidence"`
	TotalBudget    float64                 `json:"total_budget"`
}

type ItineraryResponse struct {
	Itinerary schema.ItineraryCandidate `json:"itinerary"`
	Budget    *schema.BudgetResult      `json:"budget,omitempty"`
	PDFURL    string                    `json:"pdf_url"`
}

// Itinerary composes the selected flight with the caller's hotel and
// activity picks, checks the total against the budget and renders the
// PDF. The PDF bytes live in the itinerary row, no filesystem.
func (h *Handler) Itinerary(c *gin.Context) {
	var req ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Hotel.PriceTotalUSD <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Hotel price must be positive"})
		return
	}
	for i, day := range req.Daily {
		if len(day.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Daily plan day %d needs at least one item", i+1)})
			return
		}
		if day.FatigueScore < 1 || day.FatigueScore > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Daily plan day %d: fatigue score must be between 1 and 10", i+1)})
			return
		}
	}

	search, err := h.store.GetSearch(req.SearchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Search session not found"})
		return
	}

	var agg services.SearchAggregate
	if err := json.Unmarshal([]byte(search.AggregateJSON), &agg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse cached search results"})
		return
	}
	if len(agg.Flights) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Search found no flights to compose from"})
		return
	}

	if req.SelectedFlightIndex < 0 || req.SelectedFlightIndex >= len(agg.Flights) {
		req.SelectedFlightIndex = 0
	}
	flight := agg.Flights[req.SelectedFlightIndex].FlightOption

	candidate := services.ComposeItinerary(flight, req.Hotel, req.Activities, req.Daily, services.ComposeOptions{
		ContingencyUSD: req.ContingencyUSD,
		Tradeoffs:      req.Tradeoffs,
		Confidence:     req.Confidence,
	})

	// ── Budget verdict ────────────────────────────────────────────────────────
	var budget *schema.BudgetResult
	if req.TotalBudget > 0 {
		result := h.itineraryBudget(req, search, candidate)
		budget = &result
	}

	// ── PDF ───────────────────────────────────────────────────────────────────
	var verdict schema.BudgetResult
	if budget != nil {
		verdict = *budget
	}
	pdfBytes, err := services.GeneratePDFBytes(services.PDFData{
		TravelerName: req.TravelerName,
		Candidate:    candidate,
		Budget:       verdict,
		Summary:      search.Summary,
	})
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	// ── Persist ───────────────────────────────────────────────────────────────
	itineraryJSON, _ := json.Marshal(candidate)
	budgetJSON, _ := json.Marshal(budget)

	if err := h.store.SaveItinerary(&database.ItineraryRecord{
		ID:            candidate.ID,
		SearchID:      req.SearchID,
		ItineraryJSON: string(itineraryJSON),
		BudgetJSON:    string(budgetJSON),
		PDFData:       pdfBytes,
		TravelerName:  req.TravelerName,
	}); err != nil {
		log.Printf("❌ Failed to save itinerary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		return
	}

	log.Printf("✅ itinerary %s composed (%d bytes of PDF)", candidate.ID, len(pdfBytes))

	c.JSON(http.StatusOK, ItineraryResponse{
		Itinerary: candidate,
		Budget:    budget,
		PDFURL:    "/api/download/" + candidate.ID,
	})
}

// ItineraryBySearch returns the most recently composed itinerary for a
// search session, so clients can pick an exchange back up.
func (h *Handler) ItineraryBySearch(c *gin.Context) {
	searchID := c.Param("id")

	record, err := h.store.GetItineraryBySearchID(searchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No itinerary composed for this search"})
		return
	}

	var candidate schema.ItineraryCandidate
	if err := json.Unmarshal([]byte(record.ItineraryJSON), &candidate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse stored itinerary"})
		return
	}

	var budget *schema.BudgetResult
	if record.BudgetJSON != "" && record.BudgetJSON != "null" {
		var b schema.BudgetResult
		if err := json.Unmarshal([]byte(record.BudgetJSON), &b); err == nil {
			budget = &b
		}
	}

	c.JSON(http.StatusOK, ItineraryResponse{
		Itinerary: candidate,
		Budget:    budget,
		PDFURL:    "/api/download/" + record.ID,
	})
}

// itineraryBudget prices the composed candidate component by component
// and classifies it against the caller's total budget.
func (h *Handler) itineraryBudget(req ItineraryRequest, search *database.SearchRecord, c schema.ItineraryCandidate) schema.BudgetResult {
	start, _ := time.Parse("2006-01-02", search.DepartureDate)
	end := start.AddDate(0, 0, 1)
	if search.ReturnDate != "" {
		if t, err := time.Parse("2006-01-02", search.ReturnDate); err == nil {
			end = t
		}
	}
	window := schema.TripWindow{Start: start, End: end}

	components := []schema.TripComponent{
		schema.FlightComponent(c.Flight),
		schema.HotelComponent(c.Hotel, start, window.Nights()),
	}
	for _, a := range c.Activities {
		components = append(components, schema.ActivityComponent(a))
	}

	report := services.CalculateBudget(services.TripPlan{
		TripID:      req.SearchID,
		Destination: search.Destination,
		Window:      window,
		Travelers:   schema.Traveler{Adults: 1},
		Components:  components,
		TotalBudget: req.TotalBudget,
	}, nil)

	return schema.NormalizeBudget(report)
}
