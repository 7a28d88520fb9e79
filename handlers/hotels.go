package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripforge/schema"
	"tripforge/services"
)

type HotelSearchRequest struct {
	City       string  `json:"city" binding:"required"`
	CheckIn    string  `json:"check_in" binding:"required"`
	CheckOut   string  `json:"check_out" binding:"required"`
	Adults     int     `json:"adults"`
	Children   int     `json:"children"`
	Rooms      int     `json:"rooms"`
	HotelClass string  `json:"hotel_class"`
	MaxPrice   float64 `json:"max_price"`
	SortBy     string  `json:"sort_by"`
	MaxResults int     `json:"max_results"`
}

type HotelSearchResponse struct {
	City   string               `json:"city"`
	Hotels []schema.HotelOption `json:"hotels"`
}

// Hotels runs one hotel search and returns canonical options.
func (h *Handler) Hotels(c *gin.Context) {
	var req HotelSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	in, err := time.Parse("2006-01-02", req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-in date format. Use YYYY-MM-DD"})
		return
	}
	out, err := time.Parse("2006-01-02", req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-out date format. Use YYYY-MM-DD"})
		return
	}
	if !out.After(in) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Check-out must be after check-in"})
		return
	}

	raws, err := h.hotels.SearchHotels(c.Request.Context(), services.HotelQuery{
		City:       req.City,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Adults:     req.Adults,
		Children:   req.Children,
		Rooms:      req.Rooms,
		HotelClass: req.HotelClass,
		MaxPrice:   req.MaxPrice,
		SortBy:     req.SortBy,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		log.Printf("⚠️  hotel search failed for %s: %v", req.City, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Hotel search failed"})
		return
	}

	hotels := make([]schema.HotelOption, 0, len(raws))
	for _, raw := range raws {
		hotels = append(hotels, schema.NormalizeHotelFromSearch(raw, 0))
	}

	c.JSON(http.StatusOK, HotelSearchResponse{
		City:   req.City,
		Hotels: hotels,
	})
}

type HotelPricingRequest struct {
	PropertyToken string   `json:"property_token" binding:"required"`
	City          string   `json:"city"`
	CheckIn       string   `json:"check_in" binding:"required"`
	CheckOut      string   `json:"check_out" binding:"required"`
	Adults        int      `json:"adults"`
	Stars         *float64 `json:"stars"`
}

type HotelPricingResponse struct {
	Pricing schema.RawHotelPricing `json:"pricing"`
	Hotel   schema.HotelOption     `json:"hotel"`
}

// HotelPricing fetches the per-stay price breakdown for one property and
// returns it alongside the canonical option it maps to.
func (h *Handler) HotelPricing(c *gin.Context) {
	var req HotelPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	pricing, err := h.hotels.LookupPricing(c.Request.Context(), req.PropertyToken, services.HotelQuery{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Adults:   req.Adults,
	})
	if err != nil {
		log.Printf("⚠️  hotel pricing lookup failed for %s: %v", req.PropertyToken, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Hotel pricing lookup failed"})
		return
	}

	c.JSON(http.StatusOK, HotelPricingResponse{
		Pricing: pricing,
		Hotel:   schema.NormalizeHotelFromPricing(pricing, req.City, req.Stars, nil),
	})
}
