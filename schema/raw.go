package schema

import "time"

// Raw records mirror provider payloads field for field. Optional fields
// are pointers so "absent" is distinguishable from zero; every derived
// value in mapper.go documents its fallback chain instead of probing
// alternate keys at runtime.

// RawFlight is one flight as returned by the flight search provider.
type RawFlight struct {
	FlightID         string  `json:"flight_id"`
	AirlineCode      string  `json:"airline_code"`
	AirlineName      string  `json:"airline_name"`
	DepartureTime    string  `json:"departure_time"` // ISO 8601, provider-local
	ArrivalTime      string  `json:"arrival_time"`
	Duration         string  `json:"duration"` // e.g. "11h50m"
	Stops            int     `json:"stops"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	FareClass        string  `json:"fare_class"`
	DepartureAirport string  `json:"departure_airport"`
	ArrivalAirport   string  `json:"arrival_airport"`
	AircraftType     string  `json:"aircraft_type,omitempty"`
	BookingClass     string  `json:"booking_class,omitempty"`
}

type RawHotelLocation struct {
	Address          string   `json:"address"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	DistanceToCenter string   `json:"distance_to_center,omitempty"`
}

type RawHotelReview struct {
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
	Source       string  `json:"source,omitempty"`
}

// RawHotel is one hotel as returned by the hotel search provider.
type RawHotel struct {
	HotelID        string           `json:"hotel_id"`
	Name           string           `json:"name"`
	City           string           `json:"city"`
	Location       RawHotelLocation `json:"location"`
	StarRating     *int             `json:"star_rating,omitempty"` // 1..5
	Review         *RawHotelReview  `json:"review,omitempty"`
	Images         []string         `json:"images,omitempty"`
	PriceRange     string           `json:"price_range,omitempty"` // e.g. "$150-$220"
	Description    string           `json:"description,omitempty"`
	Vibe           string           `json:"vibe,omitempty"`
	NearTransitMin *int             `json:"near_transit_min,omitempty"`
}

// RawPricingDetail is the per-stay price breakdown from the hotel
// pricing endpoint.
type RawPricingDetail struct {
	BasePrice     float64  `json:"base_price"`
	TaxesAndFees  float64  `json:"taxes_and_fees"`
	TotalPrice    float64  `json:"total_price"`
	Currency      string   `json:"currency"`
	PricePerNight *float64 `json:"price_per_night,omitempty"`
	TotalNights   *int     `json:"total_nights,omitempty"`
}

// RawHotelPricing is the hotel pricing-detail record.
type RawHotelPricing struct {
	HotelID   string           `json:"hotel_id"`
	HotelName string           `json:"hotel_name"`
	RoomType  string           `json:"room_type,omitempty"`
	Pricing   RawPricingDetail `json:"pricing"`
}

// RawActivity is one activity from the activities provider.
type RawActivity struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	City       string   `json:"city"`
	Theme      []string `json:"theme"`
	PriceUSD   float64  `json:"price_usd"`
	DurationHr float64  `json:"duration_hr"`
	Image      string   `json:"image,omitempty"`
}

// RawBudgetCategory is one per-category line of the budget collaborator's
// breakdown. The three cost fields form an ordered fallback chain; see
// NormalizeBudget.
type RawBudgetCategory struct {
	Category           string   `json:"category"`
	PlannedCost        *float64 `json:"planned_cost,omitempty"`
	EstimatedDailyCost *float64 `json:"estimated_daily_cost,omitempty"`
	TotalCategoryCost  *float64 `json:"total_category_cost,omitempty"`
	PercentageOfBudget *float64 `json:"percentage_of_budget,omitempty"`
}

// RawBudgetReport is the budget collaborator's full raw response.
type RawBudgetReport struct {
	TripID               string              `json:"trip_id"`
	TotalPlannedCost     *float64            `json:"total_planned_cost,omitempty"`
	TotalEstimatedCost   *float64            `json:"total_estimated_cost,omitempty"`
	TotalBudget          *float64            `json:"total_budget,omitempty"`
	SurplusShortfall     *float64            `json:"surplus_shortfall,omitempty"`
	BudgetStatus         string              `json:"budget_status,omitempty"`
	BreakdownByCategory  []RawBudgetCategory `json:"breakdown_by_category,omitempty"`
	Currency             string              `json:"currency"`
	CalculationTimestamp *time.Time          `json:"calculation_timestamp,omitempty"`
}
