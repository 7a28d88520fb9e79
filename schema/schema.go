// Package schema defines the canonical trip entities shared by every
// service in tripforge, plus the raw provider records they are mapped
// from. Canonical values are built once by the mapping functions in
// mapper.go and never mutated afterwards.
package schema

import "time"

// CurrencyUSD is the single currency the system operates in. Provider
// payloads quoting anything else are rejected upstream.
const CurrencyUSD = "USD"

// Category is the closed set of cost buckets used throughout budgeting.
type Category string

const (
	CategoryFlights    Category = "FLIGHTS"
	CategoryHotels     Category = "HOTELS"
	CategoryActivities Category = "ACTIVITIES"
	CategoryOther      Category = "OTHER"
)

// BudgetStatus is the closed set of budget health tags.
type BudgetStatus string

const (
	StatusUnderBudget BudgetStatus = "under_budget"
	StatusOnBudget    BudgetStatus = "on_budget"
	StatusOverBudget  BudgetStatus = "over_budget"
	StatusCritical    BudgetStatus = "critical"
)

// Confidence grades an itinerary candidate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ─── Shared trip inputs ───────────────────────────────────────────────────────

type Traveler struct {
	Adults   int      `json:"adults"`
	Children int      `json:"children"`
	Infants  int      `json:"infants"`
	Profiles []string `json:"profiles,omitempty"`
}

// Count returns the total number of seats/beds the party needs.
func (t Traveler) Count() int {
	return t.Adults + t.Children + t.Infants
}

// TripWindow is a date range; End must not precede Start.
type TripWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Nights returns the number of nights the window covers.
func (w TripWindow) Nights() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

type Trip struct {
	Origin       string     `json:"origin"`
	Destinations []string   `json:"destinations"`
	Dates        TripWindow `json:"dates"`
}

type Constraints struct {
	BudgetUSD       int      `json:"budget_usd"`
	NoRedeyes       bool     `json:"no_redeyes"`
	NonstopOnly     bool     `json:"nonstop_only"`
	WalkMaxKMPerDay *float64 `json:"walk_max_km_per_day,omitempty"`
}

type Preferences struct {
	HotelVibe string `json:"hotel_vibe,omitempty"`
	BedType   string `json:"bed_type,omitempty"`
	Diet      string `json:"diet,omitempty"`
}

// ─── Canonical entities ───────────────────────────────────────────────────────

// FlightOption is the normalized, provider-agnostic flight. Arrive never
// precedes Depart for a well-formed value.
type FlightOption struct {
	ID          string    `json:"id"`
	Carrier     string    `json:"carrier"`
	Number      string    `json:"number"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Depart      time.Time `json:"depart"`
	Arrive      time.Time `json:"arrive"`
	Stops       int       `json:"stops"`
	PriceUSD    float64   `json:"price_usd"`
	Currency    string    `json:"currency"`
	Redeye      bool      `json:"redeye"`
	FareClass   string    `json:"fare_class"`
}

type HotelOption struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	City           string   `json:"city"`
	Stars          *float64 `json:"stars,omitempty"`
	Vibe           string   `json:"vibe,omitempty"`
	NearTransitMin *int     `json:"near_transit_min,omitempty"`
	PriceTotalUSD  float64  `json:"price_total_usd"`
	BedType        string   `json:"bed_type,omitempty"`
	Images         []string `json:"images,omitempty"`
}

type ActivityOption struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Themes        []string `json:"themes"`
	PriceUSD      float64  `json:"price_usd"`
	DurationHours float64  `json:"duration_hours"`
	ImageURL      string   `json:"image_url,omitempty"`
}

// TripComponent is the budgeting view of a canonical entity, derived on
// demand and immutable.
type TripComponent struct {
	ComponentID string                 `json:"component_id"`
	Category    Category               `json:"category"`
	Name        string                 `json:"name"`
	Cost        float64                `json:"cost"`
	Currency    string                 `json:"currency"`
	Date        *time.Time             `json:"date,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// BudgetBreakdown holds the four category totals plus TEE, the Total
// Experience Estimate used as the headline figure.
type BudgetBreakdown struct {
	Flights     float64 `json:"flights"`
	Lodging     float64 `json:"lodging"`
	Daily       float64 `json:"daily"`
	Contingency float64 `json:"contingency"`
	TEE         float64 `json:"tee"`
}

type BudgetResult struct {
	Totals       BudgetBreakdown `json:"totals"`
	Status       BudgetStatus    `json:"status"`
	OverUnderUSD float64         `json:"over_under_usd"`
	Notes        []string        `json:"notes,omitempty"`
}

// DailyPlan is one day of a composed itinerary. Items must be non-empty
// and FatigueScore stays within 1..10.
type DailyPlan struct {
	Date         time.Time `json:"date"`
	Items        []string  `json:"items"`
	FatigueScore int       `json:"fatigue_score"`
}

// ItineraryCandidate is the terminal, read-only output of the composer.
type ItineraryCandidate struct {
	ID         string             `json:"id"`
	Flight     FlightOption       `json:"flight"`
	Hotel      HotelOption        `json:"hotel"`
	Activities []ActivityOption   `json:"activities,omitempty"`
	Daily      []DailyPlan        `json:"daily,omitempty"`
	TotalsUSD  map[string]float64 `json:"totals_usd"`
	Tradeoffs  []string           `json:"tradeoffs,omitempty"`
	Confidence Confidence         `json:"confidence"`
}
