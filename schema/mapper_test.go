package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFlightRedeye(t *testing.T) {
	tests := []struct {
		name   string
		depart string
		arrive string
		redeye bool
	}{
		{"late night departure", "2026-09-10T23:30:00", "2026-09-11T07:30:00", true},
		{"early morning departure", "2026-09-10T01:15:00", "2026-09-10T05:00:00", true},
		{"daytime flight", "2026-09-10T09:00:00", "2026-09-10T13:00:00", false},
		{"overnight arrival before 8am", "2026-09-10T18:00:00", "2026-09-11T06:30:00", true},
		{"overnight arrival after 8am", "2026-09-10T18:00:00", "2026-09-11T10:00:00", false},
		{"boundary 22:00 departure", "2026-09-10T22:00:00", "2026-09-11T06:00:00", true},
		{"boundary 02:00 departure", "2026-09-10T02:00:00", "2026-09-10T06:00:00", true},
		{"boundary 03:00 departure", "2026-09-10T03:00:00", "2026-09-10T07:00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NormalizeFlight(RawFlight{
				FlightID:      "UA100",
				AirlineCode:   "UA",
				DepartureTime: tt.depart,
				ArrivalTime:   tt.arrive,
			})
			assert.Equal(t, tt.redeye, f.Redeye)
		})
	}
}

func TestNormalizeFlightUnparseableTimesLeaveRedeyeFalse(t *testing.T) {
	f := NormalizeFlight(RawFlight{
		FlightID:      "DL42",
		AirlineCode:   "DL",
		DepartureTime: "tomorrow night",
		ArrivalTime:   "2026-09-11T07:30:00",
	})
	assert.False(t, f.Redeye)
	assert.True(t, f.Depart.IsZero())
}

func TestNormalizeFlightNumberAndCarrier(t *testing.T) {
	f := NormalizeFlight(RawFlight{
		FlightID:    "UA1549",
		AirlineCode: "UA",
		AirlineName: "United Airlines",
		Stops:       1,
		Price:       432.50,
	})
	assert.Equal(t, "1549", f.Number)
	assert.Equal(t, "United Airlines", f.Carrier)
	assert.Equal(t, "UA1549", f.ID)
	assert.Equal(t, CurrencyUSD, f.Currency)
	assert.Equal(t, "ECONOMY", f.FareClass)

	// No airline name: the code stands in as the carrier.
	f = NormalizeFlight(RawFlight{FlightID: "AA7", AirlineCode: "AA"})
	assert.Equal(t, "AA", f.Carrier)
}

func TestNormalizeHotelFromSearchPrice(t *testing.T) {
	stars := 4

	tests := []struct {
		name     string
		raw      RawHotel
		fallback float64
		want     float64
	}{
		{"range lower bound", RawHotel{PriceRange: "$150-$220"}, 0, 150},
		{"fallback beats range", RawHotel{PriceRange: "$150-$220"}, 980, 980},
		{"fallback alone", RawHotel{}, 640, 640},
		{"nothing parses", RawHotel{PriceRange: "call for rates"}, 0, 100},
		{"empty everything", RawHotel{}, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.raw.HotelID = "h1"
			tt.raw.StarRating = &stars
			h := NormalizeHotelFromSearch(tt.raw, tt.fallback)
			assert.Equal(t, tt.want, h.PriceTotalUSD)
			require.NotNil(t, h.Stars)
			assert.Equal(t, 4.0, *h.Stars)
		})
	}
}

func TestNormalizeHotelFromPricing(t *testing.T) {
	perNight := 150.0
	nights := 5
	stars := 4.0

	h := NormalizeHotelFromPricing(RawHotelPricing{
		HotelID:   "tok123",
		HotelName: "Grand Riverside",
		RoomType:  "King",
		Pricing: RawPricingDetail{
			BasePrice:     680,
			TaxesAndFees:  70,
			TotalPrice:    750,
			Currency:      CurrencyUSD,
			PricePerNight: &perNight,
			TotalNights:   &nights,
		},
	}, "Portland", &stars, []string{"img1"})

	assert.Equal(t, "tok123", h.ID)
	assert.Equal(t, "Portland", h.City)
	assert.Equal(t, 750.0, h.PriceTotalUSD) // precomputed total used as-is
	assert.Equal(t, "King", h.BedType)
	require.NotNil(t, h.Stars)
	assert.Equal(t, 4.0, *h.Stars)
	assert.Equal(t, []string{"img1"}, h.Images)
}

func TestNormalizeActivity(t *testing.T) {
	a := NormalizeActivity(RawActivity{
		ID:         "a1",
		Name:       "Night market food tour",
		City:       "Taipei",
		Theme:      []string{"food", "walking"},
		PriceUSD:   45,
		DurationHr: 2.5,
	})
	assert.Equal(t, []string{"food", "walking"}, a.Themes)
	assert.Equal(t, 2.5, a.DurationHours)
	assert.Equal(t, 45.0, a.PriceUSD)
}

func TestNormalizeBudgetStatusMapping(t *testing.T) {
	tests := []struct {
		raw  string
		want BudgetStatus
	}{
		{"under_budget", StatusUnderBudget},
		{"on_budget", StatusOnBudget},
		{"over_budget", StatusOverBudget},
		{"critical", StatusCritical},
		{"warning", StatusOverBudget},
		{"near_limit", StatusOnBudget},
		{"ok", StatusOnBudget},
		{"WARNING", StatusOverBudget},
		{"something else", StatusOnBudget},
		{"", StatusOnBudget},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			result := NormalizeBudget(RawBudgetReport{BudgetStatus: tt.raw})
			assert.Equal(t, tt.want, result.Status)
		})
	}
}

func TestNormalizeBudgetBuckets(t *testing.T) {
	planned := 900.0
	lodgingTotal := 750.0
	food := 300.0
	transport := 120.0
	activities := 180.0

	result := NormalizeBudget(RawBudgetReport{
		BreakdownByCategory: []RawBudgetCategory{
			{Category: "flights", PlannedCost: &planned}, // no total: planned wins
			{Category: "accommodation", TotalCategoryCost: &lodgingTotal},
			{Category: "food", TotalCategoryCost: &food},
			{Category: "transportation", TotalCategoryCost: &transport},
			{Category: "activities", TotalCategoryCost: &activities},
		},
	})

	assert.Equal(t, 900.0, result.Totals.Flights)
	assert.Equal(t, 750.0, result.Totals.Lodging)
	assert.Equal(t, 600.0, result.Totals.Daily)
	// No reported totals, so TEE is the bucket sum.
	assert.Equal(t, 2250.0, result.Totals.TEE)
}

func TestNormalizeBudgetTEEPrefersReportedTotals(t *testing.T) {
	plannedTotal := 3200.0
	estimatedTotal := 2800.0
	surplus := -150.0

	result := NormalizeBudget(RawBudgetReport{
		TotalPlannedCost:   &plannedTotal,
		TotalEstimatedCost: &estimatedTotal,
		SurplusShortfall:   &surplus,
	})
	assert.Equal(t, 3200.0, result.Totals.TEE)
	assert.Equal(t, -150.0, result.OverUnderUSD)

	zero := 0.0
	result = NormalizeBudget(RawBudgetReport{
		TotalPlannedCost:   &zero,
		TotalEstimatedCost: &estimatedTotal,
	})
	assert.Equal(t, 2800.0, result.Totals.TEE)
}

func TestCategoryValueFallbackChain(t *testing.T) {
	total := 500.0
	plannedCost := 300.0
	daily := 100.0

	assert.Equal(t, 500.0, categoryValue(RawBudgetCategory{
		TotalCategoryCost: &total, PlannedCost: &plannedCost, EstimatedDailyCost: &daily,
	}))
	assert.Equal(t, 300.0, categoryValue(RawBudgetCategory{
		PlannedCost: &plannedCost, EstimatedDailyCost: &daily,
	}))
	assert.Equal(t, 100.0, categoryValue(RawBudgetCategory{
		EstimatedDailyCost: &daily,
	}))
	assert.Equal(t, 0.0, categoryValue(RawBudgetCategory{}))
}

func TestComponentDerivation(t *testing.T) {
	depart := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	f := FlightOption{
		ID: "UA1549", Carrier: "United", Number: "1549",
		Depart: depart, Stops: 1, PriceUSD: 432.50, FareClass: "ECONOMY",
	}

	comp := FlightComponent(f)
	assert.Equal(t, CategoryFlights, comp.Category)
	assert.Equal(t, "United 1549", comp.Name)
	assert.Equal(t, 432.50, comp.Cost)
	require.NotNil(t, comp.Date)
	assert.Equal(t, depart, *comp.Date)

	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	h := HotelComponent(HotelOption{ID: "h1", Name: "Grand", PriceTotalUSD: 750}, checkIn, 5)
	assert.Equal(t, CategoryHotels, h.Category)
	assert.Equal(t, 5, h.Meta["nights"])

	a := ActivityComponent(ActivityOption{ID: "a1", Name: "Museum", PriceUSD: 25})
	assert.Equal(t, CategoryActivities, a.Category)
	assert.Nil(t, a.Date)
}

func TestParsePriceRangeLow(t *testing.T) {
	assert.Equal(t, 150.0, parsePriceRangeLow("$150-$220"))
	assert.Equal(t, 89.5, parsePriceRangeLow("$89.5-$120"))
	assert.Equal(t, 0.0, parsePriceRangeLow("call for rates"))
	assert.Equal(t, 0.0, parsePriceRangeLow(""))
}

func TestTripWindowNights(t *testing.T) {
	w := TripWindow{
		Start: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 5, w.Nights())
}
