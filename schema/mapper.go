package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// defaultHotelPrice is substituted when neither a fallback total nor a
// parseable price range yields a positive price. Keeps the price > 0
// invariant without silently writing zero.
const defaultHotelPrice = 100.0

// Mapping functions are pure and never fail: a missing or malformed
// optional field degrades to the documented default for that field.

// NormalizeFlight maps a raw provider flight to the canonical FlightOption.
//
// The flight number is the raw flight_id with the carrier code prefix
// stripped when present. A flight is a redeye when it departs between
// 22:00 and 02:59 local, or when it arrives at least one calendar day
// later before 08:00. Unparseable timestamps leave redeye false.
func NormalizeFlight(raw RawFlight) FlightOption {
	number := raw.FlightID
	if raw.AirlineCode != "" && strings.HasPrefix(raw.FlightID, raw.AirlineCode) {
		number = strings.TrimPrefix(raw.FlightID, raw.AirlineCode)
	}

	carrier := raw.AirlineName
	if carrier == "" {
		carrier = raw.AirlineCode
	}

	depart, depOK := parseTimestamp(raw.DepartureTime)
	arrive, arrOK := parseTimestamp(raw.ArrivalTime)

	redeye := false
	if depOK && arrOK {
		depHour := depart.Hour()
		dayDiff := calendarDays(depart, arrive)
		redeye = depHour >= 22 || depHour <= 2 ||
			(dayDiff >= 1 && arrive.Hour() < 8)
	}

	fareClass := raw.FareClass
	if fareClass == "" {
		fareClass = "ECONOMY"
	}

	return FlightOption{
		ID:          raw.FlightID,
		Carrier:     carrier,
		Number:      number,
		Origin:      raw.DepartureAirport,
		Destination: raw.ArrivalAirport,
		Depart:      depart,
		Arrive:      arrive,
		Stops:       raw.Stops,
		PriceUSD:    raw.Price,
		Currency:    CurrencyUSD,
		Redeye:      redeye,
		FareClass:   fareClass,
	}
}

// NormalizeHotelFromSearch maps a raw search hotel to the canonical
// HotelOption. A supplied fallback total always wins over the price_range
// string; this ordering is a deliberate contract with the ranking layer,
// not an accident of parsing. With no fallback the lower bound of
// "$low-$high" is used, and defaultHotelPrice covers everything else.
func NormalizeHotelFromSearch(raw RawHotel, fallbackTotal float64) HotelOption {
	price := fallbackTotal
	if price <= 0 && raw.PriceRange != "" {
		price = parsePriceRangeLow(raw.PriceRange)
	}
	if price <= 0 {
		price = defaultHotelPrice
	}

	var stars *float64
	if raw.StarRating != nil {
		s := float64(*raw.StarRating)
		stars = &s
	}

	return HotelOption{
		ID:             raw.HotelID,
		Name:           raw.Name,
		City:           raw.City,
		Stars:          stars,
		Vibe:           raw.Vibe,
		NearTransitMin: raw.NearTransitMin,
		PriceTotalUSD:  price,
		Images:         raw.Images,
	}
}

// NormalizeHotelFromPricing maps a pricing-detail record to a canonical
// HotelOption. City, stars and images are not part of the pricing payload
// and are supplied by the caller. The precomputed total is used as-is.
func NormalizeHotelFromPricing(raw RawHotelPricing, city string, stars *float64, images []string) HotelOption {
	return HotelOption{
		ID:            raw.HotelID,
		Name:          raw.HotelName,
		City:          city,
		Stars:         stars,
		PriceTotalUSD: raw.Pricing.TotalPrice,
		BedType:       raw.RoomType,
		Images:        images,
	}
}

// NormalizeActivity is a direct projection; no derived fields.
func NormalizeActivity(raw RawActivity) ActivityOption {
	return ActivityOption{
		ID:            raw.ID,
		Name:          raw.Name,
		City:          raw.City,
		Themes:        raw.Theme,
		PriceUSD:      raw.PriceUSD,
		DurationHours: raw.DurationHr,
		ImageURL:      raw.Image,
	}
}

// ─── Budget normalization ─────────────────────────────────────────────────────

// budgetStatusByName maps free-text provider statuses to the closed tag
// set. Unknown strings fall back to StatusOnBudget.
var budgetStatusByName = map[string]BudgetStatus{
	"under_budget": StatusUnderBudget,
	"on_budget":    StatusOnBudget,
	"over_budget":  StatusOverBudget,
	"critical":     StatusCritical,
	"warning":      StatusOverBudget,
	"near_limit":   StatusOnBudget,
	"ok":           StatusOnBudget,
}

// lodgingAliases are the provider category names that all land in the
// lodging bucket.
var lodgingAliases = []string{"hotels", "lodging", "accommodation"}

// dailyAliases are the provider categories summed into the daily bucket.
var dailyAliases = []string{"food", "transportation", "activities"}

// NormalizeBudget translates the budget collaborator's raw report into
// the canonical BudgetResult.
//
// Each bucket takes total_category_cost, falling back to planned_cost,
// then estimated_daily_cost, then zero. TEE is the reported total planned
// cost, else the total estimated cost, else the sum of the buckets.
func NormalizeBudget(raw RawBudgetReport) BudgetResult {
	buckets := make(map[string]float64, len(raw.BreakdownByCategory))
	for _, b := range raw.BreakdownByCategory {
		buckets[strings.ToLower(b.Category)] = categoryValue(b)
	}

	flights := buckets["flights"]
	var lodging float64
	for _, alias := range lodgingAliases {
		if v, ok := buckets[alias]; ok {
			lodging = v
			break
		}
	}
	var daily float64
	for _, alias := range dailyAliases {
		daily += buckets[alias]
	}

	status := StatusOnBudget
	if raw.BudgetStatus != "" {
		if s, ok := budgetStatusByName[strings.ToLower(raw.BudgetStatus)]; ok {
			status = s
		}
	}

	tee := flights + lodging + daily
	if raw.TotalPlannedCost != nil && *raw.TotalPlannedCost > 0 {
		tee = *raw.TotalPlannedCost
	} else if raw.TotalEstimatedCost != nil && *raw.TotalEstimatedCost > 0 {
		tee = *raw.TotalEstimatedCost
	}

	var overUnder float64
	if raw.SurplusShortfall != nil {
		overUnder = *raw.SurplusShortfall
	}

	return BudgetResult{
		Totals: BudgetBreakdown{
			Flights: flights,
			Lodging: lodging,
			Daily:   daily,
			TEE:     tee,
		},
		Status:       status,
		OverUnderUSD: overUnder,
	}
}

// categoryValue applies the ordered fallback chain for one breakdown line.
func categoryValue(b RawBudgetCategory) float64 {
	switch {
	case b.TotalCategoryCost != nil:
		return *b.TotalCategoryCost
	case b.PlannedCost != nil:
		return *b.PlannedCost
	case b.EstimatedDailyCost != nil:
		return *b.EstimatedDailyCost
	default:
		return 0
	}
}

// ─── Component derivation ─────────────────────────────────────────────────────

// FlightComponent derives the budgeting view of a flight.
func FlightComponent(f FlightOption) TripComponent {
	depDate := f.Depart
	return TripComponent{
		ComponentID: f.ID,
		Category:    CategoryFlights,
		Name:        strings.TrimSpace(f.Carrier + " " + f.Number),
		Cost:        f.PriceUSD,
		Currency:    CurrencyUSD,
		Date:        &depDate,
		Meta: map[string]interface{}{
			"stops":      f.Stops,
			"redeye":     f.Redeye,
			"fare_class": f.FareClass,
		},
	}
}

// HotelComponent derives the budgeting view of a hotel stay.
func HotelComponent(h HotelOption, checkIn time.Time, nights int) TripComponent {
	return TripComponent{
		ComponentID: h.ID,
		Category:    CategoryHotels,
		Name:        h.Name,
		Cost:        h.PriceTotalUSD,
		Currency:    CurrencyUSD,
		Date:        &checkIn,
		Meta: map[string]interface{}{
			"stars":  h.Stars,
			"vibe":   h.Vibe,
			"nights": nights,
			"city":   h.City,
		},
	}
}

// ActivityComponent derives the budgeting view of an activity. Activities
// have no fixed date.
func ActivityComponent(a ActivityOption) TripComponent {
	return TripComponent{
		ComponentID: a.ID,
		Category:    CategoryActivities,
		Name:        a.Name,
		Cost:        a.PriceUSD,
		Currency:    CurrencyUSD,
		Meta: map[string]interface{}{
			"duration_hours": a.DurationHours,
			"themes":         a.Themes,
			"city":           a.City,
		},
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// calendarDays counts whole calendar-date steps between two timestamps,
// ignoring the time of day.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// parsePriceRangeLow extracts the lower bound from a "$150-$220" style
// range. Returns 0 when the string does not parse.
func parsePriceRangeLow(s string) float64 {
	cleaned := strings.ReplaceAll(s, "$", "")
	parts := strings.Split(cleaned, "-")
	if len(parts) == 0 {
		return 0
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0
	}
	return low
}

// RouteLabel formats an origin/destination pair the way route lists and
// summaries display it.
func RouteLabel(origin, destination string) string {
	return fmt.Sprintf("%s → %s", origin, destination)
}
