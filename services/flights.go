package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tripforge/schema"
)

// SearchAPIClient searches Google Flights through the SearchAPI proxy.
// It implements FlightSearcher.
type SearchAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewSearchAPIClient(apiKey string) *SearchAPIClient {
	return &SearchAPIClient{
		apiKey:  apiKey,
		baseURL: "https://www.searchapi.io/api/v1/search",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ─── Provider response shapes ────────────────────────────────────────────────

type searchAPIAirport struct {
	ID   string `json:"id"`
	Time string `json:"time"`
}

type searchAPISegment struct {
	DepartureAirport searchAPIAirport `json:"departure_airport"`
	ArrivalAirport   searchAPIAirport `json:"arrival_airport"`
	Airline          string           `json:"airline"`
	FlightNumber     string           `json:"flight_number"`
}

type searchAPIOffer struct {
	Flights       []searchAPISegment `json:"flights"`
	Price         json.RawMessage    `json:"price"`
	TotalDuration json.RawMessage    `json:"total_duration"`
}

type searchAPIFlightsResponse struct {
	BestFlights  []searchAPIOffer `json:"best_flights"`
	OtherFlights []searchAPIOffer `json:"other_flights"`
}

// SearchFlights runs one Google Flights search and returns the raw
// flight records for the mapper.
func (c *SearchAPIClient) SearchFlights(ctx context.Context, q FlightQuery) ([]schema.RawFlight, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("searchapi not configured")
	}

	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("api_key", c.apiKey)
	params.Set("departure_id", q.Origin)
	params.Set("arrival_id", q.Destination)
	params.Set("outbound_date", q.DepartureDate)
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("currency", schema.CurrencyUSD)
	params.Set("hl", "en")
	if q.Children > 0 {
		params.Set("children", strconv.Itoa(q.Children))
	}
	if q.Infants > 0 {
		params.Set("infants", strconv.Itoa(q.Infants))
	}
	if q.TravelClass != "" {
		params.Set("travel_class", strings.ToLower(q.TravelClass))
	}
	if q.ReturnDate != "" {
		params.Set("return_date", q.ReturnDate)
		params.Set("type", "2") // round trip
	} else {
		// SearchAPI requires a return_date even for one-way searches.
		params.Set("return_date", q.DepartureDate)
		params.Set("type", "1")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searchapi error (%d): %s", resp.StatusCode, string(body))
	}

	return parseFlightOffers(body, q)
}

func parseFlightOffers(data []byte, q FlightQuery) ([]schema.RawFlight, error) {
	var resp searchAPIFlightsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	offers := append(resp.BestFlights, resp.OtherFlights...)
	if q.MaxResults > 0 && len(offers) > q.MaxResults {
		offers = offers[:q.MaxResults]
	}

	flights := make([]schema.RawFlight, 0, len(offers))
	for _, offer := range offers {
		if len(offer.Flights) == 0 {
			continue
		}

		first := offer.Flights[0]
		last := offer.Flights[len(offer.Flights)-1]

		departureAirport := first.DepartureAirport.ID
		if departureAirport == "" {
			departureAirport = q.Origin
		}
		arrivalAirport := last.ArrivalAirport.ID
		if arrivalAirport == "" {
			arrivalAirport = q.Destination
		}

		airline := first.Airline
		airlineCode := "XX"
		if len(airline) >= 2 {
			airlineCode = airline[:2]
		}

		fareClass := q.TravelClass
		if fareClass == "" {
			fareClass = "ECONOMY"
		}

		flights = append(flights, schema.RawFlight{
			FlightID: fmt.Sprintf("searchapi_%s_%s_%s_%s",
				first.FlightNumber, departureAirport, arrivalAirport, q.DepartureDate),
			AirlineCode:      airlineCode,
			AirlineName:      airline,
			DepartureTime:    first.DepartureAirport.Time,
			ArrivalTime:      last.ArrivalAirport.Time,
			Duration:         offerDuration(offer.TotalDuration),
			Stops:            len(offer.Flights) - 1,
			Price:            offerPrice(offer.Price),
			Currency:         schema.CurrencyUSD,
			FareClass:        fareClass,
			DepartureAirport: departureAirport,
			ArrivalAirport:   arrivalAirport,
		})
	}

	return flights, nil
}

// offerPrice handles the provider quoting prices either as a bare number
// or as {"value": N}.
func offerPrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var obj struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return 0
}

// offerDuration normalizes total_duration, which arrives either as
// minutes or as a preformatted string.
func offerDuration(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var minutes float64
	if err := json.Unmarshal(raw, &minutes); err == nil {
		return formatDurationMin(int(minutes))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func formatDurationMin(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}
