package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tripforge/schema"
)

// HotelSearcher is the hotel search collaborator: city-level search plus
// a per-property pricing detail lookup.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, q HotelQuery) ([]schema.RawHotel, error)
	LookupPricing(ctx context.Context, propertyToken string, q HotelQuery) (schema.RawHotelPricing, error)
}

// HotelQuery is one hotel search.
type HotelQuery struct {
	City       string
	CheckIn    string // YYYY-MM-DD
	CheckOut   string
	Adults     int
	Children   int
	Rooms      int
	HotelClass string // e.g. "4,5"
	MaxPrice   float64
	SortBy     string // price | rating | distance
	MaxResults int
}

// SearchAPIHotelClient searches Google Hotels through the SearchAPI
// proxy. It implements HotelSearcher.
type SearchAPIHotelClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewSearchAPIHotelClient(apiKey string) *SearchAPIHotelClient {
	return &SearchAPIHotelClient{
		apiKey:  apiKey,
		baseURL: "https://www.searchapi.io/api/v1/search",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ─── Provider response shapes ────────────────────────────────────────────────

type hotelProperty struct {
	PropertyToken       string   `json:"property_token"`
	Name                string   `json:"name"`
	Address             string   `json:"address"`
	Description         string   `json:"description"`
	ExtractedHotelClass *int     `json:"extracted_hotel_class"`
	OverallRating       *float64 `json:"overall_rating"`
	Reviews             int      `json:"reviews"`
	GPSCoordinates      *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"gps_coordinates"`
	DistanceFromCenter string `json:"distance_from_center"`
	Images             []struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"images"`
	PricePerNight *extractedPrice `json:"price_per_night"`
	TotalPrice    *extractedPrice `json:"total_price"`
}

type extractedPrice struct {
	ExtractedPrice float64 `json:"extracted_price"`
}

type hotelSearchResponse struct {
	Properties []hotelProperty `json:"properties"`
}

// SearchHotels runs one Google Hotels search and returns the raw hotel
// records for the mapper.
func (c *SearchAPIHotelClient) SearchHotels(ctx context.Context, q HotelQuery) ([]schema.RawHotel, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("searchapi not configured")
	}

	adults := q.Adults
	if adults <= 0 {
		adults = 2
	}
	rooms := q.Rooms
	if rooms <= 0 {
		rooms = 1
	}

	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("api_key", c.apiKey)
	params.Set("q", "hotels in "+q.City)
	params.Set("check_in_date", q.CheckIn)
	params.Set("check_out_date", q.CheckOut)
	params.Set("adults", strconv.Itoa(adults))
	params.Set("rooms", strconv.Itoa(rooms))
	params.Set("currency", schema.CurrencyUSD)
	params.Set("hl", "en")
	if q.Children > 0 {
		params.Set("children", strconv.Itoa(q.Children))
	}
	if q.HotelClass != "" {
		params.Set("hotel_class", q.HotelClass)
	}
	if q.MaxPrice > 0 {
		params.Set("max_price", strconv.FormatFloat(q.MaxPrice, 'f', 0, 64))
	}
	switch q.SortBy {
	case "price":
		params.Set("sort_by", "lowest_price")
	case "rating":
		params.Set("sort_by", "highest_rating")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hotel search failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searchapi error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed hotelSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse hotel results: %w", err)
	}

	properties := parsed.Properties
	if q.MaxResults > 0 && len(properties) > q.MaxResults {
		properties = properties[:q.MaxResults]
	}

	nights := stayNights(q.CheckIn, q.CheckOut)
	hotels := make([]schema.RawHotel, 0, len(properties))
	for _, p := range properties {
		hotels = append(hotels, parseHotelProperty(p, q.City, nights))
	}
	return hotels, nil
}

type hotelPricingResponse struct {
	Property struct {
		Name         string `json:"name"`
		RoomType     string `json:"room_type"`
		RatePerNight *struct {
			ExtractedLowest          float64 `json:"extracted_lowest"`
			ExtractedBeforeTaxesFees float64 `json:"extracted_before_taxes_fees"`
		} `json:"rate_per_night"`
		TotalRate *struct {
			ExtractedLowest          float64 `json:"extracted_lowest"`
			ExtractedBeforeTaxesFees float64 `json:"extracted_before_taxes_fees"`
		} `json:"total_rate"`
	} `json:"property"`
}

// LookupPricing fetches the per-stay price breakdown for one property.
func (c *SearchAPIHotelClient) LookupPricing(ctx context.Context, propertyToken string, q HotelQuery) (schema.RawHotelPricing, error) {
	if c.apiKey == "" {
		return schema.RawHotelPricing{}, fmt.Errorf("searchapi not configured")
	}

	params := url.Values{}
	params.Set("engine", "google_hotels_property")
	params.Set("api_key", c.apiKey)
	params.Set("property_token", propertyToken)
	params.Set("check_in_date", q.CheckIn)
	params.Set("check_out_date", q.CheckOut)
	params.Set("currency", schema.CurrencyUSD)
	params.Set("hl", "en")
	if q.Adults > 0 {
		params.Set("adults", strconv.Itoa(q.Adults))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return schema.RawHotelPricing{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return schema.RawHotelPricing{}, fmt.Errorf("hotel pricing lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return schema.RawHotelPricing{}, fmt.Errorf("searchapi error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed hotelPricingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return schema.RawHotelPricing{}, fmt.Errorf("failed to parse pricing detail: %w", err)
	}

	nights := stayNights(q.CheckIn, q.CheckOut)
	pricing := schema.RawPricingDetail{Currency: schema.CurrencyUSD}
	if tr := parsed.Property.TotalRate; tr != nil {
		pricing.TotalPrice = tr.ExtractedLowest
		pricing.BasePrice = tr.ExtractedBeforeTaxesFees
		pricing.TaxesAndFees = tr.ExtractedLowest - tr.ExtractedBeforeTaxesFees
	}
	if rn := parsed.Property.RatePerNight; rn != nil {
		perNight := rn.ExtractedLowest
		pricing.PricePerNight = &perNight
		if pricing.TotalPrice == 0 && nights > 0 {
			pricing.TotalPrice = perNight * float64(nights)
		}
	}
	if nights > 0 {
		pricing.TotalNights = &nights
	}

	return schema.RawHotelPricing{
		HotelID:   propertyToken,
		HotelName: parsed.Property.Name,
		RoomType:  parsed.Property.RoomType,
		Pricing:   pricing,
	}, nil
}

func parseHotelProperty(p hotelProperty, city string, nights int) schema.RawHotel {
	id := p.PropertyToken
	if id == "" {
		id = "hotel_" + p.Name
	}

	var review *schema.RawHotelReview
	if p.OverallRating != nil {
		review = &schema.RawHotelReview{
			Rating:       *p.OverallRating,
			TotalReviews: p.Reviews,
			Source:       "Google",
		}
	}

	location := schema.RawHotelLocation{
		Address:          p.Address,
		DistanceToCenter: p.DistanceFromCenter,
	}
	if p.GPSCoordinates != nil {
		location.Latitude = &p.GPSCoordinates.Latitude
		location.Longitude = &p.GPSCoordinates.Longitude
	}

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.Thumbnail != "" {
			images = append(images, img.Thumbnail)
		}
	}

	// Per-night price preferred, whole-stay total as the fallback.
	var priceRange string
	if p.PricePerNight != nil && p.PricePerNight.ExtractedPrice > 0 {
		perNight := p.PricePerNight.ExtractedPrice
		priceRange = fmt.Sprintf("$%.0f-$%.0f", perNight, perNight*1.4)
	} else if p.TotalPrice != nil && p.TotalPrice.ExtractedPrice > 0 && nights > 0 {
		perNight := p.TotalPrice.ExtractedPrice / float64(nights)
		priceRange = fmt.Sprintf("$%.0f-$%.0f", perNight, perNight*1.4)
	}

	return schema.RawHotel{
		HotelID:     id,
		Name:        p.Name,
		City:        city,
		Location:    location,
		StarRating:  p.ExtractedHotelClass,
		Review:      review,
		Images:      images,
		PriceRange:  priceRange,
		Description: p.Description,
	}
}

func stayNights(checkIn, checkOut string) int {
	in, err1 := time.Parse("2006-01-02", checkIn)
	out, err2 := time.Parse("2006-01-02", checkOut)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}
