package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripforge/database"
	"tripforge/schema"
	"tripforge/services"
)

// ─── In-memory store ──────────────────────────────────────────────────────────

type fakeStore struct {
	searches    map[string]*database.SearchRecord
	itineraries []*database.ItineraryRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{searches: make(map[string]*database.SearchRecord)}
}

func (f *fakeStore) Ping() error { return nil }

func (f *fakeStore) SaveSearch(r *database.SearchRecord) error {
	f.searches[r.ID] = r
	return nil
}

func (f *fakeStore) GetSearch(id string) (*database.SearchRecord, error) {
	if r, ok := f.searches[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) SaveItinerary(r *database.ItineraryRecord) error {
	f.itineraries = append(f.itineraries, r)
	return nil
}

func (f *fakeStore) GetItinerary(id string) (*database.ItineraryRecord, error) {
	for _, r := range f.itineraries {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) GetItineraryBySearchID(searchID string) (*database.ItineraryRecord, error) {
	for i := len(f.itineraries) - 1; i >= 0; i-- {
		if f.itineraries[i].SearchID == searchID {
			return f.itineraries[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func itineraryRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(store, nil, nil, nil)
	r := gin.New()
	r.POST("/api/itinerary", h.Itinerary)
	r.GET("/api/search/:id/itinerary", h.ItineraryBySearch)
	r.GET("/api/download/:id", h.Download)
	return r
}

func seedSearch(t *testing.T, store *fakeStore, id string) {
	t.Helper()
	agg := services.SearchAggregate{
		RouteCombinations: 1,
		Flights: []services.RankedFlight{{
			FlightOption: schema.FlightOption{
				ID: "UA857", Carrier: "United Airlines", Number: "857",
				Origin: "SFO", Destination: "PVG",
				Depart:   time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC),
				Arrive:   time.Date(2026, 9, 11, 15, 30, 0, 0, time.UTC),
				PriceUSD: 820, Currency: schema.CurrencyUSD, FareClass: "ECONOMY",
			},
			Route: "SFO → PVG",
		}},
		TotalResults: 1,
	}
	aggJSON, err := json.Marshal(agg)
	require.NoError(t, err)

	require.NoError(t, store.SaveSearch(&database.SearchRecord{
		ID:            id,
		Origin:        "SFO",
		Destination:   "Shanghai",
		DepartureDate: "2026-09-10",
		ReturnDate:    "2026-09-15",
		AggregateJSON: string(aggJSON),
		Summary:       "Best value: SFO → PVG.",
	}))
}

func validItineraryRequest(searchID string) ItineraryRequest {
	return ItineraryRequest{
		SearchID:     searchID,
		TravelerName: "Dana",
		Hotel:        schema.HotelOption{ID: "h1", Name: "Grand Riverside", City: "Shanghai", PriceTotalUSD: 750},
		Daily: []schema.DailyPlan{
			{Date: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), Items: []string{"Arrive", "Check in"}, FatigueScore: 3},
		},
		ContingencyUSD: 200,
		TotalBudget:    3000,
	}
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestItineraryRejectsInvalidDailyPlan(t *testing.T) {
	store := newFakeStore()
	seedSearch(t, store, "s1")
	r := itineraryRouter(store)

	tests := []struct {
		name string
		day  schema.DailyPlan
	}{
		{"no items", schema.DailyPlan{Date: time.Now(), FatigueScore: 3}},
		{"fatigue too low", schema.DailyPlan{Date: time.Now(), Items: []string{"Walk"}, FatigueScore: 0}},
		{"fatigue too high", schema.DailyPlan{Date: time.Now(), Items: []string{"Walk"}, FatigueScore: 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validItineraryRequest("s1")
			req.Daily = []schema.DailyPlan{tt.day}
			w := postJSON(t, r, "/api/itinerary", req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, store.itineraries, "invalid plan must not be persisted")
		})
	}
}

func TestItineraryRejectsNonPositiveHotelPrice(t *testing.T) {
	store := newFakeStore()
	seedSearch(t, store, "s1")
	r := itineraryRouter(store)

	req := validItineraryRequest("s1")
	req.Hotel.PriceTotalUSD = 0
	w := postJSON(t, r, "/api/itinerary", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.itineraries)
}

func TestItineraryComposeAndLookup(t *testing.T) {
	store := newFakeStore()
	seedSearch(t, store, "s1")
	r := itineraryRouter(store)

	w := postJSON(t, r, "/api/itinerary", validItineraryRequest("s1"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ItineraryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 820.0, resp.Itinerary.TotalsUSD["flights"])
	assert.Equal(t, 750.0, resp.Itinerary.TotalsUSD["lodging"])
	require.NotNil(t, resp.Budget)

	// The PDF landed in the itinerary row.
	require.Len(t, store.itineraries, 1)
	assert.NotEmpty(t, store.itineraries[0].PDFData)
	assert.Equal(t, "Dana", store.itineraries[0].TravelerName)

	// The search session resolves back to the composed itinerary.
	lookup := httptest.NewRequest(http.MethodGet, "/api/search/s1/itinerary", nil)
	lw := httptest.NewRecorder()
	r.ServeHTTP(lw, lookup)
	require.Equal(t, http.StatusOK, lw.Code)

	var found ItineraryResponse
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &found))
	assert.Equal(t, resp.Itinerary.ID, found.Itinerary.ID)
	assert.Equal(t, resp.PDFURL, found.PDFURL)
}

func TestItineraryBySearchUnknownID(t *testing.T) {
	r := itineraryRouter(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/search/nope/itinerary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadServesStoredPDF(t *testing.T) {
	store := newFakeStore()
	seedSearch(t, store, "s1")
	r := itineraryRouter(store)

	w := postJSON(t, r, "/api/itinerary", validItineraryRequest("s1"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ItineraryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	dl := httptest.NewRequest(http.MethodGet, resp.PDFURL, nil)
	dw := httptest.NewRecorder()
	r.ServeHTTP(dw, dl)
	require.Equal(t, http.StatusOK, dw.Code)
	assert.Equal(t, "application/pdf", dw.Header().Get("Content-Type"))
	assert.NotEmpty(t, dw.Body.Bytes())
}
