package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripforge/schema"
)

// ─── Fakes ────────────────────────────────────────────────────────────────────

type fakeResolver struct {
	codes map[string][]string
	err   error
}

func (f *fakeResolver) Resolve(ctx context.Context, text string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.codes[text], nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	calls   [][2]string
	results map[string][]schema.RawFlight
	errs    map[string]error
}

func pairKey(origin, destination string) string {
	return origin + "-" + destination
}

func (f *fakeSearcher) SearchFlights(ctx context.Context, q FlightQuery) ([]schema.RawFlight, error) {
	f.mu.Lock()
	f.calls = append(f.calls, [2]string{q.Origin, q.Destination})
	f.mu.Unlock()

	key := pairKey(q.Origin, q.Destination)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.results[key], nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func rawFlight(id string, price float64, stops int) schema.RawFlight {
	return schema.RawFlight{
		FlightID:      id,
		AirlineCode:   "UA",
		AirlineName:   "United Airlines",
		DepartureTime: "2026-09-10T09:00:00",
		ArrivalTime:   "2026-09-10T13:00:00",
		Price:         price,
		Stops:         stops,
	}
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestSearchFansOutPerResolvedDestination(t *testing.T) {
	resolver := &fakeResolver{codes: map[string][]string{
		"shanghai": {"PVG", "SHA"},
	}}
	searcher := &fakeSearcher{results: map[string][]schema.RawFlight{
		pairKey("SFO", "PVG"): {rawFlight("UA857", 820, 0)},
		pairKey("SFO", "SHA"): {rawFlight("MU590", 760, 1)},
	}}

	o := NewOrchestrator(resolver, searcher)
	agg := o.Search(context.Background(), SearchIntent{
		Origin:        "SFO",
		Destination:   "shanghai",
		DepartureDate: "2026-09-10",
		Adults:        1,
	})

	assert.Equal(t, 2, searcher.callCount())
	assert.Equal(t, 2, agg.RouteCombinations)
	assert.Equal(t, 2, agg.TotalResults)
	// Cheapest first across routes.
	assert.Equal(t, "SFO → SHA", agg.Flights[0].Route)
}

func TestSearchSkipsSameAirportPairs(t *testing.T) {
	resolver := &fakeResolver{codes: map[string][]string{
		"los angeles": {"LAX", "BUR"},
	}}
	searcher := &fakeSearcher{results: map[string][]schema.RawFlight{
		pairKey("LAX", "BUR"): {rawFlight("WN88", 120, 0)},
	}}

	o := NewOrchestrator(resolver, searcher)
	o.Search(context.Background(), SearchIntent{
		Origin:        "LAX",
		Destination:   "los angeles",
		DepartureDate: "2026-09-10",
	})

	for _, call := range searcher.calls {
		assert.NotEqual(t, call[0], call[1], "searched a same-airport pair")
	}
	assert.Equal(t, 1, searcher.callCount())
}

func TestSearchCapsFanOut(t *testing.T) {
	var dests []string
	results := make(map[string][]schema.RawFlight)
	for i := 0; i < 11; i++ {
		code := fmt.Sprintf("D%02d", i)
		dests = append(dests, code)
		results[pairKey("SFO", code)] = []schema.RawFlight{rawFlight("UA1", 100, 0)}
	}

	resolver := &fakeResolver{codes: map[string][]string{"everywhere": dests}}
	searcher := &fakeSearcher{results: results}

	o := NewOrchestrator(resolver, searcher)
	o.Search(context.Background(), SearchIntent{
		Origin:        "SFO",
		Destination:   "everywhere",
		DepartureDate: "2026-09-10",
	})

	assert.Equal(t, maxFanOutSearches, searcher.callCount())
}

func TestSearchDropsFailedAndEmptyPairs(t *testing.T) {
	resolver := &fakeResolver{codes: map[string][]string{
		"tokyo": {"NRT", "HND", "XXX"},
	}}
	searcher := &fakeSearcher{
		results: map[string][]schema.RawFlight{
			pairKey("SFO", "NRT"): {rawFlight("UA837", 900, 0)},
			pairKey("SFO", "XXX"): {}, // provider knows nothing
		},
		errs: map[string]error{
			pairKey("SFO", "HND"): fmt.Errorf("rate limited"),
		},
	}

	o := NewOrchestrator(resolver, searcher)
	agg := o.Search(context.Background(), SearchIntent{
		Origin:        "SFO",
		Destination:   "tokyo",
		DepartureDate: "2026-09-10",
	})

	// All three pairs were tried, one survived.
	assert.Equal(t, 3, searcher.callCount())
	assert.Equal(t, 1, agg.RouteCombinations)
	require.Len(t, agg.Routes, 1)
	assert.Equal(t, "SFO → NRT", agg.Routes[0].Route)
}

func TestSearchDegradesToSingleSearch(t *testing.T) {
	resolver := &fakeResolver{codes: map[string][]string{}}
	searcher := &fakeSearcher{results: map[string][]schema.RawFlight{
		pairKey("SFO", "LAX"): {rawFlight("UA211", 150, 0)},
	}}

	o := NewOrchestrator(resolver, searcher)
	agg := o.Search(context.Background(), SearchIntent{
		Query:         "somewhere warm",
		DepartureDate: "2026-09-10",
	})

	assert.Equal(t, 1, searcher.callCount())
	assert.Equal(t, 0, agg.RouteCombinations, "degraded search must not look like a fan-out")
	assert.Equal(t, 1, agg.TotalResults)
}

func TestSearchEmptyAggregateIsWellFormed(t *testing.T) {
	resolver := &fakeResolver{codes: map[string][]string{}}
	searcher := &fakeSearcher{}

	o := NewOrchestrator(resolver, searcher)
	agg := o.Search(context.Background(), SearchIntent{DepartureDate: "2026-09-10"})

	assert.Equal(t, 0, agg.TotalResults)
	assert.NotNil(t, agg.Routes)
	assert.NotNil(t, agg.Flights)
}

func TestFlattenRoutesOrdering(t *testing.T) {
	mk := func(id string, price float64, stops int) RankedFlight {
		return RankedFlight{
			FlightOption: schema.FlightOption{ID: id, PriceUSD: price, Stops: stops},
			Route:        "SFO → LAX",
		}
	}

	flights := flattenRoutes([]RouteResult{{
		Flights: []RankedFlight{
			mk("a", 300, 0),
			mk("b", 150, 1),
			mk("c", 150, 0),
			mk("d", 0, 0), // missing price sorts last
		},
	}})

	require.Len(t, flights, 4)
	assert.Equal(t, "c", flights[0].ID) // 150, fewer stops
	assert.Equal(t, "b", flights[1].ID) // 150, more stops
	assert.Equal(t, "a", flights[2].ID)
	assert.Equal(t, "d", flights[3].ID)
}

func TestPhraseExtraction(t *testing.T) {
	assert.Equal(t, "new york", originPhrase("flights from New York to Tokyo"))
	assert.Equal(t, "tokyo", destinationPhrase("flights from New York to Tokyo"))
	assert.Equal(t, "", originPhrase("cheap flights next week"))
	assert.Equal(t, "paris in spring", destinationPhrase("fly to Paris in spring"))
}

func TestResolveSideSkipsResolverForIATACodes(t *testing.T) {
	resolver := &fakeResolver{err: fmt.Errorf("must not be called")}
	o := NewOrchestrator(resolver, &fakeSearcher{})

	codes := o.resolveSide(context.Background(), "sfo", "")
	assert.Equal(t, []string{"SFO"}, codes)
}

func TestBuildPairsOriginMajor(t *testing.T) {
	pairs := buildPairs([]string{"JFK", "EWR"}, []string{"LHR", "CDG"})
	require.Len(t, pairs, 4)
	assert.Equal(t, [2]string{"JFK", "LHR"}, pairs[0])
	assert.Equal(t, [2]string{"JFK", "CDG"}, pairs[1])
	assert.Equal(t, [2]string{"EWR", "LHR"}, pairs[2])
}
