package services

import (
	"context"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"tripforge/schema"
)

// maxFanOutSearches bounds the total provider calls one multi-route
// search may issue. Pairs beyond the ceiling are silently dropped; this
// is a cost/latency bound, not an error.
const maxFanOutSearches = 10

// flightsPerRoute caps how many flights each route contributes to the
// per-route list.
const flightsPerRoute = 5

// Defaults used for a side that stays unresolved while the other side
// fanned out.
const (
	defaultOrigin      = "SFO"
	defaultDestination = "LAX"
)

// LocationResolver turns a free-text location phrase into a ranked list
// of up to five IATA codes. An empty list is a valid answer.
type LocationResolver interface {
	Resolve(ctx context.Context, text string) ([]string, error)
}

// FlightSearcher is the flight search collaborator. Implementations may
// fail; the orchestrator treats a per-pair failure as a dropped route.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, q FlightQuery) ([]schema.RawFlight, error)
}

// FlightQuery is one provider search.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string // YYYY-MM-DD
	ReturnDate    string
	Adults        int
	Children      int
	Infants       int
	TravelClass   string
	MaxResults    int
}

// SearchIntent is the parsed request the orchestrator fans out from.
// Origin/Destination may already be IATA codes or may be empty; Query
// keeps the original free text for phrase extraction.
type SearchIntent struct {
	Query         string
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	Children      int
	Infants       int
	TravelClass   string
}

// RankedFlight is a canonical flight annotated for presentation with its
// route label and the provider-reported duration.
type RankedFlight struct {
	schema.FlightOption
	Route    string `json:"route"`
	Duration string `json:"duration"`
}

// RouteResult is one surviving route combination.
type RouteResult struct {
	Route        string         `json:"route"`
	Origin       string         `json:"origin"`
	Destination  string         `json:"destination"`
	Flights      []RankedFlight `json:"flights"`
	TotalResults int            `json:"total_results"`
}

// SearchAggregate is the orchestrator's output. It is always well formed;
// zero TotalResults is the valid empty terminal state callers must check.
// RouteCombinations is zero for the degraded single-search case.
type SearchAggregate struct {
	RouteCombinations int            `json:"route_combinations,omitempty"`
	Routes            []RouteResult  `json:"routes"`
	Flights           []RankedFlight `json:"flights"`
	TotalResults      int            `json:"total_results"`
}

// Orchestrator expands an ambiguous origin/destination into a bounded set
// of endpoint-pair searches and merges the results.
type Orchestrator struct {
	resolver LocationResolver
	searcher FlightSearcher
}

func NewOrchestrator(resolver LocationResolver, searcher FlightSearcher) *Orchestrator {
	return &Orchestrator{resolver: resolver, searcher: searcher}
}

// Search runs the multi-route fan-out for the given intent.
//
// Sides that already carry a resolved code skip resolution. When neither
// side resolves to anything the orchestrator degrades to a single
// best-guess search with the intent unchanged. Route pairs with equal
// endpoints are skipped, at most maxFanOutSearches pairs are issued, and
// a pair that errors or returns nothing is dropped without aborting the
// rest.
func (o *Orchestrator) Search(ctx context.Context, intent SearchIntent) SearchAggregate {
	originCodes := o.resolveSide(ctx, intent.Origin, originPhrase(intent.Query))
	destCodes := o.resolveSide(ctx, intent.Destination, destinationPhrase(intent.Query))

	// Resolving an ambiguous short code ("CHI", "NYC") is still useful
	// when the query text gave us nothing.
	if len(destCodes) == 0 && intent.Destination != "" {
		destCodes = o.resolveText(ctx, intent.Destination)
	}

	if len(originCodes) == 0 && len(destCodes) == 0 {
		log.Printf("location research found nothing for %q, using single search", intent.Query)
		return o.singleSearch(ctx, intent)
	}

	if len(originCodes) == 0 {
		originCodes = []string{fallbackCode(intent.Origin, defaultOrigin)}
	}
	if len(destCodes) == 0 {
		destCodes = []string{fallbackCode(intent.Destination, defaultDestination)}
	}

	log.Printf("multi-route search: origins=%v destinations=%v", originCodes, destCodes)

	pairs := buildPairs(originCodes, destCodes)
	results := make([]*RouteResult, len(pairs))

	// Pairs share no state, so they run concurrently; each writes its
	// own index slot and the final merge re-sorts, keeping the output
	// independent of completion order.
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		go func(i int, origin, destination string) {
			defer wg.Done()
			results[i] = o.searchPair(ctx, intent, origin, destination)
		}(i, p[0], p[1])
	}
	wg.Wait()

	routes := make([]RouteResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			routes = append(routes, *r)
		}
	}

	flights := flattenRoutes(routes)
	return SearchAggregate{
		RouteCombinations: len(routes),
		Routes:            routes,
		Flights:           flights,
		TotalResults:      len(flights),
	}
}

// searchPair issues one provider search and returns nil when the pair is
// dropped (error or zero flights).
func (o *Orchestrator) searchPair(ctx context.Context, intent SearchIntent, origin, destination string) *RouteResult {
	raws, err := o.searcher.SearchFlights(ctx, queryFor(intent, origin, destination))
	if err != nil {
		log.Printf("search failed for %s → %s: %v", origin, destination, err)
		return nil
	}
	if len(raws) == 0 {
		return nil
	}

	route := schema.RouteLabel(origin, destination)
	flights := make([]RankedFlight, 0, flightsPerRoute)
	for _, raw := range raws {
		if len(flights) == flightsPerRoute {
			break
		}
		flights = append(flights, RankedFlight{
			FlightOption: schema.NormalizeFlight(raw),
			Route:        route,
			Duration:     raw.Duration,
		})
	}

	return &RouteResult{
		Route:        route,
		Origin:       origin,
		Destination:  destination,
		Flights:      flights,
		TotalResults: len(raws),
	}
}

// singleSearch is the degraded no-fan-out path. RouteCombinations stays
// zero so callers can tell it from a one-route fan-out.
func (o *Orchestrator) singleSearch(ctx context.Context, intent SearchIntent) SearchAggregate {
	origin := fallbackCode(intent.Origin, defaultOrigin)
	destination := fallbackCode(intent.Destination, defaultDestination)

	result := o.searchPair(ctx, intent, origin, destination)
	if result == nil {
		return SearchAggregate{Routes: []RouteResult{}, Flights: []RankedFlight{}}
	}

	flights := flattenRoutes([]RouteResult{*result})
	return SearchAggregate{
		Routes:       []RouteResult{*result},
		Flights:      flights,
		TotalResults: len(flights),
	}
}

// resolveSide returns the code list for one side: the side's own code
// when it is already resolved, otherwise whatever the resolver finds for
// the extracted phrase.
func (o *Orchestrator) resolveSide(ctx context.Context, code, phrase string) []string {
	if isIATACode(code) {
		return []string{strings.ToUpper(code)}
	}
	if phrase == "" {
		return nil
	}
	return o.resolveText(ctx, phrase)
}

func (o *Orchestrator) resolveText(ctx context.Context, text string) []string {
	codes, err := o.resolver.Resolve(ctx, text)
	if err != nil {
		log.Printf("location resolution failed for %q: %v", text, err)
		return nil
	}
	return codes
}

// buildPairs walks the Cartesian product origin-major, skips same-airport
// pairs and stops at the fan-out ceiling.
func buildPairs(origins, destinations []string) [][2]string {
	pairs := make([][2]string, 0, maxFanOutSearches)
	for _, o := range origins {
		for _, d := range destinations {
			if o == d {
				continue
			}
			if len(pairs) == maxFanOutSearches {
				return pairs
			}
			pairs = append(pairs, [2]string{o, d})
		}
	}
	return pairs
}

// flattenRoutes merges the per-route lists and sorts by ascending price,
// with a zero/missing price last. Ties break on stop count, then on the
// original discovery order, so the output is reproducible for the same
// resolved code lists.
func flattenRoutes(routes []RouteResult) []RankedFlight {
	flights := make([]RankedFlight, 0, len(routes)*flightsPerRoute)
	for _, r := range routes {
		flights = append(flights, r.Flights...)
	}

	sort.SliceStable(flights, func(i, j int) bool {
		pi, pj := sortPrice(flights[i]), sortPrice(flights[j])
		if pi != pj {
			return pi < pj
		}
		return flights[i].Stops < flights[j].Stops
	})
	return flights
}

func sortPrice(f RankedFlight) float64 {
	if f.PriceUSD <= 0 {
		return math.Inf(1)
	}
	return f.PriceUSD
}

func queryFor(intent SearchIntent, origin, destination string) FlightQuery {
	adults := intent.Adults
	if adults <= 0 {
		adults = 1
	}
	class := intent.TravelClass
	if class == "" {
		class = "ECONOMY"
	}
	return FlightQuery{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: intent.DepartureDate,
		ReturnDate:    intent.ReturnDate,
		Adults:        adults,
		Children:      intent.Children,
		Infants:       intent.Infants,
		TravelClass:   class,
		MaxResults:    flightsPerRoute,
	}
}

// ─── Phrase extraction ────────────────────────────────────────────────────────

var (
	fromRe = regexp.MustCompile(`\bfrom\s+([a-zA-Z\s]+?)(?:\s+to\b|$)`)
	toRe   = regexp.MustCompile(`\bto\s+([a-zA-Z\s]+)`)
	iataRe = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// originPhrase pulls the "from <place>" phrase out of the original query.
func originPhrase(query string) string {
	m := fromRe.FindStringSubmatch(strings.ToLower(query))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// destinationPhrase pulls the "to <place>" phrase out of the query.
func destinationPhrase(query string) string {
	m := toRe.FindStringSubmatch(strings.ToLower(query))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func isIATACode(s string) bool {
	return iataRe.MatchString(s)
}

func fallbackCode(code, def string) string {
	if code != "" {
		return strings.ToUpper(code)
	}
	return def
}
