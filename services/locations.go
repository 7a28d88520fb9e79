package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxResolvedCodes caps how many airport codes one phrase resolves to.
const maxResolvedCodes = 5

// CodeCache stores resolved code lists between searches. A nil cache is
// valid and simply disables caching.
type CodeCache interface {
	Get(ctx context.Context, phrase string) ([]string, bool)
	Set(ctx context.Context, phrase string, codes []string)
}

// ─── Redis-backed cache ───────────────────────────────────────────────────────

type RedisCodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCodeCache(client *redis.Client, ttl time.Duration) *RedisCodeCache {
	return &RedisCodeCache{client: client, ttl: ttl}
}

func (c *RedisCodeCache) key(phrase string) string {
	return "locations:" + strings.ToLower(strings.TrimSpace(phrase))
}

func (c *RedisCodeCache) Get(ctx context.Context, phrase string) ([]string, bool) {
	data, err := c.client.Get(ctx, c.key(phrase)).Bytes()
	if err != nil {
		return nil, false
	}
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, false
	}
	return codes, true
}

func (c *RedisCodeCache) Set(ctx context.Context, phrase string, codes []string) {
	data, err := json.Marshal(codes)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(phrase), data, c.ttl).Err(); err != nil {
		log.Printf("location cache write failed for %q: %v", phrase, err)
	}
}

// ─── Sonar research client ────────────────────────────────────────────────────

// SonarClient resolves a free-text location into airport codes by asking
// a Perplexity-style research model, with a static city table as the
// offline fallback.
type SonarClient struct {
	apiKey     string
	baseURL    string
	model      string
	cache      CodeCache
	httpClient *http.Client
}

func NewSonarClient(apiKey string, cache CodeCache) *SonarClient {
	return &SonarClient{
		apiKey:  apiKey,
		baseURL: "https://api.perplexity.ai/chat/completions",
		model:   "sonar-pro",
		cache:   cache,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sonarRequest struct {
	Model       string         `json:"model"`
	Messages    []sonarMessage `json:"messages"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens"`
}

type sonarMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sonarResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Resolve returns up to maxResolvedCodes ranked IATA codes for the
// phrase, or an empty list when nothing is known. The research API is
// tried first; any failure falls through to the static table.
func (c *SonarClient) Resolve(ctx context.Context, text string) ([]string, error) {
	if c.cache != nil {
		if codes, ok := c.cache.Get(ctx, text); ok {
			return codes, nil
		}
	}

	if c.apiKey != "" {
		codes, err := c.research(ctx, text)
		if err != nil {
			log.Printf("location research failed for %q: %v — using static table", text, err)
		} else if len(codes) > 0 {
			if c.cache != nil {
				c.cache.Set(ctx, text, codes)
			}
			return codes, nil
		}
	}

	codes := staticCodes(text)
	if len(codes) > 0 && c.cache != nil {
		c.cache.Set(ctx, text, codes)
	}
	return codes, nil
}

func (c *SonarClient) research(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(
		"What are all the major airport codes (IATA codes) for flights to/from %s? "+
			"Include international airports, major domestic airports, and nearby alternatives. "+
			"For example, Shanghai has PVG (Pudong) and SHA (Hongqiao); New York has JFK, LGA and EWR. "+
			"Return only the 3-letter IATA codes as a comma-separated list like: PVG, SHA, JFK", text)

	body, err := json.Marshal(sonarRequest{
		Model:       c.model,
		Messages:    []sonarMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1,
		MaxTokens:   150,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sonar error (%d): %s", resp.StatusCode, string(respBody))
	}

	var parsed sonarResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse sonar response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty sonar response")
	}

	return ExtractAirportCodes(parsed.Choices[0].Message.Content), nil
}

var airportCodeRe = regexp.MustCompile(`\b[A-Z]{3}\b`)

// ExtractAirportCodes scans text for 3-letter IATA codes, deduplicates
// preserving first-seen order, and caps the list at maxResolvedCodes.
func ExtractAirportCodes(content string) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, code := range airportCodeRe.FindAllString(content, -1) {
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
		if len(codes) == maxResolvedCodes {
			break
		}
	}
	return codes
}

// staticAirportCodes covers the common multi-airport cities so searches
// still fan out when the research API is unavailable.
var staticAirportCodes = map[string][]string{
	"shanghai":       {"PVG", "SHA"},
	"beijing":        {"PEK", "PKX"},
	"tokyo":          {"NRT", "HND"},
	"seoul":          {"ICN", "GMP"},
	"bangkok":        {"BKK", "DMK"},
	"hong kong":      {"HKG"},
	"singapore":      {"SIN"},
	"london":         {"LHR", "LGW", "STN", "LTN"},
	"paris":          {"CDG", "ORY"},
	"rome":           {"FCO", "CIA"},
	"milan":          {"MXP", "LIN"},
	"moscow":         {"SVO", "DME", "VKO"},
	"istanbul":       {"IST", "SAW"},
	"berlin":         {"BER"},
	"frankfurt":      {"FRA"},
	"amsterdam":      {"AMS"},
	"new york":       {"JFK", "LGA", "EWR"},
	"los angeles":    {"LAX", "BUR", "LGB"},
	"chicago":        {"ORD", "MDW"},
	"washington":     {"DCA", "IAD", "BWI"},
	"toronto":        {"YYZ", "YTZ"},
	"san francisco":  {"SFO"},
	"dubai":          {"DXB", "DWC"},
	"sao paulo":      {"GRU", "CGH"},
	"rio de janeiro": {"GIG", "SDU"},
	"buenos aires":   {"EZE", "AEP"},
	"sydney":         {"SYD"},
	"melbourne":      {"MEL"},
}

func staticCodes(text string) []string {
	lower := strings.ToLower(text)
	for city, codes := range staticAirportCodes {
		if strings.Contains(lower, city) {
			return codes
		}
	}
	return nil
}
