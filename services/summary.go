package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tripforge/schema"
)

// AIClient generates short natural-language trip summaries via the
// HuggingFace inference API. Summarization is a presentation concern;
// callers fall back to FallbackSummary when it fails.
type AIClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewAIClient(apiKey, model string) *AIClient {
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.3"
	}
	return &AIClient{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// SummarizeSearch asks the model to present the best options of a
// multi-route aggregate against the budget verdict.
func (c *AIClient) SummarizeSearch(agg SearchAggregate, budget schema.BudgetResult) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("huggingface API key not configured")
	}

	prompt := buildSearchPrompt(agg, budget)

	reqBody := hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   400,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://api-inference.huggingface.co/models/%s", c.model)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", fmt.Errorf("AI model is loading, please retry in a few seconds")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface API error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed hfResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(parsed) == 0 || parsed[0].GeneratedText == "" {
		return "", fmt.Errorf("empty response from AI")
	}
	return parsed[0].GeneratedText, nil
}

func buildSearchPrompt(agg SearchAggregate, budget schema.BudgetResult) string {
	prompt := "[INST] You are a helpful travel assistant. Present the best flight options across all searched routes.\n\n"

	if agg.RouteCombinations > 0 {
		prompt += fmt.Sprintf("Searched %d route combinations, %d flights found.\n", agg.RouteCombinations, agg.TotalResults)
	}

	prompt += "Cheapest options (already sorted by price):\n"
	for i, f := range agg.Flights {
		if i >= 5 {
			break
		}
		prompt += fmt.Sprintf("  %d. %s — %s $%.0f (%d stop(s), %s)\n",
			i+1, f.Route, f.Carrier, f.PriceUSD, f.Stops, f.Duration)
	}

	prompt += fmt.Sprintf("\nBudget status: %s (over/under: $%.0f, headline estimate: $%.0f)\n",
		budget.Status, budget.OverUnderUSD, budget.Totals.TEE)

	prompt += `
In 150 words or fewer, recommend the best option and note any route worth considering. Do not change any route airports. Be direct. [/INST]`
	return prompt
}

// FallbackSummary is the deterministic text used when the AI collaborator
// is unavailable.
func FallbackSummary(agg SearchAggregate, budget schema.BudgetResult) string {
	if agg.TotalResults == 0 {
		return "No flights were found for any searched route. Try different dates or nearby airports."
	}

	best := agg.Flights[0]
	text := fmt.Sprintf("Best value: %s on %s at $%.0f with %d stop(s).",
		best.Route, best.Carrier, best.PriceUSD, best.Stops)
	if agg.RouteCombinations > 1 {
		text += fmt.Sprintf(" %d route combinations were compared.", agg.RouteCombinations)
	}

	switch budget.Status {
	case schema.StatusUnderBudget:
		text += fmt.Sprintf(" The trip is comfortably under budget by $%.0f.", budget.OverUnderUSD)
	case schema.StatusOnBudget:
		text += " The trip fits the budget."
	case schema.StatusOverBudget:
		text += fmt.Sprintf(" Note: the trip exceeds the budget by $%.0f.", -budget.OverUnderUSD)
	case schema.StatusCritical:
		text += fmt.Sprintf(" Warning: the trip exceeds the budget by $%.0f — consider cheaper options.", -budget.OverUnderUSD)
	}
	return text
}
