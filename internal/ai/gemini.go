package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/log"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrNoFunctionCall is returned when the model answers with plain text
// instead of the expected analyze_expense call.
var ErrNoFunctionCall = errors.New("model response contained no function call")

// Analysis is the structured result extracted from a free-form expense description.
type Analysis struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// Request/response shapes for the generateContent REST endpoint.
type (
	geminiRequest struct {
		Contents []geminiContent `json:"contents"`
		Tools    []geminiTool    `json:"tools,omitempty"`
	}

	geminiContent struct {
		Parts []geminiPart `json:"parts"`
		Role  string       `json:"role,omitempty"`
	}

	geminiPart struct {
		Text         string              `json:"text,omitempty"`
		FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
	}

	geminiFunctionCall struct {
		Name string          `json:"name"`
		Args json.RawMessage `json:"args"`
	}

	geminiTool struct {
		FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
	}

	geminiFunctionDeclaration struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	}

	geminiCandidate struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	}

	geminiResponse struct {
		Candidates []geminiCandidate `json:"candidates"`
	}
)

// analyzeExpenseDeclaration describes the tool the model must call.
func analyzeExpenseDeclaration() geminiFunctionDeclaration {
	categories := core.Categories()
	enum := make([]string, len(categories))
	for i, c := range categories {
		enum[i] = string(c)
	}

	return geminiFunctionDeclaration{
		Name:        "analyze_expense",
		Description: "Analyzes an expense description to extract name, amount, and category.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":   map[string]any{"type": "string", "description": "A concise name for the expense"},
				"amount": map[string]any{"type": "number", "description": "The amount of the expense"},
				"category": map[string]any{
					"type":        "string",
					"enum":        enum,
					"description": "The category of the expense",
				},
			},
			"required": []string{"name", "amount", "category"},
		},
	}
}

// Client calls the Gemini generateContent API with the analyze_expense tool.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(apiKey, model string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentAI)
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the API endpoint. Intended for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// AnalyzeExpense asks the model to extract name, amount, and category from
// a free-form expense description.
func (c *Client) AnalyzeExpense(ctx context.Context, description string) (Analysis, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: "Analyze this expense: " + description}}},
		},
		Tools: []geminiTool{
			{FunctionDeclarations: []geminiFunctionDeclaration{analyzeExpenseDeclaration()}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Analysis{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Analysis{}, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.ErrorContext(ctx, "Gemini API returned non-OK status",
			log.FieldStatusCode, resp.StatusCode,
			log.FieldModel, c.model)
		return Analysis{}, fmt.Errorf("gemini status %s: %s", resp.Status, respBody)
	}

	var apiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Analysis{}, fmt.Errorf("decode response: %w", err)
	}

	return parseAnalysis(apiResp)
}

func parseAnalysis(resp geminiResponse) (Analysis, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return Analysis{}, ErrNoFunctionCall
	}

	var call *geminiFunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			call = part.FunctionCall
			break
		}
	}
	if call == nil {
		return Analysis{}, ErrNoFunctionCall
	}
	if call.Name != "analyze_expense" {
		return Analysis{}, fmt.Errorf("unexpected function call %q", call.Name)
	}

	var analysis Analysis
	if err := json.Unmarshal(call.Args, &analysis); err != nil {
		return Analysis{}, fmt.Errorf("decode function args: %w", err)
	}
	if analysis.Name == "" || analysis.Category == "" {
		return Analysis{}, fmt.Errorf("incomplete analysis: %+v", analysis)
	}
	if !core.Category(analysis.Category).Valid() {
		return Analysis{}, fmt.Errorf("model returned unknown category %q", analysis.Category)
	}

	return analysis, nil
}
