package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ironsheep/floorplan-area-mcp/internal/imaging"
)

// DefaultBaseURL is the Gemini REST API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash"

// ErrNoAPIKey is returned by NewClient when no key is configured.
var ErrNoAPIKey = errors.New("vision API key not configured")

// Config configures a Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AreaEstimate is the model's free-text guess at the plan's total area.
type AreaEstimate struct {
	FoundDimensions   bool   `json:"found_dimensions"`
	EstimatedAreaSqft string `json:"estimated_area_sqft"`
	EstimatedAreaSqm  string `json:"estimated_area_sqm"`
	Explanation       string `json:"explanation"`

	ProcessingTime time.Duration `json:"-"`
	RawResponse    string        `json:"-"`
}

// Answer is the model's reply to a follow-up question.
type Answer struct {
	Text           string        `json:"response"`
	ProcessingTime time.Duration `json:"-"`
}

// FormatError is returned when the model answered with something other
// than the requested JSON. Raw holds the cleaned reply.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("AI response format error: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

var requiredKeys = []string{"found_dimensions", "estimated_area_sqft", "estimated_area_sqm", "explanation"}

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient returns a Client, or ErrNoAPIKey when cfg has no key. A nil
// logger discards output.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// EstimateArea asks the model for a total floor-area estimate.
func (c *Client) EstimateArea(ctx context.Context, img image.Image) (*AreaEstimate, error) {
	start := time.Now()
	text, err := c.generate(ctx, areaPrompt, img, 0.2)
	if err != nil {
		return nil, err
	}

	est, err := parseAreaEstimate(text)
	if err != nil {
		return nil, err
	}
	est.ProcessingTime = time.Since(start)
	c.logger.Debug("vision estimate received",
		"model", c.model, "found_dimensions", est.FoundDimensions, "elapsed", est.ProcessingTime)
	return est, nil
}

// Ask sends a free-form question about img.
func (c *Client) Ask(ctx context.Context, img image.Image, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question is required")
	}
	start := time.Now()
	text, err := c.generate(ctx, questionPrompt(question), img, 0.4)
	if err != nil {
		return nil, err
	}
	return &Answer{Text: text, ProcessingTime: time.Since(start)}, nil
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content      `json:"contents"`
	GenerationConfig map[string]any `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string, img image.Image, temperature float64) (string, error) {
	enc, err := imaging.EncodePNG(img)
	if err != nil {
		return "", err
	}

	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: enc.MimeType, Data: enc.ImageBase64}},
			},
		}},
		GenerationConfig: map[string]any{"temperature": temperature},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending vision request", "model", c.model, "bytes", len(body))
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("failed to parse vision response structure: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from vision model")
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// stripFences removes a surrounding Markdown code fence, with or without a
// json tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseAreaEstimate(text string) (*AreaEstimate, error) {
	raw := stripFences(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, &FormatError{Raw: raw, Err: err}
	}
	var missing []string
	for _, k := range requiredKeys {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatError{Raw: raw, Err: fmt.Errorf("missing keys in JSON response: %s", strings.Join(missing, ", "))}
	}

	var est AreaEstimate
	if err := json.Unmarshal([]byte(raw), &est); err != nil {
		return nil, &FormatError{Raw: raw, Err: err}
	}
	est.RawResponse = raw
	return &est, nil
}
