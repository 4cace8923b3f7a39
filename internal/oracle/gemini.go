package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

const (
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel    = "gemini-1.5-pro-latest"
	defaultGeminiTimeout  = 8 * time.Second
	maxResponseBytes      = 1 << 20
)

// GeminiConfig configures the Gemini oracle.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Endpoint    string
	Timeout     time.Duration
	Temperature float64
}

// GeminiOracle calls the Gemini generateContent API with a JSON response schema.
type GeminiOracle struct {
	cfg    GeminiConfig
	client *http.Client
	logger zerolog.Logger
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64     `json:"temperature,omitempty"`
	ResponseMimeType string      `json:"responseMimeType,omitempty"`
	ResponseSchema   interface{} `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewGeminiOracle returns an oracle or an error when no API key is set.
func NewGeminiOracle(cfg GeminiConfig, logger zerolog.Logger) (*GeminiOracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultGeminiEndpoint
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeminiTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}

	return &GeminiOracle{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "gemini_oracle").Str("model", cfg.Model).Logger(),
	}, nil
}

func (g *GeminiOracle) Name() string {
	return "gemini:" + g.cfg.Model
}

// Triage implements TriageOracle.
func (g *GeminiOracle) Triage(ctx context.Context, in model.TriageInput) (*model.TriageResult, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: BuildTriagePrompt(in)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      g.cfg.Temperature,
			ResponseMimeType: "application/json",
			ResponseSchema:   triageSchema,
		},
	}

	text, err := g.generate(ctx, payload)
	if err != nil {
		return nil, err
	}
	return DecodeTriage(text)
}

func (g *GeminiOracle) generate(ctx context.Context, payload geminiRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.cfg.Endpoint, g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr geminiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%w: %s (status: %d)", ErrUnavailable, apiErr.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: status code %d", ErrUnavailable, resp.StatusCode)
	}

	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: blocked: %s", ErrUnavailable, gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformed)
	}

	g.logger.Debug().
		Str("finish_reason", gr.Candidates[0].FinishReason).
		Int("bytes", len(respBody)).
		Msg("oracle reply received")

	return gr.Candidates[0].Content.Parts[0].Text, nil
}
