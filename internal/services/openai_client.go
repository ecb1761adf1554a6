package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/scrummood/scrummood-backend/internal/engine"
	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/types"
)

// TextAnalysisClient is the outbound text-sentiment capability. It
// satisfies engine.TextClassifier; callers own retry policy and the
// engine owns the soft fallback on failure.
type TextAnalysisClient interface {
	AnalyzeText(ctx context.Context, text string) (engine.Estimate, error)
}

type openAIClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewTextAnalysisClient(log *logger.Logger) (TextAnalysisClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeoutSec := 20
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 2
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &openAIClient{
		log:        log.With("service", "TextAnalysisClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

const textAnalysisSystemPrompt = "You are an emotion analysis assistant for team stand-up sessions. " +
	"Analyze the sentiment and dominant emotion of the text you are given and answer with JSON only."

const textAnalysisUserPrompt = `Analyze the sentiment and dominant emotion of the following text.
Provide the output in a JSON format. The JSON should have the following keys:
- "emotion": The single dominant emotion (string, one of: happy, sad, angry, stressed, neutral, confused, excited).
- "intensity": The intensity of the dominant emotion (float, 0.0 to 1.0).
- "confidence": The confidence of your analysis (float, 0.0 to 1.0).
- "sentiment_score": The overall sentiment score (-1.0 for very negative, 1.0 for very positive, 0.0 for neutral).
- "all_emotions_breakdown": An optional dictionary showing scores for all emotions. If not available, leave empty.
- "explanation": A short textual explanation of the analysis.

Text: %q`

var textAnalysisSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"emotion":                map[string]any{"type": "string"},
		"intensity":              map[string]any{"type": "number"},
		"confidence":             map[string]any{"type": "number"},
		"sentiment_score":        map[string]any{"type": "number"},
		"all_emotions_breakdown": map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "number"}},
		"explanation":            map[string]any{"type": "string"},
	},
	"required": []string{"emotion", "intensity", "confidence", "sentiment_score"},
}

func (c *openAIClient) AnalyzeText(ctx context.Context, text string) (engine.Estimate, error) {
	obj, err := c.generateJSON(ctx, textAnalysisSystemPrompt, fmt.Sprintf(textAnalysisUserPrompt, text), "emotion_analysis", textAnalysisSchema)
	if err != nil {
		return engine.Estimate{}, err
	}

	emotionStr, _ := obj["emotion"].(string)
	emotion, err := types.ParseEmotionType(emotionStr)
	if err != nil {
		return engine.Estimate{}, fmt.Errorf("classifier returned unknown emotion: %w", err)
	}

	est := engine.Estimate{
		Emotion:        emotion,
		Intensity:      types.Clamp01(numberOr(obj, "intensity", 0.5)),
		Confidence:     types.Clamp01(numberOr(obj, "confidence", 0.5)),
		SentimentScore: numberOr(obj, "sentiment_score", 0.0),
		AllEmotions:    map[string]float64{},
		Metadata: map[string]any{
			"analysis_timestamp": time.Now().UTC().Format(time.RFC3339),
			"analyzer_version":   c.model,
		},
	}
	if breakdown, ok := obj["all_emotions_breakdown"].(map[string]any); ok {
		for k, v := range breakdown {
			if f, ok := v.(float64); ok {
				est.AllEmotions[k] = f
			}
		}
	}
	if explanation, ok := obj["explanation"].(string); ok && explanation != "" {
		est.Metadata["explanation"] = explanation
	}
	return est, nil
}

func numberOr(obj map[string]any, key string, def float64) float64 {
	if f, ok := obj[key].(float64); ok {
		return f
	}
	return def
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *openAIHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	v := low + rand.Float64()*(2*delta)
	return time.Duration(v * float64(time.Second))
}

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"input"`
	Temperature float64 `json:"temperature"`
	Text        struct {
		Format map[string]any `json:"format"`
	} `json:"text"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func (c *openAIClient) generateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/responses", req, &resp); err != nil {
		return nil, err
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", resp.Refusal)
	}

	var jsonText string
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, part := range item.Content {
				if part.Type == "output_text" && part.Text != "" {
					jsonText += part.Text
				}
			}
		}
	}
	if jsonText == "" {
		return nil, fmt.Errorf("no output_text found in response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return obj, nil
}

func (c *openAIClient) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
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

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (c *openAIClient) do(ctx context.Context, method, path string, body, out any) error {
	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			return json.Unmarshal(raw, out)
		}
		lastErr = err
		if ctx.Err() != nil || !isRetryableErr(err) {
			return err
		}
		if attempt < c.maxRetries {
			c.log.Warn("Text analysis call failed, retrying", "attempt", attempt+1, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitterSleep(backoff)):
			}
			backoff *= 2
		}
	}
	return lastErr
}
