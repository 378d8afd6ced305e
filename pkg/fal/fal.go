// Package fal is a client for the fal.ai queue API. It submits synchronous
// image-to-image requests to a model-specific endpoint and extracts the
// resulting image URL from the response envelope.
package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/toolerr"
)

// DefaultBaseURL is the fal.ai queue endpoint.
const DefaultBaseURL = "https://queue.fal.run"

const (
	// DefaultStrength is applied when an edit request leaves strength unset.
	DefaultStrength = 0.8
	// MinStrength and MaxStrength bound how much of the source image an edit
	// may change. Out-of-range values are clamped, not rejected.
	MinStrength = 0.3
	MaxStrength = 1.0
)

// maxBodySize caps upstream response bodies (1MB).
const maxBodySize = 1 << 20

// Client calls the fal.ai API with a fixed credential.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests to point at stubs.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger for request outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// EditRequest describes one image modification.
type EditRequest struct {
	ImageURL string
	Prompt   string
	Model    Model
	// Strength is how much to change the image. Nil means DefaultStrength;
	// supplied values (an explicit zero included) are clamped into
	// [MinStrength, MaxStrength].
	Strength *float64
}

// EditResult is the typed outcome of a modification. Chained workflows
// consume URL directly; rendering it for humans is a separate concern.
type EditResult struct {
	Prompt     string
	Model      Model
	ModelLabel string
	Strength   float64
	URL        string
}

// editPayload is the request body for image-to-image endpoints. The step and
// guidance defaults follow the fal.ai recommended values.
type editPayload struct {
	ImageURL          string  `json:"image_url"`
	Prompt            string  `json:"prompt"`
	Strength          float64 `json:"strength"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
}

// editEnvelope is the success body of edit endpoints.
type editEnvelope struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// imageEnvelope is the success body of utility endpoints (background
// removal, upscaling), which return a single image object.
type imageEnvelope struct {
	Image struct {
		URL string `json:"url"`
	} `json:"image"`
}

// EditImage modifies an image according to the prompt using the endpoint
// selected by req.Model.
func (c *Client) EditImage(ctx context.Context, req EditRequest) (*EditResult, error) {
	model := req.Model.orPrimary()
	strength := clampStrength(req.Strength)

	payload := editPayload{
		ImageURL:          req.ImageURL,
		Prompt:            req.Prompt,
		Strength:          strength,
		NumInferenceSteps: 28,
		GuidanceScale:     3.5,
	}

	var envelope editEnvelope
	if err := c.post(ctx, model.endpoint(), payload, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Images) == 0 || envelope.Images[0].URL == "" {
		return nil, toolerr.New(toolerr.MalformedUpstreamResponse, "response has no images[0].url")
	}

	c.logger.Info("image edited", "model", string(model), "strength", strength)

	return &EditResult{
		Prompt:     req.Prompt,
		Model:      model,
		ModelLabel: model.Label(),
		Strength:   strength,
		URL:        envelope.Images[0].URL,
	}, nil
}

// EditImageQwen modifies an image with the Qwen editing model, which takes
// no strength parameter and is better at text edits and precise
// modifications.
func (c *Client) EditImageQwen(ctx context.Context, imageURL, prompt string) (*EditResult, error) {
	payload := map[string]string{"image_url": imageURL, "prompt": prompt}

	var envelope imageEnvelope
	if err := c.post(ctx, "/fal-ai/qwen-image-edit", payload, &envelope); err != nil {
		return nil, err
	}

	if envelope.Image.URL == "" {
		return nil, toolerr.New(toolerr.MalformedUpstreamResponse, "response has no image.url")
	}

	c.logger.Info("image edited", "model", "qwen-image-edit")

	return &EditResult{
		Prompt:     prompt,
		ModelLabel: "Qwen Image Edit",
		URL:        envelope.Image.URL,
	}, nil
}

// RemoveBackground removes the background from an image, making it
// transparent.
func (c *Client) RemoveBackground(ctx context.Context, imageURL string) (*EditResult, error) {
	payload := map[string]string{"image_url": imageURL}

	var envelope imageEnvelope
	if err := c.post(ctx, "/fal-ai/imageutils/rembg", payload, &envelope); err != nil {
		return nil, err
	}

	if envelope.Image.URL == "" {
		return nil, toolerr.New(toolerr.MalformedUpstreamResponse, "response has no image.url")
	}

	c.logger.Info("background removed")

	return &EditResult{
		Prompt:     "Remove background",
		ModelLabel: "Background Removal",
		URL:        envelope.Image.URL,
	}, nil
}

// Upscale upscales an image by the given factor. Factors other than 2, 4,
// or 8 fall back to 2.
func (c *Client) Upscale(ctx context.Context, imageURL string, scale int) (*EditResult, error) {
	if scale != 2 && scale != 4 && scale != 8 {
		scale = 2
	}

	payload := map[string]any{"image_url": imageURL, "scale": scale}

	var envelope imageEnvelope
	if err := c.post(ctx, "/fal-ai/esrgan", payload, &envelope); err != nil {
		return nil, err
	}

	if envelope.Image.URL == "" {
		return nil, toolerr.New(toolerr.MalformedUpstreamResponse, "response has no image.url")
	}

	c.logger.Info("image upscaled", "scale", scale)

	return &EditResult{
		Prompt:     fmt.Sprintf("Upscale %dx", scale),
		ModelLabel: "ESRGAN Upscaler",
		URL:        envelope.Image.URL,
	}, nil
}

// post sends one authenticated request and decodes a success body into out.
// Non-2xx responses become UpstreamRejected carrying the upstream's own
// detail text when present.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("fal: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fal: create request: %w", err)
	}

	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fal: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("fal: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("fal request rejected", "path", path, "status", resp.StatusCode)

		return toolerr.New(toolerr.UpstreamRejected, "%s", rejectionDetail(resp.StatusCode, respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return toolerr.New(toolerr.MalformedUpstreamResponse, "decode response: %v", err)
	}

	return nil
}

// rejectionDetail extracts the upstream's error detail text, preferring the
// JSON "detail" field, then the raw body, then a generic status message.
func rejectionDetail(status int, body []byte) string {
	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != "" {
		return envelope.Detail
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return fmt.Sprintf("API request failed: %d %s", status, text)
	}

	return fmt.Sprintf("API request failed: %d", status)
}

// clampStrength applies the default and bounds.
func clampStrength(s *float64) float64 {
	switch {
	case s == nil:
		return DefaultStrength
	case *s < MinStrength:
		return MinStrength
	case *s > MaxStrength:
		return MaxStrength
	default:
		return *s
	}
}
