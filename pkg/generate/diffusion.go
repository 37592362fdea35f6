package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/bannerlord/bannerlord/pkg/errors"
	"github.com/bannerlord/bannerlord/pkg/httputil"
	"github.com/bannerlord/bannerlord/pkg/observability"
	"github.com/bannerlord/bannerlord/pkg/render/sink"
)

// DiffusionClient talks to a ControlNet-capable diffusion service over a
// simple JSON protocol: the guidance sketch travels as a base64 PNG, the
// result comes back the same way. Transient failures (network errors, 5xx)
// are retried with exponential backoff.
type DiffusionClient struct {
	endpoint string
	http     *http.Client

	Steps             int
	GuidanceScale     float64
	ConditioningScale float64
	NegativePrompt    string
	Seed              *int64
}

// DiffusionOption configures a DiffusionClient.
type DiffusionOption func(*DiffusionClient)

// WithHTTPClient supplies a pre-configured HTTP client.
func WithHTTPClient(hc *http.Client) DiffusionOption {
	return func(c *DiffusionClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSeed fixes the generation seed for reproducibility.
func WithSeed(seed int64) DiffusionOption {
	return func(c *DiffusionClient) { c.Seed = &seed }
}

// WithSteps overrides the number of denoising steps.
func WithSteps(steps int) DiffusionOption {
	return func(c *DiffusionClient) {
		if steps > 0 {
			c.Steps = steps
		}
	}
}

// NewDiffusionClient creates a client for the given service endpoint.
func NewDiffusionClient(endpoint string, opts ...DiffusionOption) (*DiffusionClient, error) {
	if err := errors.ValidateURL(endpoint); err != nil {
		return nil, err
	}
	c := &DiffusionClient{
		endpoint: endpoint,
		// Diffusion inference is slow; the timeout covers model load + sampling.
		http:              &http.Client{Timeout: 5 * time.Minute},
		Steps:             DefaultSteps,
		GuidanceScale:     DefaultGuidanceScale,
		ConditioningScale: DefaultConditioningScale,
		NegativePrompt:    DefaultNegativePrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type diffusionRequest struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	ControlImage      string  `json:"control_image"`
	Steps             int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	ConditioningScale float64 `json:"controlnet_conditioning_scale"`
	Seed              *int64  `json:"seed,omitempty"`
}

type diffusionResponse struct {
	Image string `json:"image"`
	Error string `json:"error,omitempty"`
}

// Generate implements Generator. The returned image has the dimensions of
// the control sketch unless the service decides otherwise; callers that
// need exact dimensions should fit the result to their canvas.
func (c *DiffusionClient) Generate(ctx context.Context, prompt string, control image.Image) (image.Image, error) {
	var controlPNG bytes.Buffer
	if err := sink.EncodePNG(&controlPNG, control); err != nil {
		return nil, err
	}

	bounds := control.Bounds()
	body, err := json.Marshal(diffusionRequest{
		Prompt:            prompt,
		NegativePrompt:    c.NegativePrompt,
		Width:             bounds.Dx(),
		Height:            bounds.Dy(),
		ControlImage:      base64.StdEncoding.EncodeToString(controlPNG.Bytes()),
		Steps:             c.Steps,
		GuidanceScale:     c.GuidanceScale,
		ConditioningScale: c.ConditioningScale,
		Seed:              c.Seed,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode generation request")
	}

	var result image.Image
	err = httputil.RetryWithBackoff(ctx, func() error {
		img, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		result = img
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "background generation failed")
	}
	return result, nil
}

func (c *DiffusionClient) post(ctx context.Context, body []byte) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, httputil.Retryable(err)
	}
	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, httputil.Retryable(fmt.Errorf("diffusion service returned %s", resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diffusion service returned %s", resp.Status)
	}

	var out diffusionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode diffusion response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("diffusion service error: %s", out.Error)
	}

	raw, err := base64.StdEncoding.DecodeString(out.Image)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}
	return img, nil
}
