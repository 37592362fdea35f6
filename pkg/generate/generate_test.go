package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bannerlord/bannerlord/pkg/errors"
	"github.com/bannerlord/bannerlord/pkg/render/sink"
)

func TestGradientDeterministic(t *testing.T) {
	a := GradientBackground(200, 100)
	b := GradientBackground(200, 100)

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same dimensions should produce identical gradients")
	}
}

func TestGradientShadeFormula(t *testing.T) {
	img := GradientBackground(10, 100)

	// Top row starts at the dark slate base.
	top := img.RGBAAt(0, 0)
	if top.R != 44 || top.G != 62 || top.B != 80 || top.A != 0xff {
		t.Errorf("top row = %+v, want {44 62 80 255}", top)
	}

	// Row 50: r = 44 + (50/100)*30 = 59, g = 62 + 50/20 = 64.
	mid := img.RGBAAt(5, 50)
	if mid.R != 59 || mid.G != 64 || mid.B != 80 {
		t.Errorf("mid row = %+v, want {59 64 80}", mid)
	}

	// Brightness only increases downward.
	prev := img.RGBAAt(0, 0)
	for y := 1; y < 100; y++ {
		cur := img.RGBAAt(0, y)
		if cur.R < prev.R || cur.G < prev.G {
			t.Fatalf("row %d darker than previous: %+v < %+v", y, cur, prev)
		}
		prev = cur
	}
}

func TestGradientGeneratorUsesControlDimensions(t *testing.T) {
	control := image.NewRGBA(image.Rect(0, 0, 321, 123))
	out, err := Gradient{}.Generate(context.Background(), "ignored", control)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 321 || b.Dy() != 123 {
		t.Errorf("bounds = %v, want 321x123", b)
	}
}

func TestGeneratorFunc(t *testing.T) {
	var gotPrompt string
	g := GeneratorFunc(func(ctx context.Context, prompt string, control image.Image) (image.Image, error) {
		gotPrompt = prompt
		return control, nil
	})

	if _, err := g.Generate(context.Background(), "hello", image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}
	if gotPrompt != "hello" {
		t.Errorf("prompt = %q", gotPrompt)
	}
}

func TestNewDiffusionClientValidatesEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "not-a-url", "ftp://host/generate"} {
		if _, err := NewDiffusionClient(endpoint); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("NewDiffusionClient(%q) code = %q", endpoint, errors.GetCode(err))
		}
	}

	c, err := NewDiffusionClient("http://localhost:7860/generate")
	if err != nil {
		t.Fatalf("NewDiffusionClient() error: %v", err)
	}
	if c.Steps != DefaultSteps || c.GuidanceScale != DefaultGuidanceScale {
		t.Errorf("defaults = %d, %g", c.Steps, c.GuidanceScale)
	}
	if c.NegativePrompt != DefaultNegativePrompt {
		t.Errorf("NegativePrompt = %q", c.NegativePrompt)
	}
}

func TestDiffusionClientGenerate(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		var buf bytes.Buffer
		if err := sink.EncodePNG(&buf, image.NewRGBA(image.Rect(0, 0, 64, 32))); err != nil {
			t.Errorf("encode response image: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"image": base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
	}))
	defer srv.Close()

	c, err := NewDiffusionClient(srv.URL, WithSeed(7), WithSteps(12))
	if err != nil {
		t.Fatal(err)
	}

	control := image.NewRGBA(image.Rect(0, 0, 64, 32))
	out, err := c.Generate(context.Background(), "circuit board", control)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("bounds = %v", b)
	}

	if gotReq["prompt"] != "circuit board" {
		t.Errorf("prompt = %v", gotReq["prompt"])
	}
	if gotReq["num_inference_steps"] != float64(12) {
		t.Errorf("steps = %v", gotReq["num_inference_steps"])
	}
	if gotReq["seed"] != float64(7) {
		t.Errorf("seed = %v", gotReq["seed"])
	}
	if gotReq["negative_prompt"] != DefaultNegativePrompt {
		t.Errorf("negative_prompt = %v", gotReq["negative_prompt"])
	}
	if s, ok := gotReq["control_image"].(string); !ok || s == "" {
		t.Error("control image not sent")
	}
}

func TestDiffusionClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		var buf bytes.Buffer
		_ = sink.EncodePNG(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"image": base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
	}))
	defer srv.Close()

	c, err := NewDiffusionClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Generate(context.Background(), "p", image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestDiffusionClientDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad prompt", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewDiffusionClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Generate(context.Background(), "p", image.NewRGBA(image.Rect(0, 0, 8, 8))); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts)
	}
}

func TestDiffusionClientSurfacesServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "CUDA out of memory"})
	}))
	defer srv.Close()

	c, err := NewDiffusionClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Generate(context.Background(), "p", image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("code = %q, want NETWORK_ERROR", errors.GetCode(err))
	}
}
