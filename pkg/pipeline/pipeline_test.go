package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bannerlord/bannerlord/pkg/cache"
	"github.com/bannerlord/bannerlord/pkg/errors"
)

// stubAdvisor returns a fixed response and counts calls.
type stubAdvisor struct {
	response string
	err      error
	calls    int
}

func (s *stubAdvisor) Design(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubAdvisor) Refine(ctx context.Context, prompt, feedback string) (string, error) {
	s.calls++
	return s.response, s.err
}

// stubGenerator returns a fixed-size solid image or an error.
type stubGenerator struct {
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, control image.Image) (image.Image, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return image.NewRGBA(image.Rect(0, 0, 640, 480)), nil
}

const adviceJSON = `Here is my recommendation:
{"concept": "bold tech", "colors": ["#112233", "#445566"], "typography": "Sans-serif",
 "layout": "bottom", "image_prompt": "circuit board macro"}`

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErr  errors.Code
		wantOpts func(t *testing.T, o Options)
	}{
		{
			name: "defaults applied",
			opts: Options{Prompt: "p"},
			wantOpts: func(t *testing.T, o Options) {
				if o.Width != DefaultWidth || o.Height != DefaultHeight {
					t.Errorf("dimensions = %dx%d, want %dx%d", o.Width, o.Height, DefaultWidth, DefaultHeight)
				}
				if o.FontSize != DefaultFontSize {
					t.Errorf("FontSize = %g, want %g", o.FontSize, DefaultFontSize)
				}
				if o.OutputName != DefaultOutputName || o.OutputDir != DefaultOutputDir {
					t.Errorf("output = %s/%s", o.OutputDir, o.OutputName)
				}
			},
		},
		{
			name:    "missing prompt",
			opts:    Options{},
			wantErr: errors.ErrCodeInvalidInput,
		},
		{
			name:    "negative width",
			opts:    Options{Prompt: "p", Width: -1, Height: 100},
			wantErr: errors.ErrCodeInvalidDimensions,
		},
		{
			name:    "unknown style",
			opts:    Options{Prompt: "p", Style: "brutalist"},
			wantErr: errors.ErrCodeInvalidStyle,
		},
		{
			name:    "unknown position",
			opts:    Options{Prompt: "p", Position: "diagonal"},
			wantErr: errors.ErrCodeInvalidPosition,
		},
		{
			name:    "bad color",
			opts:    Options{Prompt: "p", Color: "red"},
			wantErr: errors.ErrCodeInvalidColor,
		},
		{
			name:    "path traversal output name",
			opts:    Options{Prompt: "p", OutputName: "../evil"},
			wantErr: errors.ErrCodeInvalidOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantErr != "" {
				if errors.GetCode(err) != tt.wantErr {
					t.Fatalf("error code = %v, want %v (err: %v)", errors.GetCode(err), tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndSetDefaults() error: %v", err)
			}
			if tt.wantOpts != nil {
				tt.wantOpts(t, tt.opts)
			}
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	opts := Options{Prompt: "p"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts != first {
		t.Error("second validation changed options")
	}
}

func TestExecuteProducesAllArtifacts(t *testing.T) {
	advisor := &stubAdvisor{response: adviceJSON}
	runner := NewRunner(advisor, nil, nil, nil)

	dir := t.TempDir()
	result, err := runner.Execute(context.Background(), Options{
		Prompt:    "tech banner",
		Text:      "Launch Day",
		Width:     400,
		Height:    200,
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	for _, path := range result.Paths() {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("artifact %s not written: %v", path, err)
		}
	}

	if result.Guidance.Concept != "bold tech" {
		t.Errorf("Guidance.Concept = %q", result.Guidance.Concept)
	}
	// Advisor suggested bottom placement; the plan should honor it.
	var foundBottom bool
	for _, r := range result.Regions {
		if r.Role == "text-area" && r.Y0 >= 200*2/3-1 {
			foundBottom = true
		}
	}
	if !foundBottom {
		t.Errorf("text area not placed at bottom: %+v", result.Regions)
	}
}

func TestExecuteAdvisorFailureFallsBack(t *testing.T) {
	advisor := &stubAdvisor{err: fmt.Errorf("connection refused")}
	runner := NewRunner(advisor, nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Prompt:    "banner",
		Width:     100,
		Height:    50,
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.Guidance.Concept != "See raw response" {
		t.Errorf("expected default guidance, got concept %q", result.Guidance.Concept)
	}
}

func TestExecuteGeneratorFailureFallsBackToGradient(t *testing.T) {
	advisor := &stubAdvisor{response: adviceJSON}
	gen := &stubGenerator{err: fmt.Errorf("service down")}
	runner := NewRunner(advisor, gen, nil, nil)

	_, err := runner.Execute(context.Background(), Options{
		Prompt:       "banner",
		Width:        100,
		Height:       50,
		UseGenerator: true,
		OutputDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestExecuteFitsGeneratorOutputToCanvas(t *testing.T) {
	advisor := &stubAdvisor{response: adviceJSON}
	gen := &stubGenerator{} // returns 640x480 regardless of canvas
	runner := NewRunner(advisor, gen, nil, nil)

	dir := t.TempDir()
	result, err := runner.Execute(context.Background(), Options{
		Prompt:       "banner",
		Width:        300,
		Height:       150,
		UseGenerator: true,
		OutputDir:    dir,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	f, err := os.Open(result.BackgroundPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 300 || cfg.Height != 150 {
		t.Errorf("background = %dx%d, want 300x150", cfg.Width, cfg.Height)
	}
}

func TestAdviseCaching(t *testing.T) {
	advisor := &stubAdvisor{response: adviceJSON}
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(advisor, nil, store, nil)

	opts := Options{Prompt: "cached banner"}
	ctx := context.Background()

	if _, hit, err := runner.AdviseWithCacheInfo(ctx, opts); err != nil || hit {
		t.Fatalf("first advise: hit=%v err=%v", hit, err)
	}
	g, hit, err := runner.AdviseWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatalf("second advise error: %v", err)
	}
	if !hit {
		t.Error("expected cache hit on second advise")
	}
	if advisor.calls != 1 {
		t.Errorf("advisor calls = %d, want 1", advisor.calls)
	}
	if g.Concept != "bold tech" {
		t.Errorf("cached guidance concept = %q", g.Concept)
	}

	// Refresh bypasses the cache.
	if _, hit, err := runner.AdviseWithCacheInfo(ctx, Options{Prompt: "cached banner", Refresh: true}); err != nil || hit {
		t.Fatalf("refresh advise: hit=%v err=%v", hit, err)
	}
	if advisor.calls != 2 {
		t.Errorf("advisor calls after refresh = %d, want 2", advisor.calls)
	}
}

func TestExecuteWithoutAdvisor(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Prompt:    "banner",
		Text:      "Hello",
		Width:     120,
		Height:    60,
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(result.Guidance.Colors) == 0 {
		t.Error("default guidance should carry a palette")
	}
}

func TestResolveColorPrefersExplicit(t *testing.T) {
	advisor := &stubAdvisor{response: adviceJSON}
	runner := NewRunner(advisor, nil, nil, nil)

	g, err := runner.Advise(context.Background(), Options{Prompt: "p"})
	if err != nil {
		t.Fatal(err)
	}

	explicit := Options{Prompt: "p", Color: "#FF0000"}
	if err := explicit.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := explicit.ResolveColor(g); got != "#FF0000" {
		t.Errorf("ResolveColor = %q, want explicit #FF0000", got)
	}

	implicit := Options{Prompt: "p"}
	if err := implicit.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := implicit.ResolveColor(g); got != "#112233" {
		t.Errorf("ResolveColor = %q, want advisor color #112233", got)
	}
}

func TestExecuteMetadataMatchesCanvas(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	dir := t.TempDir()

	result, err := runner.Execute(context.Background(), Options{
		Prompt:    "banner",
		Text:      "Hi",
		Width:     800,
		Height:    400,
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	data, err := os.ReadFile(result.MetadataPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"width": 800`, `"height": 400`, `"Hi"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metadata missing %s:\n%s", want, data)
		}
	}
	if filepath.Dir(result.MetadataPath) != dir {
		t.Errorf("metadata written outside output dir: %s", result.MetadataPath)
	}
}
