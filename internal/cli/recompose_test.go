package cli

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/bannerlord/bannerlord/pkg/banner"
	"github.com/bannerlord/bannerlord/pkg/render/sink"
)

func TestRecomposedPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"outputs/banner_metadata.json", "outputs/banner_recomposed.png"},
		{"launch_metadata.json", "launch_recomposed.png"},
		{"plain.json", "plain_recomposed.png"},
	}

	for _, tt := range tests {
		if got := recomposedPath(tt.in); got != tt.want {
			t.Errorf("recomposedPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecomposeCommand(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "banner")

	bg := image.NewRGBA(image.Rect(0, 0, 400, 200))
	layers := []banner.TextElement{
		{Text: "Hello", FontSize: 48, Color: "#FFFFFF"},
	}
	_, metaPath, err := sink.ExportMetadata(base, bg, layers)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "redone.png")
	cmd := newRecomposeCmd()
	cmd.SetArgs([]string{metaPath, "-o", out})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("recompose failed: %v", err)
	}

	img, err := sink.ReadPNG(out)
	if err != nil {
		t.Fatalf("output not readable: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Errorf("recomposed bounds = %v, want 400x200", b)
	}
}

func TestRecomposeCommandDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "banner")

	bg := image.NewRGBA(image.Rect(0, 0, 100, 50))
	_, metaPath, err := sink.ExportMetadata(base, bg, []banner.TextElement{{Text: "Hi"}})
	if err != nil {
		t.Fatal(err)
	}

	cmd := newRecomposeCmd()
	cmd.SetArgs([]string{metaPath})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("recompose failed: %v", err)
	}

	want := filepath.Join(dir, "banner_recomposed.png")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected output at %s: %v", want, err)
	}
}

func TestRecomposeCommandMissingMetadata(t *testing.T) {
	cmd := newRecomposeCmd()
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.json")})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error for missing metadata file")
	}
}
