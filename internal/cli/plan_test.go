package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bannerlord/bannerlord/pkg/render/sink"
)

func TestPlanCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plan.png")

	cmd := newPlanCmd()
	cmd.SetArgs([]string{"--width", "640", "--height", "320", "--style", "geometric", "-p", "left", "-o", out})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	img, err := sink.ReadPNG(out)
	if err != nil {
		t.Fatalf("sketch not readable: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 320 {
		t.Errorf("sketch bounds = %v, want 640x320", b)
	}
}

func TestPlanCommandRejectsBadStyle(t *testing.T) {
	cmd := newPlanCmd()
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetArgs([]string{"--style", "cubist"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error for unknown style")
	}
}

func TestPlanCommandRejectsBadPosition(t *testing.T) {
	cmd := newPlanCmd()
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetArgs([]string{"-p", "diagonal"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error for unknown position")
	}
}
