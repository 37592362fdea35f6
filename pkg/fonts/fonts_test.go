package fonts

import (
	"fmt"
	"testing"

	"golang.org/x/image/font"
)

// failingSource always errors, standing in for an empty font directory.
type failingSource struct{ calls int }

func (s *failingSource) Face(family string, size float64) (font.Face, error) {
	s.calls++
	return nil, fmt.Errorf("no such font")
}

func TestResolverNeverFails(t *testing.T) {
	r := NewResolver()
	for _, family := range []string{"Sans", "Comic Sans MS", "", "definitely-not-installed"} {
		if face := r.Face(family, 24); face == nil {
			t.Errorf("Face(%q) returned nil", family)
		}
	}
}

func TestResolverWalksLadderInOrder(t *testing.T) {
	first := &failingSource{}
	second := &failingSource{}
	r := NewResolver(first, second)

	face := r.Face("Missing", 12)
	if face == nil {
		t.Fatal("expected embedded fallback face")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("source calls = %d, %d; want 1, 1", first.calls, second.calls)
	}
}

func TestDirSourceMissingDirectory(t *testing.T) {
	d := Dir{Path: "/nonexistent"}
	if _, err := d.Face("Sans", 12); err == nil {
		t.Error("expected error for missing directory")
	}

	// Missing directory sources still degrade cleanly inside a resolver.
	r := NewResolver(d)
	if face := r.Face("Sans", 12); face == nil {
		t.Error("resolver with broken dir source returned nil face")
	}
}

func TestEmbeddedBoldSelection(t *testing.T) {
	e := Embedded{}

	regular, err := e.Face("Sans", 20)
	if err != nil {
		t.Fatalf("regular face error: %v", err)
	}
	bold, err := e.Face("Sans Bold", 20)
	if err != nil {
		t.Fatalf("bold face error: %v", err)
	}

	// The bold cut renders wider glyphs than the regular cut.
	rw := font.MeasureString(regular, "Banner")
	bw := font.MeasureString(bold, "Banner")
	if bw <= rw {
		t.Errorf("bold advance %v should exceed regular advance %v", bw, rw)
	}
}

func TestDefaultResolver(t *testing.T) {
	if face := DefaultResolver().Face("Sans", 72); face == nil {
		t.Error("DefaultResolver().Face returned nil")
	}
}
