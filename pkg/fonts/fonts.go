// Package fonts provides font resolution for text rendering.
//
// Resolution is a ranked ladder of sources injected by the caller rather
// than a hard-coded filesystem search: directory sources probe caller-owned
// font directories, the system source asks the OS font paths, and the
// embedded source serves the Go fonts compiled into the binary. The ladder
// is deterministic and cannot fail: if every external font is missing, the
// embedded fallback still produces a usable face.
package fonts

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FallbackFontFamily provides fallback font families for SVG consumers
// that do not have the requested family installed.
const FallbackFontFamily = `'DejaVu Sans', 'Liberation Sans', 'Helvetica', sans-serif`

// Source resolves a font family at a size into a face.
// A source returns an error when it cannot serve the family; the resolver
// then moves on to the next source in the ladder.
type Source interface {
	Face(family string, size float64) (font.Face, error)
}

// Resolver tries a ranked list of sources and falls back to the embedded
// Go fonts when none of them can serve the request.
type Resolver struct {
	sources []Source
}

// NewResolver builds a resolver over the given sources, ranked first to
// last. The embedded source is always appended as the terminal fallback,
// so Face never fails.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: append(sources, Embedded{})}
}

// DefaultResolver resolves through the system fonts only, then the
// embedded fallback.
func DefaultResolver() *Resolver {
	return NewResolver(System{})
}

// Face resolves family at size. Resolution walks the ladder in order and
// silently degrades to the embedded fallback; it never fails.
func (r *Resolver) Face(family string, size float64) font.Face {
	for _, s := range r.sources {
		if face, err := s.Face(family, size); err == nil {
			return face
		}
	}
	// Unreachable: NewResolver appends Embedded, whose Face never errors.
	face, _ := Embedded{}.Face(family, size)
	return face
}

// Dir is a source that probes a single directory for font files.
//
// For a family "Sans" it tries, in order: Sans.ttf, Sans-Regular.ttf,
// Sans-Bold.ttf, then the generalized DejaVuSans-Bold.ttf and
// DejaVuSans.ttf names. This reproduces the classic truetype-directory
// probing as one injectable rung of the ladder.
type Dir struct {
	Path string
}

// Face implements Source.
func (d Dir) Face(family string, size float64) (font.Face, error) {
	candidates := []string{
		family + ".ttf",
		family + "-Regular.ttf",
		family + "-Bold.ttf",
		"DejaVuSans-Bold.ttf",
		"DejaVuSans.ttf",
	}
	var lastErr error = os.ErrNotExist
	for _, name := range candidates {
		face, err := faceFromFile(filepath.Join(d.Path, name), size)
		if err == nil {
			return face, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// System is a source backed by the operating system's font directories.
type System struct{}

// Face implements Source. It searches the platform font paths for the
// family, then for the generalized bold and regular fallbacks.
func (System) Face(family string, size float64) (font.Face, error) {
	candidates := []string{
		family + ".ttf",
		"DejaVuSans-Bold.ttf",
		"DejaVuSans.ttf",
	}
	var lastErr error = os.ErrNotExist
	for _, name := range candidates {
		path, err := findfont.Find(name)
		if err != nil {
			lastErr = err
			continue
		}
		face, err := faceFromFile(path, size)
		if err == nil {
			return face, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Embedded serves the Go fonts compiled into the binary. It is the
// terminal rung of every resolver ladder and never fails.
type Embedded struct{}

var (
	embeddedOnce    sync.Once
	embeddedRegular *truetype.Font
	embeddedBold    *truetype.Font
)

func loadEmbedded() {
	embeddedOnce.Do(func() {
		// The bundled Go fonts are well-formed; Parse cannot fail on them.
		embeddedRegular, _ = truetype.Parse(goregular.TTF)
		embeddedBold, _ = truetype.Parse(gobold.TTF)
	})
}

// Face implements Source. Families containing "bold" (case-insensitive)
// get the bold cut; everything else gets the regular cut.
func (Embedded) Face(family string, size float64) (font.Face, error) {
	loadEmbedded()
	f := embeddedRegular
	if strings.Contains(strings.ToLower(family), "bold") {
		f = embeddedBold
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72}), nil
}

// faceFromFile parses a TTF file into a face at the given size.
func faceFromFile(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72}), nil
}
