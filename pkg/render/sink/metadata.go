package sink

import (
	"encoding/json"
	"image"
	"io"
	"os"

	"github.com/bannerlord/bannerlord/pkg/banner"
	"github.com/bannerlord/bannerlord/pkg/errors"
)

// metadataDoc mirrors banner.Document with pointer fields so missing keys
// can be told apart from zero values during import validation.
type metadataDoc struct {
	Width      *int                  `json:"width"`
	Height     *int                  `json:"height"`
	Background *string               `json:"background"`
	TextLayers *[]banner.TextElement `json:"text_layers"`
}

// WriteMetadata encodes the document as pretty-printed JSON to w.
func WriteMetadata(w io.Writer, doc banner.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode metadata")
	}
	return nil
}

// ExportMetadata persists the background raster and a metadata JSON
// document under the given base path, returning the two written paths
// (<base>_background.png and <base>_metadata.json).
//
// The metadata captures width, height, the background reference, and the
// full ordered layer list - everything needed to reconstruct the banner
// with [ImportMetadata]. Auto-placed layers are stored with a null
// position; placement is resolved at render time, never at export time.
func ExportMetadata(base string, background image.Image, layers []banner.TextElement) (bgPath, metaPath string, err error) {
	bgPath = base + "_background.png"
	metaPath = base + "_metadata.json"

	if err := WritePNG(background, bgPath); err != nil {
		return "", "", err
	}

	// A nil layer list would marshal as JSON null, which ReadMetadata
	// rejects; a text-free banner exports an empty list instead.
	if layers == nil {
		layers = []banner.TextElement{}
	}

	bounds := background.Bounds()
	doc := banner.Document{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Background: bgPath,
		Layers:     layers,
	}

	f, err := os.Create(metaPath)
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeIO, err, "create %s", metaPath)
	}
	defer f.Close()

	if err := WriteMetadata(f, doc); err != nil {
		return "", "", errors.Wrap(errors.ErrCodeIO, err, "write %s", metaPath)
	}
	return bgPath, metaPath, nil
}

// ReadMetadata decodes and validates a metadata document from r.
// Structural problems surface as MALFORMED_METADATA identifying the
// offending field.
func ReadMetadata(r io.Reader) (banner.Document, error) {
	var raw metadataDoc
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return banner.Document{}, errors.Wrap(errors.ErrCodeMalformedMetadata, err, "decode metadata")
	}

	switch {
	case raw.Width == nil:
		return banner.Document{}, errors.New(errors.ErrCodeMalformedMetadata, "missing required field %q", "width")
	case raw.Height == nil:
		return banner.Document{}, errors.New(errors.ErrCodeMalformedMetadata, "missing required field %q", "height")
	case raw.Background == nil || *raw.Background == "":
		return banner.Document{}, errors.New(errors.ErrCodeMalformedMetadata, "missing required field %q", "background")
	case raw.TextLayers == nil:
		return banner.Document{}, errors.New(errors.ErrCodeMalformedMetadata, "missing required field %q", "text_layers")
	}
	if *raw.Width <= 0 || *raw.Height <= 0 {
		return banner.Document{}, errors.New(errors.ErrCodeMalformedMetadata, "invalid dimensions %dx%d", *raw.Width, *raw.Height)
	}

	return banner.Document{
		Width:      *raw.Width,
		Height:     *raw.Height,
		Background: *raw.Background,
		Layers:     *raw.TextLayers,
	}, nil
}

// ImportMetadata is the inverse of [ExportMetadata]: it loads the metadata
// document at path and the background raster it references.
//
// A metadata file referencing a missing background surfaces as
// MALFORMED_METADATA naming the background field; unreadable files
// surface as IO_ERROR.
func ImportMetadata(path string) (image.Image, []banner.TextElement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	doc, err := ReadMetadata(f)
	if err != nil {
		return nil, nil, err
	}

	if _, err := os.Stat(doc.Background); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeMalformedMetadata, err, "background %q not found", doc.Background)
	}

	background, err := ReadPNG(doc.Background)
	if err != nil {
		return nil, nil, err
	}
	return background, doc.Layers, nil
}
