package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"

	"github.com/bannerlord/bannerlord/pkg/banner"
	"github.com/bannerlord/bannerlord/pkg/errors"
)

// RenderSVG renders the document as an editable vector banner.
//
// The output contains one full-canvas <image> node referencing the
// background by path (pixel data is not embedded) and one <text> node per
// layer, anchored at its center. Auto-placed layers (nil position) anchor
// at the canvas center, matching how the orchestrator exports them.
func RenderSVG(doc banner.Document) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		doc.Width, doc.Height, doc.Width, doc.Height)

	fmt.Fprintf(&buf, `  <image xlink:href="%s" x="0" y="0" width="%d" height="%d"/>`+"\n",
		escapeXML(doc.Background), doc.Width, doc.Height)

	for _, layer := range doc.Layers {
		renderTextNode(&buf, doc, layer)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// WriteSVG renders the document and writes it to path.
func WriteSVG(doc banner.Document, path string) error {
	if err := os.WriteFile(path, RenderSVG(doc), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

func renderTextNode(buf *bytes.Buffer, doc banner.Document, layer banner.TextElement) {
	layer = layer.WithDefaults()

	x := float64(doc.Width) / 2
	y := float64(doc.Height) / 2
	if layer.Position != nil {
		x, y = layer.Position.X, layer.Position.Y
	}

	fmt.Fprintf(buf,
		`  <text x="%g" y="%g" font-size="%g" font-family="%s" fill="%s" text-anchor="middle" stroke="%s" stroke-width="%d">%s</text>`+"\n",
		x, y, layer.FontSize,
		escapeXML(layer.FontFamily), escapeXML(layer.Color),
		escapeXML(layer.StrokeColor), layer.StrokeWidth,
		escapeXML(layer.Text))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
