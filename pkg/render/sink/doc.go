// Package sink serializes composed banners to their output formats.
//
// Three sinks cover the export surface:
//
//   - PNG: the flattened raster artifact
//   - SVG: an editable vector document referencing the background by path,
//     with one text node per layer
//   - Metadata: a JSON document plus a separately persisted background,
//     sufficient to reconstruct the full banner document
//
// The metadata sink is the primary data interchange format: exporting and
// re-importing yields a background of identical dimensions and a layer
// list equal field-for-field to the original. Auto-placed layers keep
// their null position through the round trip; layout resolution is never
// baked into an export.
//
// The SVG sink is a best-effort visual re-creation: vector text shaping
// differs from raster rendering, so pixel identity with the PNG artifact
// is not guaranteed and not attempted.
package sink
