/*
Package rasterengine implements a font engine on top of a glyph rasterizer
backend.

The engine implements fem.FontEngine. It owns a cache hierarchy of fonts
(loaded faces, keyed by the identity of their source), font instances (a
face bound to a resolved transform and load flags) and scalers (client
handles to a font instance). Fonts and instances are reference counted:
closing the last scaler of an instance destroys the instance, destroying
the last instance of a font destroys the font. The backend library is
initialized lazily with the first font and shut down with the last one; it
may be initialized again afterwards.

Backends are small. They parse faces, load glyphs at a size and scan
convert outlines to monochrome or gray bitmaps. Everything else is done by the
engine: transform resolution, glyph metrics, emboldening, LCD filtering,
font-wide and advanced typeface metrics, and probing of font sources.

All cache operations and all glyph operations of an engine are serialized by
a single mutex per engine. Different engines are independent of each other.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package rasterengine

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontengines.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontengines.fonts")
}
