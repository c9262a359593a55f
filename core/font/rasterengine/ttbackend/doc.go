/*
Package ttbackend is a rasterizer backend built on the Go port of FreeType,
github.com/golang/freetype.

Faces are loaded with package truetype, which runs the TrueType hinting
interpreter for hinted load targets. Fonts with CFF outlines are not
supported. Outlines are scan converted with package raster, using the
non-zero winding rule.

Importing this package registers an engine "freetype" for discovery by
fem.GlobalManager.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ttbackend

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontengines.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontengines.fonts")
}
