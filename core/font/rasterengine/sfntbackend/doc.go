/*
Package sfntbackend is a rasterizer backend built on the pure Go font packages
of golang.org/x/image.

Faces are parsed with package sfnt, which reads TrueType as well as CFF
outlines. sfnt does not interpret hinting instructions: hinted load targets
merely round advances to whole pixels. Outlines are scan converted with the
anti-aliasing rasterizer of package vector; monochrome bitmaps are produced
by thresholding the coverage.

Importing this package registers an engine "sfnt" for discovery by
fem.GlobalManager.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package sfntbackend

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontengines.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontengines.fonts")
}
