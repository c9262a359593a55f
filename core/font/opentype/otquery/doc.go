/*
Package otquery queries metrics and other information from OpenType fonts.

Package otquery knows about the various tables contained in OpenType fonts and
which ones to address for queries. Its clients are font engines, which need
answers to questions their rasterizer libraries cannot give:

▪︎ May the font be embedded into a document?

▪︎ What are the style bits, the cap height and the x-height of a font?

▪︎ Which Unicode code-points map to a range of glyphs?

Functions in this package never fail loudly. If a font lacks the tables
needed to answer a query, they return zero values, usually together with a
flag telling that the answer is a default.

# Status

No font collections nor variable fonts are supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontengines.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontengines.fonts")
}
