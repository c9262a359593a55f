/*
Package ot provides access to OpenType font tables.
Intended audience for this package are font engines, which need font-wide
information not exposed by their rasterizer libraries: embedding permissions,
PCLT cap heights, style bits, the complete list of character maps, etc.

Package `ot` will not rasterize glyphs nor interpret outlines. It just exposes
the tables needed for metrics and probing to the client. From this point of
view, `ot` is a low-level package.

Only a small number of tables is wrapped into semantic Go types:

▪︎ 'head', 'hhea', 'maxp' and 'cmap' (required; parsing fails without them)

▪︎ 'OS/2', 'post', 'PCLT' and 'name' (optional)

Every other table of a font is available as a generic table, i.e. as a
read-only view of its bytes:

	vhea := otf.Table(ot.T("vhea"))   // nil if the font has no vertical metrics

Tables are slices of the font's binary data; package `ot` does not copy them.
Clients must therefore not modify a font's bytes while an ot.Font for it is in use.

# Status

Font collections ('ttcf') and variable fonts are not supported. Parse will
report collections with an EUNSUPPORTED error, so font engines are able to tell
an unsupported format from a broken font file.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

Some of the cmap-routines have been modelled after golang.org/x/image/font/sfnt/cmap.go,
as the cmap-routines are not accessible through the sfnt package's API.

	Copyright 2017 The Go Authors. All rights reserved.
	Use of this source code is governed by a BSD-style
	license that can be found in the LICENSE file.
*/
package ot

import (
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/schuko/tracing"
)

// Valuable resource:
// https://docs.microsoft.com/en-us/typography/opentype/spec/

// tracer writes to trace with key 'fontengines.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontengines.fonts")
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "OpenType font format: %s", x)
}

// errUnsupported produces user level errors for fonts we cannot handle,
// though they may be perfectly valid.
func errUnsupported(x string) error {
	return core.Error(core.EUNSUPPORTED, "OpenType font format not supported: %s", x)
}
