/*
Package fem is the font engine manager. It defines the values exchanged with
font engines (scaler requests, glyph metrics, outlines, font-wide metrics),
the FontEngine and Scaler interfaces every rasterizer backend implements, and
a Manager dispatching calls to an ordered list of engines.

Dispatch follows a "first success wins" policy: engines are consulted from
the most recently registered to the first one, and the first non-empty
result is returned. A failure of an engine is final for the call; no engine
is retried.

Engines are not loaded dynamically. Packages implementing an engine add a
factory to the discovery list with RegisterDiscovery, usually from an init
function, and GlobalManager instantiates them on first use.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fem

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontengines.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontengines.fonts")
}
