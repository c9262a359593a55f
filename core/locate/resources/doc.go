/*
Package resources resolves font sources for font engines.

As resource loading may be a time-consuming task, functions in this package
work in an async/await fashion by returning a promise. Functions named

	Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

Font names are resolved in this order: an existing file path, a fontconfig
font list (if configured), platform font directories (via go-findfont), and
finally the fallback font of package font.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'fontengines.resources'.
func tracer() tracing.Trace {
	return tracing.Select("fontengines.resources")
}
