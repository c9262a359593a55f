/*
Package font is for handling font resources, independent of any rendering
engine.

There is a certain confusion in the nomenclature of font handling. We will
stick to the following definitions:

* A "font source" is where the bytes of a font come from: a file path, an
in-memory buffer, or a stream provided by a client.

* A "face" is a loaded font resource, independent of any size or transform.
Faces are owned by font engines.

* A "font instance" is a face bound to a concrete transform and set of
rendering flags.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package font

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/gofont/goregular"
)

// tracer writes to trace with key 'fontengines.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontengines.fonts")
}

// SourceKind tells which of the variants of a Source is active.
type SourceKind int8

// Kinds of font sources
const (
	NoSource SourceKind = iota
	PathSource
	BufferSource
	StreamSource
)

func (k SourceKind) String() string {
	switch k {
	case PathSource:
		return "path"
	case BufferSource:
		return "buffer"
	case StreamSource:
		return "stream"
	}
	return "none"
}

// Stream is a font resource provided by a client. Font engines read from it
// at arbitrary offsets but never close it: the client owns the stream and
// closes it (see Source.Close) once no engine operation uses it any more.
//
// A read returning zero bytes is treated as an I/O failure for the current
// operation. Stream implementations should be pointer types, as the
// identity of a stream is used for cache lookups.
type Stream interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Source is a tagged variant for the origin of a font's bytes.
// Exactly one of path, buffer or stream is set; the zero value is invalid.
type Source struct {
	kind   SourceKind
	path   string
	buffer []byte
	stream Stream
}

// FromPath creates a font source for a file.
func FromPath(path string) Source {
	return Source{kind: PathSource, path: path}
}

// FromBuffer creates a font source for font data in memory. The buffer
// must not be modified while any font engine holds a face for it.
func FromBuffer(buf []byte) Source {
	return Source{kind: BufferSource, buffer: buf}
}

// FromStream creates a font source for a client stream.
func FromStream(s Stream) Source {
	return Source{kind: StreamSource, stream: s}
}

// NewSource creates a font source from exactly one of its arguments being
// non-empty. It returns an EINVALID error otherwise.
func NewSource(path string, buf []byte, s Stream) (Source, error) {
	n := 0
	if path != "" {
		n++
	}
	if len(buf) > 0 {
		n++
	}
	if s != nil {
		n++
	}
	if n != 1 {
		return Source{}, core.Error(core.EINVALID,
			"font source must have exactly one of path, buffer or stream, has %d", n)
	}
	switch {
	case path != "":
		return FromPath(path), nil
	case len(buf) > 0:
		return FromBuffer(buf), nil
	}
	return FromStream(s), nil
}

// Kind returns the active variant.
func (src Source) Kind() SourceKind {
	return src.kind
}

// Path returns the file path of a path source, or "".
func (src Source) Path() string {
	return src.path
}

// Buffer returns the bytes of a buffer source, or nil.
func (src Source) Buffer() []byte {
	return src.buffer
}

// Stream returns the stream of a stream source, or nil.
func (src Source) Stream() Stream {
	return src.stream
}

// Validate checks that exactly one variant is populated.
func (src Source) Validate() error {
	switch src.kind {
	case PathSource:
		if src.path != "" && src.buffer == nil && src.stream == nil {
			return nil
		}
	case BufferSource:
		if len(src.buffer) > 0 && src.path == "" && src.stream == nil {
			return nil
		}
	case StreamSource:
		if src.stream != nil && src.path == "" && src.buffer == nil {
			return nil
		}
	}
	return core.Error(core.EINVALID, "invalid font source (%s)", src.kind)
}

// Key returns an identity key for a source: path equality for files, and
// pointer identity for buffers and streams.
func (src Source) Key() string {
	switch src.kind {
	case PathSource:
		return "path:" + src.path
	case BufferSource:
		if len(src.buffer) == 0 {
			return "mem:<empty>"
		}
		return fmt.Sprintf("mem:%p+%d", &src.buffer[0], len(src.buffer))
	case StreamSource:
		return fmt.Sprintf("stream:%p", src.stream)
	}
	return "none"
}

// Ext returns the lower-case file extension of a path source without the
// leading dot, or "".
func (src Source) Ext() string {
	if src.kind != PathSource {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(src.path)), ".")
}

func (src Source) String() string {
	switch src.kind {
	case PathSource:
		return filepath.Base(src.path)
	case BufferSource:
		return fmt.Sprintf("<memory %d bytes>", len(src.buffer))
	case StreamSource:
		return "<stream>"
	}
	return "<no source>"
}

// Bytes returns the complete font data of a source. For buffers, the
// buffer itself is returned. Files and streams are read into memory.
//
// Errors are core errors with codes EMISSING (no such file), EINVALID
// (invalid source) or EIO (read failure).
func (src Source) Bytes() ([]byte, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	switch src.kind {
	case BufferSource:
		return src.buffer, nil
	case PathSource:
		b, err := os.ReadFile(src.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, core.WrapError(err, core.EMISSING, "font file not found: %s", src.path)
			}
			return nil, core.WrapError(err, core.EIO, "cannot read font file %s", src.path)
		}
		if len(b) == 0 {
			return nil, core.Error(core.EIO, "font file is empty: %s", src.path)
		}
		return b, nil
	}
	return readStream(src.stream)
}

const streamChunk = 64 * 1024

func readStream(s Stream) ([]byte, error) {
	size := s.Size()
	if size <= 0 {
		return nil, core.Error(core.EIO, "font stream has no data")
	}
	b := make([]byte, size)
	for off := int64(0); off < size; {
		n := size - off
		if n > streamChunk {
			n = streamChunk
		}
		r, err := s.ReadAt(b[off:off+n], off)
		if r == 0 {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return nil, core.WrapError(err, core.EIO, "font stream read failed at offset %d", off)
		}
		off += int64(r)
	}
	tracer().Debugf("read %d bytes from font stream", size)
	return b, nil
}

// Close closes a stream source. It is a no-op for other sources.
func (src Source) Close() error {
	if src.kind == StreamSource && src.stream != nil {
		return src.stream.Close()
	}
	return nil
}

// --- Fallback font ---------------------------------------------------------

// FallbackFontName is the family name of the fallback font.
const FallbackFontName = "Go"

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() Source {
	fallbackFontLoading.Do(func() {
		fallbackFont = FromBuffer(goregular.TTF)
		tracer().Debugf("fallback font prepared (%d bytes)", len(goregular.TTF))
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
var fallbackFont Source

// NormalizeFontname creates a lookup key from a font's name or file name.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	return strings.ToLower(fname)
}
