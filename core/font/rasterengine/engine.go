package rasterengine

import (
	"strings"
	"sync"

	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/gconf"
)

// Configuration keys of an engine.
const (
	ConfLCDSupport  = "lcd-support"  // bool, default true
	ConfLCDLerp     = "lcd-lerp"     // int 0…256, default fixedpt.DefaultLCDLerp
	ConfFontFormats = "font-formats" // comma separated file extensions, default "ttf"
)

// DefaultFontFormats are the file extensions an engine accepts if not
// configured otherwise.
const DefaultFontFormats = "ttf"

// Engine is a font engine on top of a rasterizer backend. It implements
// fem.FontEngine and is safe for concurrent use.
type Engine struct {
	sync.Mutex
	name       string
	backend    Backend
	lcdSupport bool
	lcdLerp    int
	formats    []string
	fonts      *singlylinkedlist.List // of *cachedFont, most recent first
	lib        libraryState
}

var _ fem.FontEngine = (*Engine)(nil)

// New creates an engine for a backend. The engine takes the name of the
// backend. conf may be nil, in which case the global configuration is
// consulted.
func New(backend Backend, conf schuko.Configuration) *Engine {
	if conf == nil {
		conf = globalConfig{}
	}
	e := &Engine{
		name:    backend.Name(),
		backend: backend,
		fonts:   singlylinkedlist.New(),
	}
	e.lcdSupport = backend.SupportsLCD()
	if conf.IsSet(ConfLCDSupport) && !conf.GetBool(ConfLCDSupport) {
		e.lcdSupport = false
	}
	e.lcdLerp = fixedpt.DefaultLCDLerp
	if conf.IsSet(ConfLCDLerp) {
		if l := conf.GetInt(ConfLCDLerp); l >= 0 && l <= 256 {
			e.lcdLerp = l
		} else {
			tracer().Errorf("%s: ignoring %s = %d, must be in 0…256", e.name, ConfLCDLerp, l)
		}
	}
	formats := DefaultFontFormats
	if conf.IsSet(ConfFontFormats) && conf.GetString(ConfFontFormats) != "" {
		formats = conf.GetString(ConfFontFormats)
	}
	for _, f := range strings.Split(formats, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			e.formats = append(e.formats, strings.TrimPrefix(f, "."))
		}
	}
	tracer().Debugf("engine %s: lcd=%v lerp=%d formats=%v", e.name, e.lcdSupport, e.lcdLerp, e.formats)
	return e
}

// Name returns the name of the engine.
func (e *Engine) Name() string {
	return e.name
}

// LCDSupport is true if the engine renders LCD targets.
func (e *Engine) LCDSupport() bool {
	return e.lcdSupport
}

// Capabilities returns gray rendering, plus LCD rendering if the backend
// supports it and it is not switched off by configuration.
func (e *Engine) Capabilities(req *fem.ScalerRequest) fem.Capability {
	c := fem.CanRenderGray
	if e.lcdSupport {
		c |= fem.CanRenderLCD
	}
	return c
}

// CreateScaler returns a scaler for a request, or nil if the font cannot be
// loaded or the size cannot be set up.
func (e *Engine) CreateScaler(req *fem.ScalerRequest) fem.Scaler {
	if err := req.Validate(); err != nil {
		tracer().Errorf("%s: %v", e.name, err)
		return nil
	}
	e.Lock()
	defer e.Unlock()
	f, err := e.acquireFont(req.Source)
	if err != nil {
		tracer().Errorf("%s: cannot load font %s: %v", e.name, req.Source, err)
		return nil
	}
	inst, err := e.acquireInstance(f, req)
	if err != nil {
		tracer().Errorf("%s: %v", e.name, err)
		return nil
	}
	return &scaler{
		engine:   e,
		inst:     inst,
		subpixel: req.SubpixelPositioning,
		mask:     req.MaskFormat,
	}
}

// --- Configuration ---------------------------------------------------------

// globalConfig routes configuration queries to the global configuration.
type globalConfig struct{}

func (globalConfig) InitDefaults()               {}
func (globalConfig) IsSet(key string) bool       { return gconf.IsSet(key) }
func (globalConfig) GetString(key string) string { return gconf.GetString(key) }
func (globalConfig) GetInt(key string) int       { return gconf.GetInt(key) }
func (globalConfig) GetBool(key string) bool     { return gconf.GetBool(key) }
func (globalConfig) IsInteractive() bool         { return gconf.IsInteractive() }
