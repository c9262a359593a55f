package rasterengine

import (
	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/opentype/ot"
)

// --- Fonts -----------------------------------------------------------------

// cachedFont is a face loaded by the backend, shared by all instances for
// the same font source.
type cachedFont struct {
	key       string
	src       font.Source
	data      []byte
	face      Face
	otf       *ot.Font
	refs      int                    // instances and probes holding the font
	instances *singlylinkedlist.List // of *cachedInstance, most recent first
}

func (f *cachedFont) String() string {
	return f.src.String()
}

// cachedInstance is a font bound to a resolved transform and instance flags.
// It owns a size of the backend face.
type cachedInstance struct {
	key  instanceKey
	font *cachedFont
	size Size
	refs int // scalers
}

// libraryState tracks the lifecycle of the backend library.
type libraryState struct {
	live  bool
	fonts int // number of live fonts
	inits int // number of calls to Backend.Init
}

// Stats is a snapshot of the cache state of an engine.
type Stats struct {
	Fonts        int  // live fonts
	Instances    int  // live font instances
	Scalers      int  // open scalers
	LibraryLive  bool // backend library is initialized
	LibraryInits int  // number of library initializations so far
}

// Stats returns the current cache state.
func (e *Engine) Stats() Stats {
	e.Lock()
	defer e.Unlock()
	st := Stats{
		Fonts:        e.fonts.Size(),
		LibraryLive:  e.lib.live,
		LibraryInits: e.lib.inits,
	}
	e.fonts.Each(func(_ int, v interface{}) {
		f := v.(*cachedFont)
		st.Instances += f.instances.Size()
		f.instances.Each(func(_ int, w interface{}) {
			st.Scalers += w.(*cachedInstance).refs
		})
	})
	return st
}

func (e *Engine) initLibrary() error {
	if e.lib.live {
		return nil
	}
	if err := e.backend.Init(); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot initialize %s library", e.backend.Name())
	}
	e.lib.live = true
	e.lib.inits++
	tracer().Infof("%s library initialized (#%d)", e.backend.Name(), e.lib.inits)
	return nil
}

func (e *Engine) doneLibrary() {
	if !e.lib.live {
		return
	}
	e.backend.Done()
	e.lib.live = false
	tracer().Infof("%s library shut down", e.backend.Name())
}

// acquireFont finds or loads the font for a source and increments its
// reference count. The engine must be locked.
func (e *Engine) acquireFont(src font.Source) (*cachedFont, error) {
	key := src.Key()
	if _, v := e.fonts.Find(fontWithKey(key)); v != nil {
		f := v.(*cachedFont)
		f.refs++
		return f, nil
	}
	if e.lib.fonts == 0 {
		if err := e.initLibrary(); err != nil {
			return nil, err
		}
	}
	f, err := e.openFont(src)
	if err != nil {
		if e.lib.fonts == 0 {
			e.doneLibrary()
		}
		return nil, err
	}
	f.refs = 1
	e.fonts.Prepend(f)
	e.lib.fonts++
	tracer().Infof("font %s loaded by %s", f, e.name)
	return f, nil
}

func (e *Engine) openFont(src font.Source) (*cachedFont, error) {
	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}
	otf, err := ot.Parse(data)
	if err != nil {
		return nil, err
	}
	face, err := e.backend.OpenFace(data)
	if err != nil {
		return nil, err
	}
	return &cachedFont{
		key:       src.Key(),
		src:       src,
		data:      data,
		face:      face,
		otf:       otf,
		instances: singlylinkedlist.New(),
	}, nil
}

// releaseFont decrements the reference count of a font. The last release
// closes the face and, if it was the last font, shuts down the library.
// Stream sources stay open; they belong to the client.
// The engine must be locked.
func (e *Engine) releaseFont(f *cachedFont) {
	core.Assert(f.refs > 0, "font %s released too often", f)
	f.refs--
	if f.refs > 0 {
		return
	}
	core.Assert(f.instances.Empty(), "font %s released with live instances", f)
	i := e.fonts.IndexOf(f)
	core.Assert(i >= 0, "font %s not found in font cache", f)
	e.fonts.Remove(i)
	if err := f.face.Close(); err != nil {
		tracer().Errorf("closing face of %s: %v", f, err)
	}
	tracer().Infof("font %s released", f)
	e.lib.fonts--
	core.Assert(e.lib.fonts >= 0, "font count underflow")
	if e.lib.fonts == 0 {
		e.doneLibrary()
	}
}

func fontWithKey(key string) func(int, interface{}) bool {
	return func(_ int, v interface{}) bool {
		return v.(*cachedFont).key == key
	}
}

// --- Instances -------------------------------------------------------------

// acquireInstance finds or creates the instance of a font for a request and
// increments its reference count. It takes over the caller's reference to
// the font: a new instance keeps it, otherwise it is released. The engine
// must be locked.
func (e *Engine) acquireInstance(f *cachedFont, req *fem.ScalerRequest) (*cachedInstance, error) {
	key := instanceKey{
		transform: resolveTransform(req, e.lcdSupport),
		flags:     req.Flags,
	}
	if _, v := f.instances.Find(instanceWithKey(key)); v != nil {
		inst := v.(*cachedInstance)
		inst.refs++
		e.releaseFont(f)
		return inst, nil
	}
	size, err := f.face.NewSize(key.scaleX, key.scaleY)
	if err != nil {
		e.releaseFont(f)
		return nil, core.WrapError(err, core.EINTERNAL, "cannot create size %s×%s for %s",
			key.scaleX, key.scaleY, f)
	}
	if err = f.face.Activate(size); err != nil {
		size.Done()
		e.releaseFont(f)
		return nil, core.WrapError(err, core.EINTERNAL, "cannot activate size for %s", f)
	}
	inst := &cachedInstance{key: key, font: f, size: size, refs: 1}
	f.instances.Prepend(inst)
	tracer().Infof("font instance %s %s scale=(%s,%s) %s created", f, key.matrix,
		key.scaleX, key.scaleY, key.loadFlags)
	return inst, nil
}

// releaseInstance decrements the reference count of an instance. The last
// release destroys the instance and releases its font. The engine must be
// locked.
func (e *Engine) releaseInstance(inst *cachedInstance) {
	f := inst.font
	core.Assert(inst.refs > 0, "font instance of %s released too often", f)
	inst.refs--
	if inst.refs > 0 {
		return
	}
	i := f.instances.IndexOf(inst)
	core.Assert(i >= 0, "font instance not found in instance list of %s", f)
	f.instances.Remove(i)
	inst.size.Done()
	tracer().Infof("font instance of %s released", f)
	e.releaseFont(f)
}

// activate makes the instance's size the active size of the face.
func (inst *cachedInstance) activate() error {
	return inst.font.face.Activate(inst.size)
}

func instanceWithKey(key instanceKey) func(int, interface{}) bool {
	return func(_ int, v interface{}) bool {
		return v.(*cachedInstance).key == key
	}
}
