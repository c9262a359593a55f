package fem

import (
	"sync"

	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/schuko/tracing"
)

// Manager holds an ordered list of font engines and dispatches every
// FontEngine operation to them, returning the first successful result.
// The most recently registered engine is consulted first.
//
// Manager is itself a FontEngine, named "manager". It is safe for
// concurrent use.
type Manager struct {
	sync.RWMutex
	engines *singlylinkedlist.List // of FontEngine, head is consulted first
}

var _ FontEngine = (*Manager)(nil)

// NewManager creates a manager and registers engines in the order given,
// i.e., the last engine of the argument list will be consulted first.
func NewManager(engines ...FontEngine) *Manager {
	m := &Manager{engines: singlylinkedlist.New()}
	for _, e := range engines {
		m.Register(e)
	}
	return m
}

// Register adds an engine at the head of the call order. Engines with a name
// already present are ignored.
func (m *Manager) Register(e FontEngine) {
	if e == nil {
		tracer().Errorf("font engine manager cannot register null engine")
		return
	}
	m.Lock()
	defer m.Unlock()
	if i, _ := m.engines.Find(byName(e.Name())); i >= 0 {
		tracer().Errorf("font engine %q already registered", e.Name())
		return
	}
	m.engines.Prepend(e)
	tracer().Infof("registered font engine %q", e.Name())
}

// Engine returns the engine registered with a given name, or nil.
func (m *Manager) Engine(name string) FontEngine {
	m.RLock()
	defer m.RUnlock()
	if _, e := m.engines.Find(byName(name)); e != nil {
		return e.(FontEngine)
	}
	return nil
}

// Engines returns the names of all engines in call order.
func (m *Manager) Engines() []string {
	engines := m.snapshot()
	names := make([]string, len(engines))
	for i, e := range engines {
		names[i] = e.Name()
	}
	return names
}

// Count returns the number of registered engines.
func (m *Manager) Count() int {
	m.RLock()
	defer m.RUnlock()
	return m.engines.Size()
}

// LogEngineList is a helper function to dump the list of engines to the
// trace (log-level Info).
func (m *Manager) LogEngineList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- font engines ---")
	for i, name := range m.Engines() {
		tracer().Infof("engine [%d] = %s", i, name)
	}
	tracer().Infof("--------------------")
	tracer().SetTraceLevel(level)
}

// snapshot copies the engine list, so dispatch does not hold the lock while
// calling into engines.
func (m *Manager) snapshot() []FontEngine {
	m.RLock()
	defer m.RUnlock()
	engines := make([]FontEngine, 0, m.engines.Size())
	m.engines.Each(func(_ int, v interface{}) {
		engines = append(engines, v.(FontEngine))
	})
	return engines
}

func byName(name string) func(int, interface{}) bool {
	return func(_ int, v interface{}) bool {
		return v.(FontEngine).Name() == name
	}
}

// --- Dispatch --------------------------------------------------------------

// Name returns "manager".
func (m *Manager) Name() string {
	return "manager"
}

// Capabilities returns the first non-empty capability set of any engine.
func (m *Manager) Capabilities(req *ScalerRequest) Capability {
	for _, e := range m.snapshot() {
		if c := e.Capabilities(req); c != 0 {
			return c
		}
	}
	return CanRenderMono
}

// CreateScaler returns a scaler from the first engine able to create one.
func (m *Manager) CreateScaler(req *ScalerRequest) Scaler {
	if err := req.Validate(); err != nil {
		tracer().Errorf("cannot create scaler: %v", err)
		return nil
	}
	for _, e := range m.snapshot() {
		if s := e.CreateScaler(req); s != nil {
			tracer().Debugf("engine %q created scaler for %s", e.Name(), req.Source)
			return s
		}
		tracer().Debugf("engine %q failed to create scaler for %s", e.Name(), req.Source)
	}
	tracer().Errorf("no font engine can create a scaler for %s", req.Source)
	return nil
}

// NameAndStyle returns the first non-empty name found by any engine.
func (m *Manager) NameAndStyle(src font.Source, maxLen int) (string, FontStyle, bool) {
	for _, e := range m.snapshot() {
		if name, style, fixed := e.NameAndStyle(src, maxLen); name != "" {
			return name, style, fixed
		}
	}
	return "", StyleNormal, false
}

// SupportsFormat is true if any engine supports the font.
func (m *Manager) SupportsFormat(src font.Source, load bool) bool {
	for _, e := range m.snapshot() {
		if e.SupportsFormat(src, load) {
			return true
		}
	}
	return false
}

// UnitsPerEm returns the first non-zero value of any engine.
func (m *Manager) UnitsPerEm(src font.Source) uint32 {
	for _, e := range m.snapshot() {
		if upem := e.UnitsPerEm(src); upem != 0 {
			return upem
		}
	}
	return 0
}

// CanEmbed is true if any engine allows the font to be embedded.
func (m *Manager) CanEmbed(src font.Source) bool {
	for _, e := range m.snapshot() {
		if e.CanEmbed(src) {
			return true
		}
	}
	return false
}

// GlyphAdvances returns the advances of the first engine reporting success.
// If all engines fail, the error code of the last one is returned.
func (m *Manager) GlyphAdvances(src font.Source, start, count int) ([]fixedpt.F16Dot16, ErrCode) {
	errCode := ErrCannotOpen
	for _, e := range m.snapshot() {
		var adv []fixedpt.F16Dot16
		if adv, errCode = e.GlyphAdvances(src, start, count); errCode == ErrOK {
			return adv, ErrOK
		}
	}
	return nil, errCode
}

// GlyphNames returns the glyph names of the first engine reporting success.
func (m *Manager) GlyphNames(src font.Source, start, count int) ([]string, ErrCode) {
	errCode := ErrCannotOpen
	for _, e := range m.snapshot() {
		var names []string
		if names, errCode = e.GlyphNames(src, start, count); errCode == ErrOK {
			return names, ErrOK
		}
	}
	return nil, errCode
}

// GlyphUnicodes returns the code points of the first engine reporting success.
func (m *Manager) GlyphUnicodes(src font.Source, start, count int) ([]rune, ErrCode) {
	errCode := ErrCannotOpen
	for _, e := range m.snapshot() {
		var runes []rune
		if runes, errCode = e.GlyphUnicodes(src, start, count); errCode == ErrOK {
			return runes, ErrOK
		}
	}
	return nil, errCode
}

// AdvancedMetrics returns the metrics of the first engine able to produce them.
func (m *Manager) AdvancedMetrics(src font.Source) *AdvancedTypefaceMetrics {
	for _, e := range m.snapshot() {
		if atm := e.AdvancedMetrics(src); atm != nil {
			return atm
		}
	}
	return nil
}

// --- Discovery -------------------------------------------------------------

// EngineFactory creates a font engine. It may return nil if the engine is
// not available.
type EngineFactory func() FontEngine

type discoveredEngine struct {
	name    string
	factory EngineFactory
}

var discovery struct {
	sync.Mutex
	list []discoveredEngine
}

// RegisterDiscovery adds an engine factory to the static list of engines
// GlobalManager will load. Discovery order is the order of calls, thus the
// engine registered last will be consulted first.
//
// Factories registered after the first call to GlobalManager are ignored.
func RegisterDiscovery(name string, factory EngineFactory) {
	if factory == nil {
		return
	}
	discovery.Lock()
	defer discovery.Unlock()
	discovery.list = append(discovery.list, discoveredEngine{name: name, factory: factory})
}

// Discovered returns the names of all engine factories in discovery order.
func Discovered() []string {
	discovery.Lock()
	defer discovery.Unlock()
	names := make([]string, len(discovery.list))
	for i, d := range discovery.list {
		names[i] = d.name
	}
	return names
}

var globalManager *Manager

var globalManagerCreation sync.Once

// GlobalManager is an application-wide singleton holding all discovered
// font engines. It is created on first use and never torn down.
func GlobalManager() *Manager {
	globalManagerCreation.Do(func() {
		discovery.Lock()
		list := make([]discoveredEngine, len(discovery.list))
		copy(list, discovery.list)
		discovery.Unlock()
		globalManager = NewManager()
		for _, d := range list {
			if e := d.factory(); e != nil {
				globalManager.Register(e)
			} else {
				tracer().Errorf("font engine %q not available", d.name)
			}
		}
	})
	return globalManager
}
