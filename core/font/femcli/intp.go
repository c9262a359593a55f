package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/dimen"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/rasterengine"
	"github.com/npillmayer/fontengines/core/locate/resources"
	"github.com/npillmayer/schuko"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object. It holds a scaler request which is edited
// by commands, and a scaler created from it on demand.
type Intp struct {
	conf    schuko.Configuration
	manager *fem.Manager
	req     *fem.ScalerRequest
	scaler  fem.Scaler
}

// NewIntp creates an interpreter on top of the global font engine manager.
// If engine is not empty, only the engine of that name is used.
func NewIntp(conf schuko.Configuration, engine string) (*Intp, error) {
	m := fem.GlobalManager()
	if engine != "" {
		e := m.Engine(engine)
		if e == nil {
			return nil, core.Error(core.EMISSING, "no font engine %q, have %v", engine, m.Engines())
		}
		m = fem.NewManager(e)
	}
	return &Intp{
		conf:    conf,
		manager: m,
		req:     fem.NewRequest(font.FallbackFont(), fixedpt.Int16Dot16(16)),
	}, nil
}

// Close releases the current scaler.
func (intp *Intp) Close() {
	intp.invalidate()
}

// REPL starts interactive mode.
func (intp *Intp) REPL(repl *readline.Instance) {
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		err = intp.Execute(line)
		if errors.Is(err, errQuit) {
			break
		} else if err != nil {
			pterm.Error.Println(err.Error())
		}
	}
	pterm.Info.Println("Good bye!")
}

var errQuit = errors.New("quit")

// Command is a parsed input line.
type Command struct {
	code int
	args []string
}

// Command codes
const (
	QUIT int = iota
	HELP
	ENGINES
	FONTS
	LOAD
	SIZE
	HINTING
	MASK
	SKEW
	EMBOLDEN
	GLYPH
	RENDER
	OUTLINE
	METRICS
	ADVANCED
	NAMES
	STATS
)

var commandNames = map[string]int{
	"quit": QUIT, "exit": QUIT, "help": HELP, "engines": ENGINES, "fonts": FONTS,
	"load": LOAD, "size": SIZE, "hinting": HINTING, "mask": MASK, "skew": SKEW,
	"embolden": EMBOLDEN, "glyph": GLYPH, "render": RENDER, "outline": OUTLINE,
	"metrics": METRICS, "advanced": ADVANCED, "names": NAMES, "stats": STATS,
}

func parseCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, core.Error(core.EINVALID, "empty command")
	}
	code, ok := commandNames[strings.ToLower(fields[0])]
	if !ok {
		return &Command{code: HELP}, core.Error(core.EINVALID, "unknown command %q", fields[0])
	}
	cmd := &Command{code: code, args: fields[1:]}
	tracer().Debugf("parse command = %v", cmd)
	return cmd, nil
}

func (cmd *Command) arg(i int) string {
	if len(cmd.args) > i {
		return cmd.args[i]
	}
	return ""
}

// Execute parses and runs a single command line.
func (intp *Intp) Execute(line string) error {
	cmd, err := parseCommand(line)
	if err != nil {
		if cmd != nil {
			help()
		}
		return err
	}
	switch cmd.code {
	case QUIT:
		return errQuit
	case HELP:
		help()
	case ENGINES:
		return renderTable(intp.engineTable())
	case FONTS:
		for _, path := range resources.SystemFonts() {
			if strings.Contains(strings.ToLower(path), strings.ToLower(cmd.arg(0))) {
				pterm.Println(path)
			}
		}
	case LOAD:
		return intp.load(strings.Join(cmd.args, " "))
	case SIZE, HINTING, MASK, SKEW, EMBOLDEN:
		if err := intp.configure(cmd); err != nil {
			return err
		}
		pterm.Printfln("%s", intp.req)
	case GLYPH:
		s, gid, err := intp.glyph(cmd.arg(0))
		if err != nil {
			return err
		}
		pterm.Printfln("glyph %d: metrics %s", gid, s.GlyphMetrics(gid, 0, 0))
	case RENDER:
		s, gid, err := intp.glyph(cmd.arg(0))
		if err != nil {
			return err
		}
		gm := s.GlyphMetrics(gid, 0, 0)
		img := fem.NewGlyphImage(gm, intp.req.MaskFormat)
		s.GlyphImage(gid, 0, 0, img)
		pterm.Println(asciiArt(img))
	case OUTLINE:
		s, gid, err := intp.glyph(cmd.arg(0))
		if err != nil {
			return err
		}
		o := s.GlyphOutline(gid, 0, 0)
		if o == nil {
			return core.Error(core.EINVALID, "glyph %d has no outline", gid)
		}
		pterm.Println(describeOutline(o))
	case METRICS:
		s, err := intp.currentScaler()
		if err != nil {
			return err
		}
		mx, my := s.FontMetrics()
		return renderTable(metricsTable(mx, my))
	case ADVANCED:
		atm := intp.manager.AdvancedMetrics(intp.req.Source)
		if atm == nil {
			return core.Error(core.EUNSUPPORTED, "no advanced metrics for %s", intp.req.Source)
		}
		pterm.Printfln("%+v", *atm)
	case NAMES:
		start, _ := strconv.Atoi(cmd.arg(0))
		count, err := strconv.Atoi(cmd.arg(1))
		if err != nil {
			count = 10
		}
		names, ecode := intp.manager.GlyphNames(intp.req.Source, start, count)
		if ecode != fem.ErrOK {
			return core.Error(core.EINVALID, "glyph names not available (error code %d)", ecode)
		}
		for i, name := range names {
			pterm.Printfln("%5d  %s", start+i, name)
		}
	case STATS:
		return renderTable(intp.statsTable())
	}
	return nil
}

// --- Settings --------------------------------------------------------------

func (intp *Intp) load(name string) error {
	src, err := resources.ResolveFontSource(intp.conf, name).Source()
	if err != nil && core.Code(err) != core.EMISSING {
		return err
	} else if err != nil {
		pterm.Warning.Println(core.UserMessage(err))
	}
	if !intp.manager.SupportsFormat(src, true) {
		return core.Error(core.EUNSUPPORTED, "no font engine can load %s", src)
	}
	intp.invalidate()
	intp.req.Source = src
	family, style, fixedWidth := intp.manager.NameAndStyle(src, 64)
	pterm.Printfln("loaded %s: %s (%s), fixed width = %v, %d units per em",
		src, family, style, fixedWidth, intp.manager.UnitsPerEm(src))
	return nil
}

func (intp *Intp) configure(cmd *Command) error {
	switch cmd.code {
	case SIZE:
		d, err := dimen.ParseDimen(cmd.arg(0))
		if err != nil {
			return err
		}
		size := d.Pixels(intp.dpi())
		if size <= 0 {
			return core.Error(core.EINVALID, "size must be positive: %q", cmd.arg(0))
		}
		intp.req.ScaleX, intp.req.ScaleY = size, size
	case HINTING:
		h, ok := parseName(cmd.arg(0), []string{"none", "light", "normal", "full"})
		if !ok {
			return core.Error(core.EINVALID, "unknown hinting %q", cmd.arg(0))
		}
		intp.req.SetHinting(fem.Hinting(h))
	case MASK:
		m, ok := parseName(cmd.arg(0), []string{"mono", "gray", "lcd", "lcdv", "lcd16"})
		if !ok {
			return core.Error(core.EINVALID, "unknown mask format %q", cmd.arg(0))
		}
		intp.req.MaskFormat = fem.AliasMode(m)
	case SKEW:
		x, errx := strconv.ParseFloat(cmd.arg(0), 64)
		y, erry := strconv.ParseFloat(cmd.arg(1), 64)
		if errx != nil || erry != nil {
			return core.Error(core.EINVALID, "skew needs two numbers")
		}
		intp.req.SkewX, intp.req.SkewY = fixedpt.FromFloat(x), fixedpt.FromFloat(y)
	case EMBOLDEN:
		switch cmd.arg(0) {
		case "on":
			intp.req.Flags |= fem.FlagEmbolden
		case "off":
			intp.req.Flags &^= fem.FlagEmbolden
		default:
			return core.Error(core.EINVALID, "embolden on|off")
		}
	}
	intp.invalidate()
	return nil
}

// dpi is the resolution for converting sizes to pixels, configured as 'dpi'.
func (intp *Intp) dpi() int {
	if dpi := intp.conf.GetInt("dpi"); dpi > 0 {
		return dpi
	}
	return dimen.DefaultDPI
}

func parseName(s string, names []string) (int, bool) {
	for i, n := range names {
		if strings.EqualFold(s, n) {
			return i, true
		}
	}
	return 0, false
}

func (intp *Intp) invalidate() {
	if intp.scaler != nil {
		intp.scaler.Close()
		intp.scaler = nil
	}
}

func (intp *Intp) currentScaler() (fem.Scaler, error) {
	if intp.scaler == nil {
		if intp.scaler = intp.manager.CreateScaler(intp.req); intp.scaler == nil {
			return nil, core.Error(core.EUNSUPPORTED, "no font engine accepts %s", intp.req)
		}
	}
	return intp.scaler, nil
}

// glyph maps a character, or a glyph index written as #n, to a glyph id.
func (intp *Intp) glyph(arg string) (fem.Scaler, uint16, error) {
	s, err := intp.currentScaler()
	if err != nil {
		return nil, 0, err
	}
	if strings.HasPrefix(arg, "#") && len(arg) > 1 {
		n, err := strconv.Atoi(arg[1:])
		if err != nil || n < 0 || n >= s.GlyphCount() {
			return nil, 0, core.Error(core.EINVALID, "invalid glyph index %q", arg)
		}
		return s, uint16(n), nil
	}
	r := []rune(arg)
	if len(r) != 1 {
		return nil, 0, core.Error(core.EINVALID, "need a single character, have %q", arg)
	}
	gid := s.CharToGlyphID(r[0])
	if gid == 0 {
		pterm.Warning.Printfln("%q is not mapped", r[0])
	}
	return s, gid, nil
}

// --- Output ----------------------------------------------------------------

func renderTable(data pterm.TableData) error {
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) engineTable() pterm.TableData {
	data := pterm.TableData{{"engine", "capabilities"}}
	for _, name := range intp.manager.Engines() {
		caps := "gray"
		if intp.manager.Engine(name).Capabilities(intp.req)&fem.CanRenderLCD != 0 {
			caps += ", lcd"
		}
		data = append(data, []string{name, caps})
	}
	return data
}

func (intp *Intp) statsTable() pterm.TableData {
	data := pterm.TableData{{"engine", "fonts", "instances", "scalers", "library"}}
	for _, name := range intp.manager.Engines() {
		e, ok := intp.manager.Engine(name).(*rasterengine.Engine)
		if !ok {
			continue
		}
		st := e.Stats()
		lib := fmt.Sprintf("down (%d inits)", st.LibraryInits)
		if st.LibraryLive {
			lib = fmt.Sprintf("up (%d inits)", st.LibraryInits)
		}
		data = append(data, []string{name, strconv.Itoa(st.Fonts), strconv.Itoa(st.Instances),
			strconv.Itoa(st.Scalers), lib})
	}
	return data
}

func metricsTable(mx, my fem.FontMetrics) pterm.TableData {
	row := func(name string, x, y fixedpt.F16Dot16) []string {
		return []string{name, x.String(), y.String()}
	}
	return pterm.TableData{
		{"metric", "x", "y"},
		row("top", mx.Top, my.Top),
		row("ascent", mx.Ascent, my.Ascent),
		row("descent", mx.Descent, my.Descent),
		row("bottom", mx.Bottom, my.Bottom),
		row("leading", mx.Leading, my.Leading),
		row("avg char width", mx.AvgCharWidth, my.AvgCharWidth),
		row("x min", mx.XMin, my.XMin),
		row("x max", mx.XMax, my.XMax),
		row("x height", mx.XHeight, my.XHeight),
	}
}

const shades = " .+#"

// asciiArt draws a glyph image with one character per pixel. Subpixel
// formats are shown by their average coverage.
func asciiArt(img *fem.GlyphImage) string {
	var b strings.Builder
	for y := 0; y < img.Height; y++ {
		row := img.Pixels[y*img.RowBytes:]
		for x := 0; x < img.Width; x++ {
			var cov int
			switch img.Format {
			case fem.AliasMono:
				if row[x>>3]&(0x80>>(x&7)) != 0 {
					cov = 0xff
				}
			case fem.AliasLCD16:
				r, g, bl := fixedpt.UnpackRGB16(binary.LittleEndian.Uint16(row[2*x:]))
				cov = int(r<<3+g<<2+bl<<3) / 3
			default:
				cov = int(row[x])
			}
			b.WriteByte(shades[cov*len(shades)/256])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func describeOutline(o *fem.GlyphOutline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d contours, %d points\n", o.ContourCount(), o.PointCount())
	first := 0
	for c, end := range o.Contours {
		fmt.Fprintf(&b, "contour %d:", c)
		for i := first; i <= int(end) && i < o.PointCount(); i++ {
			p := o.Points[i]
			kind := "on"
			if o.Tags[i]&fem.TagOnCurve == 0 {
				kind = "off"
				if o.Tags[i]&fem.TagCubic != 0 {
					kind = "cubic"
				}
			}
			fmt.Fprintf(&b, " (%.2f,%.2f %s)", float64(p.X)/64, float64(p.Y)/64, kind)
		}
		b.WriteByte('\n')
		first = int(end) + 1
	}
	return b.String()
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	engines                     list font engines
	fonts [pattern]             list system fonts
	load <name|path>            load a font
	size <dimen>                set the font size, e.g. 16, 12pt or 4mm
	hinting <none|light|normal|full>
	mask <mono|gray|lcd|lcdv|lcd16>
	skew <x> <y>                set the skew of the transform
	embolden <on|off>           synthetic emboldening
	glyph <char|#gid>           show glyph metrics
	render <char|#gid>          render a glyph
	outline <char|#gid>         show a glyph outline
	metrics                     show font-wide metrics
	advanced                    show typeface metrics for embedding
	names [start] [count]       list glyph names
	stats                       show cache statistics
	quit
	`)
}
