/*
Command femcli is an interactive shell for inspecting font engines.

It loads a font, configures a scaler request and queries the engines
registered with the global font engine manager. Glyphs may be rendered as
ASCII art. Enter "help" for a list of commands.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	_ "github.com/npillmayer/fontengines/core/font/rasterengine/sfntbackend"
	_ "github.com/npillmayer/fontengines/core/font/rasterengine/ttbackend"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'fontengines.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontengines.fonts")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "Go", "Font to load")
	engine := flag.String("engine", "", "Restrict to a single font engine [sfnt|freetype]")
	size := flag.String("size", "16px", "Font size, e.g. 16px or 12pt")
	dpi := flag.Int("dpi", 72, "Resolution in dots per inch")
	fontconfig := flag.String("fontconfig", "", "Absolute path of fc-list binary")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":             "go",
		"trace.fontengines.fonts":     *tlevel,
		"trace.fontengines.resources": *tlevel,
		"app-key":                     "femcli",
		"dpi":                         *dpi,
	}
	if *fontconfig != "" {
		conf["fontconfig"] = *fontconfig
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the font engine CLI") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	intp, err := NewIntp(conf, *engine)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	defer intp.Close()
	if err := intp.Execute("size " + *size); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	if err := intp.Execute("load " + *fontname); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(4)
	}
	//
	// set up REPL
	repl, err := readline.New("fem > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(5)
	}
	defer repl.Close()
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL(repl)                         // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
