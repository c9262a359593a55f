package resources

import (
	"context"
	"fmt"
	"os"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/gconf"
)

// NotFound returns an application error for a missing font.
func NotFound(name string) error {
	e := fmt.Errorf("resource missing: %v", name)
	return core.WrapError(e, core.EMISSING, "font not found: %s, using fallback font instead", name)
}

// --- Fonts -----------------------------------------------------------------

type sourcePlusErr struct {
	src font.Source
	err error
}

// SourcePromise delivers a font source once it has been resolved.
type SourcePromise interface {
	Source() (font.Source, error)
	SourceContext(ctx context.Context) (font.Source, error)
}

type sourceLoader struct {
	await func(ctx context.Context) (font.Source, error)
}

func (loader sourceLoader) Source() (font.Source, error) {
	return loader.await(context.Background())
}

func (loader sourceLoader) SourceContext(ctx context.Context) (font.Source, error) {
	return loader.await(ctx)
}

// ResolveFontSource resolves a font name or path to a font source.
// If no font can be found, the promise delivers the fallback font together
// with an error of code core.EMISSING. conf may be nil, in which case the
// global configuration is used.
func ResolveFontSource(conf schuko.Configuration, name string) SourcePromise {
	if conf == nil {
		conf = globalConfig{}
	}
	ch := make(chan sourcePlusErr, 1)
	go func(ch chan<- sourcePlusErr) {
		src, err := resolve(conf, name)
		ch <- sourcePlusErr{src: src, err: err}
		close(ch)
	}(ch)
	return sourceLoader{
		await: func(ctx context.Context) (font.Source, error) {
			select {
			case <-ctx.Done():
				return font.Source{}, ctx.Err()
			case r := <-ch:
				return r.src, r.err
			}
		},
	}
}

func resolve(conf schuko.Configuration, name string) (font.Source, error) {
	if name == "" {
		return font.FallbackFont(), NotFound(name)
	}
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		tracer().Debugf("font %s is a file", name)
		return font.FromPath(name), nil
	}
	if conf.IsSet("fontconfig") {
		if path, ok := findFontConfigFont(conf, name); ok {
			tracer().Debugf("font %s found by fontconfig: %s", name, path)
			return font.FromPath(path), nil
		}
	}
	if font.NormalizeFontname(name) == font.NormalizeFontname(font.FallbackFontName) {
		return font.FallbackFont(), nil
	}
	if path, err := findfont.Find(name); err == nil && path != "" {
		tracer().Debugf("%s is a system font: %s", name, path)
		return font.FromPath(path), nil
	}
	tracer().Infof("font %s not found, using fallback font", name)
	return font.FallbackFont(), NotFound(name)
}

// SystemFonts lists the font files found in platform font directories.
func SystemFonts() []string {
	return findfont.List()
}

// globalConfig routes configuration queries to the global configuration.
type globalConfig struct{}

func (globalConfig) InitDefaults()               {}
func (globalConfig) IsSet(key string) bool       { return gconf.IsSet(key) }
func (globalConfig) GetString(key string) string { return gconf.GetString(key) }
func (globalConfig) GetInt(key string) int       { return gconf.GetInt(key) }
func (globalConfig) GetBool(key string) bool     { return gconf.GetBool(key) }
func (globalConfig) IsInteractive() bool         { return gconf.IsInteractive() }
