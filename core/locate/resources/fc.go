package resources

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/schuko"
)

// fcEntry is a font file listed by fontconfig.
type fcEntry struct {
	Families []string // normalized family names
	Path     string
	Variant  string
}

func findFontConfigBinary(conf schuko.Configuration) (path string, err error) {
	path = conf.GetString("fontconfig")
	if path == "" {
		tracer().Infof("fontconfig not configured: key 'fontconfig' should point location of 'fc-list' binary")
		err = errors.New("fontconfig not configured")
	}
	return
}

func cacheFontConfigList(conf schuko.Configuration, update bool) (string, bool) {
	fcpath, err := findFontConfigBinary(conf)
	if err != nil {
		return "", false
	}
	dir, err := CacheDirPath(conf)
	if err != nil {
		tracer().Errorf("cannot cache fontconfig list: %v", err)
		return "", false
	}
	fcListFilename := filepath.Join(dir, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil && !update {
		return fcListFilename, true
	}
	if !filepath.IsAbs(fcpath) {
		err = core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", fcpath)
		core.UserError(err)
		return "", false
	}
	if fi, err := os.Stat(fcpath); err != nil || (fi.Mode().Perm()&0100) == 0 {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig configuration points to an invalid binary: %s", fcpath)
		core.UserError(err)
		return "", false
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err == nil {
		defer fontlistFile.Close()
		fccmd := exec.Command(fcpath)
		fccmd.Stdout = fontlistFile
		err = fccmd.Run()
	}
	if err != nil {
		err = core.WrapError(err, core.EIO,
			"fontconfig output file cannot be created: %s", fcListFilename)
		core.UserError(err)
		return "", false
	}
	return fcListFilename, true
}

// parseFontConfigList reads the output of fc-list. Font collections are
// counted, but not listed.
func parseFontConfigList(r io.Reader) (entries []fcEntry, ttc int, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		entry := fcEntry{Path: fontpath, Variant: "regular"}
		for _, name := range strings.Split(fields[1], ",") {
			name = strings.TrimPrefix(strings.TrimSpace(name), ".")
			if name != "" {
				entry.Families = append(entry.Families, font.NormalizeFontname(name))
			}
		}
		if len(fields) > 2 {
			style := strings.ToLower(fields[2])
			for _, v := range []string{"bold", "italic", "light", "black"} {
				if strings.Contains(style, v) {
					entry.Variant = v
					break
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, ttc, scanner.Err()
}

func loadFontConfigList(conf schuko.Configuration) ([]fcEntry, bool) {
	fclist, ok := cacheFontConfigList(conf, false)
	if !ok {
		return nil, false
	}
	fc, err := os.Open(fclist)
	if err != nil {
		err = core.WrapError(err, core.EIO,
			"fontconfig font list cannot be opened: %s", fclist)
		core.UserError(err)
		return nil, false
	}
	defer fc.Close()
	entries, ttc, err := parseFontConfigList(fc)
	if err != nil {
		err = core.WrapError(err, core.EIO,
			"encountered a problem during reading of fontconfig font list: %s", fclist)
		core.UserError(err)
		return entries, false
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: font collections not supported", ttc)
	}
	return entries, true
}

// matchFontConfig returns the path of a font with a given family name,
// preferring the regular variant.
func matchFontConfig(entries []fcEntry, name string) (string, bool) {
	needle := font.NormalizeFontname(name)
	found := ""
	for _, e := range entries {
		for _, fam := range e.Families {
			if fam != needle {
				continue
			}
			if e.Variant == "regular" {
				return e.Path, true
			}
			if found == "" {
				found = e.Path
			}
		}
	}
	return found, found != ""
}

var loadFontConfigListTask sync.Once
var loadedFontConfigListOK bool
var fontConfigEntries []fcEntry

// findFontConfigFont searches for a locally installed font using the fontconfig
// system (https://www.freedesktop.org/wiki/Software/fontconfig/).
// fontconfig has to be configured by setting the absolute path of the
// 'fc-list' binary.
//
// findFontConfigFont will copy the output of fc-list to the user's cache
// directory once. Subsequent calls will use the cached entries.
//
// We call the binary instead of using the C library because of possible version
// issues. If fontconfig is not configured, findFontConfigFont will silently
// report failure.
func findFontConfigFont(conf schuko.Configuration, name string) (string, bool) {
	loadFontConfigListTask.Do(func() {
		fontConfigEntries, loadedFontConfigListOK = loadFontConfigList(conf)
		tracer().Infof("loaded fontconfig list: %d entries", len(fontConfigEntries))
	})
	if !loadedFontConfigListOK {
		return "", false
	}
	return matchFontConfig(fontConfigEntries, name)
}
