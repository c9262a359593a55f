package otquery

import (
	"github.com/npillmayer/fontengines/core/font/opentype/ot"
	"golang.org/x/text/language"
)

// FontType returns the font type, encoded in the font header, as a string.
func FontType(otf *ot.Font) string {
	if otf.Header == nil {
		return "<empty>"
	}
	typ := otf.Header.FontType
	switch typ {
	case ot.TypeOpenType: // OTTO
		return "OpenType (outlines)"
	case ot.TypeTrueType:
		return "TrueType"
	case ot.TypeAppleTrue: // true
		return "TrueType (Mac legacy)"
	}
	return "<unknown>"
}

// OutlineFormat returns "CFF" for fonts with PostScript outlines and
// "TrueType" otherwise. The strings match the ones X11 uses for font formats.
func OutlineFormat(otf *ot.Font) string {
	if otf.IsCFF() {
		return "CFF"
	}
	return "TrueType"
}

// NameInfo returns a map with selected fields from OpenType table `name`.
// Will include (if available in the font) "family", "subfamily", "fullname",
// "psname" and "version".
//
// Parameter `lang` selects between localized names of the Windows platform.
// For language.Und, or if no record matches the language, names in American
// English are preferred.
func NameInfo(otf *ot.Font, lang language.Tag) map[string]string {
	names := make(map[string]string)
	if otf.Name == nil {
		tracer().Debugf("no name table found in font")
		return names
	}
	keys := []struct {
		field string
		id    ot.NameID
	}{
		{"family", ot.NameFontFamily},
		{"subfamily", ot.NameFontSubfamily},
		{"fullname", ot.NameFullName},
		{"version", nameVersion},
		{"psname", ot.NamePostScriptName},
	}
	for _, key := range keys {
		if val := localizedName(otf.Name, key.id, lang); val != "" {
			names[key.field] = val
		}
	}
	return names
}

const nameVersion ot.NameID = 5

// FamilyName returns the family name of a font, or "".
func FamilyName(otf *ot.Font) string {
	return otf.Name.Name(ot.NameFontFamily)
}

// PostScriptName returns the PostScript name of a font, or "".
func PostScriptName(otf *ot.Font) string {
	return otf.Name.Name(ot.NamePostScriptName)
}

// Windows language IDs of the name table, for languages commonly found in fonts.
var windowsLanguages = map[uint16]language.Tag{
	0x0404: language.TraditionalChinese,
	0x0405: language.Czech,
	0x0406: language.Danish,
	0x0407: language.German,
	0x0408: language.Greek,
	0x0409: language.AmericanEnglish,
	0x040a: language.Spanish,
	0x040b: language.Finnish,
	0x040c: language.French,
	0x040e: language.Hungarian,
	0x0410: language.Italian,
	0x0411: language.Japanese,
	0x0412: language.Korean,
	0x0413: language.Dutch,
	0x0414: language.Norwegian,
	0x0415: language.Polish,
	0x0416: language.BrazilianPortuguese,
	0x0419: language.Russian,
	0x041d: language.Swedish,
	0x041f: language.Turkish,
	0x0804: language.SimplifiedChinese,
	0x0809: language.BritishEnglish,
	0x0816: language.EuropeanPortuguese,
}

func localizedName(names *ot.NameTable, id ot.NameID, lang language.Tag) string {
	if lang == language.Und {
		return names.Name(id)
	}
	var tags []language.Tag
	var recs []ot.NameRecord
	for _, rec := range names.Records {
		if rec.NameID != id || rec.PlatformID != 3 {
			continue
		}
		if tag, ok := windowsLanguages[rec.LanguageID]; ok {
			tags = append(tags, tag)
			recs = append(recs, rec)
		}
	}
	if len(tags) > 0 {
		matcher := language.NewMatcher(tags)
		_, inx, conf := matcher.Match(lang)
		if conf != language.No {
			if s, err := recs[inx].Decode(); err == nil {
				return s
			}
		}
	}
	return names.Name(id)
}

// --- Style -----------------------------------------------------------------

// Style returns the bold and italic style bits of a font. They are taken from
// table OS/2 if present, otherwise from table head. Oblique fonts count as
// italic.
func Style(otf *ot.Font) (bold, italic bool) {
	if os2 := otf.OS2; os2 != nil {
		bold = os2.FsSelection&ot.FsSelectionBold != 0
		italic = os2.FsSelection&(ot.FsSelectionItalic|ot.FsSelectionOblique) != 0
		return
	}
	bold = otf.Head.MacStyle&ot.MacStyleBold != 0
	italic = otf.Head.MacStyle&ot.MacStyleItalic != 0
	return
}

// IsFixedPitch is true for monospaced fonts, as flagged in table post.
func IsFixedPitch(otf *ot.Font) bool {
	return otf.Post != nil && otf.Post.IsFixedPitch != 0
}

// ItalicAngle returns the italic angle of a font in whole degrees,
// counter-clockwise from the vertical. Upright fonts have an angle of 0.
func ItalicAngle(otf *ot.Font) int16 {
	if otf.Post == nil {
		return 0
	}
	return int16(otf.Post.ItalicAngle >> 16)
}

// SerifStyle tells whether a font has serifs or is a script font, according
// to table PCLT. Fonts without a PCLT table are neither.
func SerifStyle(otf *ot.Font) (serif, script bool) {
	if otf.PCLT == nil {
		return
	}
	s := otf.PCLT.SerifStyle & 0x3f
	serif = s >= 2 && s <= 6
	script = s >= 9 && s <= 12
	return
}

// --- Embedding -------------------------------------------------------------

// EmbeddingFlags returns the embedding licensing rights of a font (field
// fsType of table OS/2). Fonts without an OS/2 table report 0, i.e.
// installable embedding.
func EmbeddingFlags(otf *ot.Font) uint16 {
	if otf.OS2 == nil {
		return 0
	}
	return otf.OS2.FsType
}

// CanEmbed is false for fonts with a restricted license or which allow
// embedding of bitmaps only.
func CanEmbed(otf *ot.Font) bool {
	return EmbeddingFlags(otf)&ot.FsTypeNoOutlineEmbed == 0
}
