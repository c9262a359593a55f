package ot

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NameTable allows multilingual strings to be associated with the font.
// We only decode names for the Unicode and Windows platforms (UTF-16) and
// for the Macintosh platform with Roman encoding.
type NameTable struct {
	tableBase
	Records []NameRecord
}

// NameRecord is an entry of the name table. Its value is stored in the
// encoding of the record's platform.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     NameID
	value      binarySegm
}

// NameID identifies the kind of a name in the name table.
type NameID uint16

// Frequently used name IDs.
const (
	NameFontFamily     NameID = 1
	NameFontSubfamily  NameID = 2
	NameFullName       NameID = 4
	NamePostScriptName NameID = 6
	NameTypoFamily     NameID = 16
)

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// The name table starts with a count of name records, followed by an offset to
// the string storage. Records are 12 bytes each.
func parseName(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 6 {
		return nil, errFontFormat("size of name table")
	}
	t := newNameTable(tag, b, offset, size)
	count, storage := int(b.U16(2)), int(b.U16(4))
	recs, err := b.view(6, 12*count)
	if err != nil {
		return nil, errFontFormat("name table records")
	}
	for i := 0; i < count; i++ {
		rec := recs[12*i : 12*i+12]
		length, off := int(u16(rec[8:])), int(u16(rec[10:]))
		value, err := b.view(storage+off, length)
		if err != nil {
			tracer().Infof("name record %d exceeds name table, skipping", i)
			continue
		}
		t.Records = append(t.Records, NameRecord{
			PlatformID: u16(rec),
			EncodingID: u16(rec[2:]),
			LanguageID: u16(rec[4:]),
			NameID:     NameID(u16(rec[6:])),
			value:      value,
		})
	}
	return t, nil
}

// Decode returns the string value of a name record.
func (rec NameRecord) Decode() (string, error) {
	switch {
	case rec.PlatformID == 0 || rec.PlatformID == 3:
		return decodeUtf16(rec.value)
	case rec.PlatformID == 1 && rec.EncodingID == 0:
		s, err := charmap.Macintosh.NewDecoder().Bytes(rec.value)
		if err != nil {
			return "", fmt.Errorf("decoding Mac Roman error: %v", err)
		}
		return string(s), nil
	}
	return "", fmt.Errorf("name record platform/encoding (%d|%d) not supported",
		rec.PlatformID, rec.EncodingID)
}

// Name returns the string for a name ID. Windows names in American English
// are preferred, then other Windows names, then Unicode platform names, and
// finally Macintosh names. If no decodable record is present, "" is returned.
func (t *NameTable) Name(id NameID) string {
	if t == nil {
		return ""
	}
	best, rank := -1, 100
	for i, rec := range t.Records {
		if rec.NameID != id {
			continue
		}
		r := nameRank(rec)
		if r < rank {
			best, rank = i, r
		}
	}
	if best < 0 {
		return ""
	}
	s, err := t.Records[best].Decode()
	if err != nil {
		tracer().Infof("name table: %v", err)
		return ""
	}
	return s
}

func nameRank(rec NameRecord) int {
	switch {
	case rec.PlatformID == 3 && rec.EncodingID == 1 && rec.LanguageID == 0x409:
		return 0
	case rec.PlatformID == 3 && (rec.EncodingID == 1 || rec.EncodingID == 10):
		return 1
	case rec.PlatformID == 0:
		return 2
	case rec.PlatformID == 1 && rec.EncodingID == 0:
		return 3
	}
	return 99
}

func decodeUtf16(str []byte) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	decoder := enc.NewDecoder()
	s, err := decoder.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 error: %v", err)
	}
	return string(s), nil
}
