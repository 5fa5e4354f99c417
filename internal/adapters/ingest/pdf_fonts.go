package ingest

import (
	"slices"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	maxCMapOperands  = 1024
	maxCMapEntries   = 1 << 16
	maxResourceDepth = 32
)

// replacementChar stands in for a character code no mapping covers.
const replacementChar = "\uFFFD"

// pdfFont decodes the string operands shown with one font resource.
type pdfFont struct {
	toUnicode *toUnicodeCMap
	// composite fonts (Type0) use two-byte codes that are glyph ids unless
	// a ToUnicode map says otherwise.
	composite bool
	// codes is the single-byte table of a simple font; nil means WinAnsi.
	codes *[256]rune
}

// decode converts the bytes of a string operand to text. A nil font falls
// back to decodePDFText.
func (f *pdfFont) decode(b []byte) string {
	if f == nil {
		return decodePDFText(b)
	}

	if f.toUnicode != nil {
		return f.toUnicode.decode(b, f.unmapped)
	}

	return f.unmapped(b)
}

// unmapped decodes codes the ToUnicode map does not cover.
func (f *pdfFont) unmapped(b []byte) string {
	switch {
	case f.composite:
		return strings.Repeat(replacementChar, (len(b)+1)/2)
	case f.codes != nil:
		var sb strings.Builder
		for _, c := range b {
			sb.WriteRune(f.codes[c])
		}

		return sb.String()
	}

	return decodePDFText(b)
}

// toUnicodeCMap maps character codes to text as a /ToUnicode stream declares.
type toUnicodeCMap struct {
	entries map[string]string
	// widths are the code lengths in bytes, longest first.
	widths []int
}

// parseToUnicodeCMap reads the bfchar and bfrange sections of a CMap. It
// returns nil when the stream maps nothing.
func parseToUnicodeCMap(data []byte) *toUnicodeCMap {
	m := &toUnicodeCMap{entries: make(map[string]string)}
	widths := make(map[int]bool)
	lx := &lexer{data: data}

	var operands []operand

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}

		if tok.op == "" {
			if len(operands) < maxCMapOperands {
				operands = append(operands, tok.val)
			}

			continue
		}

		switch tok.op {
		case "endcodespacerange":
			for i := 0; i+1 < len(operands); i += 2 {
				if lo := operands[i]; lo.kind == kindString && len(lo.str) > 0 {
					widths[len(lo.str)] = true
				}
			}
		case "endbfchar":
			for i := 0; i+1 < len(operands); i += 2 {
				src, dst := operands[i], operands[i+1]
				if src.kind == kindString && dst.kind == kindString && len(src.str) > 0 {
					m.add(src.str, utf16Text(dst.str))
					widths[len(src.str)] = true
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(operands); i += 3 {
				if n := m.addRange(operands[i], operands[i+1], operands[i+2]); n > 0 {
					widths[n] = true
				}
			}
		}

		operands = operands[:0]
	}

	if len(m.entries) == 0 {
		return nil
	}

	for w := range widths {
		m.widths = append(m.widths, w)
	}

	slices.Sort(m.widths)
	slices.Reverse(m.widths)

	return m
}

func (m *toUnicodeCMap) add(code []byte, text string) {
	if len(m.entries) < maxCMapEntries {
		m.entries[string(code)] = text
	}
}

// addRange maps lo..hi either to consecutive text starting at dst or to the
// strings of a dst array. It returns the code width, or 0 when the range is
// malformed.
func (m *toUnicodeCMap) addRange(lo, hi, dst operand) int {
	if lo.kind != kindString || hi.kind != kindString || len(lo.str) == 0 ||
		len(lo.str) != len(hi.str) || len(lo.str) > 4 {
		return 0
	}

	width := len(lo.str)
	start, end := codeValue(lo.str), codeValue(hi.str)

	if end < start || end-start > 0xFFFF {
		return 0
	}

	switch dst.kind {
	case kindArray:
		for i, item := range dst.items {
			if start+i > end {
				break
			}

			if item.kind == kindString {
				m.add(codeBytes(start+i, width), utf16Text(item.str))
			}
		}
	case kindString:
		base := []rune(utf16Text(dst.str))
		if len(base) == 0 {
			return 0
		}

		last := len(base) - 1
		for code := start; code <= end; code++ {
			text := slices.Clone(base)
			text[last] += rune(code - start)
			m.add(codeBytes(code, width), string(text))
		}
	default:
		return 0
	}

	return width
}

// decode matches the longest known code at each position. Codes with no
// entry are passed to fallback one shortest-width code at a time.
func (m *toUnicodeCMap) decode(b []byte, fallback func([]byte) string) string {
	var out strings.Builder

	shortest := m.widths[len(m.widths)-1]

	for len(b) > 0 {
		matched := false

		for _, w := range m.widths {
			if len(b) < w {
				continue
			}

			if text, ok := m.entries[string(b[:w])]; ok {
				out.WriteString(text)
				b = b[w:]
				matched = true

				break
			}
		}

		if !matched {
			n := min(shortest, len(b))
			out.WriteString(fallback(b[:n]))
			b = b[n:]
		}
	}

	return out.String()
}

func codeValue(b []byte) int {
	v := 0
	for _, c := range b {
		v = v<<8 | int(c)
	}

	return v
}

func codeBytes(v, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}

	return out
}

var utf16BEDecoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// utf16Text decodes the UTF-16BE destination strings of a CMap.
func utf16Text(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}

	out, err := utf16BEDecoder.NewDecoder().Bytes(b)
	if err != nil {
		return replacementChar
	}

	return string(out)
}

// simpleEncoding builds the code table of a simple font from a base
// encoding and a /Differences array of codes and glyph names.
func simpleEncoding(base string, differences types.Array) *[256]rune {
	cm := charmap.Windows1252
	if base == "MacRomanEncoding" {
		cm = charmap.Macintosh
	}

	var codes [256]rune
	for i := range codes {
		codes[i] = cm.DecodeByte(byte(i))
	}

	code := -1

	for _, item := range differences {
		switch v := item.(type) {
		case types.Integer:
			code = v.Value()
		case types.Name:
			if code < 0 || code > 255 {
				continue
			}

			if r, ok := glyphRune(v.Value()); ok {
				codes[code] = r
			}

			code++
		}
	}

	return &codes
}

// glyphNames covers the Adobe glyph names that occur in quote text beyond
// single letters, which map to themselves.
var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "minus": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "question": '?', "at": '@',
	"quoteleft": '\u2018', "quoteright": '\u2019',
	"quotedblleft": '\u201C', "quotedblright": '\u201D',
	"endash": '\u2013', "emdash": '\u2014', "ellipsis": '\u2026',
	"bullet": '\u2022', "nbspace": '\u00A0',
}

func glyphRune(name string) (rune, bool) {
	if r, ok := glyphNames[name]; ok {
		return r, true
	}

	if len(name) == 1 && (name[0] >= 'A' && name[0] <= 'Z' || name[0] >= 'a' && name[0] <= 'z') {
		return rune(name[0]), true
	}

	for _, prefix := range []string{"uni", "u"} {
		hex, ok := strings.CutPrefix(name, prefix)
		if !ok || len(hex) < 4 || len(hex) > 6 {
			continue
		}

		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return rune(v), true
		}
	}

	return 0, false
}

// fontResources builds a decoder for every font in the page's resources,
// following /Resources inherited from the page tree. Fonts shared between
// pages are parsed once through cache.
func fontResources(xref *model.XRefTable, pageDict types.Dict, cache map[types.IndirectRef]*pdfFont) map[string]*pdfFont {
	resources := inheritedResources(xref, pageDict)
	if resources == nil {
		return nil
	}

	fontDict, err := xref.DereferenceDict(resources["Font"])
	if err != nil || fontDict == nil {
		return nil
	}

	fonts := make(map[string]*pdfFont, len(fontDict))

	for name, obj := range fontDict {
		ref, isRef := obj.(types.IndirectRef)
		if isRef {
			if f, ok := cache[ref]; ok {
				fonts[name] = f
				continue
			}
		}

		d, err := xref.DereferenceDict(obj)
		if err != nil || d == nil {
			continue
		}

		f := newPDFFont(xref, d)
		fonts[name] = f

		if isRef {
			cache[ref] = f
		}
	}

	return fonts
}

func inheritedResources(xref *model.XRefTable, d types.Dict) types.Dict {
	for range maxResourceDepth {
		if d == nil {
			return nil
		}

		if obj, ok := d.Find("Resources"); ok {
			res, err := xref.DereferenceDict(obj)
			if err != nil {
				return nil
			}

			return res
		}

		parent, err := xref.DereferenceDict(d["Parent"])
		if err != nil {
			return nil
		}

		d = parent
	}

	return nil
}

func newPDFFont(xref *model.XRefTable, d types.Dict) *pdfFont {
	f := &pdfFont{}

	if st := d.Subtype(); st != nil && *st == "Type0" {
		f.composite = true
	}

	if obj, ok := d.Find("ToUnicode"); ok {
		if sd, _, err := xref.DereferenceStreamDict(obj); err == nil && sd != nil {
			if data, err := sd.DecodeLength(-1); err == nil {
				f.toUnicode = parseToUnicodeCMap(data)
			}
		}
	}

	if f.composite {
		return f
	}

	enc, err := xref.Dereference(d["Encoding"])
	if err != nil {
		return f
	}

	switch e := enc.(type) {
	case types.Name:
		f.codes = simpleEncoding(e.Value(), nil)
	case types.Dict:
		base := ""
		if n := e.NameEntry("BaseEncoding"); n != nil {
			base = *n
		}

		diffs, _ := xref.DereferenceArray(e["Differences"])
		f.codes = simpleEncoding(base, diffs)
	}

	return f
}
