package ingest

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// tjWordGap is the TJ adjustment, in thousandths of a text space unit, past
// which a gap between two strings is rendered as a space.
const tjWordGap = 200

// maxOperands bounds the operand stack between two operators.
const maxOperands = 64

// maxArrayDepth bounds array nesting. Deeper arrays are skipped as opaque.
const maxArrayDepth = 32

// ContentStreamText returns the text drawn by a PDF content stream, one line
// per text line. Lines break at BT/ET, T*, ' and ", and at Td, TD or Tm when
// the vertical position changes. Without font resources, strings are decoded
// as UTF-16BE when they start with a byte order mark and as WinAnsi otherwise.
func ContentStreamText(data []byte) string {
	return pageText(data, nil)
}

// pageText is ContentStreamText with the page's fonts, keyed by resource
// name. Tf selects the decoder for the strings that follow.
func pageText(data []byte, fonts map[string]*pdfFont) string {
	lx := &lexer{data: data}
	tw := &textWriter{fonts: fonts}

	var operands []operand

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}

		if tok.op == "" {
			if len(operands) == maxOperands {
				operands = operands[1:]
			}

			operands = append(operands, tok.val)

			continue
		}

		tw.apply(tok.op, operands)
		operands = operands[:0]
	}

	return tw.text()
}

type operandKind int

const (
	kindOther operandKind = iota
	kindNumber
	kindString
	kindName
	kindArray
)

type operand struct {
	kind  operandKind
	num   float64
	str   []byte
	items []operand
}

// token is either an operator (op set) or an operand.
type token struct {
	op  string
	val operand
}

type lexer struct {
	data  []byte
	pos   int
	depth int
}

func isPDFWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}

	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}

	return false
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]

		switch {
		case isPDFWhitespace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, bool) {
	for {
		tok, inlineImage, ok := l.scan()
		if !inlineImage {
			return tok, ok
		}

		l.skipInlineImage()
	}
}

// scan reads one token. It reports BI separately so next can skip inline
// image data in a loop.
func (l *lexer) scan() (tok token, inlineImage, ok bool) {
	l.skipSpaceAndComments()

	if l.pos >= len(l.data) {
		return token{}, false, false
	}

	c := l.data[l.pos]

	switch {
	case c == '(':
		return token{val: operand{kind: kindString, str: l.literalString()}}, false, true
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		return token{val: operand{kind: kindOther}}, false, true
	case c == '>' && l.peek(1) == '>':
		l.pos += 2
		return token{val: operand{kind: kindOther}}, false, true
	case c == '<':
		return token{val: operand{kind: kindString, str: l.hexString()}}, false, true
	case c == '[':
		l.pos++
		return token{val: l.array()}, false, true
	case c == '/':
		l.pos++
		return token{val: operand{kind: kindName, str: l.regular()}}, false, true
	case isPDFDelimiter(c):
		// Stray ')' '>' ']' and PostScript braces carry no text.
		l.pos++
		return token{val: operand{kind: kindOther}}, false, true
	}

	word := l.regular()
	if v, ok := parseNumber(word); ok {
		return token{val: v}, false, true
	}

	switch string(word) {
	case "true", "false", "null":
		return token{val: operand{kind: kindOther}}, false, true
	case "BI":
		return token{}, true, true
	}

	return token{op: string(word)}, false, true
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.data) {
		return l.data[l.pos+offset]
	}

	return 0
}

// regular consumes a run of regular characters.
func (l *lexer) regular() []byte {
	start := l.pos
	for l.pos < len(l.data) && !isPDFWhitespace(l.data[l.pos]) && !isPDFDelimiter(l.data[l.pos]) {
		l.pos++
	}

	return l.data[start:l.pos]
}

func parseNumber(word []byte) (operand, bool) {
	if len(word) == 0 {
		return operand{}, false
	}

	c := word[0]
	if c != '+' && c != '-' && c != '.' && (c < '0' || c > '9') {
		return operand{}, false
	}

	f, err := strconv.ParseFloat(string(word), 64)
	if err != nil {
		return operand{}, false
	}

	return operand{kind: kindNumber, num: f}, true
}

// literalString reads a balanced (...) string and resolves its escapes.
func (l *lexer) literalString() []byte {
	l.pos++ // (

	var out []byte

	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++

		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}

			out = append(out, c)
		case '\\':
			out = l.escape(out)
		default:
			out = append(out, c)
		}
	}

	return out
}

func (l *lexer) escape(out []byte) []byte {
	if l.pos >= len(l.data) {
		return out
	}

	c := l.data[l.pos]
	l.pos++

	switch c {
	case 'n':
		return append(out, '\n')
	case 'r':
		return append(out, '\r')
	case 't':
		return append(out, '\t')
	case 'b':
		return append(out, '\b')
	case 'f':
		return append(out, '\f')
	case '\r':
		// Line continuation.
		if l.pos < len(l.data) && l.data[l.pos] == '\n' {
			l.pos++
		}

		return out
	case '\n':
		return out
	}

	if c >= '0' && c <= '7' {
		val := int(c - '0')
		for i := 0; i < 2 && l.pos < len(l.data); i++ {
			d := l.data[l.pos]
			if d < '0' || d > '7' {
				break
			}

			val = val*8 + int(d-'0')
			l.pos++
		}

		return append(out, byte(val))
	}

	// \\, \(, \) and unknown escapes yield the character itself.
	return append(out, c)
}

func (l *lexer) hexString() []byte {
	l.pos++ // <

	var digits []byte

	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++

		if c == '>' {
			break
		}

		if v, ok := hexValue(c); ok {
			digits = append(digits, v)
		}
	}

	if len(digits)%2 == 1 {
		digits = append(digits, 0)
	}

	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		out = append(out, digits[i]<<4|digits[i+1])
	}

	return out
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}

	return 0, false
}

// array reads operands up to the matching ']'. Keywords inside arrays are
// kept as opaque operands.
func (l *lexer) array() operand {
	if l.depth >= maxArrayDepth {
		l.skipArray()
		return operand{kind: kindOther}
	}

	l.depth++
	defer func() { l.depth-- }()

	arr := operand{kind: kindArray}

	for {
		l.skipSpaceAndComments()

		if l.pos >= len(l.data) {
			return arr
		}

		if l.data[l.pos] == ']' {
			l.pos++
			return arr
		}

		tok, ok := l.next()
		if !ok {
			return arr
		}

		if tok.op != "" {
			arr.items = append(arr.items, operand{kind: kindOther})
			continue
		}

		arr.items = append(arr.items, tok.val)
	}
}

// skipArray consumes the rest of an array, nested arrays included, without
// recursing.
func (l *lexer) skipArray() {
	open := 1

	for l.pos < len(l.data) && open > 0 {
		switch c := l.data[l.pos]; {
		case c == '(':
			l.literalString()
			continue
		case c == '<' && l.peek(1) == '<':
			l.pos += 2
			continue
		case c == '<':
			l.hexString()
			continue
		case c == '[':
			open++
		case c == ']':
			open--
		}

		l.pos++
	}
}

// skipInlineImage skips an inline image from after BI through its EI.
func (l *lexer) skipInlineImage() {
	idx := bytes.Index(l.data[l.pos:], []byte("ID"))
	if idx < 0 {
		l.pos = len(l.data)
		return
	}

	l.pos += idx + 2

	for l.pos < len(l.data) {
		if l.data[l.pos] == 'E' && l.peek(1) == 'I' &&
			l.pos > 0 && isPDFWhitespace(l.data[l.pos-1]) &&
			(l.pos+2 >= len(l.data) || isPDFWhitespace(l.data[l.pos+2])) {
			l.pos += 2
			return
		}

		l.pos++
	}
}

// textWriter accumulates shown text into lines.
type textWriter struct {
	lines []string
	cur   strings.Builder
	y     float64
	haveY bool
	fonts map[string]*pdfFont
	font  *pdfFont
}

func (w *textWriter) newline() {
	if w.cur.Len() == 0 {
		return
	}

	w.lines = append(w.lines, w.cur.String())
	w.cur.Reset()
}

func (w *textWriter) space() {
	s := w.cur.String()
	if s == "" || strings.HasSuffix(s, " ") {
		return
	}

	w.cur.WriteByte(' ')
}

func (w *textWriter) show(b []byte) {
	w.cur.WriteString(w.font.decode(b))
}

func (w *textWriter) apply(op string, operands []operand) {
	switch op {
	case "Tf":
		if n := len(operands); n >= 2 && operands[n-2].kind == kindName {
			w.font = w.fonts[string(operands[n-2].str)]
		}
	case "BT":
		w.newline()
		w.haveY = false
	case "ET":
		w.newline()
	case "Td", "TD":
		tx, ty := lastNumbers2(operands)
		w.y += ty

		switch {
		case ty != 0:
			w.newline()
		case tx != 0:
			w.space()
		}
	case "Tm":
		f := lastNumber(operands)
		if w.haveY && f == w.y {
			w.space()
		} else {
			w.newline()
		}

		w.y, w.haveY = f, true
	case "T*":
		w.newline()
	case "Tj":
		if s, ok := lastString(operands); ok {
			w.show(s)
		}
	case "'", `"`:
		w.newline()

		if s, ok := lastString(operands); ok {
			w.show(s)
		}
	case "TJ":
		if len(operands) == 0 || operands[len(operands)-1].kind != kindArray {
			return
		}

		for _, item := range operands[len(operands)-1].items {
			switch item.kind {
			case kindString:
				w.show(item.str)
			case kindNumber:
				if item.num <= -tjWordGap {
					w.space()
				}
			}
		}
	}
}

func (w *textWriter) text() string {
	w.newline()
	return strings.Join(w.lines, "\n")
}

func lastNumber(operands []operand) float64 {
	if len(operands) == 0 || operands[len(operands)-1].kind != kindNumber {
		return 0
	}

	return operands[len(operands)-1].num
}

func lastNumbers2(operands []operand) (float64, float64) {
	n := len(operands)
	if n < 2 || operands[n-2].kind != kindNumber || operands[n-1].kind != kindNumber {
		return 0, 0
	}

	return operands[n-2].num, operands[n-1].num
}

func lastString(operands []operand) ([]byte, bool) {
	if len(operands) == 0 || operands[len(operands)-1].kind != kindString {
		return nil, false
	}

	return operands[len(operands)-1].str, true
}

var (
	utf16Decoder   = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	winAnsiDecoder = charmap.Windows1252
)

// decodePDFText converts string operand bytes to UTF-8.
func decodePDFText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		if out, err := utf16Decoder.NewDecoder().Bytes(b); err == nil {
			return string(out)
		}
	}

	out, err := winAnsiDecoder.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}

	return string(out)
}
