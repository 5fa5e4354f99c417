package ingest

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// writeFile creates name under a temp dir with content and returns its path.
func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}

// docxParagraph renders one w:p holding text in a single run.
func docxParagraph(text string) string {
	var b strings.Builder
	b.WriteString("<w:p><w:r><w:t xml:space=\"preserve\">")
	b.WriteString(xmlEscape(text))
	b.WriteString("</w:t></w:r></w:p>")

	return b.String()
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// buildDocx writes a .docx archive whose body is the given raw XML.
func buildDocx(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quotes.docx")

	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)

	ct, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)

	doc, err := w.Create(docxDocumentPart)
	require.NoError(t, err)
	_, err = doc.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="` + wordNS + `"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	return path
}

func pdfEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(s)
}

// pdfStream renders a stream object body.
func pdfStream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

// textStream shows each line with show, separated by T*.
func textStream(lines []string, show func(string) string) string {
	var s strings.Builder
	s.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")

	for j, line := range lines {
		if j > 0 {
			s.WriteString("T*\n")
		}

		s.WriteString(show(line) + " Tj\n")
	}

	s.WriteString("ET")

	return s.String()
}

// buildTextPDF builds a minimal one-page-per-entry PDF in Helvetica. Each
// page shows its lines with Tj separated by T*.
func buildTextPDF(pages ...[]string) []byte {
	streams := make([]string, len(pages))
	for i, lines := range pages {
		streams[i] = textStream(lines, func(line string) string { return "(" + pdfEscape(line) + ")" })
	}

	return buildPDF(streams, func(int) []string {
		return []string{"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"}
	})
}

// identityCodes hex encodes text as two-byte glyph ids laid out the way
// TrueType fonts commonly number printable ASCII: glyph 3 is the space.
func identityCodes(text string) string {
	var s strings.Builder
	s.WriteByte('<')

	for _, r := range text {
		fmt.Fprintf(&s, "%04X", r-29)
	}

	s.WriteByte('>')

	return s.String()
}

const identityToUnicode = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 beginbfrange
<0003> <005D> <0020>
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end`

// buildType0PDF builds a PDF whose pages draw with a Type0 Identity-H font,
// so every string holds two-byte glyph ids. With toUnicode set the font
// carries a ToUnicode CMap mapping them back to ASCII.
func buildType0PDF(toUnicode bool, pages ...[]string) []byte {
	streams := make([]string, len(pages))
	for i, lines := range pages {
		streams[i] = textStream(lines, identityCodes)
	}

	return buildPDF(streams, func(first int) []string {
		font := fmt.Sprintf("<< /Type /Font /Subtype /Type0 /BaseFont /DejaVuSans /Encoding /Identity-H /DescendantFonts [%d 0 R]", first+1)
		if toUnicode {
			font += fmt.Sprintf(" /ToUnicode %d 0 R", first+3)
		}

		objects := []string{
			font + " >>",
			fmt.Sprintf("<< /Type /Font /Subtype /CIDFontType2 /BaseFont /DejaVuSans "+
				"/CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> /FontDescriptor %d 0 R >>", first+2),
			"<< /Type /FontDescriptor /FontName /DejaVuSans /Flags 32 /FontBBox [0 -200 1000 900] " +
				"/ItalicAngle 0 /Ascent 900 /Descent -200 /CapHeight 700 /StemV 80 >>",
		}

		if toUnicode {
			objects = append(objects, pdfStream(identityToUnicode))
		}

		return objects
	})
}

// buildPDF lays out a catalog, a page tree and one page per stream. font
// returns the bodies of the objects numbered from first on; the first of
// them is the page font /F1.
func buildPDF(streams []string, font func(first int) []string) []byte {
	n := len(streams)
	first := 3 + 2*n
	fontObjects := font(first)
	total := first + len(fontObjects)

	var b strings.Builder
	offsets := make([]int, total)

	b.WriteString("%PDF-1.4\n")

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, n)
	for i := range streams {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}

	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n)

	for i, stream := range streams {
		pageObj, contentObj := 3+2*i, 4+2*i

		offsets[pageObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			pageObj, contentObj, first)

		offsets[contentObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", contentObj, pdfStream(stream))
	}

	for i, body := range fontObjects {
		offsets[first+i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", first+i, body)
	}

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", total)
	b.WriteString("0000000000 65535 f \n")

	for i := 1; i < total; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}

	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, xrefOffset)

	return []byte(b.String())
}
