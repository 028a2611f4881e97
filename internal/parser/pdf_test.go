package parser

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes a minimal uncompressed PDF with one Helvetica text line
// per page.
func buildPDF(pages ...string) []byte {
	var objs []string
	kids := make([]string, len(pages))
	// 1 catalog, 2 page tree, 3 font, then a page + content pair per page.
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>", "", "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		pageID := 4 + 2*i
		kids[i] = fmt.Sprintf("%d 0 R", pageID)
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageID+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestPDFParser_SinglePage(t *testing.T) {
	p := &PDFParser{}
	got, err := p.Parse(bytes.NewReader(buildPDF("Hello PDF")), "one.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello PDF" {
		t.Errorf("expected %q, got %q", "Hello PDF", got)
	}
}

func TestPDFParser_PagesSeparatedByFormFeed(t *testing.T) {
	p := &PDFParser{}
	got, err := p.Parse(bytes.NewReader(buildPDF("Page one", "Page two")), "two.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pages := strings.Split(got, "\n\f\n")
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %q", len(pages), got)
	}
	if pages[0] != "Page one" || pages[1] != "Page two" {
		t.Errorf("unexpected pages: %q", pages)
	}
}

func TestPDFParser_InvalidInput(t *testing.T) {
	p := &PDFParser{}
	_, err := p.Parse(strings.NewReader("not a pdf at all"), "broken.pdf")
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
	if !strings.Contains(err.Error(), "extract pdf text") {
		t.Errorf("unexpected error: %v", err)
	}
}
