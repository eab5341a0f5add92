package xref

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/corvid-labs/pdfread/backend"
)

// buildClassicPDF assembles a minimal, syntactically valid single-section
// PDF with a classic xref table, computing each object's offset as it
// writes so the fixture is always self-consistent.
func buildClassicPDF(objects []string) ([]byte, int) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\n", len(objects)+1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xrefOffset)
	return buf.Bytes(), xrefOffset
}

func TestLoadClassicXRefTable(t *testing.T) {
	data, xrefOffset := buildClassicPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R >>",
	})
	b := backend.New(bytes.NewReader(data), int64(len(data)))
	table, err := Load(b, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if table.HeaderVersion != "1.4" {
		t.Fatalf("got version %q", table.HeaderVersion)
	}
	if len(table.Entries) != 4 {
		t.Fatalf("got %d entries", len(table.Entries))
	}
	if table.Entries[0].Type != Free {
		t.Fatalf("object 0 should be free")
	}
	for i := 1; i <= 3; i++ {
		e := table.Entries[i]
		if e.Type != InUse {
			t.Fatalf("object %d should be in use, got %v", i, e)
		}
	}
	root, ok := table.Trailer.Get("Root")
	if !ok {
		t.Fatal("missing /Root in trailer")
	}
	_ = root
	_ = xrefOffset
}

func TestLocateStartXRefGrowsWindow(t *testing.T) {
	data, _ := buildClassicPDF([]string{"<< /Type /Catalog >>"})
	// Pad with enough junk after the real tail to force the backward
	// search to grow its window past the first 1024-byte attempt.
	padded := append(data, bytes.Repeat([]byte(" "), 4096)...)
	b := backend.New(bytes.NewReader(padded), int64(len(padded)))
	off, err := locateStartXRef(b)
	if err != nil {
		t.Fatal(err)
	}
	if off <= 0 {
		t.Fatalf("got offset %d", off)
	}
}

func TestNewestEntryFirstSeenWinsAcrossIncrementalUpdate(t *testing.T) {
	// Build a base file, then a second xref section chained via /Prev
	// that redefines object 1 -- the newer (first-seen, since we start
	// from the latest section) entry must win.
	base, baseXrefOffset := buildClassicPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	})
	var buf bytes.Buffer
	buf.Write(base)
	newObjOffset := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R /Extra true >>\nendobj\n")
	xref2 := buf.Len()
	buf.WriteString("xref\n1 1\n")
	fmt.Fprintf(&buf, "%010d 00000 n \n", newObjOffset)
	fmt.Fprintf(&buf, "trailer\n<< /Size 3 /Root 1 0 R /Prev %d >>\n", baseXrefOffset)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xref2)

	b := backend.New(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	table, err := Load(b, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if table.Entries[1].Offset != int64(newObjOffset) {
		t.Fatalf("expected newest object 1 offset %d, got %d", newObjOffset, table.Entries[1].Offset)
	}
}
