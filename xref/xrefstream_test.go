package xref

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/corvid-labs/pdfread/backend"
)

// TestLoadXRefStreamSection builds a minimal file whose only
// cross-reference section is a stream (no classic table at all), with
// W=[1,2,1] (type, 2-byte offset, 1-byte generation) and exercises the
// full Flate-decode + entry-extraction path.
func TestLoadXRefStreamSection(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")
	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog >>\nendobj\n")

	// Three entries: object 0 free, object 1 in-use at off1, object 2
	// free (simulates a deleted object); each is type(1)+offset(2)+gen(1)
	// = 4 raw bytes, big-endian.
	entries := []byte{
		0, 0, 0, 0xFF, // object 0: free, next-free=0, gen 255 (conventional)
		1, byte(off1 >> 8), byte(off1), 0, // object 1: in use at off1, gen 0
		0, 0, 0, 0, // object 2: free
	}
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(entries)
	zw.Close()

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "3 0 obj\n<< /Type /XRef /Size 3 /W [1 2 1] /Filter /FlateDecode /Length %d /Root 1 0 R >>\nstream\n",
		compressed.Len())
	buf.Write(compressed.Bytes())
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xrefOffset)

	data := buf.Bytes()
	b := backend.New(bytes.NewReader(data), int64(len(data)))
	table, err := Load(b, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if table.Entries[0].Type != Free {
		t.Fatalf("object 0: %+v", table.Entries[0])
	}
	e1 := table.Entries[1]
	if e1.Type != InUse || e1.Offset != int64(off1) {
		t.Fatalf("object 1: %+v, want offset %d", e1, off1)
	}
	if table.Entries[2].Type != Free {
		t.Fatalf("object 2: %+v", table.Entries[2])
	}
	root, ok := table.Trailer.Get("Root")
	if !ok {
		t.Fatal("missing /Root")
	}
	_ = root
}
