package pdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal, syntactically valid single-section PDF
// with a classic xref table and the given trailer extra entries appended
// after /Size and /Root, computing each object's offset as it writes so
// the fixture is always self-consistent.
func buildPDF(objects []string, trailerExtra string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
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
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R %s >>\n", len(objects)+1, trailerExtra)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xrefOffset)
	return buf.Bytes()
}

func testDocObjects() []string {
	return []string{
		"<< /Type /Catalog /Pages 2 0 R >>",                                                  // 1
		"<< /Type /Pages /Kids [3 0 R 6 0 R] /Count 2 /MediaBox [0 0 612 792] /Resources 4 0 R >>", // 2
		"<< /Type /Page /Parent 2 0 R /Contents 7 0 R >>",                                    // 3
		"<< /Font << /F1 5 0 R >> >>",                                                        // 4
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",                             // 5
		"<< /Type /Page /Parent 2 0 R /Rotate 90 /CropBox [0 0 300 300] >>",                   // 6
		"<< /Length 4 >>\nstream\nabcd\nendstream",                                            // 7
	}
}

func openTestDoc(t *testing.T) *File {
	t.Helper()
	objs := append(append([]string{}, testDocObjects()...), "<< /Title (Hello) /Producer (corvid-pdfread) >>")
	data := buildPDF(objs, fmt.Sprintf("/Info %d 0 R", len(objs)))
	f, err := Load(bytes.NewReader(data), int64(len(data)), DefaultOptions())
	require.NoError(t, err)
	return f
}

func TestOpenCatalogAndPages(t *testing.T) {
	f := openTestDoc(t)

	cat, err := f.Catalog()
	require.NoError(t, err)
	require.True(t, cat.HasPagesRef)

	pages, err := f.Pages()
	require.NoError(t, err)
	require.Len(t, pages, 2)

	p1 := pages[0]
	require.Equal(t, 612.0, p1.MediaBox.Width())
	require.Equal(t, 792.0, p1.MediaBox.Height())
	require.NotNil(t, p1.Resources)
	require.Len(t, p1.Contents, 1)

	p2 := pages[1]
	require.Equal(t, Rotation(90), p2.Rotate)
	require.Equal(t, 300.0, p2.CropBox.Width(), "page 2 declares its own CropBox")
	require.NotNil(t, p2.Resources, "page 2 inherits /Resources from its parent /Pages node")
}

func TestFontResourceLookup(t *testing.T) {
	f := openTestDoc(t)
	pages, err := f.Pages()
	require.NoError(t, err)

	font, err := pages[0].Resources.Font(f.Context(), "F1")
	require.NoError(t, err)
	require.Equal(t, "Helvetica", string(font.BaseFont))
	require.Equal(t, "Type1", string(font.Subtype))
}

func TestInfo(t *testing.T) {
	f := openTestDoc(t)
	info, err := f.Info()
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Equal(t, "Hello", info.Title)
	require.Equal(t, "corvid-pdfread", info.Producer)
}

func TestGetPageOutOfRange(t *testing.T) {
	f := openTestDoc(t)
	_, err := f.GetPage(99)
	require.Error(t, err)
}

func TestHeaderVersionAndUnencrypted(t *testing.T) {
	f := openTestDoc(t)
	require.Equal(t, "1.7", f.HeaderVersion())
	require.False(t, f.Encrypted)
}
