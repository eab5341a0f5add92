package lexer

import "testing"

func mustNext(t *testing.T, l *Lexer) Token {
	t.Helper()
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return tok
}

func TestNextBasicTokens(t *testing.T) {
	l := New([]byte(`/Type /Catalog 12 3.14 -7 [1 2] <<>> (hi) <48656C6C6F>`))
	want := []struct {
		kind  Kind
		value string
	}{
		{NameTok, "Type"},
		{NameTok, "Catalog"},
		{Integer, "12"},
		{Real, "3.14"},
		{Integer, "-7"},
		{ArrayStart, "["},
		{Integer, "1"},
		{Integer, "2"},
		{ArrayEnd, "]"},
		{DictStart, "<<"},
		{DictEnd, ">>"},
		{StringLit, "hi"},
		{HexString, "Hello"},
	}
	for i, w := range want {
		tok := mustNext(t, l)
		if tok.Kind != w.kind || tok.Value != w.value {
			t.Fatalf("token %d: got %s %q, want %s %q", i, tok.Kind, tok.Value, w.kind, w.value)
		}
	}
	if _, err := l.Next(); err != ErrEOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestNameHexEscape(t *testing.T) {
	l := New([]byte(`/A#42C`))
	tok := mustNext(t, l)
	if tok.Kind != NameTok || tok.Value != "ABC" {
		t.Fatalf("got %s %q", tok.Kind, tok.Value)
	}
}

func TestLiteralStringEscapes(t *testing.T) {
	l := New([]byte(`(a\(b\)c\n\061)`))
	tok := mustNext(t, l)
	if tok.Kind != StringLit {
		t.Fatalf("got kind %s", tok.Kind)
	}
	if tok.Value != "a(b)c\n1" {
		t.Fatalf("got %q", tok.Value)
	}
}

func TestHexStringOddDigits(t *testing.T) {
	l := New([]byte(`<901FA3>`))
	tok := mustNext(t, l)
	if tok.Value != string([]byte{0x90, 0x1F, 0xA3}) {
		t.Fatalf("got %q", tok.Value)
	}
	l2 := New([]byte(`<901>`))
	tok2 := mustNext(t, l2)
	if tok2.Value != string([]byte{0x90, 0x10}) {
		t.Fatalf("odd-digit pad: got %v", []byte(tok2.Value))
	}
}

func TestKeywords(t *testing.T) {
	l := New([]byte(`12 0 obj endobj R null true false`))
	kinds := []Kind{Integer, Integer, Obj, EndObj, Ref, Null, True, False}
	for _, want := range kinds {
		tok := mustNext(t, l)
		if tok.Kind != want {
			t.Fatalf("got %s, want %s", tok.Kind, want)
		}
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	l := New([]byte(`12 34`))
	p1, _ := l.Peek()
	p2, _ := l.Peek()
	if p1 != p2 {
		t.Fatalf("peek not idempotent: %v vs %v", p1, p2)
	}
	n, _ := l.Next()
	if n.Value != "12" {
		t.Fatalf("Next after Peek got %q", n.Value)
	}
}

func TestBackAndPeekBack(t *testing.T) {
	l := New([]byte(`1 2 3`))
	l.SetPos(l.Len())
	pb, err := l.PeekBack()
	if err != nil || pb.Value != "3" {
		t.Fatalf("PeekBack: %v %v", pb, err)
	}
	back, err := l.Back()
	if err != nil || back.Value != "3" {
		t.Fatalf("Back: %v %v", back, err)
	}
	back2, err := l.Back()
	if err != nil || back2.Value != "2" {
		t.Fatalf("Back: %v %v", back2, err)
	}
}

func TestSeekSubstrAndBack(t *testing.T) {
	l := New([]byte(`xref\n0 1\ntrailer\n<<>>\nstartxref\n123\n%%EOF`))
	if _, ok := l.SeekSubstr([]byte("trailer")); !ok {
		t.Fatal("expected to find trailer")
	}
	l.SetPosFromEnd(0)
	off, ok := l.SeekSubstrBack([]byte("startxref"))
	if !ok {
		t.Fatal("expected to find startxref backward")
	}
	if string(l.buf[off:off+9]) != "startxref" {
		t.Fatalf("wrong offset %d", off)
	}
}

func TestSetPosFromEndAndOffsetPos(t *testing.T) {
	l := New([]byte(`0123456789`))
	l.SetPosFromEnd(3)
	if l.Pos() != 7 {
		t.Fatalf("got pos %d", l.Pos())
	}
	l.OffsetPos(-2)
	if l.Pos() != 5 {
		t.Fatalf("got pos %d", l.Pos())
	}
}

func TestReadN(t *testing.T) {
	l := New([]byte(`abcdef`))
	got := l.ReadN(3)
	if string(got) != "abc" {
		t.Fatalf("got %q", got)
	}
	if l.Pos() != 3 {
		t.Fatalf("pos %d", l.Pos())
	}
}
