package parser

import (
	"testing"

	"github.com/corvid-labs/pdfread/primitive"
)

func TestParseScalars(t *testing.T) {
	cases := map[string]primitive.Object{
		"12":        primitive.Integer(12),
		"-3.5":      primitive.Real(-3.5),
		"/Catalog":  primitive.Name("Catalog"),
		"true":      primitive.Bool(true),
		"null":      primitive.Null{},
	}
	for src, want := range cases {
		p := New([]byte(src))
		got, err := p.ParseObject()
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if got.String() != want.String() {
			t.Fatalf("%q: got %v want %v", src, got, want)
		}
	}
}

func TestParseReference(t *testing.T) {
	p := New([]byte("12 0 R"))
	got, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	ref, ok := got.(primitive.Reference)
	if !ok || ref.Number != 12 || ref.Generation != 0 {
		t.Fatalf("got %#v", got)
	}
}

func TestParseArrayOfReferencesAndInts(t *testing.T) {
	p := New([]byte("[1 0 R 2 0 R 3]"))
	got, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := got.(primitive.Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("got %#v", got)
	}
	if _, ok := arr[0].(primitive.Reference); !ok {
		t.Fatalf("elem 0 not a reference: %#v", arr[0])
	}
	if n, ok := arr[2].(primitive.Integer); !ok || n != 3 {
		t.Fatalf("elem 2: %#v", arr[2])
	}
}

func TestParseDict(t *testing.T) {
	p := New([]byte("<< /Type /Catalog /Pages 2 0 R /Count 3 >>"))
	got, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	d, ok := got.(primitive.Dict)
	if !ok {
		t.Fatalf("got %#v", got)
	}
	if !d.TypeIs("Catalog") {
		t.Fatalf("type mismatch: %v", d)
	}
	if d.Len() != 3 {
		t.Fatalf("want 3 entries, got %d", d.Len())
	}
}

func TestParseRelaxedDictDanglingKey(t *testing.T) {
	p := New([]byte("<< /A 1 /B >>"))
	d, err := p.ParseDict()
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 {
		t.Fatalf("expected only /A to survive, got %v", d)
	}
}

func TestParseIndirectObjectStreamHeader(t *testing.T) {
	src := "7 0 obj\n<< /Length 5 >>\nstream\nhello\nendstream\nendobj"
	p := New([]byte(src))
	num, gen, obj, off, isStream, err := p.ParseIndirectObject()
	if err != nil {
		t.Fatal(err)
	}
	if num != 7 || gen != 0 || !isStream {
		t.Fatalf("got num=%d gen=%d isStream=%v", num, gen, isStream)
	}
	s, ok := obj.(primitive.Stream)
	if !ok {
		t.Fatalf("expected Stream, got %#v", obj)
	}
	if !s.Dict.TypeIs("") && s.Dict.Len() != 1 {
		t.Fatalf("dict: %v", s.Dict)
	}
	raw := []byte(src)[off : off+5]
	if string(raw) != "hello" {
		t.Fatalf("stream body offset wrong: got %q", raw)
	}
}

func TestParseNestedArrayAndDict(t *testing.T) {
	p := New([]byte("<< /Kids [1 0 R [2 0 R 3 0 R]] >>"))
	got, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	d := got.(primitive.Dict)
	kids, _ := d.Get("Kids")
	arr := kids.(primitive.Array)
	if len(arr) != 2 {
		t.Fatalf("got %v", arr)
	}
	inner, ok := arr[1].(primitive.Array)
	if !ok || len(inner) != 2 {
		t.Fatalf("inner array: %#v", arr[1])
	}
}
