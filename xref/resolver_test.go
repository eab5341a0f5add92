package xref

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/corvid-labs/pdfread/backend"
	"github.com/corvid-labs/pdfread/pdf/pdferr"
	"github.com/corvid-labs/pdfread/primitive"
)

func TestResolverRegularObject(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	table := &Table{Entries: map[int]Entry{
		0: {Type: Free},
		1: {Type: InUse, Offset: int64(off1)},
	}}
	b := backend.New(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := NewResolver(b, table, nil, ResolverOptions{})

	obj, err := r.Resolve(primitive.Reference{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	d, ok := primitive.AsDict(obj)
	if !ok || !d.TypeIs("Catalog") {
		t.Fatalf("got %#v", obj)
	}

	// A second resolve of the same reference must hit the cache and
	// return the identical parsed value.
	obj2, err := r.Resolve(primitive.Reference{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	if obj2.String() != obj.String() {
		t.Fatalf("cache mismatch: %v vs %v", obj, obj2)
	}
}

func TestResolverFreeEntryReturnsFreeObjectError(t *testing.T) {
	table := &Table{Entries: map[int]Entry{0: {Type: Free}}}
	b := backend.New(bytes.NewReader(nil), 0)
	r := NewResolver(b, table, nil, ResolverOptions{})
	_, err := r.Resolve(primitive.Reference{Number: 0})
	if err == nil {
		t.Fatal("expected an error resolving a free entry, got nil")
	}
	var perr *pdferr.Error
	if !errors.As(err, &perr) || perr.Kind != pdferr.KindFreeObject {
		t.Fatalf("expected a FreeObject error, got %v", err)
	}
}

func TestResolverUnknownObjectResolvesToNull(t *testing.T) {
	table := &Table{Entries: map[int]Entry{}}
	b := backend.New(bytes.NewReader(nil), 0)
	r := NewResolver(b, table, nil, ResolverOptions{})
	obj, err := r.Resolve(primitive.Reference{Number: 99})
	if err != nil {
		t.Fatal(err)
	}
	if !primitive.IsNull(obj) {
		t.Fatalf("expected null for unknown object, got %#v", obj)
	}
}

func TestResolverStreamLengthIndirect(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	off1 := buf.Len()
	buf.WriteString("1 0 obj\n5\nendobj\n")
	off2 := buf.Len()
	body := "hello"
	fmt.Fprintf(&buf, "2 0 obj\n<< /Length 1 0 R >>\nstream\n%s\nendstream\nendobj\n", body)

	table := &Table{Entries: map[int]Entry{
		1: {Type: InUse, Offset: int64(off1)},
		2: {Type: InUse, Offset: int64(off2)},
	}}
	b := backend.New(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := NewResolver(b, table, nil, ResolverOptions{})

	obj, err := r.Resolve(primitive.Reference{Number: 2})
	if err != nil {
		t.Fatal(err)
	}
	s, ok := primitive.AsStream(obj)
	if !ok {
		t.Fatalf("got %#v", obj)
	}
	if string(s.Raw) != body {
		t.Fatalf("got raw %q", s.Raw)
	}
}

func TestResolverCompressedObjectStream(t *testing.T) {
	// Two sub-objects packed into one object stream, referenced from
	// outside via Compressed xref entries.
	prolog := "5 0 6 10"
	content := "<< /A 1 >><< /B 2 >>"
	first := len(prolog) + 1 // +1 for the separating space this fixture writes

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	off2 := buf.Len()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /ObjStm /N 2 /First %d /Length %d >>\nstream\n%s %s\nendstream\nendobj\n",
		first, len(prolog)+1+len(content), prolog, content)

	table := &Table{Entries: map[int]Entry{
		2: {Type: InUse, Offset: int64(off2)},
		5: {Type: Compressed, StreamObjectNumber: 2, StreamIndex: 0},
		6: {Type: Compressed, StreamObjectNumber: 2, StreamIndex: 1},
	}}
	b := backend.New(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := NewResolver(b, table, nil, ResolverOptions{})

	o5, err := r.Resolve(primitive.Reference{Number: 5})
	if err != nil {
		t.Fatal(err)
	}
	d5, ok := primitive.AsDict(o5)
	if !ok {
		t.Fatalf("got %#v", o5)
	}
	a, ok := d5.Get("A")
	if !ok || a.String() != "1" {
		t.Fatalf("object 5: got %v", d5)
	}

	o6, err := r.Resolve(primitive.Reference{Number: 6})
	if err != nil {
		t.Fatal(err)
	}
	d6, ok := primitive.AsDict(o6)
	if !ok {
		t.Fatalf("got %#v", o6)
	}
	bv, ok := d6.Get("B")
	if !ok || bv.String() != "2" {
		t.Fatalf("object 6: got %v", d6)
	}
}
