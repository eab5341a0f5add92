package filter

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/corvid-labs/pdfread/primitive"
)

func emptyDict() primitive.Dict { return primitive.NewDict() }

func TestDecodeFlateNoPredictor(t *testing.T) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write([]byte("hello world"))
	w.Close()
	out, err := Decode(FlateDecode, buf.Bytes(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "hello world" {
		t.Fatalf("got %q", out)
	}
}

func TestDecodeFlatePNGUpPredictor(t *testing.T) {
	// Two 3-byte rows, 1 color component, 8 bpc: row0 = Up(0,0,0)->unchanged
	// since prev is zero, row1 = Up applied to a constant delta.
	raw := []byte{
		2, 10, 20, 30, // filter type 2 (Up), row0
		2, 1, 1, 1, // filter type 2 (Up), row1 deltas
	}
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(raw)
	w.Close()
	out, err := Decode(FlateDecode, buf.Bytes(), Params{Predictor: 12, Colors: 1, BitsPerComponent: 8, Columns: 3})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{10, 20, 30, 11, 21, 31}
	if !bytes.Equal(out, want) {
		t.Fatalf("got %v want %v", out, want)
	}
}

func TestDecodeASCII85(t *testing.T) {
	// Group encodes the 32-bit value 1 as base-85 digits (0,0,0,0,1) offset
	// by '!' (33), which decodes back to the big-endian bytes {0,0,0,1}.
	out, err := decodeASCII85([]byte("!!!!\"~>"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0, 0, 0, 1}) {
		t.Fatalf("got %v", out)
	}
}

func TestDecodeASCII85ZShorthand(t *testing.T) {
	out, err := decodeASCII85([]byte(`z~>`))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0, 0, 0, 0}) {
		t.Fatalf("got %v", out)
	}
}

func TestDecodeASCIIHex(t *testing.T) {
	out, err := decodeASCIIHex([]byte("48656C6C6F>"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "Hello" {
		t.Fatalf("got %q", out)
	}
}

func TestDecodeASCIIHexOddDigits(t *testing.T) {
	out, err := decodeASCIIHex([]byte("901>"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0x90, 0x10}) {
		t.Fatalf("got %v", out)
	}
}

func TestParamsFromDictDefaults(t *testing.T) {
	p, err := ParamsFromDict(emptyDict())
	if err != nil {
		t.Fatal(err)
	}
	if p.Predictor != 1 || p.Colors != 1 || p.BitsPerComponent != 8 || p.Columns != 1 || !p.EarlyChange {
		t.Fatalf("got %+v", p)
	}
}
