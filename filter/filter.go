// Package filter implements the PDF stream filter pipeline: FlateDecode
// (with the PNG/TIFF predictor family), LZWDecode, ASCII85Decode and
// ASCIIHexDecode, plus the /DecodeParms-driven predictor post-processing
// shared by the two decompression filters.
package filter

import (
	"fmt"

	"github.com/corvid-labs/pdfread/primitive"
)

// Name identifies a stream filter by its PDF dictionary name.
type Name string

const (
	ASCII85Decode Name = "ASCII85Decode"
	ASCIIHexDecode Name = "ASCIIHexDecode"
	LZWDecode      Name = "LZWDecode"
	FlateDecode    Name = "FlateDecode"
	RunLengthDecode Name = "RunLengthDecode"
	DCTDecode      Name = "DCTDecode"
	CCITTFaxDecode Name = "CCITTFaxDecode"
	JPXDecode      Name = "JPXDecode"
	Crypt          Name = "Crypt"
)

// Params is one /DecodeParms entry: the predictor configuration that
// governs Flate/LZW post-processing, and filter-specific flags for
// filters this package does not itself decode pixel data for.
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
	EarlyChange      bool // LZWDecode only; defaults to true
}

// DefaultParams returns the PDF-defined defaults for an absent
// /DecodeParms entry.
func DefaultParams() Params {
	return Params{Predictor: 1, Colors: 1, BitsPerComponent: 8, Columns: 1, EarlyChange: true}
}

// ParamsFromDict reads a /DecodeParms dictionary, applying PDF's defaults
// for any entry it omits.
func ParamsFromDict(d primitive.Dict) (Params, error) {
	p := DefaultParams()
	if v, ok := d.Get("Predictor"); ok {
		n, ok := primitive.AsInt(v)
		if !ok {
			return p, fmt.Errorf("filter: /Predictor must be an integer")
		}
		p.Predictor = n
	}
	if v, ok := d.Get("Colors"); ok {
		n, ok := primitive.AsInt(v)
		if !ok || n <= 0 {
			return p, fmt.Errorf("filter: /Colors must be a positive integer")
		}
		p.Colors = n
	}
	if v, ok := d.Get("BitsPerComponent"); ok {
		n, ok := primitive.AsInt(v)
		if !ok {
			return p, fmt.Errorf("filter: /BitsPerComponent must be an integer")
		}
		switch n {
		case 1, 2, 4, 8, 16:
		default:
			return p, fmt.Errorf("filter: invalid /BitsPerComponent %d", n)
		}
		p.BitsPerComponent = n
	}
	if v, ok := d.Get("Columns"); ok {
		n, ok := primitive.AsInt(v)
		if !ok || n <= 0 {
			return p, fmt.Errorf("filter: /Columns must be a positive integer")
		}
		p.Columns = n
	}
	if v, ok := d.Get("EarlyChange"); ok {
		n, ok := primitive.AsInt(v)
		p.EarlyChange = !ok || n != 0
	}
	switch p.Predictor {
	case 0, 1, 2, 10, 11, 12, 13, 14, 15:
	default:
		return p, fmt.Errorf("filter: invalid /Predictor %d", p.Predictor)
	}
	return p, nil
}

// Decode applies the named filter to src, returning the decoded bytes.
// params is ignored by filters that have no predictor/early-change
// configuration.
func Decode(name Name, src []byte, params Params) ([]byte, error) {
	switch name {
	case FlateDecode:
		return decodeFlate(src, params)
	case LZWDecode:
		return decodeLZW(src, params)
	case ASCII85Decode:
		return decodeASCII85(src)
	case ASCIIHexDecode:
		return decodeASCIIHex(src)
	case Crypt:
		return src, nil
	default:
		return nil, fmt.Errorf("filter: %s not supported", name)
	}
}

// DecodeChain applies a sequence of filters in order, as a PDF /Filter
// array specifies a left-to-right pipeline (outermost encoding first).
func DecodeChain(names []Name, paramsList []Params, src []byte) ([]byte, error) {
	out := src
	for i, name := range names {
		p := DefaultParams()
		if i < len(paramsList) {
			p = paramsList[i]
		}
		var err error
		out, err = Decode(name, out, p)
		if err != nil {
			return nil, fmt.Errorf("filter: stage %d (%s): %w", i, name, err)
		}
	}
	return out, nil
}
