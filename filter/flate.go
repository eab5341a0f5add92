package filter

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

func decodeFlate(src []byte, params Params) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil && raw == nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	return applyPredictor(raw, params)
}

// applyPredictor undoes the PNG or TIFF predictor a /DecodeParms entry
// selects. Predictor 1 (none) and 0 (also none, some producers use it
// interchangeably) pass the data through unchanged; predictor 2 is TIFF
// horizontal differencing; predictors 10-15 select the PNG per-row filter
// byte scheme, where the filter can vary row to row and is read from the
// first byte of each encoded row.
//
// This post-processing is specified as Flate-specific by most readers but
// PDF actually allows /DecodeParms on LZWDecode too (PDF 1.7 §7.4.4), so
// this function is shared by both filters rather than only Flate's.
func applyPredictor(data []byte, params Params) ([]byte, error) {
	if params.Predictor <= 1 {
		return data, nil
	}
	bpp := (params.Colors*params.BitsPerComponent + 7) / 8
	if bpp < 1 {
		bpp = 1
	}
	rowSize := (params.Colors*params.BitsPerComponent*params.Columns + 7) / 8

	if params.Predictor == 2 {
		return applyTIFFPredictor(data, rowSize, bpp, params.BitsPerComponent)
	}
	return applyPNGPredictor(data, rowSize, bpp)
}

func applyTIFFPredictor(data []byte, rowSize, bpp, bitsPerComponent int) ([]byte, error) {
	if bitsPerComponent != 8 {
		// Sub-byte TIFF prediction is rare in practice and not needed by
		// anything this library exposes (raw XObject image bytes are
		// handed back undecoded to pixels regardless); treat the data as
		// unpredicted rather than fail the whole stream.
		return data, nil
	}
	out := append([]byte(nil), data...)
	for start := 0; start+rowSize <= len(out); start += rowSize {
		row := out[start : start+rowSize]
		for i := bpp; i < len(row); i++ {
			row[i] += row[i-bpp]
		}
	}
	return out, nil
}

func applyPNGPredictor(data []byte, rowSize, bpp int) ([]byte, error) {
	stride := rowSize + 1
	if stride <= 1 {
		return data, nil
	}
	var out bytes.Buffer
	prev := make([]byte, rowSize)
	for off := 0; off+stride <= len(data); off += stride {
		filterType := data[off]
		cur := append([]byte(nil), data[off+1:off+stride]...)
		if err := processRow(filterType, cur, prev, bpp); err != nil {
			return nil, err
		}
		out.Write(cur)
		prev = cur
	}
	return out.Bytes(), nil
}

// processRow undoes a single PNG row filter in place, given the decoded
// previous row.
func processRow(filterType byte, cur, prev []byte, bpp int) error {
	switch filterType {
	case 0: // None
	case 1: // Sub
		for i := range cur {
			var left byte
			if i >= bpp {
				left = cur[i-bpp]
			}
			cur[i] += left
		}
	case 2: // Up
		for i := range cur {
			cur[i] += prev[i]
		}
	case 3: // Average
		for i := range cur {
			var left int
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			cur[i] += byte((left + int(prev[i])) / 2)
		}
	case 4: // Paeth
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			cur[i] += filterPaeth(left, prev[i], upLeft)
		}
	default:
		return fmt.Errorf("filter: invalid PNG row filter type %d", filterType)
	}
	return nil
}

// filterPaeth is the PNG Paeth predictor (RFC 2083 §6.6).
func filterPaeth(a, b, c byte) byte {
	pa := abs32(int32(b) - int32(c))
	pb := abs32(int32(a) - int32(c))
	pc := abs32(int32(a) + int32(b) - 2*int32(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs32(x int32) int32 {
	mask := x >> 31
	return (x ^ mask) - mask
}
