package filter

import "fmt"

const eodHexDecode = '>'

// decodeASCIIHex implements ASCIIHexDecode per PDF 1.7 §7.4.2: whitespace
// is ignored, and an odd number of hex digits before the terminating '>'
// is completed with an implicit trailing '0'.
func decodeASCIIHex(src []byte) ([]byte, error) {
	var out []byte
	var hi byte
	haveHi := false
	for _, c := range src {
		if c == eodHexDecode {
			break
		}
		if isHexWhitespace(c) {
			continue
		}
		v, ok := hexVal(c)
		if !ok {
			return nil, fmt.Errorf("asciihex: invalid character %q", c)
		}
		if !haveHi {
			hi = v
			haveHi = true
		} else {
			out = append(out, hi<<4|v)
			haveHi = false
		}
	}
	if haveHi {
		out = append(out, hi<<4)
	}
	return out, nil
}

func isHexWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
