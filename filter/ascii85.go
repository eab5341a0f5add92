package filter

import (
	"bytes"
	"fmt"
)

const eodASCII85 = "~>"

// decodeASCII85 implements ASCII85Decode per PDF 1.7 §7.4.3: groups of 5
// ASCII characters (85^4 + 85^3 + ... + 1 radix) decode to 4 bytes, a
// trailing short group of n characters (2<=n<=5) decodes to n-1 bytes, the
// letter 'z' alone stands for four zero bytes, and the stream is
// terminated by "~>" (which may be omitted if src ends first, tolerated
// as a best-effort fallback).
func decodeASCII85(src []byte) ([]byte, error) {
	if i := bytes.Index(src, []byte(eodASCII85)); i >= 0 {
		src = src[:i]
	}
	var out bytes.Buffer
	var group [5]byte
	n := 0
	flush := func(count int) error {
		if count == 0 {
			return nil
		}
		for i := count; i < 5; i++ {
			group[i] = 'u'
		}
		var v uint32
		for _, c := range group {
			if c < '!' || c > 'u' {
				return fmt.Errorf("ascii85: invalid character %q", c)
			}
			v = v*85 + uint32(c-'!')
		}
		buf := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
		out.Write(buf[:count-1])
		return nil
	}
	for _, c := range src {
		switch {
		case c == 'z' && n == 0:
			out.Write([]byte{0, 0, 0, 0})
		case c == '\n' || c == '\r' || c == '\t' || c == ' ' || c == '\f' || c == 0:
			continue
		default:
			group[n] = c
			n++
			if n == 5 {
				if err := flush(5); err != nil {
					return nil, err
				}
				n = 0
			}
		}
	}
	if n > 0 {
		if err := flush(n); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}
