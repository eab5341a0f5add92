package filter

import (
	"bytes"
	"fmt"
	"io"

	hhlzw "github.com/hhrutter/lzw"
)

func decodeLZW(src []byte, params Params) ([]byte, error) {
	r := hhlzw.NewReader(bytes.NewReader(src), params.EarlyChange)
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lzw: %w", err)
	}
	return applyPredictor(raw, params)
}
