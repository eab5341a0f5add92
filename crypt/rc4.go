// Package crypt implements the PDF 1.7 standard security handler
// restricted to the RC4-based revisions (R2-R4). It derives the file
// encryption key from the user password (Algorithm 2), validates a
// supplied password against /U (Algorithm 5), and derives per-object keys
// for decrypting strings and streams (Algorithm 1).
//
// The teacher repository's own attempt at this (reader/file/encryption.go)
// does not compile -- an empty-bodied validateOwnerPassword, references to
// undeclared fields, a stray fmt.Println(encrypt) passing a type as a
// value -- so only its naming and dictionary shape are carried over; the
// algorithms below are implemented directly against the PDF 1.7 spec text,
// using the same crypto/md5 and crypto/rc4 primitives the teacher reached
// for.
package crypt

import (
	"bytes"
	"crypto/md5"
	"crypto/rc4"
	"fmt"
)

// padding is the fixed 32-byte password pad from PDF 1.7 §7.6.3.3,
// Algorithm 2, step (a).
var padding = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// Handler implements the standard RC4 security handler for one document,
// holding the document-wide encryption key derived from Algorithm 2.
type Handler struct {
	key     []byte
	R       int
	keyLenB int // key length in bytes
}

// Params collects the /Encrypt dictionary fields the RC4 standard handler
// needs. The key length comes from KeyLengthBits, defaulting to 40 bits
// when it is zero; revision 2 always uses a 40-bit key.
type Params struct {
	R              int    // /R, revision: 2, 3, or 4
	O              []byte // /O, 32 bytes
	U              []byte // /U, 32 bytes
	P              int32  // /P, permission flags
	ID0            []byte // first element of the file /ID array
	KeyLengthBits  int    // /Length, defaults to 40
	EncryptMetadata bool  // /EncryptMetadata, defaults to true (R>=4)
}

func padPassword(password []byte) []byte {
	out := make([]byte, 32)
	n := copy(out, password)
	copy(out[n:], padding)
	return out
}

// NewHandler derives the document encryption key from the (possibly
// empty) user password, per Algorithm 2.
func NewHandler(password string, p Params) (*Handler, error) {
	if p.R < 2 || p.R > 4 {
		return nil, fmt.Errorf("crypt: unsupported revision R=%d (only RC4 revisions 2-4 are supported)", p.R)
	}
	keyLenBytes := p.KeyLengthBits / 8
	if keyLenBytes <= 0 {
		keyLenBytes = 5
	}
	if p.R == 2 {
		keyLenBytes = 5
	}

	h := md5.New()
	h.Write(padPassword([]byte(password)))
	h.Write(p.O)
	var pbuf [4]byte
	pbuf[0] = byte(p.P)
	pbuf[1] = byte(p.P >> 8)
	pbuf[2] = byte(p.P >> 16)
	pbuf[3] = byte(p.P >> 24)
	h.Write(pbuf[:])
	h.Write(p.ID0)
	if p.R >= 4 && !p.EncryptMetadata {
		h.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	}
	sum := h.Sum(nil)

	if p.R >= 3 {
		for i := 0; i < 50; i++ {
			sum2 := md5.Sum(sum[:keyLenBytes])
			sum = sum2[:]
		}
	}

	return &Handler{key: append([]byte(nil), sum[:keyLenBytes]...), R: p.R, keyLenB: keyLenBytes}, nil
}

// Key returns the derived document encryption key.
func (h *Handler) Key() []byte { return append([]byte(nil), h.key...) }

// ComputeU computes the /U dictionary entry for the handler's key and ID,
// per Algorithm 4 (R2) or Algorithm 5 (R3/R4), so a caller (or test) can
// validate a password by comparing against the stored /U value.
func ComputeU(key []byte, r int, id0 []byte) ([]byte, error) {
	switch r {
	case 2:
		c, err := rc4.NewCipher(key)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 32)
		c.XORKeyStream(out, padding)
		return out, nil
	case 3, 4:
		h := md5.New()
		h.Write(padding)
		h.Write(id0)
		digest := h.Sum(nil)
		c, err := rc4.NewCipher(key)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 16)
		c.XORKeyStream(out, digest)
		for i := byte(1); i <= 19; i++ {
			xored := make([]byte, len(key))
			for j := range key {
				xored[j] = key[j] ^ i
			}
			c2, err := rc4.NewCipher(xored)
			if err != nil {
				return nil, err
			}
			c2.XORKeyStream(out, out)
		}
		return append(out, make([]byte, 16)...), nil
	default:
		return nil, fmt.Errorf("crypt: unsupported revision R=%d", r)
	}
}

// ValidateUserPassword reports whether password is the correct user
// password for the document, per Algorithm 6 (which just compares
// ComputeU's output to the stored /U, truncated to 16 bytes for R>=3).
func ValidateUserPassword(password string, p Params) (bool, *Handler, error) {
	h, err := NewHandler(password, p)
	if err != nil {
		return false, nil, err
	}
	computed, err := ComputeU(h.key, p.R, p.ID0)
	if err != nil {
		return false, nil, err
	}
	if p.R == 2 {
		return bytes.Equal(computed, p.U), h, nil
	}
	n := 16
	if len(p.U) < n {
		n = len(p.U)
	}
	return bytes.Equal(computed[:n], p.U[:n]), h, nil
}

// ObjectKey derives the per-object key used to decrypt strings and
// streams belonging to indirect object (objNumber, generation), per
// Algorithm 1.
func (h *Handler) ObjectKey(objNumber, generation int) []byte {
	m := md5.New()
	m.Write(h.key)
	m.Write([]byte{byte(objNumber), byte(objNumber >> 8), byte(objNumber >> 16)})
	m.Write([]byte{byte(generation), byte(generation >> 8)})
	sum := m.Sum(nil)
	n := h.keyLenB + 5
	if n > 16 {
		n = 16
	}
	return sum[:n]
}

// Decrypt decrypts data (a string or stream body) belonging to indirect
// object (objNumber, generation) using RC4 and returns the decrypted bytes
// in a new slice; data itself is left unchanged.
func (h *Handler) Decrypt(objNumber, generation int, data []byte) ([]byte, error) {
	key := h.ObjectKey(objNumber, generation)
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: %w", err)
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out, nil
}
