// Package pdf implements the File facade: opening a PDF, navigating its
// catalog and page tree, and exposing the handful of supplemental domain
// types (fonts, XObjects, document info, file attachments) reachable from
// a page's resources.
package pdf

import "github.com/go-playground/validator/v10"

// ParsingMode selects how tolerant the file facade is of malformed input.
type ParsingMode string

const (
	// Strict fails outright on any structural error.
	Strict ParsingMode = "strict"
	// BestEffort enables the recovery paths real-world PDF producers make
	// necessary: scanning for "endstream" when a declared /Length looks
	// wrong, and rebuilding a corrupt cross-reference table by scanning
	// the file for "obj" declarations and a "trailer" dictionary.
	BestEffort ParsingMode = "best-effort"
)

// Options configures how a File is opened.
type Options struct {
	// Password is tried as the user password if the document is
	// encrypted; the empty string is itself a valid password to try.
	Password string `validate:"-"`
	Mode     ParsingMode `validate:"omitempty,oneof=strict best-effort"`
	// MaxObjectStreamObjects bounds how many compressed objects a single
	// object stream may declare, guarding against a crafted /N used to
	// force a huge allocation.
	MaxObjectStreamObjects int `validate:"gte=0"`
	// MaxXRefChainLength bounds how many /Prev links are followed when
	// loading the cross-reference table; links past the bound are not
	// followed. A chain that revisits an offset is stopped by the
	// visited-offsets check regardless of this bound.
	MaxXRefChainLength int `validate:"gte=0"`
}

// DefaultOptions returns reasonable defaults: strict parsing, no password,
// generous but finite guard limits.
func DefaultOptions() Options {
	return Options{
		Mode:                   Strict,
		MaxObjectStreamObjects: 100000,
		MaxXRefChainLength:     1024,
	}
}

// Validate checks the option values are well-formed.
func (o Options) Validate() error {
	return validator.New().Struct(o)
}
