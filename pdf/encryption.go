package pdf

import (
	"fmt"

	"github.com/corvid-labs/pdfread/backend"
	"github.com/corvid-labs/pdfread/crypt"
	"github.com/corvid-labs/pdfread/pdf/pdferr"
	"github.com/corvid-labs/pdfread/primitive"
	"github.com/corvid-labs/pdfread/xref"
)

// setupEncryption inspects the trailer's /Encrypt entry, if any, and
// derives the document's RC4 handler from password. The /Encrypt
// dictionary itself is never encrypted, so it is read through a throwaway
// resolver with no handler attached -- this is the one place the library
// has to break the usual "resolve through the real resolver" rule, because
// the real resolver cannot exist until this function returns.
func setupEncryption(b *backend.Backend, table *xref.Table, password string) (*crypt.Handler, error) {
	encVal, ok := table.Trailer.Get("Encrypt")
	if !ok {
		return nil, nil
	}
	bootstrap := xref.NewResolver(b, table, nil, xref.ResolverOptions{})
	encObj, err := bootstrap.ResolveAny(encVal)
	if err != nil {
		return nil, pdferr.WrapDefault(pdferr.KindOther, fmt.Errorf("resolving /Encrypt: %w", err))
	}
	encDict, ok := primitive.AsDict(encObj)
	if !ok {
		return nil, pdferr.UnexpectedPrimitive("dictionary", "non-dictionary")
	}

	if filterName, ok := encDict.Get("Filter"); ok {
		if n, _ := primitive.AsName(filterName); n != "Standard" {
			return nil, pdferr.Other(fmt.Sprintf("security handler %q is not supported (only /Standard)", n))
		}
	}
	r, _ := primitive.AsInt(encDict.GetDefault("R", primitive.Integer(0)))
	if r < 2 || r > 4 {
		return nil, pdferr.Other(fmt.Sprintf("encryption revision R=%d is not supported (only RC4 revisions 2-4)", r))
	}
	o, ok := primitive.AsString(encDict.GetDefault("O", primitive.Null{}))
	if !ok {
		return nil, pdferr.MissingEntry("Encrypt", "O")
	}
	u, ok := primitive.AsString(encDict.GetDefault("U", primitive.Null{}))
	if !ok {
		return nil, pdferr.MissingEntry("Encrypt", "U")
	}
	p, ok := primitive.AsInt(encDict.GetDefault("P", primitive.Null{}))
	if !ok {
		return nil, pdferr.MissingEntry("Encrypt", "P")
	}
	keyBits := 40
	if v, ok := primitive.AsInt(encDict.GetDefault("Length", primitive.Integer(40))); ok {
		keyBits = v
	}
	encryptMetadata := true
	if v, ok := encDict.Get("EncryptMetadata"); ok {
		if b, ok := v.(primitive.Bool); ok {
			encryptMetadata = bool(b)
		}
	}

	var id0 []byte
	if idArr, ok := primitive.AsArray(table.Trailer.GetDefault("ID", primitive.Null{})); ok && len(idArr) > 0 {
		id0, _ = primitive.AsString(idArr[0])
	}

	params := crypt.Params{
		R:               r,
		O:               o,
		U:               u,
		P:               int32(p),
		ID0:             id0,
		KeyLengthBits:   keyBits,
		EncryptMetadata: encryptMetadata,
	}
	ok2, handler, err := crypt.ValidateUserPassword(password, params)
	if err != nil {
		return nil, pdferr.WrapDefault(pdferr.KindOther, err)
	}
	if !ok2 {
		return nil, pdferr.InvalidPassword()
	}
	return handler, nil
}
