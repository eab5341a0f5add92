package xref

// LoadOptions configures how Load builds the cross-reference table. The
// zero value selects the package defaults.
type LoadOptions struct {
	// MaxChainLength bounds how many /Prev links Load follows before
	// giving up; zero selects the package default.
	MaxChainLength int
	// BestEffort makes Load fall back to rebuildByScanning -- reading
	// every "num gen obj" declaration and the last trailer dictionary
	// directly off the bytes -- when the structured startxref/xref-
	// section parse fails outright, instead of returning that error.
	BestEffort bool
}

func (o LoadOptions) maxChainLength() int {
	if o.MaxChainLength > 0 {
		return o.MaxChainLength
	}
	return maxPrevChain
}

// ResolverOptions configures a Resolver's guards against hostile input
// and its tolerance for structural damage. The zero value selects the
// package defaults.
type ResolverOptions struct {
	// MaxObjectStreamObjects bounds how many compressed objects a single
	// object stream may declare via /N; zero selects the package
	// default.
	MaxObjectStreamObjects int
	// BestEffort makes parseAtOffset fall back to scanning for a literal
	// "endstream" keyword when a stream's declared /Length is missing,
	// unreadable, or runs past the end of the file, instead of failing
	// the whole object.
	BestEffort bool
}

// defaultMaxObjectStreamObjects caps a crafted /N from forcing a huge
// slice allocation in decodeObjectStream before a single byte of the
// stream's content has even been validated.
const defaultMaxObjectStreamObjects = 100000

func (o ResolverOptions) maxObjectStreamObjects() int {
	if o.MaxObjectStreamObjects > 0 {
		return o.MaxObjectStreamObjects
	}
	return defaultMaxObjectStreamObjects
}
