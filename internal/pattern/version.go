package pattern

// Version constants for the pattern document and canonical encoding.
const (
	// DocumentVersion is the structural document schema version.
	DocumentVersion = "1"

	// DomainPattern is the hash domain for pattern fingerprints.
	DomainPattern = "minrx/pattern/v1"
)
