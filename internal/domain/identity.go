package domain

import (
	"fmt"
	"regexp"
)

// Identity format constants.
const (
	// URIScheme prefixes the content-independent location URI.
	URIScheme = "manifestlock"
	// URNAuthority is the namespace authority segment of every URN.
	URNAuthority = "manifestlock"
	// HashAlgorithm names the digest embedded in URNs and the ledger.
	HashAlgorithm = "sha256"
	// DefaultPlatform is used when neither label nor path yields a platform.
	DefaultPlatform = "core"
)

// Identity is the derived identity triple for a governed object. It is a
// pure function of the object's canonical form plus its platform and
// component classification.
type Identity struct {
	URI         string
	URN         string
	ContentHash string
	Platform    string
	Component   string
}

// urnPattern is the fixed URN grammar: lowercase hyphen-safe platform and
// component segments, a DNS-style name segment, and a 64-hex-digit digest.
var urnPattern = regexp.MustCompile(
	`^urn:` + URNAuthority + `:k8s:[a-z0-9]([a-z0-9-]*[a-z0-9])?:[a-z0-9]([a-z0-9-]*[a-z0-9])?:[a-z0-9]([a-z0-9.-]*[a-z0-9])?:sha256-[0-9a-f]{64}$`)

// ValidateURN checks a URN against the identity grammar. Both producers and
// consumers of identities are expected to validate against it.
func ValidateURN(urn string) error {
	if !urnPattern.MatchString(urn) {
		return fmt.Errorf("urn %q does not match the identity grammar", urn)
	}
	return nil
}
