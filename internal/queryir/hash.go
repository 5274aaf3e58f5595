package queryir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainQuery is the domain prefix of query fingerprints. The version
// suffix allows the encoding to change without colliding with old hashes.
const DomainQuery = "pickaxe/query/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a content-addressed identity for a query
// description, covering its encoded tree including column types. Queries
// with the same fingerprint compile to the same SQL and bind the same
// values; queries differing only in column types share SQL but not a
// fingerprint.
func Fingerprint(q *Query) (string, error) {
	tree, err := Encode(q)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	canonical, err := MarshalCanonical(tree)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}
