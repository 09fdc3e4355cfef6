package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a pattern.
// Structurally equal patterns always share a fingerprint.
func Fingerprint(n Node) (string, error) {
	canonical, err := MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPattern, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
func MustFingerprint(n Node) string {
	fp, err := Fingerprint(n)
	if err != nil {
		panic(err)
	}
	return fp
}
