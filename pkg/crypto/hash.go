// Package crypto implements the cryptographic primitives Bluetooth Mesh
// Profile v1.0.1 Section 3.8 requires for outbound PDU construction:
// AES-128 ECB, AES-CMAC, AES-CCM, and the s1/K2 derivations built on them.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// FingerprintSize is the truncated length used for diagnostic key
// fingerprints - enough to distinguish keys in a log line without
// printing the key itself.
const FingerprintSize = 4

// KeyFingerprint returns a short, non-reversible SHA-256-derived tag for a
// key, safe to include in diagnostic logs in place of the raw key bytes.
func KeyFingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:FingerprintSize])
}

// NewSHA256 returns a new hash.Hash for computing SHA-256 digests
// incrementally. KeyFingerprint does not use it; it calls sha256.Sum256.
func NewSHA256() hash.Hash {
	return sha256.New()
}
