package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 iteration bounds for passphrase-based key backup (pkg/backup).
// Not part of the mesh wire protocol - K2/s1 key derivation is CMAC-based,
// not HKDF/PBKDF2 - these exist purely to stretch an operator passphrase
// before sealing exported key material for cold storage.
const (
	PBKDF2IterationsMin = 10000
	PBKDF2IterationsMax = 1000000
)

// HKDFSHA256 derives key material using HKDF-SHA256 (RFC 5869).
func HKDFSHA256(inputKey, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(sha256.New, inputKey, salt, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// HKDFExpandSHA256 performs only the HKDF-Expand step, used by pkg/backup
// to derive its encryption subkey from a stretched passphrase key.
func HKDFExpandSHA256(prk, info []byte, length int) ([]byte, error) {
	reader := hkdf.Expand(sha256.New, prk, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// PBKDF2SHA256 derives a key from a passphrase using PBKDF2-HMAC-SHA256.
func PBKDF2SHA256(password, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New)
}
