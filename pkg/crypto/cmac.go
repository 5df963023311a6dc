package crypto

import (
	"crypto/aes"

	"github.com/aead/cmac"
)

// CMAC computes AES-CMAC (NIST SP 800-38B) over msg with the given 16-byte
// key. msg may be empty. This is the PRF s1 and K2 are both built on (Mesh
// Profile Section 3.8.2.3, 3.8.2.6).
func CMAC(key, msg []byte) ([16]byte, error) {
	var out [16]byte

	if len(key) != KeySize {
		return out, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return out, err
	}

	mac, err := cmac.Sum(msg, block, aesBlockSize)
	if err != nil {
		return out, err
	}

	copy(out[:], mac)
	return out, nil
}
