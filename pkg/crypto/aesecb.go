package crypto

import "crypto/aes"

// ECBEncrypt performs a single deterministic AES-128 block encryption with
// no padding or chaining. Bluetooth Mesh uses it directly for two things:
// AES-CMAC's internal block function, and the PECB computation in network
// header obfuscation (Mesh Profile Section 3.8.7.3).
func ECBEncrypt(key, block []byte) ([16]byte, error) {
	var out [16]byte

	if len(key) != KeySize {
		return out, ErrInvalidKeySize
	}
	if len(block) != aesBlockSize {
		return out, ErrInvalidBlockSize
	}

	cipher, err := aes.NewCipher(key)
	if err != nil {
		return out, err
	}

	cipher.Encrypt(out[:], block)
	return out, nil
}
