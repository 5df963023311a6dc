// AES-CCM authenticated encryption, as required by Bluetooth Mesh Profile
// v1.0.1 Section 3.8 for both transport-layer (4-byte MIC) and
// network-layer (8-byte MIC) encryption. Implements NIST SP 800-38C with
// q=2 (13-byte nonce, so L = 15-13 = 2) and empty associated data, which is
// all the mesh protocol ever needs.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

const (
	// KeySize is the AES-128 key size in bytes.
	KeySize = 16

	// NonceSize is the nonce length mandated for mesh transport and
	// network nonces (Mesh Profile Section 3.8.5, 3.8.6).
	NonceSize = 13

	aesBlockSize = 16
)

// MIC lengths used by the two layers that call into AES-CCM.
const (
	TransportMICSize = 4 // unsegmented access PDU (SZMIC=0)
	NetworkMICSize   = 8 // network PDU, always 64-bit
)

var (
	ErrInvalidKeySize     = errors.New("crypto: invalid key size, must be 16 bytes")
	ErrInvalidNonceSize   = errors.New("crypto: invalid nonce size")
	ErrInvalidMICSize     = errors.New("crypto: invalid MIC size, must be 4, 6, 8, 10, 12, 14, or 16")
	ErrPlaintextTooLong   = errors.New("crypto: plaintext too long for CCM length field")
	ErrCiphertextTooShort = errors.New("crypto: ciphertext shorter than MIC")
	ErrAuthFailed         = errors.New("crypto: message authentication failed")
	ErrInvalidBlockSize   = errors.New("crypto: invalid AES block size, must be 16 bytes")
)

// AESCCM is an AES-128-CCM instance with a fixed nonce length and MIC size.
type AESCCM struct {
	block   cipher.Block
	micSize int // M: MIC/tag size in bytes
	lenSize int // L: length-field size, 15 - nonceSize
}

// NewAESCCM builds an AES-CCM instance for the mesh-mandated 13-byte nonce
// and the given MIC size (TransportMICSize or NetworkMICSize).
func NewAESCCM(key []byte, micSize int) (*AESCCM, error) {
	return NewAESCCMWithNonceSize(key, NonceSize, micSize)
}

// NewAESCCMWithNonceSize allows a non-default nonce length, used only by
// the RFC 3610 conformance tests in aesccm_test.go.
func NewAESCCMWithNonceSize(key []byte, nonceSize, micSize int) (*AESCCM, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	lenSize := 15 - nonceSize
	if lenSize < 2 || lenSize > 8 {
		return nil, ErrInvalidNonceSize
	}

	if micSize < 4 || micSize > 16 || micSize%2 != 0 {
		return nil, ErrInvalidMICSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return &AESCCM{block: block, micSize: micSize, lenSize: lenSize}, nil
}

// NonceSize returns the nonce length this instance was configured for.
func (c *AESCCM) NonceSize() int { return 15 - c.lenSize }

// MICSize returns the authentication tag length this instance was configured for.
func (c *AESCCM) MICSize() int { return c.micSize }

// Seal encrypts and authenticates plaintext, returning ciphertext || MIC.
// aad may be nil or empty; the mesh protocol never uses associated data.
func (c *AESCCM) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != c.NonceSize() {
		return nil, ErrInvalidNonceSize
	}

	maxPlaintextLen := (1 << (8 * c.lenSize)) - 1
	if len(plaintext) > maxPlaintextLen {
		return nil, ErrPlaintextTooLong
	}

	tag := c.computeTag(nonce, plaintext, aad)

	out := make([]byte, len(plaintext)+c.micSize)

	s0 := c.generateS0(nonce)
	for i := 0; i < c.micSize; i++ {
		out[len(plaintext)+i] = tag[i] ^ s0[i]
	}

	c.ctrCrypt(nonce, out[:len(plaintext)], plaintext)

	return out, nil
}

// Open decrypts and verifies ciphertext || MIC, returning the plaintext.
func (c *AESCCM) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != c.NonceSize() {
		return nil, ErrInvalidNonceSize
	}

	if len(ciphertext) < c.micSize {
		return nil, ErrCiphertextTooShort
	}

	encData := ciphertext[:len(ciphertext)-c.micSize]
	encTag := ciphertext[len(ciphertext)-c.micSize:]

	s0 := c.generateS0(nonce)
	receivedTag := make([]byte, c.micSize)
	for i := 0; i < c.micSize; i++ {
		receivedTag[i] = encTag[i] ^ s0[i]
	}

	plaintext := make([]byte, len(encData))
	c.ctrCrypt(nonce, plaintext, encData)

	expectedTag := c.computeTag(nonce, plaintext, aad)

	if subtle.ConstantTimeCompare(receivedTag, expectedTag[:c.micSize]) != 1 {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// computeTag runs CBC-MAC over B_0, AAD, and plaintext per NIST 800-38C Section 6.1.
func (c *AESCCM) computeTag(nonce, plaintext, aad []byte) []byte {
	var b0 [aesBlockSize]byte
	flags := byte(0)
	if len(aad) > 0 {
		flags |= 1 << 6
	}
	flags |= byte((c.micSize-2)/2) << 3
	flags |= byte(c.lenSize - 1)

	b0[0] = flags
	nonceSize := c.NonceSize()
	copy(b0[1:1+nonceSize], nonce)
	c.putLength(b0[1+nonceSize:], len(plaintext))

	mac := make([]byte, aesBlockSize)
	c.block.Encrypt(mac, b0[:])

	if len(aad) > 0 {
		var aadBlock [aesBlockSize]byte
		aadLen := len(aad)
		var headerLen int

		switch {
		case aadLen < (1<<16)-(1<<8):
			binary.BigEndian.PutUint16(aadBlock[0:2], uint16(aadLen))
			headerLen = 2
		case aadLen < (1 << 32):
			aadBlock[0], aadBlock[1] = 0xFF, 0xFE
			binary.BigEndian.PutUint32(aadBlock[2:6], uint32(aadLen))
			headerLen = 6
		default:
			aadBlock[0], aadBlock[1] = 0xFF, 0xFF
			binary.BigEndian.PutUint64(aadBlock[2:10], uint64(aadLen))
			headerLen = 10
		}

		firstBlockAAD := aesBlockSize - headerLen
		if firstBlockAAD > len(aad) {
			firstBlockAAD = len(aad)
		}
		copy(aadBlock[headerLen:], aad[:firstBlockAAD])

		xorBlock(mac, aadBlock[:])
		c.block.Encrypt(mac, mac)

		remaining := aad[firstBlockAAD:]
		for len(remaining) > 0 {
			var block [aesBlockSize]byte
			n := copy(block[:], remaining)
			remaining = remaining[n:]
			xorBlock(mac, block[:])
			c.block.Encrypt(mac, mac)
		}
	}

	remaining := plaintext
	for len(remaining) > 0 {
		var block [aesBlockSize]byte
		n := copy(block[:], remaining)
		remaining = remaining[n:]
		xorBlock(mac, block[:])
		c.block.Encrypt(mac, mac)
	}

	return mac[:c.micSize]
}

func xorBlock(dst, src []byte) {
	for i := 0; i < aesBlockSize; i++ {
		dst[i] ^= src[i]
	}
}

// generateS0 computes S_0 = E(K, A_0), the counter-0 block used to mask the tag.
func (c *AESCCM) generateS0(nonce []byte) []byte {
	var a0 [aesBlockSize]byte
	a0[0] = byte(c.lenSize - 1)
	nonceSize := c.NonceSize()
	copy(a0[1:1+nonceSize], nonce)

	s0 := make([]byte, aesBlockSize)
	c.block.Encrypt(s0, a0[:])
	return s0
}

// ctrCrypt XORs src with the CTR keystream starting at counter 1, per NIST
// 800-38C Appendix A.3.
func (c *AESCCM) ctrCrypt(nonce []byte, dst, src []byte) {
	var ctr [aesBlockSize]byte
	ctr[0] = byte(c.lenSize - 1)
	nonceSize := c.NonceSize()
	copy(ctr[1:1+nonceSize], nonce)
	ctr[aesBlockSize-1] = 1

	var keystream [aesBlockSize]byte
	for i := 0; i < len(src); i += aesBlockSize {
		c.block.Encrypt(keystream[:], ctr[:])

		end := i + aesBlockSize
		if end > len(src) {
			end = len(src)
		}
		for j := i; j < end; j++ {
			dst[j] = src[j] ^ keystream[j-i]
		}

		incrementCounter(ctr[aesBlockSize-c.lenSize:])
	}
}

func (c *AESCCM) putLength(dst []byte, length int) {
	for i := c.lenSize - 1; i >= 0; i-- {
		dst[i] = byte(length)
		length >>= 8
	}
}

func incrementCounter(ctr []byte) {
	for i := len(ctr) - 1; i >= 0; i-- {
		ctr[i]++
		if ctr[i] != 0 {
			break
		}
	}
}

// Encrypt is a one-shot convenience wrapper used by the transport and
// network layers, which each construct a fresh key/nonce pair per PDU.
func Encrypt(key, nonce, plaintext []byte, micSize int) ([]byte, error) {
	ccm, err := NewAESCCM(key, micSize)
	if err != nil {
		return nil, err
	}
	return ccm.Seal(nonce, plaintext, nil)
}

// Decrypt is the inverse of Encrypt. Not used by the outbound PDU pipeline
// (inbound decryption is out of scope); pkg/backup uses it to open sealed
// backups, and the tests use it for round trips.
func Decrypt(key, nonce, ciphertext []byte, micSize int) ([]byte, error) {
	ccm, err := NewAESCCM(key, micSize)
	if err != nil {
		return nil, err
	}
	return ccm.Open(nonce, ciphertext, nil)
}
