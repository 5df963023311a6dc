// Package transport implements the unsegmented Bluetooth Mesh transport
// layer: 13-byte transport nonce construction, AES-CCM encryption of the
// access payload with a 32-bit MIC, and the optional leading transport
// control byte.
package transport

import (
	"github.com/backkem/meshpdu/pkg/crypto"
	"github.com/backkem/meshpdu/pkg/meshnet"
)

// Nonce type bytes (Bluetooth Mesh Profile Section 3.8.5.2).
const (
	NonceTypeApplication byte = 0x01
	NonceTypeDevice      byte = 0x02
)

// Options gates behavior the distilled core left unresolved (spec.md §9).
type Options struct {
	// IncludeControlByte prepends the 1-byte transport header (SEG=0,
	// AKF, AID) before the CCM ciphertext, as conformant Mesh nodes
	// require. Default true. Set false to reproduce the original core's
	// layering, which omits this byte; pkg/network does not add it either.
	IncludeControlByte bool
}

// DefaultOptions returns the spec-conformant transport options.
func DefaultOptions() Options {
	return Options{IncludeControlByte: true}
}

// Params bundles the inputs Build needs beyond the model message itself.
type Params struct {
	Selector meshnet.KeySelector
	Key      [meshnet.KeyMaterialSize]byte
	NID      uint8 // K2-derived NID, used to fill AID when IncludeControlByte is set
	Seq      uint32
	Src      uint16
	Dst      uint16
	IVIndex  uint32
}

// Build runs the transport layer: constructs the nonce, encrypts
// modelMessage under key with a 32-bit MIC, and optionally prefixes the
// transport control byte. Returns [controlByte?] || ciphertext || mic.
func Build(modelMessage []byte, p Params, opts Options) ([]byte, error) {
	nonceType := NonceTypeApplication
	if p.Selector.IsDevKey() {
		nonceType = NonceTypeDevice
	}

	var dstBytes [2]byte
	dstBytes[0] = byte(p.Dst >> 8)
	dstBytes[1] = byte(p.Dst)

	nonce := meshnet.BuildNonce(nonceType, 0x00, p.Seq, p.Src, dstBytes, p.IVIndex)

	cipher, err := crypto.Encrypt(p.Key[:], nonce[:], modelMessage, crypto.TransportMICSize)
	if err != nil {
		return nil, err
	}

	if !opts.IncludeControlByte {
		return cipher, nil
	}

	akf := byte(0)
	if !p.Selector.IsDevKey() {
		akf = 1
	}
	aid := p.NID & 0x3F
	if p.Selector.IsDevKey() {
		aid = 0
	}
	control := (akf << 6) | aid

	out := make([]byte, 0, len(cipher)+1)
	out = append(out, control)
	out = append(out, cipher...)
	return out, nil
}
