// Package network implements the Bluetooth Mesh network layer: 13-byte
// network nonce construction, AES-CCM encryption of the transport PDU with
// a 64-bit MIC, cleartext network header assembly, and AES-ECB privacy
// obfuscation of header bytes 1-6.
package network

import (
	"encoding/binary"

	"github.com/backkem/meshpdu/pkg/crypto"
	"github.com/backkem/meshpdu/pkg/meshnet"
)

// HeaderSize is the length of the (obfuscated or cleartext) network header.
const HeaderSize = 7

// Options gates the two network-layer open questions spec.md §9 flags.
type Options struct {
	// PrivacyRandomIncludesIVIndex fills bytes 8-11 of the 16-byte
	// privacy-random block with the big-endian iv_index, per Mesh
	// Profile Section 3.8.7.3. Default true. Set false to reproduce the
	// original core's layout: bytes 5-11 carry the first seven bytes of
	// the encrypted payload and bytes 12-15 are zero.
	PrivacyRandomIncludesIVIndex bool

	// IVIFromLSB derives IVI as iv_index & 0x01 (bit 0 of the IV index,
	// per the Mesh Profile definition). Default true. Set false to
	// reproduce the original core's (iv_index >> 24) & 0x01.
	IVIFromLSB bool
}

// DefaultOptions returns the spec-conformant network options.
func DefaultOptions() Options {
	return Options{
		PrivacyRandomIncludesIVIndex: true,
		IVIFromLSB:                   true,
	}
}

// Params bundles the inputs Build needs beyond the transport PDU itself.
type Params struct {
	EncKey     [16]byte
	PrivacyKey [16]byte
	NID        uint8
	TTL        uint8
	Seq        uint32
	Src        uint16
	IVIndex    uint32
}

// Build runs the network layer: encrypts transportPDU under EncKey with a
// 64-bit MIC, assembles the 7-byte cleartext header, derives PECB, and
// XOR-obfuscates header bytes 1-6. Returns the final network PDU:
// obfuscated_header (7 bytes) || enc_dst_and_payload.
func Build(transportPDU []byte, p Params, opts Options) ([]byte, error) {
	const ctl = 0 // outbound access messages always have CTL=0

	var tail [2]byte // 0x00 0x00: DST is not part of the network nonce
	nonce := meshnet.BuildNonce(0x00, (ctl<<7)|(p.TTL&0x7F), p.Seq, p.Src, tail, p.IVIndex)

	encDstAndPayload, err := crypto.Encrypt(p.EncKey[:], nonce[:], transportPDU, crypto.NetworkMICSize)
	if err != nil {
		return nil, err
	}

	header := buildCleartextHeader(p.NID, ctl, p.TTL, p.Seq, p.Src, p.IVIndex, opts)

	privacyRandom := buildPrivacyRandom(encDstAndPayload, p.IVIndex, opts)
	pecb, err := crypto.ECBEncrypt(p.PrivacyKey[:], privacyRandom[:])
	if err != nil {
		return nil, err
	}

	obfuscated := header
	for i := 1; i < HeaderSize; i++ {
		obfuscated[i] ^= pecb[i-1]
	}

	out := make([]byte, 0, HeaderSize+len(encDstAndPayload))
	out = append(out, obfuscated[:]...)
	out = append(out, encDstAndPayload...)
	return out, nil
}

func buildCleartextHeader(nid uint8, ctl, ttl uint8, seq uint32, src uint16, ivIndex uint32, opts Options) [HeaderSize]byte {
	var h [HeaderSize]byte

	ivi := byte((ivIndex >> 24) & 0x01)
	if opts.IVIFromLSB {
		ivi = byte(ivIndex & 0x01)
	}
	h[0] = (ivi << 7) | (nid & 0x7F)
	h[1] = (ctl << 7) | (ttl & 0x7F)
	h[2] = byte(seq >> 16)
	h[3] = byte(seq >> 8)
	h[4] = byte(seq)
	binary.BigEndian.PutUint16(h[5:7], src)
	return h
}

func buildPrivacyRandom(encDstAndPayload []byte, ivIndex uint32, opts Options) [16]byte {
	var r [16]byte
	// bytes 0-4: zero
	n := copy(r[5:12], encDstAndPayload)
	for i := 5 + n; i < 12; i++ {
		r[i] = 0x00
	}
	if opts.PrivacyRandomIncludesIVIndex {
		binary.BigEndian.PutUint32(r[8:12], ivIndex)
	}
	// bytes 12-15 stay zero
	return r
}
