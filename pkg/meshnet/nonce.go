package meshnet

import "encoding/binary"

// NonceSize is the length of both transport and network nonces (Bluetooth
// Mesh Profile Section 3.8.5, 3.8.6).
const NonceSize = 13

// BuildNonce assembles a 13-byte mesh nonce. Transport and network nonces
// share the nonceType || byte1 || seq || src prefix; they differ only in
// what occupies offsets 7-8 (tail) - dst for the transport nonce, 0x00 0x00
// padding for the network nonce.
func BuildNonce(nonceType byte, byte1 byte, seq uint32, src uint16, tail [2]byte, ivIndex uint32) [NonceSize]byte {
	var n [NonceSize]byte
	n[0] = nonceType
	n[1] = byte1

	n[2] = byte(seq >> 16)
	n[3] = byte(seq >> 8)
	n[4] = byte(seq)

	binary.BigEndian.PutUint16(n[5:7], src)
	n[7], n[8] = tail[0], tail[1]
	binary.BigEndian.PutUint32(n[9:13], ivIndex)

	return n
}
