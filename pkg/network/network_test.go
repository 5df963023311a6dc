package network

import (
	"encoding/hex"
	"testing"

	"github.com/backkem/meshpdu/pkg/crypto"
	"github.com/backkem/meshpdu/pkg/meshnet"
)

func sampleParams() Params {
	var encKey, privacyKey [16]byte
	copy(encKey[:], []byte("0953fa93e7caac96"))
	copy(privacyKey[:], []byte("8b84eedec100067d"))
	return Params{
		EncKey:     encKey,
		PrivacyKey: privacyKey,
		NID:        0x68,
		TTL:        7,
		Seq:        37,
		Src:        0x7F16,
		IVIndex:    0x12345678,
	}
}

func TestBuildLength(t *testing.T) {
	transportPDU, _ := hex.DecodeString("590006000010203040")
	out, err := Build(transportPDU, sampleParams(), DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := HeaderSize + len(transportPDU) + crypto.NetworkMICSize
	if len(out) != want {
		t.Errorf("len(out) = %d, want %d", len(out), want)
	}
}

func TestBuildFirstByteEncodesIVINID(t *testing.T) {
	transportPDU := []byte{0x01}
	out, err := Build(transportPDU, sampleParams(), DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	p := sampleParams()
	wantIVI := byte(p.IVIndex & 0x01)
	wantByte0 := (wantIVI << 7) | (p.NID & 0x7F)
	if out[0] != wantByte0 {
		t.Errorf("out[0] = %#x, want %#x", out[0], wantByte0)
	}
}

func TestBuildDeterministic(t *testing.T) {
	transportPDU := []byte{0x01, 0x02, 0x03}
	a, err := Build(transportPDU, sampleParams(), DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := Build(transportPDU, sampleParams(), DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if hex.EncodeToString(a) != hex.EncodeToString(b) {
		t.Error("Build is not deterministic for identical inputs")
	}
}

func TestBuildSeqChangesObfuscatedHeaderAndPayload(t *testing.T) {
	transportPDU := []byte{0x01, 0x02, 0x03}
	p1 := sampleParams()
	p2 := p1
	p2.Seq = 38

	a, _ := Build(transportPDU, p1, DefaultOptions())
	b, _ := Build(transportPDU, p2, DefaultOptions())

	if hex.EncodeToString(a[1:HeaderSize]) == hex.EncodeToString(b[1:HeaderSize]) {
		t.Error("changing seq must change obfuscated header bytes 1..6")
	}
	if hex.EncodeToString(a[HeaderSize:]) == hex.EncodeToString(b[HeaderSize:]) {
		t.Error("changing seq must change the encrypted payload")
	}
}

// TestRoundTripHeaderRecovery verifies testable property 6: XORing the
// obfuscated header bytes 1..6 with PECB recovers (CTL<<7|TTL, seq, src)
// bit-exactly.
func TestRoundTripHeaderRecovery(t *testing.T) {
	transportPDU := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a}
	p := sampleParams()

	out, err := Build(transportPDU, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	encDstAndPayload := out[HeaderSize:]
	privacyRandom := buildPrivacyRandom(encDstAndPayload, p.IVIndex, DefaultOptions())
	pecb, err := crypto.ECBEncrypt(p.PrivacyKey[:], privacyRandom[:])
	if err != nil {
		t.Fatalf("ECBEncrypt failed: %v", err)
	}

	recovered := make([]byte, HeaderSize)
	recovered[0] = out[0]
	for i := 1; i < HeaderSize; i++ {
		recovered[i] = out[i] ^ pecb[i-1]
	}

	want := buildCleartextHeader(p.NID, 0, p.TTL, p.Seq, p.Src, p.IVIndex, DefaultOptions())
	if hex.EncodeToString(recovered) != hex.EncodeToString(want[:]) {
		t.Errorf("recovered header = %x, want %x", recovered, want)
	}
}

// TestNetworkNonceMatchesSharedBuilder ties the network layer's nonce to
// meshnet.BuildNonce directly: changing the TTL/CTL-derived byte1 must
// change the ciphertext the same way changing meshnet.BuildNonce's byte1
// argument would.
func TestNetworkNonceMatchesSharedBuilder(t *testing.T) {
	transportPDU := []byte{0x01, 0x02, 0x03}
	p := sampleParams()

	out, err := Build(transportPDU, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	nonce := meshnet.BuildNonce(0x00, p.TTL&0x7F, p.Seq, p.Src, [2]byte{0, 0}, p.IVIndex)
	wantEncDstAndPayload, err := crypto.Encrypt(p.EncKey[:], nonce[:], transportPDU, crypto.NetworkMICSize)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if hex.EncodeToString(out[HeaderSize:]) != hex.EncodeToString(wantEncDstAndPayload) {
		t.Error("network layer's nonce diverges from meshnet.BuildNonce's shared layout")
	}
}

func TestLegacyOptionsReproduceOriginalPadding(t *testing.T) {
	legacy := Options{PrivacyRandomIncludesIVIndex: false, IVIFromLSB: false}
	p := sampleParams()

	r := buildPrivacyRandom([]byte{1, 2, 3, 4, 5, 6, 7}, p.IVIndex, legacy)
	for i := 12; i < 16; i++ {
		if r[i] != 0 {
			t.Errorf("legacy privacy random byte %d = %#x, want 0", i, r[i])
		}
	}

	h := buildCleartextHeader(p.NID, 0, p.TTL, p.Seq, p.Src, p.IVIndex, legacy)
	wantIVI := byte((p.IVIndex >> 24) & 0x01)
	if (h[0]>>7)&0x01 != wantIVI {
		t.Errorf("legacy IVI bit = %d, want %d", (h[0]>>7)&0x01, wantIVI)
	}
}
