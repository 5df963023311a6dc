package crypto

import (
	"encoding/hex"
	"testing"
)

func TestS1Vector(t *testing.T) {
	got, err := S1([]byte("test"))
	if err != nil {
		t.Fatalf("S1: %v", err)
	}

	want, _ := hex.DecodeString("b73cefbd641ef2ea598c2b6efb62f79c")
	if hex.EncodeToString(got[:]) != hex.EncodeToString(want) {
		t.Errorf("S1(\"test\") = %x, want %x", got, want)
	}
}

func TestK2MasterVector(t *testing.T) {
	netKey, err := hex.DecodeString("7dd7364cd842ad18c17c2b820c84c3d6")
	if err != nil {
		t.Fatalf("decode netKey: %v", err)
	}

	result, err := K2Master(netKey)
	if err != nil {
		t.Fatalf("K2Master: %v", err)
	}

	if result.NID != 0x68 {
		t.Errorf("NID = %#x, want 0x68", result.NID)
	}

	wantEnc, _ := hex.DecodeString("0953fa93e7caac9638f58820220a398e")
	if hex.EncodeToString(result.EncKey[:]) != hex.EncodeToString(wantEnc) {
		t.Errorf("EncKey = %x, want %x", result.EncKey, wantEnc)
	}

	wantPrivacy, _ := hex.DecodeString("8b84eedec100067d670971dd2aa700cf")
	if hex.EncodeToString(result.PrivacyKey[:]) != hex.EncodeToString(wantPrivacy) {
		t.Errorf("PrivacyKey = %x, want %x", result.PrivacyKey, wantPrivacy)
	}
}

func TestK2InvalidKeySize(t *testing.T) {
	if _, err := K2(make([]byte, 15), masterP); err != ErrInvalidKeySize {
		t.Errorf("K2 with 15-byte key: got %v, want ErrInvalidKeySize", err)
	}
}

func TestK2Determinism(t *testing.T) {
	netKey, _ := hex.DecodeString("7dd7364cd842ad18c17c2b820c84c3d6")

	a, err := K2Master(netKey)
	if err != nil {
		t.Fatalf("K2Master: %v", err)
	}
	b, err := K2Master(netKey)
	if err != nil {
		t.Fatalf("K2Master: %v", err)
	}

	if a != b {
		t.Error("K2Master is not deterministic for identical inputs")
	}
}
