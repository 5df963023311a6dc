package backup

import (
	"bytes"
	"testing"

	"github.com/backkem/meshpdu/pkg/meshnet"
)

func sampleNetwork() *meshnet.MeshNetwork {
	n := meshnet.NewMeshNetwork("backup-test-network", 0x01020304)

	var netKey [16]byte
	copy(netKey[:], []byte("netkeynetkeynetk"))
	n.NetKeys = []meshnet.NetKey{{Index: 0, Key: netKey, Name: "primary"}}

	var appKey [16]byte
	copy(appKey[:], []byte("appkeyappkeyappk"))
	n.AppKeys = []meshnet.AppKey{{Index: 0, BoundNetKeyIndex: 0, Key: appKey}}

	copy(n.ProvisionerDevKey[:], []byte("devkeydevkeydevk"))
	return n
}

func TestSealOpenRoundTrip(t *testing.T) {
	n := sampleNetwork()
	passphrase := []byte("correct horse battery staple")

	sealed, err := Seal(n, passphrase)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	restored, err := Open(sealed, passphrase, n.UUID, n.IVIndex)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if len(restored.NetKeys) != 1 || restored.NetKeys[0].Key != n.NetKeys[0].Key {
		t.Error("restored net key mismatch")
	}
	if len(restored.AppKeys) != 1 || restored.AppKeys[0].Key != n.AppKeys[0].Key {
		t.Error("restored app key mismatch")
	}
	if restored.ProvisionerDevKey != n.ProvisionerDevKey {
		t.Error("restored device key mismatch")
	}
}

func TestOpenWrongPassphraseFails(t *testing.T) {
	n := sampleNetwork()
	sealed, err := Seal(n, []byte("right passphrase"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := Open(sealed, []byte("wrong passphrase"), n.UUID, n.IVIndex); err == nil {
		t.Error("expected error opening with wrong passphrase")
	}
}

func TestSealIterationsOutOfRange(t *testing.T) {
	n := sampleNetwork()
	if _, err := SealWithIterations(n, []byte("pass"), 1); err != ErrIterationsOutOfRange {
		t.Errorf("got %v, want ErrIterationsOutOfRange", err)
	}
}

func TestSealNondeterministic(t *testing.T) {
	n := sampleNetwork()
	a, err := Seal(n, []byte("pass"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	b, err := Seal(n, []byte("pass"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) && a.Nonce == b.Nonce {
		t.Error("two seals with the same nonce should never happen, and identical ciphertext with identical nonce would indicate a bug")
	}
}
