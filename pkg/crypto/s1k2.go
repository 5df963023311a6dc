package crypto

// Mesh-specific key derivation, Mesh Profile v1.0.1 Sections 3.8.2.3 and
// 3.8.2.6. Both s1 and K2 are defined purely in terms of AES-CMAC.

var zeroKey16 = make([]byte, KeySize)

// S1 is the generic salt-generation function: s1(M) = AES-CMAC(zeroKey, M).
func S1(m []byte) ([16]byte, error) {
	return CMAC(zeroKey16, m)
}

// K2Result holds the three values K2 derives from a network key and an
// auxiliary parameter string.
type K2Result struct {
	NID        uint8
	EncKey     [16]byte
	PrivacyKey [16]byte
}

var smk2Label = []byte("smk2")

// K2 derives (NID, EncKey, PrivacyKey) from a 16-byte network key and an
// auxiliary parameter p, per Mesh Profile Section 3.8.2.6:
//
//	salt = s1("smk2")
//	T    = AES-CMAC(salt, netKey)
//	T1   = AES-CMAC(T, p || 0x01)
//	T2   = AES-CMAC(T, T1 || p || 0x02)
//	T3   = AES-CMAC(T, T2 || p || 0x03)
//	NID        = T1[15] & 0x7F
//	EncKey     = T2
//	PrivacyKey = T3
//
// Master (non-friendship) credentials use p = []byte{0x00}, exposed as K2Master.
func K2(netKey, p []byte) (K2Result, error) {
	var result K2Result

	if len(netKey) != KeySize {
		return result, ErrInvalidKeySize
	}

	salt, err := S1(smk2Label)
	if err != nil {
		return result, err
	}

	t, err := CMAC(salt[:], netKey)
	if err != nil {
		return result, err
	}

	t1, err := CMAC(t[:], append(append([]byte(nil), p...), 0x01))
	if err != nil {
		return result, err
	}

	t2Input := append(append([]byte(nil), t1[:]...), p...)
	t2Input = append(t2Input, 0x02)
	t2, err := CMAC(t[:], t2Input)
	if err != nil {
		return result, err
	}

	t3Input := append(append([]byte(nil), t2[:]...), p...)
	t3Input = append(t3Input, 0x03)
	t3, err := CMAC(t[:], t3Input)
	if err != nil {
		return result, err
	}

	result.NID = t1[15] & 0x7F
	result.EncKey = t2
	result.PrivacyKey = t3

	Zeroize(t[:])
	Zeroize(t1[:])

	return result, nil
}

// masterP is the auxiliary parameter used for master (non-friendship)
// credentials - the only variant this core supports (see spec §1 Non-goals:
// proxy-nonce and friendship-nonce variants are out of scope).
var masterP = []byte{0x00}

// K2Master derives master-credential keys from a network key.
func K2Master(netKey []byte) (K2Result, error) {
	return K2(netKey, masterP)
}
