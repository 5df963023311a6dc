package crypto

import (
	"encoding/hex"
	"testing"
)

// NIST SP 800-38B Appendix D.2 AES-128 CMAC test vectors.
var cmacTestVectors = []struct {
	name string
	key  string
	msg  string
	mac  string
}{
	{
		name: "Example1_len0",
		key:  "2b7e151628aed2a6abf7158809cf4f3c",
		msg:  "",
		mac:  "bb1d6929e95937287fa37d129b756746",
	},
	{
		name: "Example2_len16",
		key:  "2b7e151628aed2a6abf7158809cf4f3c",
		msg:  "6bc1bee22e409f96e93d7e117393172a",
		mac:  "070a16b46b4d4144f79bdd9dd04a287c",
	},
	{
		name: "Example4_len64",
		key:  "2b7e151628aed2a6abf7158809cf4f3c",
		msg: "6bc1bee22e409f96e93d7e117393172a" +
			"ae2d8a571e03ac9c9eb76fac45af8e51" +
			"30c81c46a35ce411e5fbc1191a0a52ef" +
			"f69f2445df4f9b17ad2b417be66c3710",
		mac: "51f0bebf7e3b9d92fc49741779363cfe",
	},
}

func TestCMACVectors(t *testing.T) {
	for _, tc := range cmacTestVectors {
		t.Run(tc.name, func(t *testing.T) {
			key, _ := hex.DecodeString(tc.key)
			msg, _ := hex.DecodeString(tc.msg)
			want, _ := hex.DecodeString(tc.mac)

			got, err := CMAC(key, msg)
			if err != nil {
				t.Fatalf("CMAC: %v", err)
			}

			if hex.EncodeToString(got[:]) != hex.EncodeToString(want) {
				t.Errorf("CMAC = %x, want %x", got, want)
			}
		})
	}
}

func TestCMACInvalidKeySize(t *testing.T) {
	if _, err := CMAC(make([]byte, 10), []byte("x")); err != ErrInvalidKeySize {
		t.Errorf("CMAC with 10-byte key: got %v, want ErrInvalidKeySize", err)
	}
}
