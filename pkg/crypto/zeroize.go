package crypto

// Zeroize overwrites b with zeros in place. Callers use it to scrub derived
// key material (T, T1, EncKey, PrivacyKey) once a PDU has been produced,
// per the key-disposal guidance in spec §5. The Go garbage collector may
// still retain copies made before this call; this is best-effort, not a
// guarantee against all memory-disclosure attacks.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
