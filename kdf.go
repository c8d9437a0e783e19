// kdf.go - key derivation: password stretching, per-call key schedule,
// constant-time key verification.
package atomcrypte

import (
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

const argon2KeyLen = 32

// deriveKey produces the first-stage 32-byte key: a keyed hash whose
// key material is the nonce and whose hashed data is the password.
func deriveKey(password string, nonce []byte) ([]byte, error) {
	return keyedHash32(nonce, []byte(password))
}

// derivePasswordKey stretches k0 into a 32-byte key via Argon2id with
// the configured cost. Argon2 receives the base64 encoding of salt,
// not the raw bytes; changing that would invalidate existing blobs.
// Callers pass the custom salt if one was supplied, else the nonce.
func derivePasswordKey(k0, salt []byte, params Argon2Params) []byte {
	encodedSalt := []byte(base64.StdEncoding.EncodeToString(salt))
	return argon2.IDKey(k0, encodedSalt, params.Time, params.Memory, params.Threads, argon2KeyLen)
}

// kVersionKey is the constant key used only to encrypt/verify the wire
// format's version tag: hash("atom-crypte-password"), independent of
// password and nonce.
func kVersionKey() []byte {
	return hash32([]byte("atom-crypte-password"))
}

// kRound derives the round key for round i: hash of the first
// min(i*8, len(passwordKey)) bytes of passwordKey. kRound(0) is
// therefore hash(empty) - a valid, deterministic key.
func kRound(passwordKey []byte, i int) []byte {
	n := i * 8
	if n > len(passwordKey) {
		n = len(passwordKey)
	}
	if n < 0 {
		n = 0
	}
	return hash32(passwordKey[:n])
}

// verifyKeysConstantTime reports whether a and b are equal, in time
// independent of where they first differ.
func verifyKeysConstantTime(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
