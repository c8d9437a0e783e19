// hash.go - the keyed/unkeyed 32-byte hash primitive used throughout
// the pipeline: S-box seeding, chunk-shift keying, round keys, the
// version-tag key, and the legacy MAC all run through blake2b.
package atomcrypte

import "golang.org/x/crypto/blake2b"

// hash32 returns the unkeyed 32-byte blake2b digest of data.
func hash32(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// keyedHash32 returns the 32-byte blake2b digest of data keyed by key
// (key must be 0..64 bytes).
func keyedHash32(key, data []byte) ([]byte, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return nil, wrapErr(Argon2Failed, "keyed hash construction failed", err)
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// concatHash32 hashes the concatenation of parts without an
// intermediate allocation beyond the writer's internal buffer.
func concatHash32(parts ...[]byte) []byte {
	h, _ := blake2b.New256(nil)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
