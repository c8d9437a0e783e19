// sbox.go - dynamic S-box: a seeded Fisher-Yates shuffle of the
// identity permutation 0..256, applied byte-wise across the buffer
// with a parallel map.
package atomcrypte

// sboxSeed returns the seed bytes used to drive the Fisher-Yates
// shuffle, chosen by the configured SboxMode: password key only, nonce
// only, or both concatenated (nonce || key).
func sboxSeed(mode SboxMode, nonce, key []byte) []byte {
	switch mode {
	case NonceBased:
		return hash32(nonce)
	case PasswordAndNonceBased:
		return concatHash32(nonce, key)
	default: // PasswordBased
		return hash32(key)
	}
}

// generateSbox builds a 256-entry permutation from seed via seeded
// Fisher-Yates, walking i from 255 down to 1.
func generateSbox(seed []byte) [256]byte {
	var s [256]byte
	for i := range s {
		s[i] = byte(i)
	}
	for i := 255; i >= 1; i-- {
		j := (int(seed[i%len(seed)]) + int(seed[(i*7)%len(seed)])) % (i + 1)
		s[i], s[j] = s[j], s[i]
	}
	return s
}

// generateInvSbox builds the inverse permutation of s.
func generateInvSbox(s [256]byte) [256]byte {
	var inv [256]byte
	for i, v := range s {
		inv[v] = byte(i)
	}
	return inv
}

// applyTable maps table over data in parallel using pool. Each output
// byte depends only on its own input byte, so no inter-element
// dependency exists and scheduling order does not affect the result.
func applyTable(pool *workerPool, table [256]byte, data []byte) []byte {
	out := make([]byte, len(data))
	pool.mapBytes(len(data), func(i int) {
		out[i] = table[data[i]]
	})
	return out
}
