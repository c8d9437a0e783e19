// columnmix.go - triangle MixColumns over GF(2^8).
//
// Operates on complete 3-byte groups only; a trailing remainder of 1
// or 2 bytes is left untouched on both the forward and inverse
// directions.
package atomcrypte

// triangleMixColumns applies the forward triangle MixColumns transform
// to every complete 3-byte group of data, using poly's GF(2^8) tables.
// Groups are independent, so they run as a parallel map over pool.
func triangleMixColumns(pool *workerPool, data []byte, poly GFPoly) []byte {
	t := newGFTable(poly)
	out := make([]byte, len(data))
	copy(out, data)

	pool.mapBytes(len(data)/3, func(g int) {
		i := g * 3
		a, b, c := data[i], data[i+1], data[i+2]

		out[i] = t.Mul(3, a) ^ t.Mul(2, b) ^ c
		out[i+1] = t.Mul(4, b) ^ c
		out[i+2] = t.Mul(5, c)
	})
	return out
}

// triangleUnmixColumns inverts triangleMixColumns. When a required
// multiplicative inverse doesn't exist (only possible for 0), 1 is
// substituted instead; existing ciphertext depends on that
// substitution.
func triangleUnmixColumns(pool *workerPool, data []byte, poly GFPoly) []byte {
	t := newGFTable(poly)
	out := make([]byte, len(data))
	copy(out, data)

	pool.mapBytes(len(data)/3, func(g int) {
		i := g * 3
		aP, bP, cP := data[i], data[i+1], data[i+2]

		c := t.Mul(t.InverseOrOne(5), cP)
		b := t.Mul(t.InverseOrOne(4), bP^c)
		a := t.Mul(t.InverseOrOne(3), aP^t.Mul(2, b)^c)

		out[i] = a
		out[i+1] = b
		out[i+2] = c
	})
	return out
}
