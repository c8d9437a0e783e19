// chunkshift.go - length-adaptive chunk schedule and the CPU chunked
// shift pass.
//
// The per-chunk rotate/XOR pass runs as a single flat parallel map
// over the whole buffer, with each byte's chunk membership
// precomputed, rather than one goroutine dispatch per chunk.
package atomcrypte

import "math/bits"

// dynamicSizes returns the base chunk size for a buffer of the given
// length. The table tops out at 10^19 bytes; a Go int cannot reach
// that, so the final bucket covers everything representable.
func dynamicSizes(dataLen int) (int, error) {
	switch {
	case dataLen < 1_000:
		return 14, nil
	case dataLen < 10_000:
		return 24, nil
	case dataLen < 100_000:
		return 64, nil
	case dataLen < 1_000_000:
		return 128, nil
	case dataLen < 10_000_000:
		return 4096, nil
	case dataLen < 100_000_000:
		return 8096, nil
	case dataLen < 1_000_000_000:
		return 16384, nil
	// The remaining buckets cover lengths from 10^9 bytes up; the
	// default case takes everything from 10^18 to the largest int.
	// The full step function is written out so it stays visible in one
	// place.
	case dataLen < 10_000_000_000:
		return 16384, nil
	case dataLen < 100_000_000_000:
		return 32768, nil
	case dataLen < 1_000_000_000_000:
		return 32768, nil
	case dataLen < 10_000_000_000_000:
		return 65536, nil
	case dataLen < 100_000_000_000_000:
		return 65536, nil
	case dataLen < 1_000_000_000_000_000:
		return 1048576, nil
	case dataLen < 10_000_000_000_000_000:
		return 1048576, nil
	case dataLen < 100_000_000_000_000_000:
		return 2097152, nil
	case dataLen < 1_000_000_000_000_000_000:
		return 2097152, nil
	default:
		return 4194304, nil
	}
}

// chunkSizes walks a cursor from 0 to dataLen, producing the sequence
// of chunk sizes: size = min(base + (k[cursor mod 32] mod 8),
// remaining).
func chunkSizes(dataLen int, k []byte) ([]int, error) {
	if dataLen == 0 {
		return nil, nil
	}
	base, err := dynamicSizes(dataLen)
	if err != nil {
		return nil, err
	}

	var sizes []int
	cursor := 0
	for cursor < dataLen {
		size := base + int(k[cursor%32]%8)
		remaining := dataLen - cursor
		if size > remaining {
			size = remaining
		}
		sizes = append(sizes, size)
		cursor += size
	}
	return sizes, nil
}

// chunkOwners returns, for each byte offset, the index of the chunk
// (per sizes) it belongs to.
func chunkOwners(dataLen int, sizes []int) []int {
	owners := make([]int, dataLen)
	pos := 0
	for ci, size := range sizes {
		for j := 0; j < size; j++ {
			owners[pos+j] = ci
		}
		pos += size
	}
	return owners
}

// chunkedShiftCPU applies the chunked rotate+XOR pass followed by a
// full-buffer reversal.
func chunkedShiftCPU(pool *workerPool, data, nonce, passwordKey []byte) ([]byte, error) {
	k := hash32(append(append([]byte{}, nonce...), passwordKey...))
	sizes, err := chunkSizes(len(data), k)
	if err != nil {
		return nil, err
	}
	owners := chunkOwners(len(data), sizes)

	shifted := make([]byte, len(data))
	pool.mapBytes(len(data), func(pos int) {
		ci := owners[pos]
		rotateBy := uint(nonce[ci%len(nonce)] % 8)
		xorVal := k[ci%len(k)]
		b := data[pos]
		b = bits.RotateLeft8(b, int(rotateBy))
		b ^= xorVal
		shifted[pos] = b
	})

	reversed := make([]byte, len(shifted))
	for i, b := range shifted {
		reversed[len(shifted)-1-i] = b
	}
	return reversed, nil
}

// chunkedUnshiftCPU inverts chunkedShiftCPU: reverse first, then
// recompute the identical chunk schedule on the reversed length and
// undo the per-chunk XOR/rotate.
func chunkedUnshiftCPU(pool *workerPool, data, nonce, passwordKey []byte) ([]byte, error) {
	reversed := make([]byte, len(data))
	for i, b := range data {
		reversed[len(data)-1-i] = b
	}

	k := hash32(append(append([]byte{}, nonce...), passwordKey...))
	sizes, err := chunkSizes(len(reversed), k)
	if err != nil {
		return nil, err
	}
	owners := chunkOwners(len(reversed), sizes)

	out := make([]byte, len(reversed))
	pool.mapBytes(len(reversed), func(pos int) {
		ci := owners[pos]
		rotateBy := uint(nonce[ci%len(nonce)] % 8)
		xorVal := k[ci%len(k)]
		b := reversed[pos]
		b ^= xorVal
		b = bits.RotateLeft8(b, -int(rotateBy))
		out[pos] = b
	})
	return out, nil
}
