// pipeline.go - Encrypt/Decrypt driver
//
// Orders the stages: S-box -> mix -> column-mix -> shift -> S-box,
// then rounds+1 XOR-only passes, each keyed by its own round key.
// Decrypt inverts the same order with the same keys and verifies the
// MAC only after a candidate plaintext exists, since the MAC binds the
// plaintext as well as the ciphertext body.
package atomcrypte

import "sync"

// Cipher is a configured pipeline instance. It owns a worker pool
// sized per cfg.ThreadNum and is safe for concurrent Encrypt/Decrypt
// calls: every call-local table (GF tables, S-boxes, round keys) is
// built fresh per call rather than cached on the Cipher.
type Cipher struct {
	cfg  Config
	pool *workerPool
}

// New builds a Cipher from cfg, normalizing it and sizing its worker
// pool.
func New(cfg Config) (*Cipher, error) {
	cfg = cfg.Normalize()
	pool, err := newWorkerPool(cfg.ThreadNum)
	if err != nil {
		return nil, err
	}
	return &Cipher{cfg: cfg, pool: pool}, nil
}

// fixedChunkSizes partitions dataLen into consecutive chunks of base
// bytes (the last one truncated). The XOR rounds use this plain
// partitioning, not chunkshift.go's jittered schedule, which only
// governs the dedicated shift stage.
func fixedChunkSizes(dataLen, base int) []int {
	if dataLen == 0 {
		return nil
	}
	if base <= 0 {
		base = dataLen
	}
	sizes := make([]int, 0, dataLen/base+1)
	for pos := 0; pos < dataLen; pos += base {
		end := pos + base
		if end > dataLen {
			end = dataLen
		}
		sizes = append(sizes, end-pos)
	}
	return sizes
}

// xorRound partitions data into dynamicSizes(len(data))-byte chunks
// and applies xorEncrypt (encrypt=true) or xorDecrypt (encrypt=false)
// to each chunk in parallel via pool.
func xorRound(pool *workerPool, nonce, key, data []byte, encrypt bool) ([]byte, error) {
	if len(data) == 0 {
		return nil, newErr(InvalidXor, "empty input")
	}
	base, err := dynamicSizes(len(data))
	if err != nil {
		return nil, err
	}
	sizes := fixedChunkSizes(len(data), base)

	offsets := make([]int, len(sizes))
	pos := 0
	for i, s := range sizes {
		offsets[i] = pos
		pos += s
	}

	out := make([]byte, len(data))
	var mu sync.Mutex
	var firstErr error
	pool.mapBytes(len(sizes), func(ci int) {
		start := offsets[ci]
		end := start + sizes[ci]
		chunk := data[start:end]

		var res []byte
		var e error
		if encrypt {
			res, e = xorEncrypt(nonce, key, chunk)
		} else {
			res, e = xorDecrypt(nonce, key, chunk)
		}
		if e != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = e
			}
			mu.Unlock()
			return
		}
		copy(out[start:end], res)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Encrypt runs the full forward pipeline over plaintext and returns
// the encoded wire blob. wrapAll controls whether nonce and salt are
// carried in-band; if false, the caller is responsible for storing
// nonce and salt alongside the returned body.
func (c *Cipher) Encrypt(password string, nonce Nonce, salt Salt, plaintext []byte, wrapAll bool) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, newErr(InvalidXor, "empty plaintext")
	}
	if len(nonce) != wireNonceLen {
		return nil, newErr(InvalidNonce, "nonce must be exactly 32 bytes")
	}
	if len(salt) != 0 && len(salt) != wireSaltLen {
		return nil, newErr(InvalidNonce, "salt must be exactly 32 bytes when provided")
	}

	saltSource := []byte(salt)
	if len(saltSource) == 0 {
		saltSource = nonce
	}

	k0, err := deriveKey(password, nonce)
	if err != nil {
		return nil, err
	}
	defer zeroize(k0)

	passwordKey := derivePasswordKey(k0, saltSource, c.cfg.Argon2)
	defer zeroize(passwordKey)

	seed := sboxSeed(c.cfg.Sbox, nonce, passwordKey)
	sbox := generateSbox(seed)

	// Each stage's input buffer still carries plaintext-derived bytes,
	// so it is wiped as soon as the stage's output exists.
	plainCopy := append([]byte{}, plaintext...)
	body := applyTable(c.pool, sbox, plainCopy)
	zeroize(plainCopy)

	mixed, err := mixBlocks(c.pool, body, nonce, passwordKey)
	zeroize(body)
	if err != nil {
		return nil, err
	}
	body = mixed

	colMixed := triangleMixColumns(c.pool, body, c.cfg.GFPoly)
	zeroize(body)
	body = colMixed

	backend := resolveBackend(c.cfg.Device)
	shifted, err := backend.shift(c.pool, body, nonce, passwordKey)
	zeroize(body)
	if err != nil {
		return nil, err
	}
	body = shifted

	substituted := applyTable(c.pool, sbox, body)
	zeroize(body)
	body = substituted

	for i := 0; i <= c.cfg.Rounds; i++ {
		rk := kRound(passwordKey, i)
		next, rerr := xorRound(c.pool, nonce, rk, body, true)
		zeroizeAll(rk, body)
		if rerr != nil {
			return nil, rerr
		}
		body = next
	}
	defer zeroize(body)

	return encodeBlob(nonce, salt, body, passwordKey, plaintext, wrapAll)
}

// Decrypt runs the full inverse pipeline. When wrapAll is true, nonce
// and salt are read from blob and the nonce/salt arguments are
// ignored; when false, they must be supplied by the caller.
func (c *Cipher) Decrypt(password string, nonce Nonce, salt Salt, blob []byte, wrapAll bool) ([]byte, error) {
	var nonceBytes, saltBytes, core []byte

	if wrapAll {
		if len(blob) < wireNonceLen+wireSaltLen {
			return nil, newErr(InvalidMac, "blob too short for wrap_all framing")
		}
		nonceBytes = blob[:wireNonceLen]
		rest := blob[wireNonceLen:]
		saltBytes = rest[len(rest)-wireSaltLen:]
		core = rest[:len(rest)-wireSaltLen]
	} else {
		if len(nonce) != wireNonceLen {
			return nil, newErr(InvalidNonce, "nonce is required when wrapAll is false")
		}
		if len(salt) != 0 && len(salt) != wireSaltLen {
			return nil, newErr(InvalidNonce, "salt must be exactly 32 bytes when provided")
		}
		nonceBytes = nonce
		saltBytes = salt
		core = blob
	}
	if len(saltBytes) == 0 {
		saltBytes = nonceBytes
	}

	k0, err := deriveKey(password, nonceBytes)
	if err != nil {
		return nil, err
	}
	defer zeroize(k0)

	passwordKey := derivePasswordKey(k0, saltBytes, c.cfg.Argon2)
	defer zeroize(passwordKey)

	// Recompute the password key a second time from identical inputs
	// and compare constant-time before touching ciphertext.
	selfCheck := derivePasswordKey(k0, saltBytes, c.cfg.Argon2)
	defer zeroize(selfCheck)
	if !verifyKeysConstantTime(passwordKey, selfCheck) {
		return nil, newErr(InvalidMac, "key self-check failed")
	}

	parsed, err := decodeCore(core, nonceBytes, passwordKey)
	if err != nil {
		return nil, err
	}

	if parsed.version == versionLegacy {
		return c.decryptLegacyBody(nonceBytes, passwordKey, parsed.body, parsed.mac)
	}

	body := append([]byte{}, parsed.body...)
	for i := c.cfg.Rounds; i >= 0; i-- {
		rk := kRound(passwordKey, i)
		next, rerr := xorRound(c.pool, nonceBytes, rk, body, false)
		zeroizeAll(rk, body)
		if rerr != nil {
			return nil, rerr
		}
		body = next
	}

	seed := sboxSeed(c.cfg.Sbox, nonceBytes, passwordKey)
	sbox := generateSbox(seed)
	invSbox := generateInvSbox(sbox)

	substituted := applyTable(c.pool, invSbox, body)
	zeroize(body)
	body = substituted

	backend := resolveBackend(c.cfg.Device)
	unshifted, err := backend.unshift(c.pool, body, nonceBytes, passwordKey)
	zeroize(body)
	if err != nil {
		return nil, err
	}
	body = unshifted

	colUnmixed := triangleUnmixColumns(c.pool, body, c.cfg.GFPoly)
	zeroize(body)
	body = colUnmixed

	unmixed, err := unmixBlocks(c.pool, body, nonceBytes, passwordKey)
	zeroize(body)
	if err != nil {
		return nil, err
	}
	body = unmixed

	plaintext := applyTable(c.pool, invSbox, body)
	zeroize(body)

	plainHash, err := macPlainHash(nonceBytes, passwordKey, plaintext)
	if err != nil {
		zeroize(plaintext)
		return nil, err
	}
	defer zeroize(plainHash)

	wantMAC := computeMACCurrent(parsed.body, plainHash)
	if !verifyKeysConstantTime(wantMAC, parsed.mac) {
		zeroize(plaintext)
		return nil, newErr(InvalidMac, "mac mismatch")
	}

	return plaintext, nil
}

// decryptLegacyBody handles a version-0x2 blob. The legacy format ran
// a single password-keyed XOR pass over dynamicSizes-sized chunks (no
// round-key schedule) after the S-box/mix/shift stages; column mixing
// postdates 0x2 and is skipped. Authentication is a keyed 32-byte MAC
// (see wire.go's computeMACLegacy).
func (c *Cipher) decryptLegacyBody(nonce, passwordKey, ciphertext, mac []byte) ([]byte, error) {
	body, err := xorRound(c.pool, nonce, passwordKey, ciphertext, false)
	if err != nil {
		return nil, err
	}

	seed := sboxSeed(c.cfg.Sbox, nonce, passwordKey)
	sbox := generateSbox(seed)
	invSbox := generateInvSbox(sbox)

	substituted := applyTable(c.pool, invSbox, body)
	zeroize(body)
	body = substituted

	backend := resolveBackend(c.cfg.Device)
	unshifted, err := backend.unshift(c.pool, body, nonce, passwordKey)
	zeroize(body)
	if err != nil {
		return nil, err
	}
	body = unshifted

	unmixed, err := unmixBlocks(c.pool, body, nonce, passwordKey)
	zeroize(body)
	if err != nil {
		return nil, err
	}
	body = unmixed

	plaintext := applyTable(c.pool, invSbox, body)
	zeroize(body)

	wantMAC, err := computeMACLegacy(nonce, passwordKey, ciphertext, plaintext)
	if err != nil {
		zeroize(plaintext)
		return nil, err
	}
	if !verifyKeysConstantTime(wantMAC, mac) {
		zeroize(plaintext)
		return nil, newErr(InvalidMac, "legacy mac mismatch")
	}
	return plaintext, nil
}
