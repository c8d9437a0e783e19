package atomcrypte

import (
	"bytes"
	"testing"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	cipher, err := NewBuilder().
		WithRounds(2).
		WithThreadNum(2).
		Build()
	if err != nil {
		t.Fatalf("build cipher: %v", err)
	}
	return cipher
}

func TestPipelineEncryptDecryptRoundTrip(t *testing.T) {
	cipher := newTestCipher(t)

	nonce, err := GenerateNonce(RandomNonce, nil)
	if err != nil {
		t.Fatalf("GenerateNonce: %v", err)
	}
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}

	plaintext := []byte("the five boxing wizards jump quickly")
	blob, err := cipher.Encrypt("correct horse battery staple", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	decrypted, err := cipher.Decrypt("correct horse battery staple", nil, nil, blob, true)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("round-trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestPipelineWrongPasswordFailsMAC(t *testing.T) {
	cipher := newTestCipher(t)

	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := []byte("sensitive payload")

	blob, err := cipher.Encrypt("right-password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := cipher.Decrypt("wrong-password", nil, nil, blob, true); !Is(err, InvalidMac) {
		t.Fatalf("expected InvalidMac for a wrong password, got %v", err)
	}
}

func TestPipelineTamperedBlobFailsMAC(t *testing.T) {
	cipher := newTestCipher(t)

	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := []byte("another payload of reasonable length")

	blob, err := cipher.Encrypt("a password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	blob[len(blob)/2] ^= 0xFF
	if _, err := cipher.Decrypt("a password", nil, nil, blob, true); !Is(err, InvalidMac) {
		t.Fatalf("expected InvalidMac for a tampered blob, got %v", err)
	}
}

func TestPipelineNonceSensitivity(t *testing.T) {
	cipher := newTestCipher(t)

	salt, _ := GenerateSalt()
	plaintext := []byte("identical plaintext, different nonce")

	nonceA, _ := GenerateNonce(RandomNonce, nil)
	nonceB, _ := GenerateNonce(RandomNonce, nil)

	blobA, err := cipher.Encrypt("password", nonceA, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	blobB, err := cipher.Encrypt("password", nonceB, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if bytes.Equal(blobA, blobB) {
		t.Fatal("expected different nonces to produce different ciphertext")
	}
}

func TestPipelineNoWrapRoundTrip(t *testing.T) {
	cipher := newTestCipher(t)

	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := []byte("caller-managed nonce and salt")

	blob, err := cipher.Encrypt("password", nonce, salt, plaintext, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	decrypted, err := cipher.Decrypt("password", nonce, salt, blob, false)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("round-trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestPipelineWrapAllBlobLength(t *testing.T) {
	cipher := newTestCipher(t)

	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := bytes.Repeat([]byte{0xAB}, 10_000)

	blob, err := cipher.Encrypt("password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	want := wireNonceLen + wireVersionLen + len(plaintext) + wireMacLen + wireSaltLen
	if len(blob) != want {
		t.Fatalf("blob length = %d, want %d", len(blob), want)
	}
}

func TestPipelineDeviceEquivalence(t *testing.T) {
	cpuCipher, err := NewBuilder().WithDevice(Cpu).Build()
	if err != nil {
		t.Fatalf("build cpu cipher: %v", err)
	}
	gpuCipher, err := NewBuilder().WithDevice(Gpu).Build()
	if err != nil {
		t.Fatalf("build gpu cipher: %v", err)
	}

	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := []byte("device selection must not change ciphertext")

	cpuBlob, err := cpuCipher.Encrypt("password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("cpu Encrypt: %v", err)
	}
	gpuBlob, err := gpuCipher.Encrypt("password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("gpu Encrypt: %v", err)
	}

	if !bytes.Equal(cpuBlob, gpuBlob) {
		t.Fatal("cpu and gpu blobs diverged for identical inputs")
	}

	decrypted, err := cpuCipher.Decrypt("password", nil, nil, gpuBlob, true)
	if err != nil {
		t.Fatalf("cpu Decrypt of gpu blob: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatal("cpu decrypt of gpu blob did not recover plaintext")
	}
}

func TestPipelineRoundsMismatchFails(t *testing.T) {
	enc, err := NewBuilder().WithRounds(1).Build()
	if err != nil {
		t.Fatalf("build encrypt cipher: %v", err)
	}
	dec, err := NewBuilder().WithRounds(6).Build()
	if err != nil {
		t.Fatalf("build decrypt cipher: %v", err)
	}

	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := []byte("the blob does not self-describe its round count")

	blobA, err := enc.Encrypt("password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	blobB, err := dec.Encrypt("password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(blobA, blobB) {
		t.Fatal("rounds=1 and rounds=6 produced identical blobs")
	}

	if _, err := dec.Decrypt("password", nil, nil, blobA, true); err == nil {
		t.Fatal("expected decryption with a mismatched round count to fail")
	}
}

func TestPipelineSboxModeMismatchFails(t *testing.T) {
	enc, err := NewBuilder().WithSboxMode(PasswordBased).Build()
	if err != nil {
		t.Fatalf("build encrypt cipher: %v", err)
	}
	dec, err := NewBuilder().WithSboxMode(NonceBased).Build()
	if err != nil {
		t.Fatalf("build decrypt cipher: %v", err)
	}

	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := []byte("the blob does not self-describe its S-box mode")

	blob, err := enc.Encrypt("password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := dec.Decrypt("password", nil, nil, blob, true); !Is(err, InvalidMac) {
		t.Fatalf("expected InvalidMac for mismatched S-box mode, got %v", err)
	}
}

func TestPipelineGFPolyMismatchFails(t *testing.T) {
	enc, err := NewBuilder().WithGFPoly(AESPoly).Build()
	if err != nil {
		t.Fatalf("build encrypt cipher: %v", err)
	}
	dec, err := NewBuilder().WithGFPoly(CustomPoly(0x1d)).Build()
	if err != nil {
		t.Fatalf("build decrypt cipher: %v", err)
	}

	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := []byte("the blob does not self-describe its reduction polynomial")

	blob, err := enc.Encrypt("password", nonce, salt, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := dec.Decrypt("password", nil, nil, blob, true); !Is(err, InvalidMac) {
		t.Fatalf("expected InvalidMac for mismatched polynomial, got %v", err)
	}
}

func TestPipelineWrongNonceFails(t *testing.T) {
	cipher := newTestCipher(t)

	nonceA, _ := GenerateNonce(RandomNonce, nil)
	nonceB, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()
	plaintext := []byte("bound to one nonce only")

	blob, err := cipher.Encrypt("password", nonceA, salt, plaintext, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := cipher.Decrypt("password", nonceB, salt, blob, false); err == nil {
		t.Fatal("expected decryption with the wrong nonce to fail")
	}
}

func TestPipelineThreeBytePayloadRoundTrip(t *testing.T) {
	cipher := newTestCipher(t)

	nonce, _ := GenerateNonce(RandomNonce, nil)
	plaintext := []byte{0x41, 0x42, 0x43}

	blob, err := cipher.Encrypt("password", nonce, nil, plaintext, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	decrypted, err := cipher.Decrypt("password", nil, nil, blob, true)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("3-byte round-trip mismatch: got %x, want %x", decrypted, plaintext)
	}
}

func TestPipelineRejectsShortSalt(t *testing.T) {
	cipher := newTestCipher(t)
	nonce, _ := GenerateNonce(RandomNonce, nil)

	_, err := cipher.Encrypt("password", nonce, Salt(make([]byte, 16)), []byte("data"), true)
	if !Is(err, InvalidNonce) {
		t.Fatalf("expected InvalidNonce for a 16-byte salt, got %v", err)
	}
}

func TestPipelineEmptyPlaintextRejected(t *testing.T) {
	cipher := newTestCipher(t)
	nonce, _ := GenerateNonce(RandomNonce, nil)
	salt, _ := GenerateSalt()

	if _, err := cipher.Encrypt("password", nonce, salt, nil, true); err == nil {
		t.Fatal("expected empty plaintext to be rejected")
	}
}

// encodeLegacyBlob builds a version-0x2 blob the way the legacy format
// produced it: the forward S-box/mix/shift/S-box stages (no column
// mixing, which postdates 0x2), a single password-keyed chunked XOR
// pass (no round-key schedule), a version tag encrypted under the
// password key, and the 32-byte keyed MAC.
func encodeLegacyBlob(t *testing.T, c *Cipher, password string, nonce Nonce, plaintext []byte) []byte {
	t.Helper()

	k0, err := deriveKey(password, nonce)
	if err != nil {
		t.Fatalf("deriveKey: %v", err)
	}
	passwordKey := derivePasswordKey(k0, nonce, c.cfg.Argon2)

	seed := sboxSeed(c.cfg.Sbox, nonce, passwordKey)
	sbox := generateSbox(seed)

	body := applyTable(c.pool, sbox, append([]byte{}, plaintext...))

	body, err = mixBlocks(c.pool, body, nonce, passwordKey)
	if err != nil {
		t.Fatalf("mixBlocks: %v", err)
	}

	backend := resolveBackend(c.cfg.Device)
	body, err = backend.shift(c.pool, body, nonce, passwordKey)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}

	body = applyTable(c.pool, sbox, body)

	body, err = xorRound(c.pool, nonce, passwordKey, body, true)
	if err != nil {
		t.Fatalf("xorRound: %v", err)
	}

	tag, err := xorEncrypt(nonce, passwordKey, versionLiteralLegacy)
	if err != nil {
		t.Fatalf("xorEncrypt version tag: %v", err)
	}
	mac, err := computeMACLegacy(nonce, passwordKey, body, plaintext)
	if err != nil {
		t.Fatalf("computeMACLegacy: %v", err)
	}

	blob := make([]byte, 0, len(tag)+len(body)+len(mac))
	blob = append(blob, tag...)
	blob = append(blob, body...)
	blob = append(blob, mac...)
	return blob
}

func TestPipelineLegacyBlobRoundTrip(t *testing.T) {
	cipher := newTestCipher(t)

	nonce, _ := GenerateNonce(RandomNonce, nil)
	plaintext := []byte("a payload long enough to span several legacy chunks: " +
		"the five boxing wizards jump quickly, again and again and again")

	blob := encodeLegacyBlob(t, cipher, "legacy password", nonce, plaintext)

	decrypted, err := cipher.Decrypt("legacy password", nonce, nil, blob, false)
	if err != nil {
		t.Fatalf("Decrypt of legacy blob: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("legacy round-trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestPipelineLegacyBlobTamperFailsMAC(t *testing.T) {
	cipher := newTestCipher(t)

	nonce, _ := GenerateNonce(RandomNonce, nil)
	plaintext := []byte("tamper detection must hold for the legacy format too")

	blob := encodeLegacyBlob(t, cipher, "legacy password", nonce, plaintext)

	blob[wireVersionLen+3] ^= 0x01 // flip a bit inside the body
	if _, err := cipher.Decrypt("legacy password", nonce, nil, blob, false); !Is(err, InvalidMac) {
		t.Fatalf("expected InvalidMac for a tampered legacy blob, got %v", err)
	}
}
