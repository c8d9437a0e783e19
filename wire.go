// wire.go - blob assembly/parsing: version tagging, wrap_all framing,
// MAC computation for the current (0x3) and legacy (0x2) formats.
//
// Blob layout: [nonce?][encrypted version tag][body][mac][salt-or-nonce?],
// with the optional fields present only under wrap_all framing.
package atomcrypte

import (
	"bytes"

	"golang.org/x/crypto/sha3"
)

const (
	versionLegacy  byte = 0x2
	versionCurrent byte = 0x3

	wireNonceLen   = 32
	wireSaltLen    = 32
	wireVersionLen = 16 // len("atom-version:0x3")
	wireMacLen     = 64 // SHA3-512, current format
	legacyMacLen   = 32 // blake2b-keyed stand-in, legacy format
)

var (
	versionLiteralCurrent = []byte("atom-version:0x3")
	versionLiteralLegacy  = []byte("atom-version:0x2")
)

// versionFromLiteral recovers the version byte from a decrypted version
// tag, or reports false if the bytes don't match either known literal.
func versionFromLiteral(plain []byte) (byte, bool) {
	switch {
	case bytes.Equal(plain, versionLiteralCurrent):
		return versionCurrent, true
	case bytes.Equal(plain, versionLiteralLegacy):
		return versionLegacy, true
	default:
		return 0, false
	}
}

// encryptedVersionTag encrypts the literal "atom-version:0x3" under
// the constant version key.
func encryptedVersionTag(nonce []byte) ([]byte, error) {
	return xorEncrypt(nonce, kVersionKey(), versionLiteralCurrent)
}

// decryptVersionTag recovers the version from an encrypted tag. The
// constant version key is tried first; the password key is consulted
// only as a fallback, and its result accepted only for the legacy
// format, which tagged blobs under the password key.
func decryptVersionTag(tag, nonce, passwordKey []byte) (byte, error) {
	if plain, err := xorDecrypt(nonce, kVersionKey(), tag); err == nil {
		if v, ok := versionFromLiteral(plain); ok {
			return v, nil
		}
	}
	if plain, err := xorDecrypt(nonce, passwordKey, tag); err == nil {
		if v, ok := versionFromLiteral(plain); ok && v == versionLegacy {
			return v, nil
		}
	}
	return 0, newErr(InvalidAlgorithm, "version tag did not decrypt to a recognized literal")
}

// macPlainHash computes hash(xorEncrypt(nonce, passwordKey, plaintext)),
// the plaintext-binding half of the current-format MAC. The
// intermediate re-encrypted plaintext is zeroized before returning.
func macPlainHash(nonce, passwordKey, plaintext []byte) ([]byte, error) {
	enc, err := xorEncrypt(nonce, passwordKey, plaintext)
	if err != nil {
		return nil, err
	}
	defer zeroize(enc)
	return hash32(enc), nil
}

// computeMACCurrent authenticates body under the version-0x3 scheme:
// SHA3-512(body || hash(xorEncrypt(nonce, passwordKey, plaintext))).
func computeMACCurrent(body, plainHash []byte) []byte {
	h := sha3.New512()
	h.Write(body)
	h.Write(plainHash)
	return h.Sum(nil)
}

// computeMACLegacy authenticates body under the version-0x2 scheme: a
// keyed hash whose key is hash(ciphertext), taken over the
// re-encrypted plaintext. The keyed hash is blake2b's native keyed-MAC
// mode (see hash.go).
func computeMACLegacy(nonce, passwordKey, body, plaintext []byte) ([]byte, error) {
	key := hash32(body)
	data, err := xorEncrypt(nonce, passwordKey, plaintext)
	if err != nil {
		return nil, err
	}
	defer zeroize(data)
	return keyedHash32(key, data)
}

// wireBlob is the parsed form of a blob's version-tag+body+mac core,
// after any wrap_all prefix/suffix has already been peeled off by the
// caller (pipeline.go, which is the only place that knows whether
// wrapAll framing is in play).
type wireBlob struct {
	version byte
	body    []byte
	mac     []byte
}

// decodeCore parses core (encrypted version tag || body || mac) given
// the nonce and passwordKey the caller has already derived.
func decodeCore(core, nonce, passwordKey []byte) (*wireBlob, error) {
	if len(core) < wireVersionLen {
		return nil, newErr(InvalidMac, "blob too short for version tag")
	}
	tag := core[:wireVersionLen]
	rest := core[wireVersionLen:]

	version, err := decryptVersionTag(tag, nonce, passwordKey)
	if err != nil {
		return nil, err
	}

	macLen := wireMacLen
	if version == versionLegacy {
		macLen = legacyMacLen
	}
	if len(rest) < macLen {
		return nil, newErr(InvalidMac, "blob too short for mac")
	}
	body := rest[:len(rest)-macLen]
	mac := rest[len(rest)-macLen:]

	return &wireBlob{version: version, body: body, mac: mac}, nil
}

// encodeBlob assembles the wire representation:
// [nonce if wrapAll][encrypted version tag][body][mac][salt-or-nonce if
// wrapAll]. salt is appended verbatim when provided; otherwise the
// nonce is echoed.
func encodeBlob(nonce, salt, body, passwordKey, plaintext []byte, wrapAll bool) ([]byte, error) {
	versionTag, err := encryptedVersionTag(nonce)
	if err != nil {
		return nil, err
	}

	plainHash, err := macPlainHash(nonce, passwordKey, plaintext)
	if err != nil {
		return nil, err
	}
	defer zeroize(plainHash)
	mac := computeMACCurrent(body, plainHash)

	out := make([]byte, 0, len(nonce)+len(versionTag)+len(body)+len(mac)+wireSaltLen)
	if wrapAll {
		out = append(out, nonce...)
	}
	out = append(out, versionTag...)
	out = append(out, body...)
	out = append(out, mac...)
	if wrapAll {
		if len(salt) > 0 {
			out = append(out, salt...)
		} else {
			out = append(out, nonce...)
		}
	}
	return out, nil
}
