// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fieldcodec decrypts the field values the temple API returns
// encrypted with a shared passphrase.
//
// Values use the OpenSSL "Salted__" envelope that CryptoJS emits: base64 of
// the 8-byte magic, an 8-byte salt and an AES-256-CBC ciphertext keyed by
// EVP_BytesToKey with MD5. The passphrase is shared with every browser
// that ever loaded the dashboard, so this is display plumbing rather than
// a confidentiality boundary.
//
// Decryption failures never surface to callers of Decrypt or the record
// helpers: the ciphertext is returned unchanged and shown as-is.
package fieldcodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	openssl "github.com/Luzifer/go-openssl/v4"
)

// EncryptedPrefix is the base64 form of "Salted__" plus the first salt bits.
// Only values starting with it are attempted.
const EncryptedPrefix = "U2FsdGVkX1"

const (
	saltMagic = "Salted__"
	saltLen   = 8
	blockLen  = 16
)

var (
	ErrNotEncrypted = errors.New("value is not an encrypted envelope")
	ErrBadEnvelope  = errors.New("malformed encrypted envelope")
	ErrDecrypt      = errors.New("decryption failed")
	ErrNotText      = errors.New("plaintext is not valid UTF-8")
)

// Codec encrypts and decrypts values with one passphrase.
type Codec struct {
	passphrase string
	ossl       *openssl.OpenSSL
}

// New returns a codec for passphrase.
func New(passphrase string) *Codec {
	return &Codec{passphrase: passphrase, ossl: openssl.New()}
}

// IsEncrypted reports whether s looks like an encrypted envelope.
func IsEncrypted(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), EncryptedPrefix)
}

// DecryptValue decrypts one envelope and reports why it failed.
func (c *Codec) DecryptValue(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, EncryptedPrefix) {
		return "", ErrNotEncrypted
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if len(raw) < len(saltMagic)+saltLen+blockLen || string(raw[:len(saltMagic)]) != saltMagic {
		return "", ErrBadEnvelope
	}
	if (len(raw)-len(saltMagic)-saltLen)%blockLen != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block aligned", ErrBadEnvelope)
	}

	pt, err := c.ossl.DecryptBytes(c.passphrase, []byte(s), openssl.BytesToKeyMD5)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if !utf8.Valid(pt) {
		return "", ErrNotText
	}
	return string(pt), nil
}

// Decrypt returns the plaintext of s, or s itself when s is not an
// envelope, fails to decrypt, or decrypts to an empty string.
func (c *Codec) Decrypt(s string) string {
	pt, err := c.DecryptValue(s)
	if err != nil || pt == "" {
		return s
	}
	return pt
}

// Encrypt seals plaintext in a fresh salted envelope.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	sealed, err := c.ossl.EncryptBytes(c.passphrase, []byte(plaintext), openssl.BytesToKeyMD5)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return string(sealed), nil
}
