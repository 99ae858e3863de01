// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fieldcodec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassphrase = "correct horse battery staple"

func TestEncrypt_EnvelopeLayout(t *testing.T) {
	c := New("secret")
	sealed, err := c.Encrypt("hello temple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, EncryptedPrefix))

	raw := decodeB64(t, sealed)
	assert.Equal(t, "Salted__", string(raw[:8]))
	assert.Len(t, raw[16:], 16, "12 bytes pad to one block")
}

// opensslSeal builds a "Salted__" envelope the way `openssl enc -aes-256-cbc
// -md md5` and CryptoJS do, independently of the codec.
func opensslSeal(t *testing.T, passphrase, plaintext string, salt []byte) string {
	t.Helper()
	var kiv, prev []byte
	for len(kiv) < 48 {
		d := md5.Sum(append(append(prev, passphrase...), salt...))
		prev = d[:]
		kiv = append(kiv, prev...)
	}
	block, err := aes.NewCipher(kiv[:32])
	require.NoError(t, err)

	n := aes.BlockSize - len(plaintext)%aes.BlockSize
	pt := append([]byte(plaintext), bytes.Repeat([]byte{byte(n)}, n)...)
	ct := make([]byte, len(pt))
	cipher.NewCBCEncrypter(block, kiv[32:48]).CryptBlocks(ct, pt)

	raw := append(append([]byte("Salted__"), salt...), ct...)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestDecryptValue_OpenSSLEnvelope(t *testing.T) {
	c := New("secret")
	for _, pt := range []string{"1500", "exactly16bytes!!", "ಹಾಸನಾಂಬ"} {
		sealed := opensslSeal(t, "secret", pt, []byte{1, 2, 3, 4, 5, 6, 7, 8})
		got, err := c.DecryptValue(sealed)
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
}

func TestDecryptValue_TruncatedCiphertext(t *testing.T) {
	c := New("secret")
	raw := decodeB64(t, opensslSeal(t, "secret", "1500", []byte{8, 7, 6, 5, 4, 3, 2, 1}))

	_, err := c.DecryptValue(base64.StdEncoding.EncodeToString(raw[:len(raw)-3]))
	assert.ErrorIs(t, err, ErrBadEnvelope)

	_, err = c.DecryptValue(base64.StdEncoding.EncodeToString(raw[:16]))
	assert.ErrorIs(t, err, ErrBadEnvelope)
}

func TestRoundTrip(t *testing.T) {
	c := New(testPassphrase)
	for _, pt := range []string{"1500", "SUCCESS", `"UPI"`, "ಹಾಸನಾಂಬ", strings.Repeat("x", 64)} {
		sealed, err := c.Encrypt(pt)
		require.NoError(t, err)

		got, err := c.DecryptValue(sealed)
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
}

func TestEncrypt_FreshSaltEachTime(t *testing.T) {
	c := New(testPassphrase)
	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	assert.NotEqual(t, a, b)
}

func TestDecrypt_SilentFailure(t *testing.T) {
	c := New(testPassphrase)
	other, err := New("a different key").Encrypt("1500")
	require.NoError(t, err)

	tests := []string{
		"",
		"plain value",
		EncryptedPrefix + "!!!not base64",
		other,
	}
	for _, in := range tests {
		assert.Equal(t, in, c.Decrypt(in), "Decrypt(%q) must return its input", in)
	}
}

func TestDecryptValue_Errors(t *testing.T) {
	c := New(testPassphrase)

	_, err := c.DecryptValue("hello")
	assert.ErrorIs(t, err, ErrNotEncrypted)

	_, err = c.DecryptValue(EncryptedPrefix + "@@@@")
	assert.ErrorIs(t, err, ErrBadEnvelope)
}

func TestIsEncrypted(t *testing.T) {
	assert.True(t, IsEncrypted("U2FsdGVkX19abc"))
	assert.True(t, IsEncrypted("  U2FsdGVkX19abc"))
	assert.False(t, IsEncrypted("1500"))
}

// =============================================================================
// RECORDS
// =============================================================================

func seal(t *testing.T, c *Codec, pt string) string {
	t.Helper()
	s, err := c.Encrypt(pt)
	require.NoError(t, err)
	return s
}

func decodeB64(t *testing.T, s string) []byte {
	t.Helper()
	out, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return out
}

func TestDecryptFields_BookingProfile(t *testing.T) {
	c := New(testPassphrase)
	rec := map[string]any{
		"name":              "Devotee",
		"amount":            seal(t, c, "300"),
		"transactionStatus": seal(t, c, "SUCCESS"),
		"paymentMethod":     "UPI",
		"bookingDate":       42.0,
	}

	out := c.DecryptFields(rec, BookingProfile)

	assert.Equal(t, "300", out["amount"])
	assert.Equal(t, "SUCCESS", out["transactionStatus"])
	assert.Equal(t, "UPI", out["paymentMethod"])
	assert.Equal(t, 42.0, out["bookingDate"])
	assert.Equal(t, "Devotee", out["name"])
	assert.NotEqual(t, "300", rec["amount"], "input must not be mutated")
}

func TestDecryptFields_DonationStripsQuotes(t *testing.T) {
	c := New(testPassphrase)
	out := c.DecryptFields(map[string]any{"amount": seal(t, c, `"1001"`)}, DonationProfile)
	assert.Equal(t, "1001", out["amount"])
}

func TestDecryptFields_UserPasswordJSON(t *testing.T) {
	c := New(testPassphrase)
	out := c.DecryptFields(map[string]any{"password": seal(t, c, `"p@ss"`)}, UserProfile)
	assert.Equal(t, "p@ss", out["password"])

	out = c.DecryptFields(map[string]any{"password": seal(t, c, `raw`)}, UserProfile)
	assert.Equal(t, "raw", out["password"])
}

func TestDecryptFields_WrongKeyKeepsCiphertext(t *testing.T) {
	c := New(testPassphrase)
	foreign := seal(t, New("other"), "300")
	out := c.DecryptFields(map[string]any{"amount": foreign}, BookingProfile)
	assert.Equal(t, foreign, out["amount"])
}

func TestDecodeRecords_EncryptedPayload(t *testing.T) {
	c := New(testPassphrase)
	inner := `[{"name":"A","amount":"` + seal(t, c, "100") + `"},{"name":"B","amount":"200"}]`
	data, _ := json.Marshal(seal(t, c, inner))

	recs, ok := c.DecodeRecords(data, BookingProfile)
	require.True(t, ok)
	require.Len(t, recs, 2)
	assert.Equal(t, "100", recs[0]["amount"])
	assert.Equal(t, "200", recs[1]["amount"])
}

func TestDecodeRecords_SingleObject(t *testing.T) {
	c := New(testPassphrase)
	data, _ := json.Marshal(seal(t, c, `{"name":"solo"}`))

	recs, ok := c.DecodeRecords(data, DonationProfile)
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, "solo", recs[0]["name"])
}

func TestDecodeRecords_PlainArray(t *testing.T) {
	c := New(testPassphrase)
	recs, ok := c.DecodeRecords(json.RawMessage(`[{"id":1},{"id":2}, 3]`), UserProfile)
	require.True(t, ok)
	assert.Len(t, recs, 2)
}

func TestDecodeRecords_Failures(t *testing.T) {
	c := New(testPassphrase)

	_, ok := c.DecodeRecords(json.RawMessage(`"`+seal(t, New("x"), "[]")+`"`), BookingProfile)
	assert.False(t, ok)

	_, ok = c.DecodeRecords(json.RawMessage(`"just text"`), UserProfile)
	assert.False(t, ok)

	_, ok = c.DecodeRecords(json.RawMessage(`12`), UserProfile)
	assert.False(t, ok)

	recs, ok := c.DecodeRecords(json.RawMessage(`null`), UserProfile)
	assert.True(t, ok)
	assert.Empty(t, recs)
}
