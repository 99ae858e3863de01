// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fieldcodec

import (
	"encoding/json"
	"strings"
)

// Unquote says how a decrypted field value is cleaned up.
type Unquote int

const (
	// UnquoteNone keeps the plaintext as-is.
	UnquoteNone Unquote = iota
	// UnquoteStrip removes one pair of surrounding double quotes.
	UnquoteStrip
	// UnquoteJSON decodes the plaintext as a JSON string when it is one.
	UnquoteJSON
)

// Profile names the encrypted fields of one resource.
type Profile struct {
	Fields []string
	// Payload means the whole "data" member is one encrypted JSON document.
	Payload bool
	Unquote Unquote
}

// Built-in profiles for the temple API resources.
var (
	BookingProfile = Profile{
		Fields:  []string{"amount", "transactionStatus", "paymentMethod", "bookingDate"},
		Payload: true,
	}
	DonationProfile = Profile{
		Fields:  []string{"amount", "transactionStatus", "paymentMethod"},
		Payload: true,
		Unquote: UnquoteStrip,
	}
	UserProfile = Profile{
		Fields:  []string{"password"},
		Unquote: UnquoteJSON,
	}
)

func (c *Codec) decryptField(s string, mode Unquote) string {
	pt, err := c.DecryptValue(s)
	if err != nil || strings.TrimSpace(pt) == "" {
		return s
	}
	switch mode {
	case UnquoteStrip:
		if len(pt) >= 2 && strings.HasPrefix(pt, `"`) && strings.HasSuffix(pt, `"`) {
			pt = pt[1 : len(pt)-1]
		}
	case UnquoteJSON:
		var v string
		if err := json.Unmarshal([]byte(pt), &v); err == nil {
			pt = v
		}
	}
	if pt == "" {
		return s
	}
	return pt
}

// DecryptFields returns a copy of rec with the profile's encrypted string
// fields decrypted. Fields that are missing, not strings, or not
// envelopes are copied unchanged.
func (c *Codec) DecryptFields(rec map[string]any, p Profile) map[string]any {
	if rec == nil {
		return nil
	}
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	for _, f := range p.Fields {
		s, ok := out[f].(string)
		if !ok || s == "" || !strings.HasPrefix(s, EncryptedPrefix) {
			continue
		}
		out[f] = c.decryptField(s, p.Unquote)
	}
	return out
}

// DecodeRecords turns an API "data" member into records. Plain JSON arrays
// and objects are accepted as they are; a JSON string is decrypted first
// when the profile says the payload is encrypted. ok is false when the
// payload could not be decoded, in which case records is nil.
func (c *Codec) DecodeRecords(data json.RawMessage, p Profile) (records []map[string]any, ok bool) {
	doc := []byte(strings.TrimSpace(string(data)))
	if len(doc) == 0 || string(doc) == "null" {
		return []map[string]any{}, true
	}

	if doc[0] == '"' {
		var s string
		if err := json.Unmarshal(doc, &s); err != nil {
			return nil, false
		}
		if !p.Payload {
			return nil, false
		}
		pt, err := c.DecryptValue(s)
		if err != nil {
			return nil, false
		}
		doc = []byte(pt)
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		records = make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, isObj := item.(map[string]any); isObj {
				records = append(records, c.DecryptFields(m, p))
			}
		}
		return records, true
	case map[string]any:
		return []map[string]any{c.DecryptFields(t, p)}, true
	default:
		return nil, false
	}
}
