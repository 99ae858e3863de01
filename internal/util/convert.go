// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexibleInt reads a JSON value that may be a number, a numeric string,
// or null. Unparseable values yield 0.
func FlexibleInt(raw json.RawMessage) int64 {
	f := FlexibleFloat(raw)
	return int64(f)
}

// FlexibleFloat is FlexibleInt for fractional amounts.
func FlexibleFloat(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatAmount renders a rupee amount with two decimals.
func FormatAmount(f float64) string {
	return "₹" + strconv.FormatFloat(f, 'f', 2, 64)
}
