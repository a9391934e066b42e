// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package logging

import (
	"fmt"
	"strings"
)

// maxLogValueLength caps client-supplied strings written to logs, in runes.
const maxLogValueLength = 200

// SanitizeValue prepares a client-supplied string (display name, Origin
// header, request path) for a log field. Control characters are escaped so
// a value cannot forge log lines, and long values are truncated.
func SanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if n == maxLogValueLength {
			b.WriteString("...")
			break
		}
		n++
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
