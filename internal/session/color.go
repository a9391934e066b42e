// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package session

import (
	"fmt"
	"unicode/utf16"
)

// ColorForID derives a stable "#rrggbb" marker color from a connection id.
//
// The hash folds the UTF-16 code units of id as hash = hash*31 + unit with
// 32-bit wrap-around, and the low 24 bits become the color. Browser
// clients computing the same hash over the same id get the same color.
func ColorForID(id string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(id)) {
		hash = hash*31 + int32(unit)
	}
	return fmt.Sprintf("#%06x", uint32(hash)&0xFFFFFF)
}
