// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package relay

import (
	"errors"

	"github.com/tomtom215/waymark/internal/metrics"
	"github.com/tomtom215/waymark/internal/session"
)

// Drop reasons. A handler returning one of these produced no effects and
// nothing is reported back to the sender.
var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrRateLimited    = errors.New("rate limited")
	ErrUnnamedSender  = errors.New("sender has not set a name")
	ErrUnknownEvent   = errors.New("unknown event")

	// ErrUnknownSession matches session.ErrUnknownSession with errors.Is.
	ErrUnknownSession = session.ErrUnknownSession
)

// IsDrop reports whether err is an expected, silent drop rather than a fault.
func IsDrop(err error) bool {
	return errors.Is(err, ErrInvalidPayload) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnnamedSender) ||
		errors.Is(err, ErrUnknownEvent) ||
		errors.Is(err, ErrUnknownSession)
}

// dropResult maps a send-location outcome to its metric label.
func dropResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultAccepted
	case errors.Is(err, ErrRateLimited):
		return metrics.ResultRateLimited
	case errors.Is(err, ErrUnnamedSender):
		return metrics.ResultUnnamed
	case errors.Is(err, ErrUnknownSession):
		return metrics.ResultUnknownSession
	default:
		return metrics.ResultInvalid
	}
}
