// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package geo

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waymark/internal/validation"
)

// ErrInvalid is returned (wrapped with a reason) for any payload that is
// not a usable coordinate pair.
var ErrInvalid = errors.New("invalid location")

// Coordinate bounds in degrees, inclusive.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Coordinates is a validated latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Validate checks a numeric pair. NaN is rejected before the range checks;
// infinities fail the range checks.
func Validate(lat, lon float64) (Coordinates, error) {
	if math.IsNaN(lat) {
		return Coordinates{}, fmt.Errorf("%w: latitude is NaN", ErrInvalid)
	}
	if math.IsNaN(lon) {
		return Coordinates{}, fmt.Errorf("%w: longitude is NaN", ErrInvalid)
	}

	c := Coordinates{Latitude: lat, Longitude: lon}
	if verr := validation.ValidateStruct(&c); verr != nil {
		return Coordinates{}, fmt.Errorf("%w: %s", ErrInvalid, verr.Error())
	}
	return c, nil
}

// ValidatePayload decodes an untrusted send-location payload and validates
// it. The payload must be a JSON object whose latitude and longitude are
// JSON numbers; strings are rejected even when they hold a number. Unknown
// fields are ignored.
func ValidatePayload(raw []byte) (Coordinates, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return Coordinates{}, fmt.Errorf("%w: payload is not an object", ErrInvalid)
	}

	lat, err := coerce(obj, "latitude")
	if err != nil {
		return Coordinates{}, err
	}
	lon, err := coerce(obj, "longitude")
	if err != nil {
		return Coordinates{}, err
	}
	return Validate(lat, lon)
}

func coerce(obj map[string]interface{}, field string) (float64, error) {
	v, ok := obj[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s is missing", ErrInvalid, field)
	}

	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalid, field)
	}

	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s is out of range", ErrInvalid, field)
		}
		return 0, fmt.Errorf("%w: %s is not numeric", ErrInvalid, field)
	}
	return f, nil
}
