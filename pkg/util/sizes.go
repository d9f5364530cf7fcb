// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptySize is returned when the size string is empty.
	ErrEmptySize = errors.New("size string is empty")

	// ErrMissingSizeUnit is returned when the size string has no unit suffix.
	ErrMissingSizeUnit = errors.New("size string is missing a unit")

	// ErrUnsupportedSizeUnit is returned when the size string has a unit
	// other than kb, mb, gb, or tb.
	ErrUnsupportedSizeUnit = errors.New("unsupported size unit")

	// ErrInvalidSizeMagnitude is returned when the portion of the size
	// string before the unit is not a positive number.
	ErrInvalidSizeMagnitude = errors.New("invalid size magnitude")
)

// sizeUnitExponents maps a unit suffix to the exponent used in the binary
// conversion to kilobytes, i.e. value * 1024^n.
var sizeUnitExponents = map[string]int64{
	"kb": 0,
	"mb": 1,
	"gb": 2,
	"tb": 3,
}

// ParseSizeAsKB converts a human readable size string such as "100gb" or
// "0.5mb" into kilobytes using binary (1024-based) units. Units are
// case-insensitive and fractional magnitudes are truncated after conversion.
func ParseSizeAsKB(size string) (int64, error) {
	s := strings.TrimSpace(size)
	if s == "" {
		return 0, ErrEmptySize
	}

	i := len(s)
	for i > 0 && !isASCIIDigit(s[i-1]) && s[i-1] != '.' {
		i--
	}
	magnitude, unit := s[:i], strings.ToLower(s[i:])

	if unit == "" {
		return 0, fmt.Errorf("%w: %q: expected a number followed by one of kb, mb, gb, tb", ErrMissingSizeUnit, size)
	}
	if _, ok := sizeUnitExponents[unit]; !ok {
		return 0, fmt.Errorf("%w: %q in %q: supported units are kb, mb, gb, tb", ErrUnsupportedSizeUnit, unit, size)
	}

	value, err := strconv.ParseFloat(magnitude, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %q: expected a positive number followed by a unit, like \"100gb\"", ErrInvalidSizeMagnitude, size)
	}

	kb := value
	for n := int64(0); n < sizeUnitExponents[unit]; n++ {
		kb *= 1024
	}
	return int64(kb), nil
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
