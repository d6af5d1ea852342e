// Package encoding provides the compact base-63 encoding used for file
// fingerprints.
//
// Base-63 Alphabet: A-Z (0-25), a-z (26-51), 0-9 (52-61), _ (62)
// Every character is safe inside a declaration identifier.
package encoding

import (
	"errors"
	"fmt"
)

const (
	Base63     = 63
	Alphabet63 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"
)

var (
	ErrEmptyString = errors.New("empty encoded string")
	ErrInvalidChar = errors.New("invalid character in encoded string")
	ErrOverflow    = errors.New("decoded value overflow")
)

// Base63Encode encodes a uint64 value to a base-63 string.
// Returns "A" for zero.
func Base63Encode(value uint64) string {
	if value == 0 {
		return "A"
	}

	// 11 chars hold any uint64
	var buf [11]byte
	pos := len(buf)

	for value > 0 {
		pos--
		buf[pos] = Alphabet63[value%Base63]
		value /= Base63
	}

	return string(buf[pos:])
}

// Base63Decode decodes a base-63 string to a uint64 value.
func Base63Decode(encoded string) (uint64, error) {
	if encoded == "" {
		return 0, ErrEmptyString
	}

	var value uint64
	for _, c := range encoded {
		charVal, err := base63CharToValue(c)
		if err != nil {
			return 0, err
		}
		if value > (^uint64(0))/Base63 {
			return 0, ErrOverflow
		}
		next := value*Base63 + charVal
		if next < value*Base63 {
			return 0, ErrOverflow
		}
		value = next
	}

	return value, nil
}

// Base63IsValid checks if a string is a valid base-63 encoded value.
func Base63IsValid(encoded string) bool {
	if encoded == "" {
		return false
	}
	for _, c := range encoded {
		if _, err := base63CharToValue(c); err != nil {
			return false
		}
	}
	return true
}

func base63CharToValue(c rune) (uint64, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint64(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 26, nil
	case c >= '0' && c <= '9':
		return uint64(c-'0') + 52, nil
	case c == '_':
		return 62, nil
	default:
		return 0, fmt.Errorf("%w: %c", ErrInvalidChar, c)
	}
}
