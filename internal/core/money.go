// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing signed monetary amounts from strings
// and rendering cents in the fixed two-decimal form used by exports.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a signed decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an optional
// leading sign, and performs half-up rounding (away from zero) on the third
// decimal place.
//
// Examples:
//   ParseAmount("2400")    -> 240000, nil
//   ParseAmount("-85.5")   -> -8550, nil
//   ParseAmount("12,345")  -> 1235, nil (rounds up)
//   ParseAmount("1.2.3")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv >= maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// Fixed2 renders the amount with exactly two decimals and the literal sign,
// e.g. "-350.00". No currency symbol, no thousands separator.
func (m Money) Fixed2() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + frac
}
