package domain

import (
	"fmt"
	"strings"
)

const taxIDLength = 11

// NormalizeTaxID strips every non-digit character.
func NormalizeTaxID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateTaxID checks the two mod-11 check digits of an 11-digit tax id and
// returns its normalized form.
func ValidateTaxID(raw string) (string, error) {
	id := NormalizeTaxID(raw)
	if len(id) != taxIDLength {
		return "", fmt.Errorf("%w: expected %d digits, got %d", ErrInvalidIdentity, taxIDLength, len(id))
	}
	if strings.Count(id, id[:1]) == taxIDLength {
		return "", fmt.Errorf("%w: repeated digits", ErrInvalidIdentity)
	}

	digits := make([]int, taxIDLength)
	for i, r := range id {
		digits[i] = int(r - '0')
	}
	for _, pos := range []int{9, 10} {
		if checkDigit(digits, pos) != digits[pos] {
			return "", fmt.Errorf("%w: check digit %d mismatch", ErrInvalidIdentity, pos-8)
		}
	}
	return id, nil
}

func checkDigit(digits []int, pos int) int {
	sum := 0
	for n := 0; n < pos; n++ {
		sum += digits[n] * (pos + 1 - n)
	}
	return (sum * 10 % 11) % 10
}
