package cards

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	codeAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeGroupLen    = 4
	codeMaxAttempts = 10
)

var codePattern = regexp.MustCompile(`^[0-9A-Z]{4}-[0-9A-Z]{4}$`)

// GenerateCode produces a random card code in XXXX-XXXX form.
func GenerateCode() (string, error) {
	var b strings.Builder
	b.Grow(codeGroupLen*2 + 1)
	for i := 0; i < codeGroupLen*2; i++ {
		if i == codeGroupLen {
			b.WriteByte('-')
		}
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generating card code: %w", err)
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// ValidCode reports whether the value matches the card code format.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

type codeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// NewUniqueCode generates codes until one is free of collisions, bounded by
// a fixed attempt budget.
func NewUniqueCode(ctx context.Context, checker codeChecker) (string, error) {
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		exists, err := checker.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique card code after %d attempts", codeMaxAttempts)
}
