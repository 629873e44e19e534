// Package textkey derives stable cache keys from free-form question text.
package textkey

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Prefixes folded into the hashed form so that numeric-only and empty
// inputs cannot collide with ordinary normalized text.
const (
	numericPrefix = "num:"
	emptyPrefix   = "empty:"
)

// Normalize lowercases text, trims it, collapses internal whitespace to
// single spaces, and strips everything that is not a letter, digit, or
// space. It never fails; the result may be empty.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pending := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			pending = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pending && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pending = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Key maps text to a fixed-length hex key. It is total: every input,
// including empty and whitespace-only strings, yields a stable key. Inputs
// that normalize to nothing hash a sentinel carrying the original length,
// so unrelated degenerate inputs stay distinct where possible.
func Key(text string) string {
	n := Normalize(text)
	switch {
	case n == "":
		n = emptyPrefix + strconv.Itoa(len(text))
	case numericOnly(n):
		n = numericPrefix + n
	}
	sum := sha256.Sum256([]byte(n))
	return fmt.Sprintf("%x", sum)
}

func numericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
