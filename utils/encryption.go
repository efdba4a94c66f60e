package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// AsciiCipher is the POS's reversible keyed shift: every character is added to a key character
// and written as upper-case hex. The key cursor wraps to index 1, not 0, after the last key
// character; stored values depend on that, so it must not be "fixed".
type AsciiCipher struct {
	key []rune
}

func NewAsciiCipher(key string) AsciiCipher {
	return AsciiCipher{key: []rune(key)}
}

func (c AsciiCipher) next(n int) int {
	if n == len(c.key)-1 {
		n = 0
	}
	return n + 1
}

// Encrypt returns s unchanged for an empty input or a key shorter than two characters.
func (c AsciiCipher) Encrypt(s string) string {
	if s == "" || len(c.key) < 2 {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		b.WriteString(strconv.FormatInt(int64(r+c.key[n]), 16))
		n = c.next(n)
	}
	return strings.ToUpper(b.String())
}

func (c AsciiCipher) Decrypt(s string) (string, error) {
	if s == "" {
		return s, nil
	}
	if len(c.key) < 2 {
		return "", fmt.Errorf("decrypt: key too short")
	}
	if len(s)%2 != 0 {
		return "", fmt.Errorf("decrypt: odd length %d", len(s))
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 16)
		if err != nil {
			return "", fmt.Errorf("decrypt: %w", err)
		}
		b.WriteRune(rune(v) - c.key[n])
		n = c.next(n)
	}
	return b.String(), nil
}
