package utils

import (
	"testing"

	"github.com/nagatech/daily_audit/config"
)

func TestAsciiCipher_Encrypt_KnownValues(t *testing.T) {
	c := NewAsciiCipher(config.DefaultEncKey)
	cases := map[string]string{
		"BAYAR DP":     "A474CB75C590B9C4",
		"TUNAI":        "B688C075BC",
		"DEBIT":        "A678B47DC7",
		"TRANSFER BCA": "B685B382C6B6BAC653B477B4", // ninth character uses key index 1
	}
	for plain, want := range cases {
		if got := c.Encrypt(plain); got != want {
			t.Fatalf("Encrypt(%q) = %q, want %q", plain, got, want)
		}
	}
}

func TestAsciiCipher_RoundTrip(t *testing.T) {
	c := NewAsciiCipher(config.DefaultEncKey)
	for _, plain := range []string{"TRANSFER BCA", "QRIS", "a much longer payment method name"} {
		got, err := c.Decrypt(c.Encrypt(plain))
		if err != nil {
			t.Fatalf("decrypt %q: %v", plain, err)
		}
		if got != plain {
			t.Fatalf("round trip of %q gave %q", plain, got)
		}
	}
}

func TestAsciiCipher_EmptyAndShortKey(t *testing.T) {
	if got := NewAsciiCipher(config.DefaultEncKey).Encrypt(""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := NewAsciiCipher("k").Encrypt("TUNAI"); got != "TUNAI" {
		t.Fatalf("a one character key must leave the input unchanged, got %q", got)
	}
	if _, err := NewAsciiCipher(config.DefaultEncKey).Decrypt("ABC"); err == nil {
		t.Fatalf("expected an error for odd length input")
	}
}

func TestWeightsEqual(t *testing.T) {
	if !WeightsEqual(12.5, 12.5009) {
		t.Fatalf("12.5 and 12.5009 should be equal within tolerance")
	}
	if WeightsEqual(12.5, 12.503) {
		t.Fatalf("12.5 and 12.503 should differ")
	}
}
