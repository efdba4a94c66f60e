package utils

import "testing"

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"mismatch.json":        "application/json",
		"mismatch_detail.xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
	for name, want := range cases {
		if got := contentTypeFor(name, nil); got != want {
			t.Fatalf("contentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}
