package util

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+1 (555) 010-0001": "+15550100001",
		"  0015550100001 ":  "+15550100001",
		"(555) 010.0001":    "5550100001",
		"+49 171 1234567":   "+491711234567",
		"not a number":      "",
		"":                  "",
		"+1+2+3":            "+123",
	}
	for raw, want := range cases {
		if got := NormalizePhone(raw); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNewULID(t *testing.T) {
	a, b := New(), New()
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("ulid length: %q %q", a, b)
	}
	if a == b {
		t.Fatal("two ids collided")
	}
}
