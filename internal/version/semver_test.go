package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
		ok   bool
	}{
		{a: "1.2.3", b: "1.2.3", want: 0, ok: true},
		{a: "1.2", b: "1.2.0", want: 0, ok: true},
		{a: "1.2.3.4", b: "1.2.3", want: 1, ok: true},
		{a: "42", b: "100", want: -1, ok: true},
		{a: "v2.0", b: "1.9.9", want: 1, ok: true},
		{a: "1.10", b: "1.9", want: 1, ok: true},
		{a: "1.0-beta", b: "1.0", want: 0, ok: true},
		{a: "1.a", b: "1.0", ok: false},
		{a: "", b: "1.0", ok: false},
		{a: "1..2", b: "1.0", ok: false},
	}
	for _, tt := range tests {
		got, ok := Compare(tt.a, tt.b)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("Compare(%q,%q)=%d,%v want %d,%v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsOutdated(t *testing.T) {
	tests := []struct {
		current string
		minimum string
		want    bool
	}{
		{current: "1.2.2", minimum: "1.2.3", want: true},
		{current: "1.2.3", minimum: "v1.2.3", want: false},
		{current: "1.2.3", minimum: "1.2.2", want: false},
		{current: "dev", minimum: "1.2.3", want: false},
		{current: "1.0", minimum: "1.0.1", want: true},
		{current: "17", minimum: "18", want: true},
	}

	for _, tt := range tests {
		if got := IsOutdated(tt.current, tt.minimum); got != tt.want {
			t.Fatalf("IsOutdated(%q,%q)=%v want %v", tt.current, tt.minimum, got, tt.want)
		}
	}
}
