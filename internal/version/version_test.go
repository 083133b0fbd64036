package version

import "testing"

func TestString(t *testing.T) {
	got := String()
	want := "bf1-pattern dev (unknown, built unknown)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
