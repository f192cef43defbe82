package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		val  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"12", 12 * time.Second},
		{"soon", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("FORGELABS_TEST_DURATION", tt.val)
		if got := Duration("FORGELABS_TEST_DURATION", 5*time.Second); got != tt.want {
			t.Errorf("Duration(%q) = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestList(t *testing.T) {
	t.Setenv("FORGELABS_TEST_LIST", " a, ,b ,c")
	got := List("FORGELABS_TEST_LIST", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("List = %v", got)
	}

	t.Setenv("FORGELABS_TEST_LIST", " , ")
	if got := List("FORGELABS_TEST_LIST", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("List fallback = %v", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("FORGELABS_TEST_INT", "nope")
	if got := Int("FORGELABS_TEST_INT", 7); got != 7 {
		t.Fatalf("Int = %d, want 7", got)
	}
	t.Setenv("FORGELABS_TEST_INT", "42")
	if got := Int("FORGELABS_TEST_INT", 7); got != 42 {
		t.Fatalf("Int = %d, want 42", got)
	}
}
