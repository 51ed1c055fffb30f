package token

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"punctuation only", "?!... --- ,,", nil},
		{"simple", "Tell me about cats", []string{"tell", "me", "about", "cats"}},
		{"mixed case and digits", "HTTP2 over TLS1.3", []string{"http2", "over", "tls1", "3"}},
		{"separators", "foo_bar-baz/qux", []string{"foo", "bar", "baz", "qux"}},
		{"single chars kept", "a b c", []string{"a", "b", "c"}},
		{"duplicates kept", "go Go GO", []string{"go", "go", "go"}},
		{"non ascii separates", "café au lait", []string{"caf", "au", "lait"}},
		{"leading and trailing", "  hello  ", []string{"hello"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewSet_Dedup(t *testing.T) {
	s := NewSet([]string{"cats", "dogs", "cats"})
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if !s.Contains("cats") || !s.Contains("dogs") {
		t.Errorf("set missing tokens: %v", s)
	}
	if s.Contains("birds") {
		t.Error("unexpected token birds")
	}
}

func TestSet_IntersectionAndUnion(t *testing.T) {
	a := Of("tell me about cats")
	b := Of("Cats are small domesticated carnivorous mammals.")

	if got := a.IntersectionLen(b); got != 1 {
		t.Errorf("IntersectionLen = %d, want 1", got)
	}
	if got := b.IntersectionLen(a); got != 1 {
		t.Errorf("IntersectionLen is not symmetric: %d", got)
	}
	if got := a.UnionLen(b); got != 9 {
		t.Errorf("UnionLen = %d, want 9", got)
	}
}

func TestSet_Empty(t *testing.T) {
	empty := Of("!!!")
	other := Of("something")

	if empty.Len() != 0 {
		t.Errorf("Len() = %d, want 0", empty.Len())
	}
	if empty.IntersectionLen(other) != 0 {
		t.Error("intersection with empty set must be 0")
	}
	if empty.UnionLen(other) != 1 {
		t.Errorf("UnionLen = %d, want 1", empty.UnionLen(other))
	}
}
