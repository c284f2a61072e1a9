package refparse

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"John 3:16", true},
		{"check out john 3:16-18 sometime", true},
		{"psalm 119:105", true},
		{"no reference here", false},
		{"3:16", false},
		{"John 3", false},
		{"John 3:1234", true}, // 123 matches before the trailing 4
		{"", false},
	}
	for _, c := range cases {
		if got := Detect(c.text); got != c.want {
			t.Fatalf("Detect(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestNormalizeSpacing(t *testing.T) {
	if got := NormalizeSpacing("john3:16"); got != "john 3:16" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeSpacing("John 3:16"); got != "John 3:16" {
		t.Fatalf("already spaced input changed: %q", got)
	}
	if !Detect(NormalizeSpacing("psalm23:1")) {
		t.Fatalf("compressed form not detectable after normalization")
	}
}

func TestCanonicalize(t *testing.T) {
	if got := Canonicalize("  jOhn   3:16 "); got != "John 3:16" {
		t.Fatalf("got %q", got)
	}
	once := Canonicalize("1 joHN 3:16-18")
	if once != "1 John 3:16-18" {
		t.Fatalf("got %q", once)
	}
	if twice := Canonicalize(once); twice != once {
		t.Fatalf("not idempotent: %q != %q", twice, once)
	}
}

func TestExtract(t *testing.T) {
	cases := []struct {
		text, want string
	}{
		{"please read John 3:16 tonight", "John 3:16"},
		{"1 john 3:16", "1 john 3:16"},
		{"psalm 23:1-6!", "psalm 23:1-6"},
		{"nothing", ""},
	}
	for _, c := range cases {
		if got := Extract(c.text); got != c.want {
			t.Fatalf("Extract(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestClampRange(t *testing.T) {
	cases := []struct {
		ref  string
		span int
		want string
	}{
		{"John 3:1-99", 5, "John 3:1-6"},
		{"John 3:16", 5, "John 3:16"},
		{"John 3:1-4", 5, "John 3:1-4"},
		{"John 3:1-6", 5, "John 3:1-6"},
		{"Psalm 119:100-120", 5, "Psalm 119:100-105"},
	}
	for _, c := range cases {
		if got := ClampRange(c.ref, c.span); got != c.want {
			t.Fatalf("ClampRange(%q, %d) = %q, want %q", c.ref, c.span, got, c.want)
		}
	}
}
