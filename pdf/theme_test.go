package pdf

import (
	"reflect"
	"testing"
)

func TestResolveTheme_Fallback(t *testing.T) {
	if got := ResolveTheme(""); got.Name != "default" {
		t.Fatalf("expected default theme for empty name, got %q", got.Name)
	}
	if got := ResolveTheme("nope"); got.Name != "default" {
		t.Fatalf("expected default theme for unknown name, got %q", got.Name)
	}
	if got := ResolveTheme("midnight"); got.Name != "midnight" {
		t.Fatalf("expected midnight theme, got %q", got.Name)
	}
}

func TestThemeNames_Sorted(t *testing.T) {
	want := []string{"default", "midnight", "parchment", "slate"}
	if got := ThemeNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestHexToRGB(t *testing.T) {
	cases := []struct {
		input string
		want  RGB
	}{
		{"#2563EB", RGB{R: 37, G: 99, B: 235}},
		{"2563EB", RGB{R: 37, G: 99, B: 235}},
		{"#FFFFFF", RGB{R: 255, G: 255, B: 255}},
		{"bogus", RGB{}},
		{"", RGB{}},
	}
	for _, tc := range cases {
		if got := hexToRGB(tc.input); got != tc.want {
			t.Fatalf("hexToRGB(%q) = %+v, want %+v", tc.input, got, tc.want)
		}
	}
}

func TestTint(t *testing.T) {
	if got := tint(RGB{}, 1); got != (RGB{R: 255, G: 255, B: 255}) {
		t.Fatalf("expected white, got %+v", got)
	}
	base := RGB{R: 100, G: 150, B: 200}
	if got := tint(base, 0); got != base {
		t.Fatalf("expected unchanged color, got %+v", got)
	}
}
