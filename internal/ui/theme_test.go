package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %s", in, got, want)
		}
	}
}

func TestGetThemeFallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(\"\").Name = %q, want Nightfox", got)
	}
}

func TestEveryThemeColorsEveryBadge(t *testing.T) {
	badges := []string{"online", "loading", "guest", "offline", "expired", "error"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, badge := range badges {
			if th.StatusColors[badge] == "" {
				t.Fatalf("theme %s has no color for badge %q", name, badge)
			}
		}
	}
}

func TestWithBackgroundKeepsBadgeFallback(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles().WithBackground(th.Surface)
	got := styles.StatusStyle("unknown").GetBackground()
	want := th.Styles().StatusStyle("unknown").GetBackground()
	if got != want {
		t.Fatalf("StatusStyle(unknown) background = %v, want %v", got, want)
	}
}
