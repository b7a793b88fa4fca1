package utils

import "testing"

func TestResolveLocale_ExplicitWins(t *testing.T) {
	if got := ResolveLocale("ru", "en-US,en;q=0.9"); got != "ru" {
		t.Errorf("explicit ru = %q, want ru", got)
	}
	if got := ResolveLocale("en", "ru-RU"); got != "en" {
		t.Errorf("explicit en = %q, want en", got)
	}
}

func TestResolveLocale_HeaderFallback(t *testing.T) {
	if got := ResolveLocale("", "ru-RU,ru;q=0.9,en;q=0.5"); got != "ru" {
		t.Errorf("ru header = %q, want ru", got)
	}
	if got := ResolveLocale("", "en-GB"); got != "en" {
		t.Errorf("en header = %q, want en", got)
	}
}

func TestResolveLocale_DefaultsToEnglish(t *testing.T) {
	if got := ResolveLocale("", ""); got != DefaultLocale {
		t.Errorf("empty inputs = %q, want %q", got, DefaultLocale)
	}
	// Unsupported languages fall back to the default.
	if got := ResolveLocale("fr", "fr-FR"); got != DefaultLocale {
		t.Errorf("unsupported locale = %q, want %q", got, DefaultLocale)
	}
}
