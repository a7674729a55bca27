package i18n

import "testing"

func TestLookup(t *testing.T) {
	if got := T("en", "login.title"); got != "Sign in to Sprava" {
		t.Errorf("T(en, login.title) = %q", got)
	}
	if got := T("fr", "login.title"); got != "Connexion à Sprava" {
		t.Errorf("T(fr, login.title) = %q", got)
	}
}

func TestFallbacks(t *testing.T) {
	// Unknown locale falls back to English.
	if got := T("de", "login.title"); got != "Sign in to Sprava" {
		t.Errorf("unknown locale: %q", got)
	}
	// Unknown key surfaces itself.
	if got := T("en", "missing.key"); got != "missing.key" {
		t.Errorf("unknown key: %q", got)
	}
}

func TestEveryEnglishKeyHasFrench(t *testing.T) {
	for key := range tables["en"] {
		if _, ok := tables["fr"][key]; !ok {
			t.Errorf("key %q missing from fr table", key)
		}
	}
}
