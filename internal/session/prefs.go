package session

import "github.com/sprava/spravaterm/internal/store"

// Preference defaults. Theme and locale are client-local, never server state.
const (
	DefaultTheme  = "dark"
	DefaultLocale = "en"
)

// Theme returns the persisted theme preference.
func (s *Session) Theme() string {
	if v, err := s.db.GetState(store.KeyTheme); err == nil {
		return v
	}
	return DefaultTheme
}

// SetTheme persists the theme preference.
func (s *Session) SetTheme(theme string) error {
	return s.db.SetState(store.KeyTheme, theme)
}

// Locale returns the persisted locale preference.
func (s *Session) Locale() string {
	if v, err := s.db.GetState(store.KeyLocale); err == nil {
		return v
	}
	return DefaultLocale
}

// SetLocale persists the locale preference.
func (s *Session) SetLocale(locale string) error {
	return s.db.SetState(store.KeyLocale, locale)
}
