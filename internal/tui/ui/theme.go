package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TableHeaderFg    tcell.Color
	TableHeaderBg    tcell.Color
	TableCursorFg    tcell.Color
	TableCursorBg    tcell.Color
	TitleColor       tcell.Color
	OnlineColor      tcell.Color
	OfflineColor     tcell.Color
	UnreadColor      tcell.Color
	FlashInfoColor   tcell.Color
	FlashErrColor    tcell.Color
}

// DarkTheme is the default theme.
func DarkTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorCadetBlue,
		BorderColor:      tcell.ColorDodgerBlue,
		BorderFocusColor: tcell.ColorLightSkyBlue,
		TableHeaderFg:    tcell.ColorWhite,
		TableHeaderBg:    tcell.ColorBlack,
		TableCursorFg:    tcell.ColorBlack,
		TableCursorBg:    tcell.ColorAqua,
		TitleColor:       tcell.ColorFuchsia,
		OnlineColor:      tcell.ColorGreen,
		OfflineColor:     tcell.ColorGray,
		UnreadColor:      tcell.ColorOrange,
		FlashInfoColor:   tcell.ColorNavajoWhite,
		FlashErrColor:    tcell.ColorOrangeRed,
	}
}

// LightTheme mirrors DarkTheme for light terminals.
func LightTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorWhite,
		FgColor:          tcell.ColorBlack,
		BorderColor:      tcell.ColorDarkBlue,
		BorderFocusColor: tcell.ColorBlue,
		TableHeaderFg:    tcell.ColorBlack,
		TableHeaderBg:    tcell.ColorWhite,
		TableCursorFg:    tcell.ColorWhite,
		TableCursorBg:    tcell.ColorDarkBlue,
		TitleColor:       tcell.ColorDarkMagenta,
		OnlineColor:      tcell.ColorDarkGreen,
		OfflineColor:     tcell.ColorGray,
		UnreadColor:      tcell.ColorDarkOrange,
		FlashInfoColor:   tcell.ColorDarkGoldenrod,
		FlashErrColor:    tcell.ColorRed,
	}
}

// ThemeByName resolves a stored theme preference.
func ThemeByName(name string) *Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}
