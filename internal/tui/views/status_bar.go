package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
	"github.com/sprava/spravaterm/internal/transport"
)

// StatusBar displays the profile, connection state and flash messages.
type StatusBar struct {
	*tview.TextView
	profile string
	state   transport.State
	flash   string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, state: transport.Idle}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetConnectionState updates the connection indicator.
func (sb *StatusBar) SetConnectionState(state transport.State) {
	sb.state = state
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	var conn string
	switch sb.state {
	case transport.Open:
		conn = "[green]online[-]"
	case transport.Connecting:
		conn = "[yellow]connecting[-]"
	default:
		conn = "[red]offline[-]"
	}

	clock := time.Now().Format("15:04")
	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", sb.profile, conn, clock)
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}
	_, _ = fmt.Fprint(sb, line)
}
