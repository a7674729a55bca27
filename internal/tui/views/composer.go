package views

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// typingIdle is how long after the last keystroke the composer reports that
// typing stopped.
const typingIdle = 3 * time.Second

// Composer is the message input. Besides sending, it drives the typing
// signals: the first keystroke reports typing started, and silence or a send
// reports it stopped.
type Composer struct {
	*tview.InputField
	onSend       func(text string)
	onTyping     func()
	onStopTyping func()
	typing       bool
	idleTimer    *time.Timer
}

// NewComposer creates a new message composer.
func NewComposer() *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)

	c := &Composer{InputField: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSend != nil {
			text := c.GetText()
			if text != "" {
				c.stopTyping()
				c.onSend(text)
				c.SetText("")
			}
		}
	})

	input.SetChangedFunc(func(text string) {
		if text == "" {
			c.stopTyping()
			return
		}
		if !c.typing {
			c.typing = true
			if c.onTyping != nil {
				c.onTyping()
			}
		}
		if c.idleTimer != nil {
			c.idleTimer.Stop()
		}
		c.idleTimer = time.AfterFunc(typingIdle, c.stopTyping)
	})

	return c
}

// SetOnSend sets the callback when a message is sent.
func (c *Composer) SetOnSend(fn func(text string)) { c.onSend = fn }

// SetOnTyping sets the callbacks for typing started and stopped.
func (c *Composer) SetOnTyping(start, stop func()) {
	c.onTyping = start
	c.onStopTyping = stop
}

func (c *Composer) stopTyping() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
	if c.typing {
		c.typing = false
		if c.onStopTyping != nil {
			c.onStopTyping()
		}
	}
}
