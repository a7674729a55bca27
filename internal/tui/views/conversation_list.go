package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
	"github.com/sprava/spravaterm/internal/api"
	"github.com/sprava/spravaterm/internal/tui/ui"
)

// ConversationList is the main conversation table. Rows come straight from
// the cached server ordering; the list never reorders locally.
type ConversationList struct {
	*tview.Table
	theme         *ui.Theme
	conversations []api.Conversation
	online        func(userID int64) bool
}

// NewConversationList creates the conversation table. online reports whether
// a user is currently connected, for the presence badge.
func NewConversationList(theme *ui.Theme, online func(userID int64) bool) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Conversations ")
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)

	return &ConversationList{Table: table, theme: theme, online: online}
}

// Update refreshes the table from the cached conversation list.
func (cl *ConversationList) Update(conversations []api.Conversation) {
	selected, _ := cl.GetSelection()
	cl.conversations = conversations
	cl.Clear()

	cl.SetCell(0, 0, tview.NewTableCell(" ").SetSelectable(false))
	cl.SetCell(0, 1, tview.NewTableCell(" Name").SetSelectable(false).SetTextColor(cl.theme.TableHeaderFg))
	cl.SetCell(0, 2, tview.NewTableCell(" Last Message").SetSelectable(false).SetTextColor(cl.theme.TableHeaderFg))
	cl.SetCell(0, 3, tview.NewTableCell(" Time").SetSelectable(false).SetTextColor(cl.theme.TableHeaderFg))

	for i, conv := range conversations {
		row := i + 1

		badge := tview.NewTableCell(" ●").SetTextColor(cl.theme.OfflineColor)
		if cl.online != nil && cl.online(conv.OtherUserID) {
			badge = tview.NewTableCell(" ●").SetTextColor(cl.theme.OnlineColor)
		}
		cl.SetCell(row, 0, badge)

		name := conv.OtherUsername
		nameCell := tview.NewTableCell(" " + name).SetMaxWidth(24).SetExpansion(1)
		if conv.UnreadCount > 0 {
			nameCell = tview.NewTableCell(fmt.Sprintf(" %s (%d)", name, conv.UnreadCount)).
				SetMaxWidth(24).SetExpansion(1).SetTextColor(cl.theme.UnreadColor)
		}
		cl.SetCell(row, 1, nameCell)

		cl.SetCell(row, 2, tview.NewTableCell(" "+sanitizeForTerminal(conv.LastMessage)).SetMaxWidth(40).SetExpansion(2))
		cl.SetCell(row, 3, tview.NewTableCell(" "+formatTimestamp(conv.LastMessageAt)).SetMaxWidth(12))
	}

	if selected > 0 && selected <= len(conversations) {
		cl.Select(selected, 0)
	}
}

// Selected returns the conversation under the cursor, or nil.
func (cl *ConversationList) Selected() *api.Conversation {
	row, _ := cl.GetSelection()
	idx := row - 1 // header
	if idx >= 0 && idx < len(cl.conversations) {
		return &cl.conversations[idx]
	}
	return nil
}

func formatTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
