package views

import (
	"fmt"

	"github.com/rivo/tview"
	"github.com/sprava/spravaterm/internal/api"
	"github.com/sprava/spravaterm/internal/tui/ui"
)

// FriendsView lists friends with presence, plus pending inbound requests.
type FriendsView struct {
	*tview.Table
	theme    *ui.Theme
	friends  []api.User
	requests []api.FriendRequest
	online   func(userID int64) bool
}

// NewFriendsView creates the friends table.
func NewFriendsView(theme *ui.Theme, online func(userID int64) bool) *FriendsView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Friends ")
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)

	return &FriendsView{Table: table, theme: theme, online: online}
}

// Update refreshes the view from the cached friend and request lists.
func (fv *FriendsView) Update(friends []api.User, requests []api.FriendRequest) {
	fv.friends = friends
	fv.requests = requests
	fv.Clear()

	row := 0
	fv.SetCell(row, 0, tview.NewTableCell(" Friends").SetSelectable(false).SetTextColor(fv.theme.TableHeaderFg))
	row++
	for _, f := range friends {
		badge := tview.NewTableCell(" ●").SetTextColor(fv.theme.OfflineColor)
		if fv.online != nil && fv.online(f.UserID) {
			badge = tview.NewTableCell(" ●").SetTextColor(fv.theme.OnlineColor)
		}
		fv.SetCell(row, 0, badge)
		fv.SetCell(row, 1, tview.NewTableCell(" "+f.Username).SetExpansion(1))
		row++
	}

	if len(requests) > 0 {
		fv.SetCell(row, 0, tview.NewTableCell(" ").SetSelectable(false))
		row++
		fv.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf(" Requests (%d)", len(requests))).
			SetSelectable(false).SetTextColor(fv.theme.TableHeaderFg))
		row++
		for _, r := range requests {
			fv.SetCell(row, 0, tview.NewTableCell(" ?").SetTextColor(fv.theme.UnreadColor))
			fv.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf(" user %d  a:accept r:reject", r.SenderID)).SetExpansion(1))
			row++
		}
	}
}

// SelectedFriend returns the friend under the cursor, or nil.
func (fv *FriendsView) SelectedFriend() *api.User {
	row, _ := fv.GetSelection()
	idx := row - 1 // section header
	if idx >= 0 && idx < len(fv.friends) {
		return &fv.friends[idx]
	}
	return nil
}

// SelectedRequest returns the request under the cursor, or nil.
func (fv *FriendsView) SelectedRequest() *api.FriendRequest {
	row, _ := fv.GetSelection()
	idx := row - len(fv.friends) - 3 // friends section plus two headers and a spacer
	if idx >= 0 && idx < len(fv.requests) {
		return &fv.requests[idx]
	}
	return nil
}
