package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	"github.com/sprava/spravaterm/internal/api"
	"github.com/sprava/spravaterm/internal/feed"
	"github.com/sprava/spravaterm/internal/tui/ui"
)

// rowUnits converts terminal rows to the scroll units the anchor math is
// calibrated for, so the same thresholds work for any renderer.
const rowUnits = 20

// ThreadView renders one conversation's messages. It owns nothing but
// presentation: pagination lives in the feed, and the scroll decisions are
// the pure anchor helpers applied to measured row counts.
type ThreadView struct {
	*tview.TextView
	theme       *ui.Theme
	selfID      int64
	lineCount   int
	onLoadMore  func()
	typing      bool
	typingLabel string
}

// NewThreadView creates the message pane for a conversation.
func NewThreadView(theme *ui.Theme) *ThreadView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTitleColor(theme.TitleColor)

	v := &ThreadView{TextView: tv, theme: theme, typingLabel: "typing..."}
	return v
}

// SetTypingLabel sets the localized typing indicator text.
func (v *ThreadView) SetTypingLabel(label string) { v.typingLabel = label }

// SetSelf sets the viewing user, used to label own messages.
func (v *ThreadView) SetSelf(userID int64) { v.selfID = userID }

// SetConversationTitle updates the pane title.
func (v *ThreadView) SetConversationTitle(name string) {
	v.SetTitle(fmt.Sprintf(" %s ", name))
}

// SetOnLoadMore sets the callback fired when the view scrolls near the top.
func (v *ThreadView) SetOnLoadMore(fn func()) { v.onLoadMore = fn }

// SetTyping toggles the peer's typing indicator.
func (v *ThreadView) SetTyping(typing bool) { v.typing = typing }

// Update rerenders the thread. When the viewport sat near the bottom it
// follows the new content; a reader scrolled into history stays put.
func (v *ThreadView) Update(msgs []api.Message, usernames map[int64]string) {
	prevRow, _ := v.GetScrollOffset()
	_, _, _, viewHeight := v.GetInnerRect()
	wasNearBottom := feed.NearBottom(prevRow*rowUnits, viewHeight*rowUnits, v.lineCount*rowUnits)

	v.Clear()
	var b strings.Builder
	for _, m := range msgs {
		sender := usernames[m.SenderID]
		if m.SenderID == v.selfID {
			sender = "You"
		}
		if sender == "" {
			sender = fmt.Sprintf("user %d", m.SenderID)
		}
		fmt.Fprintf(&b, "[::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n", sender, formatTimestamp(m.CreatedAt), sanitizeForTerminal(m.Content))
		for _, mediaID := range m.MediaIDs {
			fmt.Fprintf(&b, "[::d][attachment %d][-:-:-]\n", mediaID)
		}
		b.WriteString("\n")
	}
	if v.typing {
		b.WriteString("[::d]" + v.typingLabel + "[-:-:-]\n")
	}
	text := b.String()
	fmt.Fprint(v, text)
	v.lineCount = strings.Count(text, "\n")

	if wasNearBottom {
		v.ScrollToEnd()
	} else {
		v.ScrollTo(prevRow, 0)
	}
}

// UpdateAfterPrepend rerenders the thread after an older page was loaded and
// shifts the scroll offset so the same message stays visible.
func (v *ThreadView) UpdateAfterPrepend(msgs []api.Message, usernames map[int64]string) {
	prevRow, _ := v.GetScrollOffset()
	prevLines := v.lineCount

	v.Update(msgs, usernames)

	adjusted := feed.AdjustForPrepend(prevRow*rowUnits, prevLines*rowUnits, v.lineCount*rowUnits)
	v.ScrollTo(adjusted/rowUnits, 0)
}

// CheckLoadMore fires the load-more callback when the viewport is close
// enough to the top. Call after scroll key handling.
func (v *ThreadView) CheckLoadMore() {
	row, _ := v.GetScrollOffset()
	if feed.ShouldLoadMore(row*rowUnits) && v.onLoadMore != nil {
		v.onLoadMore()
	}
}
