package feed

// Scroll math for a message thread view. These are pure functions over
// measured heights and offsets so that any renderer can apply them; the
// tview adapter feeds them line counts instead of pixels.

const (
	// NearBottomThreshold is how close to the end the viewport must be for
	// an incoming message to auto-scroll the view.
	NearBottomThreshold = 120

	// LoadMoreThreshold is how close to the top the viewport must be to
	// trigger fetching an older page.
	LoadMoreThreshold = 80
)

// NearBottom reports whether the viewport sits within NearBottomThreshold of
// the content's end. Only then does an appended message pull the view down;
// a reader scrolled up into history stays put.
func NearBottom(scrollTop, viewportHeight, contentHeight int) bool {
	return contentHeight-(scrollTop+viewportHeight) <= NearBottomThreshold
}

// ShouldLoadMore reports whether the viewport is close enough to the top to
// fetch an older page.
func ShouldLoadMore(scrollTop int) bool {
	return scrollTop <= LoadMoreThreshold
}

// AdjustForPrepend returns the scroll offset that keeps the same content
// visible after older messages were inserted above it. Apply after layout,
// once the new content height is known.
func AdjustForPrepend(scrollTop, prevContentHeight, newContentHeight int) int {
	return scrollTop + (newContentHeight - prevContentHeight)
}
