package notify

import (
	"fmt"
	"strconv"
	"time"
)

// BadgeText renders an unread count for a small badge. Zero or less
// renders as an empty string; anything above nine as "9+".
func BadgeText(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > 9:
		return "9+"
	default:
		return strconv.Itoa(unread)
	}
}

// FormatAge renders how long ago t was, relative to now.
func FormatAge(now, t time.Time) string {
	minutes := int(now.Sub(t) / time.Minute)

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return fmt.Sprintf("%dd ago", minutes/(24*60))
	}
}
