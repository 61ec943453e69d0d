package feed

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/notify"
	"github.com/nhle/ourspace/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Message }

// Delegate implements list.ItemDelegate for notification rows.
type Delegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a notification as a message line and a metadata line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification

	marker := " "
	if !n.Read {
		marker = "●"
	}

	head := fmt.Sprintf("%s %s %s", marker, n.Icon, n.Message)
	meta := strings.Join([]string{
		theme.CategoryStyle(string(n.Category)).Render(string(n.Category)),
		"from " + n.From,
		notify.FormatAge(d.now(), n.Timestamp),
	}, " · ")

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}
	if n.Read {
		head = theme.DimmedStyle.Render(head)
	}

	fmt.Fprint(w, style.Render(head)+"\n"+style.Render("    "+theme.DimmedStyle.Render(meta)))
}
