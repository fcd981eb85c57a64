package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pengelbrecht/poker/internal/poker"
)

// ErrUnknownItem is returned when an operation names an item that is not in
// the list.
var ErrUnknownItem = errors.New("unknown item")

// itemEntry implements list.Item for an estimation item.
type itemEntry struct {
	item poker.Item
}

func (e itemEntry) Title() string       { return sanitize(e.item.Title) }
func (e itemEntry) Description() string { return sanitize(e.item.DescriptionText()) }
func (e itemEntry) FilterValue() string { return e.item.Title }

// ItemList holds the session's items in the order they were added. The
// records and the id index are the source of truth; the list widget is
// rebuilt from them.
type ItemList struct {
	list    list.Model
	records []poker.Item
	index   map[poker.ItemID]int
}

// NewItemList creates an empty item list of the given size.
func NewItemList(width, height int) *ItemList {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderForeground(primaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		BorderForeground(primaryColor)

	l := list.New(nil, delegate, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle().Foreground(mutedColor)
	l.SetStatusBarItemName("item", "items")

	return &ItemList{
		list:  l,
		index: make(map[poker.ItemID]int),
	}
}

// Append adds item at the end and selects it. An item whose id is already
// listed is updated in place instead.
func (l *ItemList) Append(item poker.Item) {
	if i, ok := l.index[item.ID]; ok {
		l.records[i] = item
		l.list.SetItem(i, itemEntry{item: item})
		return
	}
	l.records = append(l.records, item)
	l.Refresh()
	l.list.Select(len(l.records) - 1)
}

// Remove deletes the item with the given id and reports whether it was
// present. The selection stays where it was when possible.
func (l *ItemList) Remove(id poker.ItemID) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	l.records = append(l.records[:i], l.records[i+1:]...)
	l.Refresh()
	return true
}

// Edit replaces the title and description of an existing item. A nil
// description is shown as empty.
func (l *ItemList) Edit(id poker.ItemID, title string, description *string) error {
	i, ok := l.index[id]
	if !ok {
		return ErrUnknownItem
	}
	l.records[i].Title = title
	l.records[i].Description = description
	l.list.SetItem(i, itemEntry{item: l.records[i]})
	return nil
}

// Refresh rebuilds the widget and the id index from the records.
func (l *ItemList) Refresh() {
	items := make([]list.Item, len(l.records))
	l.index = make(map[poker.ItemID]int, len(l.records))
	for i, rec := range l.records {
		items[i] = itemEntry{item: rec}
		l.index[rec.ID] = i
	}
	cursor := l.list.Index()
	l.list.SetItems(items)
	switch {
	case len(items) == 0:
		l.list.ResetSelected()
	case cursor >= len(items):
		l.list.Select(len(items) - 1)
	}
}

// Len returns the number of items.
func (l *ItemList) Len() int { return len(l.records) }

// IDs returns the item ids in list order.
func (l *ItemList) IDs() []poker.ItemID {
	ids := make([]poker.ItemID, len(l.records))
	for i, rec := range l.records {
		ids[i] = rec.ID
	}
	return ids
}

// Get returns the item with the given id.
func (l *ItemList) Get(id poker.ItemID) (poker.Item, bool) {
	i, ok := l.index[id]
	if !ok {
		return poker.Item{}, false
	}
	return l.records[i], true
}

// Selected returns the highlighted item.
func (l *ItemList) Selected() (poker.Item, bool) {
	i := l.list.Index()
	if i < 0 || i >= len(l.records) {
		return poker.Item{}, false
	}
	return l.records[i], true
}

// Resize changes the widget size.
func (l *ItemList) Resize(width, height int) {
	l.list.SetSize(width, height)
}

// Update forwards navigation keys to the widget.
func (l *ItemList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.list, cmd = l.list.Update(msg)
	return cmd
}

func (l *ItemList) View() string {
	return l.list.View()
}
