package statsui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Open     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Wider    key.Binding
	Narrower key.Binding
	Filter   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
	Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Wider:    key.NewBinding(key.WithKeys("="), key.WithHelp("-/=", "window")),
	Narrower: key.NewBinding(key.WithKeys("-")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// tabHelp lists the bindings that apply on one tab.
type tabHelp struct {
	tab int
}

// ShortHelp implements help.KeyMap.
func (h tabHelp) ShortHelp() []key.Binding {
	if h.tab == tabSessions {
		return []key.Binding{keys.Prev, keys.Next, keys.Open, keys.Filter, keys.Quit}
	}
	return []key.Binding{keys.Prev, keys.Next, keys.Top, keys.Bottom, keys.Wider, keys.Filter, keys.Quit}
}

// FullHelp implements help.KeyMap.
func (h tabHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

var filterKeys = []key.Binding{
	key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab/shift+tab", "field")),
	key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
