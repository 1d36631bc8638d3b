package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Strategy key.Binding
	Reload   key.Binding
	Detail   key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Strategy: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "strategy")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Detail:   key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "detail")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// help is the status bar hint built from the bindings.
func (k keyMap) help() string {
	bindings := []key.Binding{k.Strategy, k.Reload, k.Detail, k.Quit}
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " "
		}
		h := b.Help()
		out += h.Key + ":" + h.Desc
	}
	return out
}
