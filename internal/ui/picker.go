package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned when no enabled items are offered.
var ErrNothingToPick = errors.New("no items to pick from")

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // primary text (e.g. offering name)
	SubLabel string // secondary text shown dimmed (e.g. yield, maturity)
	Value    string // value returned on selection
	Disabled bool   // shown but not selectable (e.g. upcoming offering)
}

// pickerModel is the Bubble Tea model for the interactive list picker.
type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func newPickerModel(title string, items []PickerItem) pickerModel {
	m := pickerModel{title: title, items: items}
	m.cursor = m.nextEnabled(-1, 1)
	return m
}

// nextEnabled returns the first enabled index after from in direction dir,
// or from itself when there is none.
func (m pickerModel) nextEnabled(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.items); i += dir {
		if !m.items[i].Disabled {
			return i
		}
	}
	return from
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			m.cursor = m.nextEnabled(m.cursor, -1)
		case "down", "j":
			m.cursor = m.nextEnabled(m.cursor, 1)
		case "enter", " ":
			return m.choose(m.cursor)
		default:
			// 1-9 pick the item with that number directly.
			if k := msg.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
				return m.choose(int(k[0] - '1'))
			}
		}
	}
	return m, nil
}

// choose selects item i and quits, unless it is out of range or disabled.
func (m pickerModel) choose(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.items) || m.items[i].Disabled {
		return m, nil
	}
	m.cursor = i
	item := m.items[i]
	m.selected = &item
	return m, tea.Quit
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	for i, item := range m.items {
		num := "   "
		if i < 9 {
			num = fmt.Sprintf("%d. ", i+1)
		}
		prefix := "    " + num
		if i == m.cursor {
			prefix = "  ▸ " + num
		}

		label := StyleValue.Render(item.Label)
		if item.Disabled {
			label = StyleMeta.Render(item.Label)
		}
		line := prefix + label
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}

		if i == m.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ 1-9 / Enter ] select   [ q ] cancel") + "\n")
	return sb.String()
}

// PickItem runs an interactive list picker and returns the selected item's Value.
// Returns ("", nil) if the user cancels. Returns an error only on TUI failure.
func PickItem(title string, items []PickerItem) (string, error) {
	m := newPickerModel(title, items)
	if m.cursor < 0 {
		return "", ErrNothingToPick
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
