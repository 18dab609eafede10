package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type certItem string

func (i certItem) Title() string       { return string(i) }
func (i certItem) Description() string { return "" }
func (i certItem) FilterValue() string { return string(i) }

// pickerModel is a bubbletea model listing certifications.
type pickerModel struct {
	list   list.Model
	chosen string
}

func newPickerModel(names []string) pickerModel {
	items := make([]list.Item, len(names))
	for i, n := range names {
		items[i] = certItem(n)
	}
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	l := list.New(items, delegate, 40, 12)
	l.Title = "Select a certification"
	l.SetShowStatusBar(false)
	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if item, ok := m.list.SelectedItem().(certItem); ok {
				m.chosen = string(item)
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.chosen != "" {
		return ""
	}
	return m.list.View()
}

// pickCertification runs the picker and returns the chosen name.
func pickCertification(names []string) (string, error) {
	result, err := tea.NewProgram(newPickerModel(names)).Run()
	if err != nil {
		return "", err
	}
	final, ok := result.(pickerModel)
	if !ok || final.chosen == "" {
		return "", fmt.Errorf("no certification selected")
	}
	return final.chosen, nil
}
