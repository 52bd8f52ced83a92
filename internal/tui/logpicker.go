package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/embertail-io/embertail/internal/models"
)

// logPickerModel is a multi-select list over discovered logs. Everything
// starts selected; space toggles, "a" flips the whole set.
type logPickerModel struct {
	logs      []models.LogDescriptor
	selected  []bool
	cursor    int
	accepted  bool
	cancelled bool
}

func (m logPickerModel) Init() tea.Cmd { return nil }

func (m logPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, pickerKeys.Down):
		if m.cursor < len(m.logs)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, pickerKeys.Toggle):
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(keyMsg, pickerKeys.All):
		all := true
		for _, s := range m.selected {
			if !s {
				all = false
				break
			}
		}
		for i := range m.selected {
			m.selected[i] = !all
		}
	case key.Matches(keyMsg, pickerKeys.Accept):
		m.accepted = true
		return m, tea.Quit
	case key.Matches(keyMsg, pickerKeys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m logPickerModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Select logs to tail") + "\n\n")
	for i, d := range m.logs {
		cursor := "  "
		if i == m.cursor {
			cursor = styleCursor.Render("> ")
		}
		mark := "[ ]"
		style := styleItemDim
		if m.selected[i] {
			mark = styleSelected.Render("[x]")
			style = styleItem
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s\n", cursor, mark, style.Render(d.Name), styleItemDim.Render(d.SizeText)))
	}
	b.WriteString("\n" + styleHelp.Render("space toggle · a all · enter confirm · esc cancel") + "\n")
	return b.String()
}

// PickLogs prompts the operator to narrow the discovered log set. ok is
// false when the picker was cancelled.
func PickLogs(logs []models.LogDescriptor) ([]models.LogDescriptor, bool, error) {
	m := logPickerModel{logs: logs, selected: make([]bool, len(logs))}
	for i := range m.selected {
		m.selected[i] = true
	}
	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, false, err
	}
	final := out.(logPickerModel)
	if !final.accepted || final.cancelled {
		return nil, false, nil
	}
	var kept []models.LogDescriptor
	for i, d := range final.logs {
		if final.selected[i] {
			kept = append(kept, d)
		}
	}
	return kept, true, nil
}
