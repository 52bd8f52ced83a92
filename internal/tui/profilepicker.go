// Package tui implements the interactive pickers for profile and log
// selection.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/embertail-io/embertail/internal/models"
)

// profilePickerModel is a single-select list over configured profiles.
type profilePickerModel struct {
	profiles  []models.Profile
	cursor    int
	chosen    bool
	cancelled bool
}

func (m profilePickerModel) Init() tea.Cmd { return nil }

func (m profilePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		if m.cursor < len(m.profiles)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, pickerKeys.Accept):
		m.chosen = true
		return m, tea.Quit
	case key.Matches(keyMsg, pickerKeys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m profilePickerModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Select a profile") + "\n\n")
	for i, p := range m.profiles {
		cursor := "  "
		style := styleItem
		if i == m.cursor {
			cursor = styleCursor.Render("> ")
			style = styleSelected
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, style.Render(p.Name), styleItemDim.Render("("+p.Host+")")))
	}
	b.WriteString("\n" + styleHelp.Render("j/k navigate · enter confirm · esc cancel") + "\n")
	return b.String()
}

// PickProfile prompts the operator to choose one profile. ok is false
// when the picker was cancelled.
func PickProfile(profiles []models.Profile) (models.Profile, bool, error) {
	m := profilePickerModel{profiles: profiles}
	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return models.Profile{}, false, err
	}
	final := out.(profilePickerModel)
	if !final.chosen || final.cancelled {
		return models.Profile{}, false, nil
	}
	return final.profiles[final.cursor], true, nil
}
