package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case CalculationCompleteMsg:
		current := m.pending != nil && *m.pending == msg.Key
		if msg.Err != nil {
			if current {
				m.err = msg.Err
				m.pending = nil
			}
			return m, nil
		}
		m.memo[msg.Key] = msg.Result
		// a stale answer still fills the memo but does not replace what is shown
		if current {
			m.pending = nil
			m.setResult(msg.Key, msg.Result)
		}
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	return m.updateFocused(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		return m.moveFocus(-1)

	case key.Matches(msg, m.keys.Calculate):
		cmd := m.calculate()
		return m, cmd

	case key.Matches(msg, m.keys.ToggleStatus):
		// a typed amount counts as an override even before enter
		if err := m.applyDeductions(); err != nil {
			m.err = err
			return m, nil
		}
		m.form.SetFilingStatus(m.form.FilingStatus().Toggle())
		m.syncDeductionsField()
		return m, m.recalculate()

	case key.Matches(msg, m.keys.Reset):
		m.form.ResetDeductions()
		m.syncDeductionsField()
		return m, m.recalculate()
	}

	if m.focus == FieldDeductions {
		before := m.inputs[FieldDeductions].Value()
		model, cmd := m.updateFocused(msg)
		updated := model.(Model)
		if updated.inputs[FieldDeductions].Value() != before {
			updated.deductionsEdited = true
		}
		return updated, cmd
	}
	return m.updateFocused(msg)
}

// recalculate refreshes the result after a form change, but only once a result
// is on screen; before that the user has not asked for one.
func (m *Model) recalculate() tea.Cmd {
	if m.result == nil {
		return nil
	}
	return m.calculate()
}

// moveFocus cycles focus through the inputs. Leaving the country field applies it
// so the deduction field follows the new jurisdiction straight away.
func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	if m.focus == FieldCountry {
		if err := m.applyCountry(); err != nil {
			m.err = err
		} else {
			m.err = nil
		}
	}

	m.inputs[m.focus].Blur()
	m.focus = Field((int(m.focus) + delta + int(fieldCount)) % int(fieldCount))
	return m, m.inputs[m.focus].Focus()
}

// updateFocused forwards a message to the focused text input
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}
