package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned when the user cancels the prompt.
var ErrInterrupted = errors.New("prompt interrupted")

// promptModel is a one-shot input line. The program quits as soon as the
// user submits or cancels.
type promptModel struct {
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newPromptModel() promptModel {
	input := textinput.New()
	input.Prompt = PromptStyle.Render("> ")
	input.Placeholder = "Ask something, or /help"
	input.Focus()
	input.CharLimit = 0
	return promptModel{input: input}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return m.input.View()
}

// ReadPrompt runs the input program and returns the entered line.
func ReadPrompt() (string, error) {
	program := tea.NewProgram(newPromptModel())
	final, err := program.Run()
	if err != nil {
		return "", err
	}

	model, ok := final.(promptModel)
	if !ok || model.cancelled {
		return "", ErrInterrupted
	}
	return model.input.Value(), nil
}
