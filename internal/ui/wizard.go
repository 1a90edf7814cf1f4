package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard. Empty values
// mean the question was skipped.
type WizardResult struct {
	WaitMode      string
	Contracts     map[string]string
	WalletName    string
	WalletAddress string
}

// WizardQuestion is one step of the wizard: a menu when Choices is set,
// free text otherwise.
type WizardQuestion struct {
	Key     string
	Title   string
	Choices []string
}

// Answer keys understood by RunWizard.
const (
	WizardKeyWaitMode = "wait_mode"
	WizardKeyWallet   = "wallet"
	wizardContractKey = "contract:"
)

// SetupQuestions builds the byfin init questionnaire: sequencing mode, one
// address per logical contract, then an optional watch-only wallet.
func SetupQuestions(waitModes, contracts []string) []WizardQuestion {
	qs := []WizardQuestion{{Key: WizardKeyWaitMode, Title: "How should approve-then-act flows be sequenced?", Choices: waitModes}}
	for _, c := range contracts {
		qs = append(qs, WizardQuestion{Key: wizardContractKey + c, Title: fmt.Sprintf("Address of the %s contract (Enter to skip):", c)})
	}
	return append(qs, WizardQuestion{Key: WizardKeyWallet, Title: "Add a watch-only wallet address (Enter to skip):"})
}

type wizardModel struct {
	questions []WizardQuestion
	step      int
	cursor    int
	input     string
	answers   map[string]string
	aborted   bool
}

func newWizardModel(questions []WizardQuestion) wizardModel {
	return wizardModel{questions: questions, answers: map[string]string{}}
}

func (m wizardModel) done() bool { return m.step >= len(m.questions) }

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done() {
		return m, nil
	}
	q := m.questions[m.step]
	menu := len(q.Choices) > 0

	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit

	case "up", "k":
		if menu && m.cursor > 0 {
			m.cursor--
		} else if !menu {
			m.input += key.String()
		}

	case "down", "j":
		if menu && m.cursor < len(q.Choices)-1 {
			m.cursor++
		} else if !menu {
			m.input += key.String()
		}

	case "enter":
		if menu {
			m.answers[q.Key] = q.Choices[m.cursor]
		} else if v := sanitize(m.input); v != "" {
			m.answers[q.Key] = v
		}
		m.step++
		m.cursor = 0
		m.input = ""

	case "backspace":
		if !menu && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	default:
		if !menu && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	}

	if m.done() {
		return m, tea.Quit
	}
	return m, nil
}

// sanitize strips whitespace and brackets picked up when pasting.
func sanitize(s string) string {
	return strings.Trim(strings.TrimSpace(s), "[]")
}

func (m wizardModel) View() string {
	if m.done() {
		return StyleBorder.Render(Success("Setup complete!")) + "\n"
	}
	q := m.questions[m.step]
	progress := StyleMeta.Render(fmt.Sprintf("Step %d/%d", m.step+1, len(m.questions)))

	var s string
	if len(q.Choices) > 0 {
		s = renderMenu(q.Title, q.Choices, m.cursor)
	} else {
		s = StyleTitle.Render(q.Title) + "\n\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n\n"
		s += StyleMeta.Render("Enter confirm · Esc quit")
	}
	return StyleBorder.Render(progress+"\n"+s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc quit")
	return s
}

func (m wizardModel) result() *WizardResult {
	r := &WizardResult{Contracts: map[string]string{}}
	for k, v := range m.answers {
		switch {
		case k == WizardKeyWaitMode:
			r.WaitMode = v
		case k == WizardKeyWallet:
			r.WalletAddress = v
			r.WalletName = "default"
		case strings.HasPrefix(k, wizardContractKey):
			r.Contracts[strings.TrimPrefix(k, wizardContractKey)] = v
		}
	}
	return r
}

// RunWizard asks questions interactively. A nil result with a nil error means
// the user quit early.
func RunWizard(questions []WizardQuestion) (*WizardResult, error) {
	p := tea.NewProgram(newWizardModel(questions))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	m := final.(wizardModel)
	if m.aborted {
		return nil, nil
	}
	return m.result(), nil
}
