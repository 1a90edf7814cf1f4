package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// PortfolioEntry is one asset line of the live portfolio dashboard.
type PortfolioEntry struct {
	Asset   string
	Balance string
	Note    string
}

// PortfolioSnapshot is what the dashboard fetcher returns on every tick.
type PortfolioSnapshot struct {
	Account string
	Network string
	Tier    string
	Entries []PortfolioEntry
}

// dashboardModel is the Bubble Tea model for the live portfolio dashboard.
type dashboardModel struct {
	snapshot   *PortfolioSnapshot
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	fetcher    func() (*PortfolioSnapshot, error)
	err        string
}

type tickMsg time.Time
type snapshotMsg *PortfolioSnapshot
type fetchErrorMsg string

func newDashboardModel(interval time.Duration, fetcher func() (*PortfolioSnapshot, error)) dashboardModel {
	return dashboardModel{interval: interval, fetcher: fetcher}
}

// NewDashboard creates a Bubble Tea program that refreshes the portfolio
// every interval until q is pressed.
func NewDashboard(interval time.Duration, fetcher func() (*PortfolioSnapshot, error)) *tea.Program {
	return tea.NewProgram(newDashboardModel(interval, fetcher))
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case snapshotMsg:
		m.snapshot = (*PortfolioSnapshot)(msg)
		m.lastUpdate = time.Now()
		m.err = ""

	case fetchErrorMsg:
		m.err = string(msg)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("ByFin Portfolio") + "\n")
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("Updated: %s · r refresh · q quit\n\n", updated)))

	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n")
	}

	if m.snapshot == nil {
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
		return sb.String()
	}

	s := m.snapshot
	sb.WriteString(Addr(s.Account) + "  " + Network(s.Network))
	if s.Tier != "" {
		sb.WriteString("  " + s.Tier)
	}
	sb.WriteString("\n\n")

	t := NewTable([]Column{
		{Title: "Asset", Width: 14},
		{Title: "Balance", Width: 22, Right: true},
		{Title: "", Width: 24},
	})
	for _, e := range s.Entries {
		t.AddRow(Row{e.Asset, e.Balance, Meta(e.Note)})
	}
	sb.WriteString(t.Render())
	return sb.String()
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.fetcher()
		if err != nil {
			return fetchErrorMsg(err.Error())
		}
		return snapshotMsg(snap)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
