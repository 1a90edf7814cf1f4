package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: confirmed, success
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: pending, warning
	ColorError     = lipgloss.Color("#FF4444") // red: failed, danger
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold: amounts
	ColorMeta      = lipgloss.Color("#6B7280") // gray: labels, metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue: UI chrome
	ColorBrand     = lipgloss.Color("#3B82F6") // ByFin blue
	ColorHighlight = lipgloss.Color("#8B5CF6") // violet: selected rows, headers
	ColorInfo      = lipgloss.Color("#60A5FA")
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleBrand   = lipgloss.NewStyle().Foreground(ColorBrand).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorBrand).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the byfin ASCII banner.
func Banner() string {
	art := `
  ██████╗ ██╗   ██╗███████╗██╗███╗   ██╗
  ██╔══██╗╚██╗ ██╔╝██╔════╝██║████╗  ██║
  ██████╔╝ ╚████╔╝ █████╗  ██║██╔██╗ ██║
  ██╔══██╗  ╚██╔╝  ██╔══╝  ██║██║╚██╗██║
  ██████╔╝   ██║   ██║     ██║██║ ╚████║
  ╚═════╝    ╚═╝   ╚═╝     ╚═╝╚═╝  ╚═══╝`

	tagline := StyleMeta.Render("     Tokenized real-world assets on Base Sepolia")
	features := StyleMeta.Render("  ✦ Staking tiers  ✦ OPR market  ✦ Launchpad")

	return StyleBrand.Render(art) + "\n" + tagline + "\n" + features + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a suggestion, usually the next command to run.
func Hint(msg string) string { return StyleMeta.Render("💡 " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Network formats a network name.
func Network(n string) string { return StyleBrand.Render(n) }

// TierBadge renders a staking tier name in its tier color. An empty color
// falls back to the brand color.
func TierBadge(name, color string) string {
	c := lipgloss.Color(color)
	if color == "" {
		c = ColorBrand
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render("◆ " + name)
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
