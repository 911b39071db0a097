package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#00BFFF")
	success = lipgloss.Color("#39FF14")
	errCol  = lipgloss.Color("#FF3131")
	muted   = lipgloss.Color("#888888")

	promptStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	onlineStyle = lipgloss.NewStyle().
			Foreground(success).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(muted)

	errorStyle = lipgloss.NewStyle().
			Foreground(errCol)

	keyStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(14)

	barFillStyle = lipgloss.NewStyle().
			Foreground(success)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(muted)
)

const barCells = 24

// percent reads a progress width such as "42.5%". Missing or malformed
// values read as zero; the result is clamped to 0..100.
func percent(width string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(width), "%"), 64)
	if err != nil {
		return 0
	}
	return min(max(v, 0), 100)
}

// renderBar draws a terminal progress bar for a page progress element.
func renderBar(label, width string) string {
	p := percent(width)
	filled := int(p / 100 * barCells)
	return fmt.Sprintf("%s [%s%s] %3.0f%%",
		keyStyle.Render(label),
		barFillStyle.Render(strings.Repeat("█", filled)),
		barEmptyStyle.Render(strings.Repeat("░", barCells-filled)),
		p,
	)
}

func field(key, value string) string {
	return keyStyle.Render(key) + " " + value
}
