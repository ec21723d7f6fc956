package log

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

var (
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")) // Gray
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F87FF")) // Blue
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")) // Yellow
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")) // Red

	fatalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Background(lipgloss.Color("#000000")).
			Bold(true) // Red on Black, Bold

	// predefined styles for each level
	levelStyles = []struct {
		level    Level
		maxWidth int
		style    lipgloss.Style
	}{
		{level: DebugLevel, maxWidth: 5, style: debugStyle},
		{level: InfoLevel, maxWidth: 5, style: infoStyle},
		{level: WarnLevel, maxWidth: 5, style: warnStyle},
		{level: ErrorLevel, maxWidth: 5, style: errorStyle},
		{level: FatalLevel, maxWidth: 5, style: fatalStyle},
	}
)

// DefaultStyles returns charmbracelet styles with padded, colored level labels
func DefaultStyles() *Styles {
	styles := charmlog.DefaultStyles()
	for _, ls := range levelStyles {
		levelStr := strings.ToUpper(ls.level.String())
		if len(levelStr) < ls.maxWidth {
			levelStr = levelStr + strings.Repeat(" ", ls.maxWidth-len(levelStr))
		}
		styles.Levels[ls.level] = ls.style.SetString(levelStr)
	}
	return styles
}
