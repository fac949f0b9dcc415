package messages

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors for message levels.
const (
	ColorError   = lipgloss.Color("196")
	ColorWarning = lipgloss.Color("214")
	ColorInfo    = lipgloss.Color("39")
	ColorMuted   = lipgloss.Color("245")
)

func levelColor(l Level) lipgloss.Color {
	switch l {
	case LevelError:
		return ColorError
	case LevelWarning:
		return ColorWarning
	default:
		return ColorInfo
	}
}

// Render formats msgs one per line as "[LEVEL] text (code)".
func Render(msgs []Message) string {
	if len(msgs) == 0 {
		return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true).Render("No messages.")
	}

	codeStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("\n")
		}
		levelStyle := lipgloss.NewStyle().Foreground(levelColor(m.Level)).Bold(true)
		sb.WriteString(levelStyle.Render("[" + strings.ToUpper(string(m.Level)) + "]"))
		sb.WriteString(" ")
		sb.WriteString(m.Text)
		sb.WriteString(" ")
		sb.WriteString(codeStyle.Render("(" + m.Code + ")"))
	}
	return sb.String()
}
