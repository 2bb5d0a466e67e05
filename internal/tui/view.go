package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.err != nil {
		return m.renderApp(ErrorStyle.Render(fmt.Sprintf("Fehler: %s\n\nq beendet", m.err)))
	}
	if m.loading {
		return m.renderApp(BorderStyle.Render("Lade Konfiguration …"))
	}

	var content string
	switch m.currentScene {
	case SceneParameters:
		content = m.parametersModel.View()
	case SceneCompare:
		content = m.compareModel.View()
	case SceneResults:
		content = m.resultsModel.View()
	case SceneHelp:
		content = renderHelp()
	}
	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	contentHeight := max(m.height-4, 1)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		lipgloss.NewStyle().Height(contentHeight).Render(content),
		m.renderStatusBar(),
	)
}

func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("Rentenplan – Altersvorsorge im Vergleich")
	crumb := m.currentScene.String()
	if m.config != nil && m.config.Profile.Name != "" {
		crumb = m.config.Profile.Name + " / " + crumb
	}
	if m.rules.Year != 0 {
		crumb += fmt.Sprintf(" • Steuerjahr %d", m.rules.Year)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, SubtitleStyle.Render(crumb))
}

func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("p", "Parameter"),
		formatShortcut("c", "Vergleich"),
		formatShortcut("r", "Verlauf"),
		formatShortcut("ctrl+s", "speichern"),
		formatShortcut("?", "Hilfe"),
		formatShortcut("q", "beenden"),
	}
	text := strings.Join(shortcuts, " • ")

	right := m.status
	if m.calculating {
		right = "rechnet …"
	} else if m.session != nil && m.session.Dirty() && right == "" {
		right = "ungespeichert"
	}
	if right != "" {
		gap := max(0, m.width-lipgloss.Width(text)-lipgloss.Width(right)-4)
		text += strings.Repeat(" ", gap) + SubtitleStyle.Render(right)
	}

	return StatusBarStyle.Width(m.width).Render(text)
}

func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

func renderHelp() string {
	rows := [][2]string{
		{"p / 1", "Parameter der Pläne anpassen"},
		{"c / 2", "Vergleich aller Pläne je Alter"},
		{"r / 3", "Jahresverlauf eines Plans"},
		{"↑ ↓", "Parameter oder Jahre wählen"},
		{"← →", "Wert ändern / Alter oder Plan wechseln"},
		{"Tab", "nächster Plan"},
		{"u", "Änderungen verwerfen"},
		{"ctrl+s", "Entwurf speichern"},
		{"esc", "zurück"},
		{"q", "beenden"},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = HelpKeyStyle.Width(10).Render(r[0]) + HelpDescStyle.Render(r[1])
	}
	note := InfoStyle.Render("Nach jeder Änderung wird kurz gewartet und dann neu gerechnet.")
	return BorderStyle.Render(strings.Join(lines, "\n") + "\n\n" + note)
}
