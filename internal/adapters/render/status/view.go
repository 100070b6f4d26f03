package status

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

// GameRow is one library entry prepared for display.
type GameRow struct {
	Title        string
	ID           domain.GameID
	State        domain.LocalGameState
	TotalMinutes int
	LastPlayed   *int64
}

// Report is everything the status view shows.
type Report struct {
	DisplayName     string
	Authenticated   bool
	LastAuthSuccess int64
	Games           []GameRow
}

type RenderOptions struct {
	Now time.Time
}

// Render formats a status report for the terminal.
func Render(report Report, opts RenderOptions) string {
	return renderView(report, opts, newStyles())
}

func renderView(report Report, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("EA Desktop Library"),
		s.header.Render(renderAccount(report, opts)),
	}

	if len(report.Games) == 0 {
		lines = append(lines, s.empty.Render("No games in library."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := append([]GameRow(nil), report.Games...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Title < rows[j].Title })

	for _, row := range rows {
		lines = append(lines, renderGame(row, opts, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(report Report, opts RenderOptions) string {
	if !report.Authenticated {
		return "not authenticated"
	}
	line := fmt.Sprintf("signed in as %s", report.DisplayName)
	if report.LastAuthSuccess > 0 {
		line += fmt.Sprintf(" (last verified %s)", formatStamp(report.LastAuthSuccess, opts.Now))
	}
	return line
}

func renderGame(row GameRow, opts RenderOptions, s styles) string {
	stateLabel := row.State.String()
	stateStyle, ok := s.state[stateLabel]
	if !ok {
		stateStyle = s.detail
	}

	parts := []string{
		s.game.Render(row.Title),
		s.detail.Render(fmt.Sprintf("(%s)", row.ID)),
		stateStyle.Render(stateLabel),
	}
	if row.TotalMinutes > 0 {
		parts = append(parts, s.detail.Render(formatPlayTime(row.TotalMinutes)))
	}
	if row.LastPlayed != nil {
		parts = append(parts, s.detail.Render("last played "+formatStamp(*row.LastPlayed, opts.Now)))
	}

	joined := parts[0]
	for _, part := range parts[1:] {
		joined = lipgloss.JoinHorizontal(lipgloss.Top, joined, " ", part)
	}
	return joined
}

func formatPlayTime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm played", minutes)
	}
	return fmt.Sprintf("%dh %02dm played", minutes/60, minutes%60)
}

func formatStamp(unix int64, now time.Time) string {
	stamp := time.Unix(unix, 0)
	if now.IsZero() {
		return stamp.UTC().Format(time.RFC3339)
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := stamp.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return stamp.Format("15:04")
	}
	return stamp.Format("15:04 on 02 Jan")
}
