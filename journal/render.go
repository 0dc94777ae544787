package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sofia-api/calendar"
	"sofia-api/domain"
)

const cellWidth = 10

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("240"))

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Height(2).
			Padding(0, 1)

	fillerStyle = cellStyle.
			Foreground(lipgloss.Color("240")).
			Faint(true)

	todayStyle = cellStyle.
			Foreground(lipgloss.Color("214")).
			Bold(true)

	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bodyStyle  = lipgloss.NewStyle().PaddingLeft(4).Italic(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// renderMonth draws the six-week grid: the day number, a note count and one
// dot per mood in the mood's colour.
func renderMonth(month time.Time, days []domain.Day) string {
	title := titleStyle.Render(month.Format("January 2006"))
	if len(days) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, warnStyle.Render("no days loaded"))
	}

	header := make([]string, 0, len(calendar.WeekdayLabels))
	for _, label := range calendar.WeekdayLabels {
		header = append(header, headerStyle.Render(label))
	}
	rows := []string{title, lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for week := 0; week*7 < len(days); week++ {
		end := min(week*7+7, len(days))
		cells := make([]string, 0, 7)
		for _, d := range days[week*7 : end] {
			cells = append(cells, renderCell(d))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(d domain.Day) string {
	style := cellStyle
	switch {
	case d.IsToday:
		style = todayStyle
	case !d.IsCurrentMonth:
		style = fillerStyle
	}
	var second string
	if n := len(d.Notes); n > 0 {
		second = fmt.Sprintf("%d ", n)
	}
	second += moodDots(d.Moods)
	return style.Render(fmt.Sprintf("%2d\n%s", d.Day, second))
}

func moodDots(moods domain.MoodSet) string {
	var b strings.Builder
	for _, m := range moods {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.Color)).Render("●"))
	}
	return b.String()
}

// renderMoods lists mood labels in their colours, or a dash for none.
func renderMoods(moods domain.MoodSet) string {
	if len(moods) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(moods))
	for _, m := range moods {
		labels = append(labels, lipgloss.NewStyle().Foreground(lipgloss.Color(m.Color)).Render(m.Label))
	}
	return strings.Join(labels, " ")
}

func renderDay(d domain.Day) string {
	lines := []string{
		titleStyle.Render(d.Date.Format("Monday, January 2 2006")),
		"moods: " + renderMoods(d.Moods),
	}
	if len(d.Notes) == 0 {
		lines = append(lines, warnStyle.Render("no notes"))
	}
	for _, n := range d.Notes {
		lines = append(lines, noteLine(n))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderNote(n domain.Note) string {
	lines := []string{noteLine(n)}
	if n.Body != "" {
		lines = append(lines, bodyStyle.Render(n.Body))
	}
	if len(n.Tags) > 0 {
		lines = append(lines, bodyStyle.Render("tags: "+strings.Join(n.Tags, ", ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func noteLine(n domain.Note) string {
	kind := string(n.Type())
	if status, ok := n.Status(); ok {
		kind += "/" + string(status)
	}
	return fmt.Sprintf("  %s %s (%s)", idStyle.Render("["+n.ID+"]"), n.Title, kind)
}
