package service

import (
	"fmt"
	"html"
	"strings"

	"agenda-rural/internal/agenda"
	"agenda-rural/internal/model"
)

// Digest is the on-demand summary of the agenda for one day.
type Digest struct {
	Date     model.CivilDate
	Today    []model.Task
	Upcoming []model.Task
	Seasonal []model.Task
	Pending  int
}

// DigestService builds human-readable summaries for chat and terminal.
type DigestService struct {
	agenda *AgendaService
}

func NewDigestService(svc *AgendaService) *DigestService {
	return &DigestService{agenda: svc}
}

// Build collects the digest for the current day.
func (s *DigestService) Build() Digest {
	now := s.agenda.Now()
	today := model.DateOf(now)
	tasks := s.agenda.Snapshot()

	d := Digest{
		Date:     today,
		Today:    agenda.TasksOnDay(tasks, today.Year, today.Month, today.Day),
		Upcoming: agenda.Upcoming(tasks, now),
		Seasonal: agenda.ForMonth(tasks, today.Year, today.Month).Seasonal,
	}
	for _, task := range tasks {
		if !task.IsCompleted {
			d.Pending++
		}
	}
	return d
}

// HTML renders the digest for Telegram's HTML parse mode.
func (d Digest) HTML() string {
	return d.render(true)
}

// Text renders the digest for a terminal.
func (d Digest) Text() string {
	return d.render(false)
}

func (d Digest) render(rich bool) string {
	esc := func(s string) string { return s }
	bold := func(s string) string { return s }
	if rich {
		esc = html.EscapeString
		bold = func(s string) string { return "<b>" + s + "</b>" }
	}

	var sb strings.Builder
	sb.WriteString("📋 " + bold("Resumo da chácara") + "\n")
	sb.WriteString(fmt.Sprintf("🗓 %02d/%02d/%04d · %d pendente(s)\n\n", d.Date.Day, int(d.Date.Month), d.Date.Year, d.Pending))

	sb.WriteString("📌 " + bold("Hoje") + "\n")
	writeTasks(&sb, d.Today, "• nada marcado para hoje", esc, false)

	sb.WriteString("\n⏳ " + bold("Próximos 7 dias") + "\n")
	writeTasks(&sb, d.Upcoming, "• nenhuma tarefa próxima", esc, true)

	sb.WriteString("\n🌱 " + bold("Sazonais de "+model.MonthName(d.Date.Month)) + "\n")
	writeTasks(&sb, d.Seasonal, "• nenhuma tarefa sazonal", esc, false)

	return strings.TrimSpace(sb.String())
}

func writeTasks(sb *strings.Builder, tasks []model.Task, empty string, esc func(string) string, withDate bool) {
	if len(tasks) == 0 {
		sb.WriteString(empty + "\n")
		return
	}
	for _, task := range tasks {
		sb.WriteString(FormatTaskLine(task, esc, withDate))
		sb.WriteByte('\n')
	}
}

// FormatTaskLine renders one task as a single line with status and urgency.
func FormatTaskLine(task model.Task, esc func(string) string, withDate bool) string {
	status := "⬜"
	if task.IsCompleted {
		status = "✅"
	}
	line := fmt.Sprintf("%s %s %s · %s", status, UrgencyIcon(task.Urgency), esc(task.Title), task.Category.Label())
	if withDate {
		if date, ok := task.Anchor.Date(); ok {
			line += fmt.Sprintf(" · %02d/%02d", date.Day, int(date.Month))
		}
	}
	if task.Recurrence.Repeats() {
		line += " · 🔁 " + task.Recurrence.Label()
	}
	return line
}

// UrgencyIcon maps urgency to a coloured marker.
func UrgencyIcon(u model.Urgency) string {
	switch u {
	case model.UrgencyHigh:
		return "🔴"
	case model.UrgencyLow:
		return "🟢"
	default:
		return "🟡"
	}
}
