package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"agenda-rural/internal/model"
	"agenda-rural/internal/service"
)

// shortIDLen is how many id characters are shown and accepted by /done.
const shortIDLen = 8

// taskListMessage renders tasks with one toggle/delete button row each.
// The markup is nil when there is nothing to act on.
func taskListMessage(title string, tasks []model.Task) (string, *tgbotapi.InlineKeyboardMarkup) {
	if len(tasks) == 0 {
		return title + "\n\nNenhuma tarefa por aqui. Cadastre uma com /newtask.", nil
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")

	shown := tasks
	if len(shown) > taskListLimit {
		shown = shown[:taskListLimit]
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(shown))
	for _, task := range shown {
		sb.WriteString(service.FormatTaskLine(task, escape, true))
		sb.WriteString(fmt.Sprintf(" <code>%s</code>\n", shortID(task.ID)))

		label := "✅ " + shortTitle(task.Title, 20)
		if task.IsCompleted {
			label = "↩️ " + shortTitle(task.Title, 20)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbTogglePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID),
		))
	}
	if hidden := len(tasks) - len(shown); hidden > 0 {
		sb.WriteString(fmt.Sprintf("\n… e mais %d tarefa(s).", hidden))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return strings.TrimSpace(sb.String()), &markup
}

// parseCallback splits inline button data into its action prefix and task id.
func parseCallback(data string) (string, string, bool) {
	for _, prefix := range []string{cbTogglePrefix, cbDeletePrefix} {
		if id, ok := strings.CutPrefix(data, prefix); ok && id != "" {
			return prefix, id, true
		}
	}
	return "", "", false
}

func formatTaskDetails(task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("• <b>Título:</b> %s\n", escape(task.Title)))
	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("• <b>Descrição:</b> %s\n", escape(task.Description)))
	}
	sb.WriteString(fmt.Sprintf("• <b>Categoria:</b> %s %s\n", categoryIcon(task.Category), task.Category.Label()))
	if date, ok := task.Anchor.Date(); ok {
		sb.WriteString(fmt.Sprintf("• <b>Data:</b> %s\n", formatDate(date)))
	}
	if month, ok := task.Anchor.Month(); ok {
		sb.WriteString(fmt.Sprintf("• <b>Mês:</b> %s\n", model.MonthName(month)))
	}
	sb.WriteString(fmt.Sprintf("• <b>Repetição:</b> %s\n", task.Recurrence.Label()))
	sb.WriteString(fmt.Sprintf("• <b>Urgência:</b> %s %s\n", service.UrgencyIcon(task.Urgency), task.Urgency.Label()))
	sb.WriteString(fmt.Sprintf("• <b>ID:</b> <code>%s</code>", shortID(task.ID)))
	return sb.String()
}

func formatLogs(logs []model.DailyLog) string {
	if len(logs) == 0 {
		return "📒 O diário está vazio. Anote algo com /log."
	}
	var sb strings.Builder
	sb.WriteString("📒 <b>Diário da chácara</b>\n")
	for _, entry := range logs {
		sb.WriteString(fmt.Sprintf("\n<b>%s</b> %s", formatDate(entry.LogDate), escape(entry.Content)))
	}
	return sb.String()
}

func formatDate(d model.CivilDate) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
