package bot

import (
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"agenda-rural/internal/model"
	"agenda-rural/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageCategory
	stageAnchorKind
	stageDate
	stageMonth
	stageRecurrence
	stageUrgency
)

type conversationState struct {
	stage conversationStage
	input model.TaskInput
}

// step is what the bot answers after one message of the /newtask dialog.
type step struct {
	prompt   string
	keyboard interface{}
	done     bool
}

func newConversation() *conversationState {
	return &conversationState{stage: stageTitle}
}

// advance consumes one user message and moves the dialog forward. Invalid
// answers keep the stage and repeat the question.
func (s *conversationState) advance(text string) step {
	text = strings.TrimSpace(text)

	switch s.stage {
	case stageTitle:
		if text == "" {
			return step{prompt: "O título não pode ficar vazio. Como vamos chamar a tarefa?", keyboard: cancelKeyboard()}
		}
		s.input.Title = text
		s.stage = stageDescription
		return step{prompt: "✏️ Uma descrição curta (ou «Pular»).", keyboard: skipKeyboard()}
	case stageDescription:
		if !isSkipInput(text) {
			s.input.Description = text
		}
		s.stage = stageCategory
		return step{prompt: "🏷 Escolha a categoria.", keyboard: categoryKeyboard()}
	case stageCategory:
		category, ok := parseCategory(text)
		if !ok {
			return step{prompt: "Categoria desconhecida. Use um dos botões.", keyboard: categoryKeyboard()}
		}
		s.input.Category = string(category)
		s.stage = stageAnchorKind
		return step{prompt: "📅 A tarefa tem data certa ou é de um mês do ano?", keyboard: anchorKindKeyboard()}
	case stageAnchorKind:
		switch normalize(text) {
		case normalize(btnAnchorDate), "data":
			s.stage = stageDate
			return step{prompt: "Informe a data no formato <code>15/06/2025</code> ou <code>2025-06-15</code>.", keyboard: cancelKeyboard()}
		case normalize(btnAnchorMonth), "mês", "mes":
			s.stage = stageMonth
			return step{prompt: "Qual mês? Escolha ou digite o número (1–12).", keyboard: monthKeyboard()}
		default:
			return step{prompt: "Escolha «Data certa» ou «Mês do ano».", keyboard: anchorKindKeyboard()}
		}
	case stageDate:
		date, err := parseUserDate(text)
		if err != nil {
			return step{prompt: "Não entendi a data. Use <code>15/06/2025</code> ou <code>2025-06-15</code>.", keyboard: cancelKeyboard()}
		}
		value := date.String()
		s.input.SpecificDate = &value
		s.input.MonthReference = nil
		s.stage = stageRecurrence
		return step{prompt: "🔁 Com que frequência ela se repete?", keyboard: recurrenceKeyboard()}
	case stageMonth:
		month, ok := parseMonth(text)
		if !ok {
			return step{prompt: "Mês inválido. Escolha um botão ou digite de 1 a 12.", keyboard: monthKeyboard()}
		}
		ref := int(month) - 1
		s.input.MonthReference = &ref
		s.input.SpecificDate = nil
		s.stage = stageRecurrence
		return step{prompt: "🔁 Com que frequência ela se repete?", keyboard: recurrenceKeyboard()}
	case stageRecurrence:
		recurrence, ok := parseRecurrence(text)
		if !ok {
			return step{prompt: "Frequência desconhecida. Use um dos botões.", keyboard: recurrenceKeyboard()}
		}
		s.input.Recurrence = string(recurrence)
		s.stage = stageUrgency
		return step{prompt: "⚡ Qual a urgência?", keyboard: urgencyKeyboard()}
	case stageUrgency:
		urgency, ok := parseUrgency(text)
		if !ok {
			return step{prompt: "Urgência desconhecida. Use um dos botões.", keyboard: urgencyKeyboard()}
		}
		s.input.Urgency = string(urgency)
		s.stage = stageNone
		return step{done: true}
	default:
		s.stage = stageNone
		return step{prompt: "Conversa reiniciada. Tente de novo com /newtask.", done: false}
	}
}

func parseCategory(text string) (model.Category, bool) {
	value := normalize(text)
	for _, c := range model.Categories {
		if value == string(c) || value == normalize(c.Label()) || value == normalize(categoryButton(c)) {
			return c, true
		}
	}
	return "", false
}

func parseUrgency(text string) (model.Urgency, bool) {
	value := normalize(text)
	for _, u := range model.Urgencies {
		if value == string(u) || value == normalize(u.Label()) || value == normalize(urgencyButton(u)) {
			return u, true
		}
	}
	return "", false
}

func parseRecurrence(text string) (model.Recurrence, bool) {
	value := normalize(text)
	if isSkipInput(text) {
		return model.RecurrenceNone, true
	}
	for _, r := range model.Recurrences {
		if value == string(r) || value == normalize(r.Label()) {
			return r, true
		}
	}
	return "", false
}

// parseMonth accepts 1-12 or a Portuguese month name.
func parseMonth(text string) (time.Month, bool) {
	value := normalize(text)
	if n, err := strconv.Atoi(value); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	for i, name := range model.MonthNames {
		if value == normalize(name) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// parseUserDate accepts dd/mm/yyyy as typed in Brazil, or ISO dates.
func parseUserDate(text string) (model.CivilDate, error) {
	if t, err := time.Parse("02/01/2006", strings.TrimSpace(text)); err == nil {
		return model.DateOf(t), nil
	}
	return model.ParseDate(text)
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func isSkipInput(text string) bool {
	value := normalize(text)
	return value == "-" || value == normalize(btnSkip) || value == "pular" || value == "skip"
}

func isConfirmInput(text string) bool {
	value := normalize(text)
	return value == normalize(btnConfirm) || value == "confirmar" || value == "sim"
}

func isCancelInput(text string) bool {
	value := normalize(text)
	return value == normalize(btnCancel) || value == "voltar"
}

func isCancelDialogInput(text string) bool {
	value := normalize(text)
	return value == normalize(btnCancelDialog) || value == "cancelar"
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, c := range model.Categories {
		row = append(row, tgbotapi.NewKeyboardButton(categoryButton(c)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	return oneTime(tgbotapi.NewReplyKeyboard(rows...))
}

func anchorKindKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return oneTime(tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAnchorDate),
			tgbotapi.NewKeyboardButton(btnAnchorMonth),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	))
}

func monthKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(model.MonthNames); i += 3 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(model.MonthNames[i]),
			tgbotapi.NewKeyboardButton(model.MonthNames[i+1]),
			tgbotapi.NewKeyboardButton(model.MonthNames[i+2]),
		))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	return oneTime(tgbotapi.NewReplyKeyboard(rows...))
}

func recurrenceKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, r := range model.Recurrences {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(r.Label())))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	return oneTime(tgbotapi.NewReplyKeyboard(rows...))
}

func urgencyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, u := range model.Urgencies {
		row = append(row, tgbotapi.NewKeyboardButton(urgencyButton(u)))
	}
	return oneTime(tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	))
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return oneTime(tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	))
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return oneTime(tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	))
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return oneTime(tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	))
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelUpcoming),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelMonth),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelReport),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func oneTime(kb tgbotapi.ReplyKeyboardMarkup) tgbotapi.ReplyKeyboardMarkup {
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func categoryButton(c model.Category) string {
	return categoryIcon(c) + " " + c.Label()
}

func urgencyButton(u model.Urgency) string {
	return service.UrgencyIcon(u) + " " + u.Label()
}

func categoryIcon(c model.Category) string {
	switch c {
	case model.CategoryPlanting:
		return "🌱"
	case model.CategoryMaintenance:
		return "🔧"
	case model.CategoryAnimals:
		return "🐄"
	default:
		return "📁"
	}
}
