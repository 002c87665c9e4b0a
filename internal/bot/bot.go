package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"agenda-rural/internal/agenda"
	"agenda-rural/internal/model"
	"agenda-rural/internal/repository"
	"agenda-rural/internal/service"
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
)

const (
	btnSkip           = "⏭️ Pular"
	btnConfirm        = "✅ Confirmar"
	btnCancel         = "↩️ Voltar"
	btnCancelDialog   = "⏪ Cancelar"
	btnAnchorDate     = "📅 Data certa"
	btnAnchorMonth    = "🌱 Mês do ano"
	menuLabelNewTask  = "➕ Nova tarefa"
	menuLabelUpcoming = "⏳ Próximos dias"
	menuLabelMonth    = "🗓 Este mês"
	menuLabelTasks    = "📋 Todas"
	menuLabelReport   = "📊 Resumo"
	menuLabelHelp     = "ℹ️ Ajuda"
)

// taskListLimit keeps a single message under Telegram's size cap.
const taskListLimit = 40

type confirmationRequest struct {
	taskID string
}

// Services groups what the chat surface talks to.
type Services struct {
	Agenda  *service.AgendaService
	Journal *service.JournalService
	Advice  *service.AdviceService
	Digest  *service.DigestService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	svc           Services
	log           *logrus.Entry
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
	stopOnce      sync.Once
}

func New(token string, svc Services, log *logrus.Entry) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.WithField("account", api.Self.UserName).Info("bot authorized")
	return newBot(api, svc, log), nil
}

func newBot(api *tgbotapi.BotAPI, svc Services, log *logrus.Entry) *Bot {
	return &Bot{
		api:           api,
		svc:           svc,
		log:           log,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.WithError(err).Warn("handle callback")
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.WithError(err).Warn("handle message")
			}
		}
	}

	return nil
}

// Stop ends polling; Start returns once the update channel drains. It is
// safe to call more than once and alongside context cancellation.
func (b *Bot) Stop() {
	b.stopOnce.Do(b.api.StopReceivingUpdates)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cadastro cancelado. Quando quiser, é só começar de novo.")
	}

	if msg.IsCommand() {
		b.log.WithFields(logrus.Fields{"user": msg.From.ID, "command": msg.Command()}).Info("command received")
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		b.log.WithFields(logrus.Fields{"user": msg.From.ID, "stage": state.stage}).Debug("conversation step")
		return b.handleConversation(ctx, msg, state)
	}

	if handled, err := b.handleMenuAlias(msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "Não entendi. Use /newtask para cadastrar uma tarefa ou /help para ver os comandos.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "tasks":
		return b.sendTaskList(msg.Chat.ID, "📋 <b>Todas as tarefas</b>", b.svc.Agenda.List(agenda.TaskFilter{}))
	case "upcoming":
		return b.sendTaskList(msg.Chat.ID, "⏳ <b>Próximos 7 dias</b>", b.svc.Agenda.Upcoming())
	case "month":
		return b.handleMonth(msg)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "delete":
		return b.handleDelete(msg)
	case "log":
		return b.handleLog(ctx, msg)
	case "logs":
		return b.handleLogs(ctx, msg)
	case "ask":
		return b.handleAsk(ctx, msg)
	case "report":
		return b.sendText(msg.Chat.ID, b.svc.Digest.Build().HTML())
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cadastro cancelado.")
	default:
		return b.sendText(msg.Chat.ID, "Comando não suportado. Veja /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "produtor"
	}
	text := fmt.Sprintf("👋 Olá, %s!\n<b>Sou a agenda da chácara: plantio, manutenção e animais em dia.</b>\n\n%s",
		escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Comandos</b>\n"+helpText)
}

const helpText = "• /newtask: cadastrar tarefa passo a passo\n" +
	"• /tasks: todas as tarefas, pendentes primeiro\n" +
	"• /upcoming: tarefas dos próximos 7 dias\n" +
	"• /month: tarefas deste mês (ou /month 2025-09)\n" +
	"• /done &lt;id&gt;: marcar ou desmarcar como feita\n" +
	"• /delete &lt;id&gt;: remover tarefa\n" +
	"• /log &lt;texto&gt;: anotar no diário\n" +
	"• /logs: últimas anotações\n" +
	"• /ask &lt;pergunta&gt;: consultar o agrônomo virtual\n" +
	"• /report: resumo do dia\n" +
	"• /cancel: cancelar o cadastro em andamento"

func (b *Bot) handleMonth(msg *tgbotapi.Message) error {
	now := b.svc.Agenda.Now()
	year, month := now.Year(), now.Month()
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := time.Parse("2006-01", arg)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Use o formato /month 2025-09.")
		}
		year, month = parsed.Year(), parsed.Month()
	}

	view := b.svc.Agenda.Month(year, month)
	title := fmt.Sprintf("🗓 <b>%s de %d</b>", model.MonthName(month), year)
	return b.sendTaskList(msg.Chat.ID, title, view.All)
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	b.log.WithField("user", msg.From.ID).Info("start new task conversation")
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, newConversation())
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Nova tarefa.\n<b>Passo 1:</b> qual o título?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	next := state.advance(msg.Text)
	if !next.done {
		if state.stage == stageNone {
			b.clearConversation(msg.From.ID)
			return b.sendText(msg.Chat.ID, next.prompt)
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, next.prompt, next.keyboard)
	}

	b.clearConversation(msg.From.ID)
	task, err := b.svc.Agenda.Create(ctx, state.input)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Não foi possível salvar: %s", escape(err.Error())))
	}

	return b.sendText(msg.Chat.ID, "✅ <b>Tarefa salva</b>\n"+formatTaskDetails(task))
}

// handleDone toggles completion, so a second /done reopens the task.
func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Informe o id da tarefa: /done 3f2a")
	}
	task, err := b.svc.Agenda.Find(ref)
	if err != nil {
		return b.sendText(msg.Chat.ID, lookupError(err))
	}
	return b.toggleAndReport(ctx, msg.Chat.ID, task.ID)
}

func (b *Bot) handleDelete(msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Informe o id da tarefa: /delete 3f2a")
	}
	task, err := b.svc.Agenda.Find(ref)
	if err != nil {
		return b.sendText(msg.Chat.ID, lookupError(err))
	}
	return b.askDeleteConfirmation(msg.Chat.ID, msg.From.ID, task)
}

func (b *Bot) handleLog(ctx context.Context, msg *tgbotapi.Message) error {
	content := strings.TrimSpace(msg.CommandArguments())
	if content == "" {
		return b.sendText(msg.Chat.ID, "Escreva a anotação depois do comando: /log Choveu 20mm")
	}
	entry, err := b.svc.Journal.Add(ctx, content, model.CivilDate{})
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Não foi possível anotar: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📝 Anotado em %s.", formatDate(entry.LogDate)))
}

func (b *Bot) handleLogs(ctx context.Context, msg *tgbotapi.Message) error {
	logs, err := b.svc.Journal.Recent(ctx, repository.DefaultLogLimit)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Não foi possível ler o diário: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, formatLogs(logs))
}

func (b *Bot) handleAsk(ctx context.Context, msg *tgbotapi.Message) error {
	question := strings.TrimSpace(msg.CommandArguments())
	if question == "" {
		return b.sendText(msg.Chat.ID, "Faça a pergunta depois do comando: /ask quando podar o café?")
	}
	if _, err := b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		b.log.WithError(err).Debug("chat action")
	}
	answer := b.svc.Advice.Ask(ctx, question)
	return b.sendPlain(msg.Chat.ID, answer)
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteAndReport(ctx, msg.Chat.ID, req.taskID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Ok, nada foi removido.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirme ou cancele a remoção.", confirmKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.WithError(err).Debug("callback ack")
	}

	action, taskID, ok := parseCallback(cb.Data)
	if !ok {
		return nil
	}
	b.log.WithFields(logrus.Fields{"user": cb.From.ID, "action": action, "task_id": taskID}).Info("callback received")

	switch action {
	case cbTogglePrefix:
		return b.toggleAndReport(ctx, cb.Message.Chat.ID, taskID)
	case cbDeletePrefix:
		task, err := b.svc.Agenda.Get(taskID)
		if err != nil {
			return b.sendText(cb.Message.Chat.ID, lookupError(err))
		}
		return b.askDeleteConfirmation(cb.Message.Chat.ID, cb.From.ID, task)
	}
	return nil
}

func (b *Bot) askDeleteConfirmation(chatID, userID int64, task model.Task) error {
	b.setConfirmation(userID, confirmationRequest{taskID: task.ID})
	text := fmt.Sprintf("Remover a tarefa «%s»?", escape(task.Title))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) toggleAndReport(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.svc.Agenda.Toggle(ctx, taskID)
	if err != nil {
		return b.sendText(chatID, lookupError(err))
	}
	if task.IsCompleted {
		return b.sendText(chatID, fmt.Sprintf("✅ «%s» concluída.", escape(task.Title)))
	}
	return b.sendText(chatID, fmt.Sprintf("⬜ «%s» reaberta.", escape(task.Title)))
}

func (b *Bot) deleteAndReport(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.svc.Agenda.Delete(ctx, taskID)
	if err != nil {
		return b.sendText(chatID, lookupError(err))
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 «%s» removida.", escape(task.Title)))
}

func (b *Bot) handleMenuAlias(msg *tgbotapi.Message) (bool, error) {
	switch normalize(msg.Text) {
	case normalize(menuLabelNewTask):
		return true, b.startNewTaskConversation(msg)
	case normalize(menuLabelUpcoming):
		return true, b.sendTaskList(msg.Chat.ID, "⏳ <b>Próximos 7 dias</b>", b.svc.Agenda.Upcoming())
	case normalize(menuLabelMonth):
		return true, b.handleMonth(msg)
	case normalize(menuLabelTasks):
		return true, b.sendTaskList(msg.Chat.ID, "📋 <b>Todas as tarefas</b>", b.svc.Agenda.List(agenda.TaskFilter{}))
	case normalize(menuLabelReport):
		return true, b.sendText(msg.Chat.ID, b.svc.Digest.Build().HTML())
	case normalize(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) sendTaskList(chatID int64, title string, tasks []model.Task) error {
	text, markup := taskListMessage(title, tasks)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

// sendPlain skips HTML parsing for free-form model output.
func (b *Bot) sendPlain(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func lookupError(err error) string {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return "Tarefa não encontrada."
	case errors.Is(err, service.ErrAmbiguousID):
		return "Mais de uma tarefa começa com esse id. Digite mais caracteres."
	default:
		return fmt.Sprintf("Erro: %s", escape(err.Error()))
	}
}

func escape(s string) string {
	return html.EscapeString(s)
}
