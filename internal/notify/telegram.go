package notify

import (
	"context"
	"fmt"
	"strings"

	"nexum/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ActionApplier applies an accept/decline/dismiss/reschedule action to a suggestion.
type ActionApplier interface {
	ApplyAction(ctx context.Context, suggestionID, action string) (*models.Suggestion, error)
}

// Telegram posts suggestions to a chat with one button per action. Button
// presses are routed back through ActionApplier.
type Telegram struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	actions ActionApplier
	logger  *zap.Logger
}

// NewTelegramFromToken returns nil, nil when token is empty.
func NewTelegramFromToken(token string, chatID int64, actions ActionApplier, logger *zap.Logger) (*Telegram, error) {
	if token == "" {
		logger.Info("Telegram bot is disabled (telegram.bot_token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}
	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return NewTelegram(botAPI, chatID, actions, logger), nil
}

func NewTelegram(api *tgbotapi.BotAPI, chatID int64, actions ActionApplier, logger *zap.Logger) *Telegram {
	return &Telegram{api: api, chatID: chatID, actions: actions, logger: logger}
}

var actionButtons = []struct {
	label  string
	action string
}{
	{"✅ Accept", "accept"},
	{"❌ Decline", "decline"},
	{"🙈 Dismiss", "dismiss"},
	{"🕒 Reschedule", "reschedule"},
}

func suggestionKeyboard(suggestionID string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(actionButtons))
	for _, b := range actionButtons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.label, b.action+":"+suggestionID))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func formatSuggestion(group *models.Group, s *models.Suggestion) string {
	text := fmt.Sprintf("📍 %s\n👥 %s\n🕖 %s – %s",
		s.Title, group.Name,
		s.StartAt.Format("Mon 2 Jan 15:04"), s.EndAt.Format("15:04"))
	if url := s.Details().URL; url != "" {
		text += "\n🔗 " + url
	}
	return text
}

func (t *Telegram) NotifySuggestions(_ context.Context, group *models.Group, suggestions []*models.Suggestion) error {
	if t.chatID == 0 {
		return fmt.Errorf("telegram.chat_id is not configured")
	}

	for _, s := range suggestions {
		msg := tgbotapi.NewMessage(t.chatID, formatSuggestion(group, s))
		msg.ReplyMarkup = suggestionKeyboard(s.ID)

		if _, err := t.api.Send(msg); err != nil {
			t.logger.Error("Failed to send suggestion notification",
				zap.Int64("chat_id", t.chatID),
				zap.String("suggestion_id", s.ID),
				zap.Error(err))
			return fmt.Errorf("failed to send notification: %w", err)
		}
	}

	t.logger.Info("Suggestion notifications sent",
		zap.Int64("chat_id", t.chatID),
		zap.String("group_id", group.ID),
		zap.Int("count", len(suggestions)))
	return nil
}

// Start listens for button presses until ctx is cancelled.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil {
		return nil
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)

	t.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Telegram bot shutting down...")
			t.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.CallbackQuery != nil {
				t.handleCallbackQuery(ctx, update.CallbackQuery)
			}
		}
	}
}

// handleCallbackQuery processes "<action>:<suggestion id>" button data.
func (t *Telegram) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	t.logger.Info("Received callback query",
		zap.String("data", query.Data),
		zap.Int64("user_id", query.From.ID))

	if _, err := t.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		t.logger.Error("Failed to send callback response", zap.Error(err))
	}

	action, suggestionID, ok := strings.Cut(query.Data, ":")
	if !ok || suggestionID == "" {
		t.logger.Error("Failed to parse callback data: invalid format", zap.String("data", query.Data))
		return
	}

	suggestion, err := t.actions.ApplyAction(ctx, suggestionID, action)
	if err != nil {
		t.logger.Error("Failed to apply suggestion action",
			zap.String("suggestion_id", suggestionID),
			zap.String("action", action),
			zap.Error(err))
		t.reply(query, "⚠️ "+err.Error())
		return
	}

	t.logger.Info("Suggestion action applied",
		zap.String("suggestion_id", suggestionID),
		zap.String("status", suggestion.Status))

	t.reply(query, "Status: "+suggestion.Status)
}

// reply appends result to the original message and drops its buttons.
func (t *Telegram) reply(query *tgbotapi.CallbackQuery, result string) {
	if query.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(
		query.Message.Chat.ID,
		query.Message.MessageID,
		query.Message.Text+"\n\n"+result,
	)
	if _, err := t.api.Send(edit); err != nil {
		t.logger.Error("Failed to edit message", zap.Error(err))
	}
}
