package services

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gepay-web/internal/models"
)

// OperatorNotifier tells the support team about new user activity.
type OperatorNotifier interface {
	SupportMessage(ctx context.Context, user *models.User, text string) error
	TransactionCreated(ctx context.Context, user *models.User, tx *models.Transaction) error
}

// MessageSender is the part of the bot API the notifier uses.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot    MessageSender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewTelegramNotifierWithSender(bot, chatID), nil
}

func NewTelegramNotifierWithSender(bot MessageSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

func (n *TelegramNotifier) SupportMessage(ctx context.Context, user *models.User, text string) error {
	return n.send(ctx, fmt.Sprintf("💬 Новое сообщение в поддержку\n%s\n\n%s", describeUser(user), text))
}

func (n *TelegramNotifier) TransactionCreated(ctx context.Context, user *models.User, tx *models.Transaction) error {
	lines := []string{
		fmt.Sprintf("🧾 Новая заявка #%d", tx.ID),
		describeUser(user),
		tx.Description,
	}
	if tx.SteamLogin != "" {
		lines = append(lines, "Логин: "+tx.SteamLogin)
	}
	return n.send(ctx, strings.Join(lines, "\n"))
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send operator notification: %w", err)
	}
	return nil
}

func describeUser(user *models.User) string {
	if user.Username != "" {
		return fmt.Sprintf("%s (@%s, id %d)", user.DisplayName(), user.Username, user.ID)
	}
	return fmt.Sprintf("%s (id %d)", user.DisplayName(), user.ID)
}
