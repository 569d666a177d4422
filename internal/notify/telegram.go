package notify

import (
	"fmt"
	"strings"

	"webstudio/internal/config"
	"webstudio/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var statusLabels = map[models.OrderStatus]string{
	models.StatusPending:    "⏳ Ожидает оплаты",
	models.StatusPaid:       "💰 Оплачен",
	models.StatusInProgress: "🔨 В работе",
	models.StatusCompleted:  "✅ Завершен",
	models.StatusCancelled:  "❌ Отменен",
}

// TelegramNotifier pushes order events to the managers' chats.
type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	managers []int64
	logger   *zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info().Str("bot", bot.Self.UserName).Int("managers", len(cfg.Managers)).Msg("Telegram notifier ready")

	return &TelegramNotifier{
		bot:      bot,
		managers: cfg.Managers,
		logger:   logger,
	}, nil
}

func (n *TelegramNotifier) NotifyOrderCreated(order models.Order) error {
	var message strings.Builder
	message.WriteString("🆕 Новый заказ!\n\n")
	message.WriteString(fmt.Sprintf("Заказ: #%s\n", order.ID))
	message.WriteString(fmt.Sprintf("Клиент: %s\n", order.CustomerName))
	message.WriteString(fmt.Sprintf("Email: %s\n", order.CustomerEmail))
	message.WriteString(fmt.Sprintf("Телефон: %s\n", order.CustomerPhone))
	message.WriteString(fmt.Sprintf("Услуга: %s\n", order.ServiceName))
	if order.TotalPrice > 0 {
		message.WriteString(fmt.Sprintf("Сумма: %d ₽\n", order.TotalPrice))
	}
	if order.Message != "" {
		message.WriteString(fmt.Sprintf("\n💬 %s\n", order.Message))
	}

	return n.sendToManagers(message.String())
}

func (n *TelegramNotifier) NotifyOrderStatus(order models.Order) error {
	text := fmt.Sprintf("Заказ #%s: %s\nКлиент: %s\nУслуга: %s",
		order.ID, statusLabel(order.Status), order.CustomerName, order.ServiceName)
	return n.sendToManagers(text)
}

func (n *TelegramNotifier) sendToManagers(text string) error {
	var lastErr error
	for _, managerID := range n.managers {
		msg := tgbotapi.NewMessage(managerID, text)
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("manager_id", managerID).Msg("failed to notify manager")
			lastErr = err
		}
	}
	return lastErr
}

func statusLabel(status models.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}
