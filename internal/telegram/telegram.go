// Package telegram hosts the Telegram client, routing, and reply delivery.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"aesthetic_doctor_bot/internal/config"
	"aesthetic_doctor_bot/internal/instrument"
	"aesthetic_doctor_bot/internal/logging"
)

type botRunner interface {
	Start(ctx context.Context)
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

var (
	defaultAllowedUpdates = bot.AllowedUpdates{
		"message",
		"edited_message",
		"my_chat_member",
	}

	createBot = func(token string, options ...bot.Option) (botRunner, error) {
		return bot.New(token, options...)
	}

	newUpdateRef = func() string {
		return ulid.Make().String()
	}
)

// Client wraps the Telegram bot instance and logging dependencies.
type Client struct {
	bot    botRunner
	queue  *chatQueue
	logger *logrus.Entry
}

// NewClient initializes the Telegram bot with long polling. Updates are
// logged and handed to router; a nil router only logs them. Updates from
// one chat are dispatched one at a time in the order they were polled.
func NewClient(cfg config.Config, router *Router, logger *logrus.Entry) (*Client, error) {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, errors.New("telegram token is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	queue := newChatQueue()

	tgBot, err := createBot(cfg.TelegramToken,
		bot.WithAllowedUpdates(defaultAllowedUpdates),
		bot.WithNotAsyncHandlers(),
		bot.WithDefaultHandler(defaultHandler(logger, router, queue)),
		bot.WithErrorsHandler(errorHandler(logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot client: %w", err)
	}

	return &Client{
		bot:    tgBot,
		queue:  queue,
		logger: logger,
	}, nil
}

// Start registers the command menu and receives updates via long polling
// until the context is canceled. A failed menu registration is only logged.
func (c *Client) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: MenuCommands}); err != nil {
		instrument.UpstreamFailures.WithLabelValues(instrument.ServiceTelegram).Inc()
		c.logger.WithField("event", "telegram_commands_error").WithError(err).Error("failed to set bot commands")
	}

	c.logger.WithFields(logging.Fields{
		"event":           "telegram_listen",
		"allowed_updates": defaultAllowedUpdates,
	}).Info("starting telegram long polling")

	c.bot.Start(ctx)
	c.queue.Wait()

	c.logger.WithField("event", "telegram_stopped").Info("telegram polling stopped")
}

type updateMeta struct {
	userID     int64
	chatID     int64
	text       string
	updateType string
}

func defaultHandler(logger *logrus.Entry, router *Router, queue *chatQueue) bot.HandlerFunc {
	if logger == nil {
		logger = logging.Logger()
	}

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update == nil {
			return
		}

		meta := extractUpdateMeta(update)
		ref := newUpdateRef()

		fields := logging.Fields{
			"event":       "telegram_update",
			"update_type": meta.updateType,
			"update_ref":  ref,
		}

		if meta.text != "" {
			fields["text"] = meta.text
		}
		if meta.userID != 0 {
			fields["user_id"] = meta.userID
		}
		if meta.chatID != 0 {
			fields["chat_id"] = meta.chatID
		}

		logger.WithFields(fields).Info("telegram update received")

		if router == nil || b == nil || queue == nil {
			return
		}
		queue.Submit(meta.chatID, func() {
			router.Dispatch(ctx, b, update, ref)
		})
	}
}

func extractUpdateMeta(update *models.Update) updateMeta {
	switch {
	case update.Message != nil:
		return updateMeta{
			userID:     userID(update.Message.From),
			chatID:     chatID(&update.Message.Chat),
			text:       strings.TrimSpace(update.Message.Text),
			updateType: "message",
		}
	case update.EditedMessage != nil:
		return updateMeta{
			userID:     userID(update.EditedMessage.From),
			chatID:     chatID(&update.EditedMessage.Chat),
			text:       strings.TrimSpace(update.EditedMessage.Text),
			updateType: "edited_message",
		}
	case update.MyChatMember != nil:
		return updateMeta{
			userID:     userID(&update.MyChatMember.From),
			chatID:     chatID(&update.MyChatMember.Chat),
			updateType: "my_chat_member",
		}
	default:
		return updateMeta{updateType: "unknown"}
	}
}

func errorHandler(logger *logrus.Entry) bot.ErrorsHandler {
	if logger == nil {
		logger = logging.Logger()
	}

	return func(err error) {
		if err == nil {
			return
		}

		instrument.UpstreamFailures.WithLabelValues(instrument.ServiceTelegram).Inc()
		logger.WithField("event", "telegram_error").WithError(err).Error("telegram polling error")
	}
}

func userID(user *models.User) int64 {
	if user == nil {
		return 0
	}

	return user.ID
}

func chatID(chat *models.Chat) int64 {
	if chat == nil {
		return 0
	}

	return chat.ID
}
