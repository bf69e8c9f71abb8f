package telegram

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"aesthetic_doctor_bot/internal/domain"
	"aesthetic_doctor_bot/internal/feature/metrics"
	"aesthetic_doctor_bot/internal/instrument"
	"aesthetic_doctor_bot/internal/logging"
)

const (
	commandStart      = "start"
	commandPing       = "ping"
	commandGetNewCode = "get_new_code"

	replyStart = "Welcome to the Aesthetic Doctor bot. Use /ping to check it is alive."
	replyPong  = "pong"
)

// MenuCommands is the command list registered with Telegram at startup.
var MenuCommands = []models.BotCommand{
	{Command: metrics.CommandMetricsText.Name, Description: "Readable mini report with the main trends"},
	{Command: metrics.CommandMetricsCSV.Name, Description: "CSV export ready for Excel"},
	{Command: metrics.CommandMetricsChart.Name, Description: "Daily chart of treatments or comparisons"},
	{Command: metrics.CommandDoctorActivity.Name, Description: "Activity summary per doctor"},
	{Command: commandGetNewCode, Description: "Generate activation codes for a new doctor"},
}

var metricsCommands = map[string]metrics.Command{
	metrics.CommandMetrics.Name:        metrics.CommandMetrics,
	metrics.CommandMetricsText.Name:    metrics.CommandMetricsText,
	metrics.CommandMetricsCSV.Name:     metrics.CommandMetricsCSV,
	metrics.CommandMetricsChart.Name:   metrics.CommandMetricsChart,
	metrics.CommandDoctorActivity.Name: metrics.CommandDoctorActivity,
}

// MetricsHandler answers the metrics commands.
type MetricsHandler interface {
	Handle(ctx context.Context, cmd metrics.Command, args string) domain.Reply
}

// CodeWizard drives the activation code dialogue.
type CodeWizard interface {
	Start(chatID int64) domain.Reply
	Active(chatID int64) bool
	Handle(ctx context.Context, chatID int64, text string) domain.Reply
}

// sender is the subset of *bot.Bot used to deliver replies.
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

// Router maps incoming messages to commands, the code wizard or the greeting.
type Router struct {
	metrics MetricsHandler
	wizard  CodeWizard
	logger  *logrus.Entry
}

// NewRouter builds a Router. A nil logger falls back to the base logger.
func NewRouter(metricsHandler MetricsHandler, wizard CodeWizard, logger *logrus.Entry) *Router {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Router{
		metrics: metricsHandler,
		wizard:  wizard,
		logger:  logger,
	}
}

// Dispatch answers a single update. Only text messages produce replies.
func (r *Router) Dispatch(ctx context.Context, s sender, update *models.Update, updateRef string) {
	if update == nil || update.Message == nil {
		return
	}

	msg := update.Message
	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	logger := logging.Enrich(r.logger, logging.Context{
		UserID:    userID(msg.From),
		ChatID:    msg.Chat.ID,
		UpdateRef: updateRef,
	})

	reply := r.route(ctx, logger, msg)
	if reply.Empty() {
		return
	}

	if err := deliver(ctx, s, msg.Chat.ID, reply); err != nil {
		instrument.UpstreamFailures.WithLabelValues(instrument.ServiceTelegram).Inc()
		logger.WithField("event", "telegram_send_error").WithError(err).Error("failed to send reply")
	}
}

func (r *Router) route(ctx context.Context, logger *logrus.Entry, msg *models.Message) domain.Reply {
	chatID := msg.Chat.ID

	if name, args, ok := parseCommand(msg.Text); ok {
		if reply, handled := r.command(ctx, chatID, name, args); handled {
			instrument.CommandsHandled.WithLabelValues(name).Inc()
			logger.WithFields(logging.Fields{
				"event":   "command_handled",
				"command": name,
			}).Info("command handled")
			return reply
		}
		logger.WithFields(logging.Fields{
			"event":   "command_unknown",
			"command": name,
		}).Debug("unknown command")
		return domain.TextReply(greeting(msg.From))
	}

	if r.wizard != nil && r.wizard.Active(chatID) {
		return r.wizard.Handle(ctx, chatID, msg.Text)
	}

	return domain.TextReply(greeting(msg.From))
}

func (r *Router) command(ctx context.Context, chatID int64, name, args string) (domain.Reply, bool) {
	switch name {
	case commandStart:
		return domain.TextReply(replyStart), true
	case commandPing:
		return domain.TextReply(replyPong), true
	case commandGetNewCode:
		if r.wizard == nil {
			return domain.Reply{}, false
		}
		return r.wizard.Start(chatID), true
	}

	cmd, ok := metricsCommands[name]
	if !ok || r.metrics == nil {
		return domain.Reply{}, false
	}
	return r.metrics.Handle(ctx, cmd, args), true
}

// parseCommand splits "/name@BotName args" into its lowercase name and the
// trimmed argument string.
func parseCommand(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, args, _ := strings.Cut(text, " ")
	name, _, _ := strings.Cut(strings.TrimPrefix(head, "/"), "@")
	if name == "" {
		return "", "", false
	}

	return strings.ToLower(name), strings.TrimSpace(args), true
}

func greeting(from *models.User) string {
	name := "there"
	switch {
	case from == nil:
	case from.Username != "":
		name = "@" + from.Username
	case from.FirstName != "":
		name = from.FirstName
	}

	return strings.Join([]string{
		fmt.Sprintf("Hi %s!", name),
		"You can use these commands:",
		"- /metrics_text → readable mini report",
		"- /metrics_csv → CSV for Excel",
		"- /metrics_chart → daily chart",
		"- /doctor_activity → activity per doctor",
		"- /get_new_code → activation codes for a new doctor",
	}, "\n")
}

func deliver(ctx context.Context, s sender, chatID int64, reply domain.Reply) error {
	if reply.Attachment == nil {
		_, err := s.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   reply.Text,
		})
		return err
	}

	att := reply.Attachment
	file := &models.InputFileUpload{
		Filename: att.FileName,
		Data:     bytes.NewReader(att.Data),
	}

	if att.Kind == domain.AttachmentPhoto {
		_, err := s.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:  chatID,
			Photo:   file,
			Caption: att.Caption,
		})
		return err
	}

	_, err := s.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: file,
		Caption:  att.Caption,
	})
	return err
}
