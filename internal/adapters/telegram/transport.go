// Package telegram adapts the Telegram Bot API to the notification and
// inbound action ports.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/example/mediminder/internal/ports/secondary"
)

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Telegram allows roughly 30 messages per second per bot.
const (
	DefaultSendRate  = 25
	DefaultSendBurst = 5
)

// Transport sends reminders and plain messages to recipients' chats.
type Transport struct {
	bot     botAPI
	limiter *rate.Limiter
}

// NewBotAPI connects to Telegram with the given token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return bot, nil
}

// NewTransport creates a transport over bot, allowing perSecond sends.
func NewTransport(bot botAPI, perSecond float64, burst int) *Transport {
	if perSecond <= 0 {
		perSecond = DefaultSendRate
	}
	if burst <= 0 {
		burst = DefaultSendBurst
	}
	return &Transport{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// SendReminder sends the reminder text with Taken and Snooze buttons.
func (t *Transport) SendReminder(ctx context.Context, msg secondary.ReminderMessage) error {
	chatID, err := parseChatID(msg.RecipientID)
	if err != nil {
		return err
	}
	out := tgbotapi.NewMessage(chatID, msg.Text)
	out.ReplyMarkup = reminderKeyboard(msg.InstanceID, msg.SnoozeMinutes)
	return t.send(ctx, out)
}

// SendText sends a plain message.
func (t *Transport) SendText(ctx context.Context, recipientID, text string) error {
	chatID, err := parseChatID(recipientID)
	if err != nil {
		return err
	}
	return t.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (t *Transport) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram send aborted: %w", err)
	}
	if _, err := t.bot.Send(c); err != nil {
		return classify(err)
	}
	return nil
}

func reminderKeyboard(instanceID string, snoozeMinutes int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Taken", callbackData("ack", instanceID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("⏰ Snooze %dmin", snoozeMinutes), callbackData("snooze", instanceID)),
		),
	)
}

func callbackData(action, instanceID string) string {
	return action + ":" + instanceID
}

// parseCallbackData splits "ack:<id>" / "snooze:<id>".
func parseCallbackData(data string) (action, instanceID string, err error) {
	action, instanceID, ok := strings.Cut(data, ":")
	if !ok || action == "" || instanceID == "" {
		return "", "", fmt.Errorf("malformed callback data %q", data)
	}
	return action, instanceID, nil
}

// parseChatID treats a malformed id as an unreachable recipient: no retry can fix it.
func parseChatID(recipientID string) (int64, error) {
	id, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid chat id %q", secondary.ErrRecipientUnreachable, recipientID)
	}
	return id, nil
}

var unreachableMarkers = []string{
	"chat not found",
	"bot was blocked by the user",
	"user is deactivated",
	"bot was kicked",
	"bot can't initiate conversation",
}

// classify maps Bot API failures onto the transport error contract.
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 403 || hasUnreachableMarker(apiErr.Message) {
			return fmt.Errorf("%w: %s", secondary.ErrRecipientUnreachable, apiErr.Message)
		}
	}
	return fmt.Errorf("telegram send failed: %w", err)
}

func hasUnreachableMarker(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range unreachableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

var _ secondary.NotificationTransport = (*Transport)(nil)
