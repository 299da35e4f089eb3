package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/mediminder/internal/ctxutil"
	"github.com/example/mediminder/internal/ports/primary"
)

const helpText = `Here's what I can do:
/addmed name | dosage | times - add a medication, e.g. /addmed Aspirin | 1 tablet | 08:00, 20:00
/mylist - show your active medications
/setphone +1234567890 - set the number used for call escalations
/help - show this message

When a reminder arrives, tap ✅ Taken or ⏰ Snooze.`

const addMedUsage = "Usage: /addmed name | dosage | times\nFor example: /addmed Aspirin | 1 tablet | 08:00, 20:00"

// Bot receives updates from Telegram and drives the primary ports.
type Bot struct {
	bot        botAPI
	replies    *Transport
	responses  primary.ResponseService
	schedules  primary.ScheduleService
	recipients primary.RecipientService
	loc        *time.Location
	logger     *slog.Logger
}

func NewBot(
	bot botAPI,
	replies *Transport,
	responses primary.ResponseService,
	schedules primary.ScheduleService,
	recipients primary.RecipientService,
	loc *time.Location,
	logger *slog.Logger,
) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		bot:        bot,
		replies:    replies,
		responses:  responses,
		schedules:  schedules,
		recipients: recipients,
		loc:        loc,
		logger:     logger,
	}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)
	b.logger.Info("telegram bot receiving updates")

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update. Errors are reported to the user and logged.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	log := b.logger.With("callback_data", q.Data)

	action, instanceID, err := parseCallbackData(q.Data)
	if err != nil {
		log.Warn("ignoring callback", "error", err)
		b.answer(q.ID, "Unknown action.")
		return
	}

	if q.From != nil {
		ctx = ctxutil.WithActor(ctx, "telegram:"+strconv.FormatInt(q.From.ID, 10))
	}
	res, err := b.responses.HandleAction(ctx, instanceID, action)
	var notice string
	switch {
	case errors.Is(err, primary.ErrInstanceNotFound):
		notice = "🚫 Reminder not found."
	case err != nil:
		log.Error("failed to handle reminder action", "instance_id", instanceID, "error", err)
		b.answer(q.ID, "Something went wrong, please try again.")
		return
	default:
		notice = actionNotice(res, b.loc)
	}

	b.answer(q.ID, notice)
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, q.Message.Text+"\n\n"+notice)
	if _, err := b.bot.Request(edit); err != nil {
		log.Warn("failed to edit reminder message", "error", err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}
}

func actionNotice(res *primary.ActionResult, loc *time.Location) string {
	switch res.Outcome {
	case primary.OutcomeMaxSnoozesReached:
		return "🚫 Max snoozes reached. This dose is marked as missed."
	case primary.OutcomeAlreadyResolved:
		return "ℹ️ This reminder was already handled."
	}
	if res.Action == "snooze" {
		return fmt.Sprintf("⏰ Snoozed for %d minutes.", res.SnoozeMinutes)
	}
	return fmt.Sprintf("✅ Marked as Taken at %s.", res.At.In(loc).Format("15:04"))
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	recipientID := strconv.FormatInt(msg.Chat.ID, 10)
	if msg.From != nil {
		recipientID = strconv.FormatInt(msg.From.ID, 10)
	}
	log := b.logger.With("recipient_id", recipientID)

	var reply string
	if !msg.IsCommand() {
		reply = "Sorry, I didn't understand that. Type /help to see what I can do."
	} else {
		var err error
		reply, err = b.command(ctx, recipientID, msg)
		if err != nil {
			log.Error("command failed", "command", msg.Command(), "error", err)
			reply = "Sorry, something went wrong. Please try again."
		}
	}

	if err := b.replies.SendText(ctx, strconv.FormatInt(msg.Chat.ID, 10), reply); err != nil {
		log.Warn("failed to send reply", "error", err)
	}
}

// command returns the reply for a slash command. A returned error means a
// storage failure; validation problems are rendered into the reply.
func (b *Bot) command(ctx context.Context, recipientID string, msg *tgbotapi.Message) (string, error) {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		if err := b.recipients.Register(ctx, recipientID); err != nil {
			return "", err
		}
		name := "there"
		if msg.From != nil && msg.From.FirstName != "" {
			name = msg.From.FirstName
		}
		return fmt.Sprintf("Hi %s! I'm MediMinder Bot.\n\n%s", name, helpText), nil

	case "setphone":
		if args == "" {
			return "Please send your phone number (e.g. /setphone +1234567890) for call reminders.", nil
		}
		err := b.recipients.SetPhone(ctx, recipientID, args)
		if errors.Is(err, primary.ErrInvalidPhone) {
			return "That doesn't look like a valid phone number. Please try again, e.g. /setphone +1234567890.", nil
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Phone number %s saved for call escalations. You can change it anytime with /setphone.", args), nil

	case "addmed":
		req, ok := parseAddMed(recipientID, args)
		if !ok {
			return addMedUsage, nil
		}
		sched, err := b.schedules.AddSchedule(ctx, req)
		if err != nil {
			return "Hmm, that doesn't look right: " + err.Error(), nil
		}
		return fmt.Sprintf("Reminder for %s saved successfully! 👍\nI'll remind you at %s.",
			sched.Name, strings.Join(sched.TimesOfDay, ", ")), nil

	case "mylist":
		scheds, err := b.schedules.ListSchedules(ctx, recipientID)
		if err != nil {
			return "", err
		}
		return formatSchedules(scheds), nil

	case "help":
		return helpText, nil
	}
	return "Sorry, I don't know that command. Type /help to see what I can do.", nil
}

// parseAddMed reads "name | dosage | 08:00, 20:00".
func parseAddMed(recipientID, args string) (primary.AddScheduleRequest, bool) {
	parts := strings.Split(args, "|")
	if len(parts) != 3 {
		return primary.AddScheduleRequest{}, false
	}
	return primary.AddScheduleRequest{
		RecipientID: recipientID,
		Name:        strings.TrimSpace(parts[0]),
		Dosage:      strings.TrimSpace(parts[1]),
		TimesOfDay:  strings.TrimSpace(parts[2]),
	}, true
}

func formatSchedules(scheds []*primary.Schedule) string {
	if len(scheds) == 0 {
		return "You don't have any active medications scheduled yet. Use /addmed to add some!"
	}
	var sb strings.Builder
	sb.WriteString("Here are your active medications:\n")
	for _, s := range scheds {
		fmt.Fprintf(&sb, "\n💊 %s (%s)\n   Scheduled for: %s\n", s.Name, s.Dosage, strings.Join(s.TimesOfDay, ", "))
	}
	return sb.String()
}
