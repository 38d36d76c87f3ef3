package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"placeminder/internal/model"
	"placeminder/internal/service"
)

const (
	cbDonePrefix   = "done:"
	cbDeletePrefix = "delete:"
)

const (
	menuLabelLocation   = "📍 What's nearby"
	menuLabelReminders  = "📋 Reminders"
	menuLabelCategories = "📂 Categories"
	menuLabelHelp       = "ℹ️ Help"
)

// Services groups what the bot needs from the service layer.
type Services struct {
	Users         *service.UserService
	Categories    *service.CategoryService
	Reminders     *service.ReminderService
	Nearby        *service.NearbyService
	Notifications *service.NotificationService
}

// Bot exposes reminders and nearby matching over Telegram. Every chat acts
// on behalf of the configured user.
type Bot struct {
	api      *tgbotapi.BotAPI
	svc      Services
	username string
}

func New(token, username string, svc Services) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		svc:      svc,
		username: username,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("[error] handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("[error] handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.Location != nil {
		log.Printf("[info] location from %d: %.6f,%.6f", msg.From.ID, msg.Location.Latitude, msg.Location.Longitude)
		return b.handleLocation(ctx, msg)
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Share your location to see nearby matches, or send /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "reminders":
		return b.handleReminders(ctx, msg.Chat.ID)
	case "categories":
		return b.handleCategories(ctx, msg.Chat.ID)
	case "add":
		return b.handleAdd(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "radius":
		return b.handleRadius(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. Send /help for the list.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.currentUser(ctx)
	if err != nil {
		return b.reportError(msg.Chat.ID, err)
	}
	text := fmt.Sprintf("👋 Hi! I remind you of errands when you are near a matching place.\n"+
		"Search radius: <b>%d m</b>.\n\n%s", user.SearchRadius, helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReminders(ctx context.Context, chatID int64) error {
	user, err := b.currentUser(ctx)
	if err != nil {
		return b.reportError(chatID, err)
	}
	reminders, err := b.svc.Reminders.List(ctx, user.ID)
	if err != nil {
		return b.reportError(chatID, err)
	}
	if len(reminders) == 0 {
		return b.sendText(chatID, "No reminders yet. Add one with /add &lt;category&gt; &lt;title&gt;.")
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, r := range reminders {
		if r.Completed {
			continue
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d · %s", r.ID, shortTitle(r.Title, 24)), fmt.Sprintf("%s%d", cbDonePrefix, r.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("%s%d", cbDeletePrefix, r.ID)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, formatReminderList(reminders))
	msg.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		return b.reportError(chatID, err)
	}
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories are configured.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s <i>(%s)</i>\n", escape(cat.Name), escape(cat.ExternalTag)))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	categoryName, title, ok := splitAddArgs(msg.CommandArguments(), b.categoryNames(ctx))
	if !ok {
		return b.sendText(msg.Chat.ID, "Usage: /add &lt;category&gt; &lt;title&gt;, e.g. /add Grocery Buy milk")
	}

	user, err := b.currentUser(ctx)
	if err != nil {
		return b.reportError(msg.Chat.ID, err)
	}
	category, err := b.svc.Categories.FindByName(ctx, categoryName)
	if err != nil {
		return b.reportError(msg.Chat.ID, err)
	}
	reminder, err := b.svc.Reminders.Create(ctx, user.ID, service.ReminderInput{
		Title:      title,
		CategoryID: category.ID,
	})
	if err != nil {
		return b.reportError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Added #%d %s to %s.", reminder.ID, escape(reminder.Title), escape(category.Name)))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /done &lt;id&gt;")
	}
	return b.completeReminder(ctx, msg.Chat.ID, id)
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /delete &lt;id&gt;")
	}
	return b.deleteReminder(ctx, msg.Chat.ID, id)
}

func (b *Bot) handleRadius(ctx context.Context, msg *tgbotapi.Message) error {
	radius, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /radius &lt;meters&gt;")
	}
	user, err := b.currentUser(ctx)
	if err != nil {
		return b.reportError(msg.Chat.ID, err)
	}
	updated, err := b.svc.Users.UpdateSettings(ctx, user.ID, service.SettingsPatch{SearchRadius: &radius})
	if err != nil {
		return b.reportError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📏 Search radius set to <b>%d m</b>.", updated.SearchRadius))
}

func (b *Bot) handleLocation(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.currentUser(ctx)
	if err != nil {
		return b.reportError(msg.Chat.ID, err)
	}
	res, err := b.svc.Nearby.Resolve(ctx, user, msg.Location.Latitude, msg.Location.Longitude)
	if err != nil {
		return b.reportError(msg.Chat.ID, err)
	}

	matches := nearestPerReminder(res)
	if len(matches) == 0 {
		return b.sendText(msg.Chat.ID, "Nothing on your list is nearby right now.")
	}

	for _, m := range matches {
		if _, err := b.svc.Notifications.Record(ctx, user.ID, m.Reminder.ID, m.Venue.ID); err != nil {
			log.Printf("[warn] record notification reminder=%d place=%d: %v", m.Reminder.ID, m.Venue.ID, err)
		}
	}
	return b.sendText(msg.Chat.ID, formatMatches(matches))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("[warn] callback ack: %v", err)
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		log.Printf("[info] callback done user=%d reminder=%s", cb.From.ID, strings.TrimPrefix(data, cbDonePrefix))
		id, err := parseID(strings.TrimPrefix(data, cbDonePrefix))
		if err != nil {
			return nil
		}
		return b.completeReminder(ctx, cb.Message.Chat.ID, id)
	case strings.HasPrefix(data, cbDeletePrefix):
		log.Printf("[info] callback delete user=%d reminder=%s", cb.From.ID, strings.TrimPrefix(data, cbDeletePrefix))
		id, err := parseID(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return nil
		}
		return b.deleteReminder(ctx, cb.Message.Chat.ID, id)
	default:
		return nil
	}
}

func (b *Bot) completeReminder(ctx context.Context, chatID int64, id uint) error {
	user, err := b.currentUser(ctx)
	if err != nil {
		return b.reportError(chatID, err)
	}
	done := true
	reminder, err := b.svc.Reminders.Update(ctx, user.ID, id, service.ReminderPatch{Completed: &done})
	if err != nil {
		return b.reportError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🎉 Done: #%d %s", reminder.ID, escape(reminder.Title)))
}

func (b *Bot) deleteReminder(ctx context.Context, chatID int64, id uint) error {
	user, err := b.currentUser(ctx)
	if err != nil {
		return b.reportError(chatID, err)
	}
	if err := b.svc.Reminders.Delete(ctx, user.ID, id); err != nil {
		return b.reportError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Reminder #%d deleted.", id))
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelReminders:
		return true, b.handleReminders(ctx, msg.Chat.ID)
	case menuLabelCategories:
		return true, b.handleCategories(ctx, msg.Chat.ID)
	case menuLabelHelp:
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func (b *Bot) currentUser(ctx context.Context) (*model.User, error) {
	return b.svc.Users.ByUsername(ctx, b.username)
}

func (b *Bot) categoryNames(ctx context.Context) []string {
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		log.Printf("[warn] list categories: %v", err)
		return nil
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

// reportError shows user-facing errors and hides internal ones.
func (b *Bot) reportError(chatID int64, err error) error {
	if service.IsValidation(err) || service.IsNotFound(err) {
		return b.sendText(chatID, "⚠️ "+escape(err.Error()))
	}
	log.Printf("[error] chat %d: %v", chatID, err)
	return b.sendText(chatID, "⚠️ Something went wrong, try again later.")
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation(menuLabelLocation),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelReminders),
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}
