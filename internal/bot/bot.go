package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/dto"
	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Bot — тонкий чатовый фасад над ядром: разбирает команды, зовёт сервисы и
// рисует ответы. Никакой бизнес-логики баллов здесь нет.

type Registrar interface {
	RegisterOrLookup(ctx context.Context, userID int64, username string, referrerID *int64, photoURL string) (models.User, error)
	SetReferralLink(ctx context.Context, userID int64, link string) (models.User, error)
}

type Balances interface {
	GetBalance(ctx context.Context, userID int64) (int, error)
}

type Historian interface {
	GetHistory(ctx context.Context, userID int64) ([]dto.EnrichedEntry, error)
}

type Bot struct {
	log              *slog.Logger
	instance         *telego.Bot
	registrar        Registrar
	balances         Balances
	historian        Historian
	referralLinkBase string
	handler          *th.BotHandler
}

func NewBot(log *slog.Logger, token string, registrar Registrar, balances Balances,
	historian Historian, referralLinkBase string) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		log:              log,
		instance:         tgBot,
		registrar:        registrar,
		balances:         balances,
		historian:        historian,
		referralLinkBase: referralLinkBase,
	}, nil
}

// Start блокируется до остановки обработчика.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create bot handler: %w", err)
	}
	b.handler = handler

	handler.Handle(b.handleStart, th.CommandEqual("start"))
	handler.Handle(b.showUserProfile, th.CallbackDataEqual("user"))
	handler.Handle(b.showReferralLink, th.CallbackDataEqual("referal"))
	handler.Handle(b.showHistory, th.CallbackDataEqual("history"))

	return handler.Start()
}

func (b *Bot) Stop() {
	if b.handler != nil {
		_ = b.handler.Stop()
	}
}

// handleStart регистрирует пользователя (или возвращает профиль) и показывает
// меню. Реферальный id приходит аргументом диплинка: /start {referrer_id}.
func (b *Bot) handleStart(ctx *th.Context, update telego.Update) error {
	message := update.Message
	userID := message.From.ID

	var referrerID *int64
	if parts := strings.Split(message.Text, " "); len(parts) > 1 {
		if parsed, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			referrerID = &parsed
		}
	}

	username := message.From.Username
	if username == "" {
		username = message.From.FirstName
	}

	if _, err := b.registrar.RegisterOrLookup(ctx.Context(), userID, username, referrerID, ""); err != nil {
		b.log.Error("failed to register user", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID),
			"❌ Что-то пошло не так, попробуй ещё раз позже."))
		return nil
	}

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("👤 Профиль").WithCallbackData("user"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🔗 Реферальная ссылка").WithCallbackData("referal"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📜 История баллов").WithCallbackData("history"),
		),
	)

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		"👋 Привет!\n\n"+
			"Тебя приветствует бот магазина SuperShop 🎁\n\n"+
			"Здесь ты можешь:\n"+
			"💰 Посмотреть, сколько бонусных баллов ты уже накопил\n"+
			"🤝 Создать собственную реферальную ссылку и поделиться ею с друзьями\n\n"+
			"Вместе копить баллы веселее и выгоднее! 🚀",
	).WithReplyMarkup(keyboard))

	return nil
}

func (b *Bot) showUserProfile(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	userID := callback.From.ID

	username := callback.From.FirstName
	if username == "" {
		username = "Пользователь"
	}

	balance, err := b.balances.GetBalance(ctx.Context(), userID)
	if err != nil {
		b.log.Error("failed to get balance", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(userID),
			"❌ Не получилось узнать баланс, попробуй позже."))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
		return nil
	}

	text := fmt.Sprintf(
		"👤 <b>Профиль пользователя</b>\n\n"+
			"Имя: %s\n"+
			"ID: <code>%d</code>\n"+
			"💎 Баллы: <b>%d</b>\n\n"+
			"Продолжай приглашать друзей и делай покупки, чтобы увеличивать свой баланс! 🚀",
		username, userID, balance,
	)

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(userID), text).WithParseMode(telego.ModeHTML))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))

	return nil
}

func (b *Bot) showReferralLink(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	userID := callback.From.ID

	link := b.referralLinkBase + url.QueryEscape(strconv.FormatInt(userID, 10))

	user, err := b.registrar.SetReferralLink(ctx.Context(), userID, link)
	if err != nil {
		b.log.Error("failed to save referral link", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(userID),
			"❌ Не получилось создать ссылку, попробуй позже."))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
		return nil
	}

	text := "🔗 <b>Твоя реферальная ссылка</b>\n\n" +
		"Отправь её друзьям — и получай бонусы, когда они присоединятся и будут делать покупки!\n\n" +
		"👉 " + user.ReferralLink

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(userID), text).WithParseMode(telego.ModeHTML))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))

	return nil
}

func (b *Bot) showHistory(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	userID := callback.From.ID

	entries, err := b.historian.GetHistory(ctx.Context(), userID)
	if err != nil {
		b.log.Error("failed to get history", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(userID),
			"❌ Не получилось загрузить историю, попробуй позже."))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(userID), formatHistory(entries)))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))

	return nil
}

func formatHistory(entries []dto.EnrichedEntry) string {
	if len(entries) == 0 {
		return "📜 История пока пуста. Пригласи друга или сделай покупку!"
	}

	var sb strings.Builder
	sb.WriteString("📜 История баллов:\n\n")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("%+d — %s", entry.Count, entry.ForThis))
		if entry.Username != nil {
			sb.WriteString(" (" + *entry.Username + ")")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
