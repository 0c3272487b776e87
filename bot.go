package main

import (
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// botAPI is the subset of *tgbot.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
	Request(c tgbot.Chattable) (*tgbot.APIResponse, error)
	GetUpdatesChan(config tgbot.UpdateConfig) tgbot.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api botAPI
	log *logrus.Entry
}

// NewBot authorizes against Telegram. The token is checked before any network call.
func NewBot(cfg Config, log *logrus.Entry) (*Bot, error) {
	if cfg.TelegramToken == "" {
		return nil, ErrMissingToken
	}
	api, err := tgbot.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("new bot api: %w", err)
	}
	api.Debug = cfg.Debug
	log.WithField("username", api.Self.UserName).Info("authorized")
	return &Bot{api: api, log: log}, nil
}

func (b *Bot) Send(msg tgbot.Chattable) error {
	_, err := b.api.Send(msg)
	if err != nil {
		b.log.WithError(err).Warn("send error")
	}
	return err
}

func (b *Bot) request(c tgbot.Chattable) error {
	_, err := b.api.Request(c)
	if err != nil {
		b.log.WithError(err).Warn("request error")
	}
	return err
}

func (b *Bot) SendText(chatID int64, text string) error {
	return b.Send(tgbot.NewMessage(chatID, text))
}

func (b *Bot) SendWithKeyboard(chatID int64, text string, kb tgbot.InlineKeyboardMarkup) error {
	msg := tgbot.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	return b.Send(msg)
}

func (b *Bot) SendPNG(chatID int64, img []byte, caption string) error {
	photo := tgbot.NewPhoto(chatID, tgbot.FileBytes{Name: "forecast.png", Bytes: img})
	photo.Caption = caption
	return b.Send(photo)
}

// SendChatAction shows a transient indicator such as tgbot.ChatTyping.
func (b *Bot) SendChatAction(chatID int64, action string) error {
	return b.request(tgbot.NewChatAction(chatID, action))
}

// AnswerCallback stops the loading spinner on the pressed button.
func (b *Bot) AnswerCallback(queryID string) error {
	return b.request(tgbot.NewCallback(queryID, ""))
}

func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbot.NewWebhook(url)
	if err != nil {
		return err
	}
	_, err = b.api.Request(wh)
	return err
}

func (b *Bot) DeleteWebhook() error {
	_, err := b.api.Request(tgbot.DeleteWebhookConfig{})
	return err
}

// Updates starts long polling.
func (b *Bot) Updates() tgbot.UpdatesChannel {
	u := tgbot.NewUpdate(0)
	u.Timeout = 60
	return b.api.GetUpdatesChan(u)
}

func (b *Bot) Shutdown() {
	b.api.StopReceivingUpdates()
}
