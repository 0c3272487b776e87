package main

import tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	actionStart   = "start"
	actionWeather = "weather"
	actionChart   = "chart"
)

const menuPrompt = "Выберите действие:"

func menuKeyboard() tgbot.InlineKeyboardMarkup {
	return tgbot.NewInlineKeyboardMarkup(
		tgbot.NewInlineKeyboardRow(
			tgbot.NewInlineKeyboardButtonData("🌤 Прогноз", actionWeather),
			tgbot.NewInlineKeyboardButtonData("📈 График", actionChart),
		),
	)
}
