package main

import (
	"context"
	"net/http"
	"net/url"

	"github.com/carlmjohnson/requests"
)

const telegramBaseURL = "https://api.telegram.org/bot"

func (tg *configTelegram) enabled() bool {
	if tg == nil || !tg.Enabled || tg.BotToken == "" || tg.ChatID == "" {
		return false
	}
	return true
}

func (a *autoPost) sendTelegram(tg *configTelegram, text string) error {
	if !tg.enabled() {
		return nil
	}
	return requests.
		URL(telegramBaseURL + tg.BotToken + "/sendMessage").
		Client(a.httpClient).
		Method(http.MethodPost).
		BodyForm(url.Values{
			"chat_id": []string{tg.ChatID},
			"text":    []string{text},
		}).
		Fetch(context.Background())
}
