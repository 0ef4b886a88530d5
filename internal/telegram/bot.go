package telegram

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Bot struct {
	api *tgbotapi.BotAPI
	h   *Handlers
	log *logrus.Logger
}

func NewBot(token, webhookURL string, analyzer Analyzer, log *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	// set webhook
	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	log.WithField("component", "telegram").Infof("webhook set to %s", webhookURL)

	return &Bot{api: api, h: NewHandlers(api, analyzer, log), log: log}, nil
}

// WebhookHandler decodes updates posted by Telegram (registered at /telegram/webhook).
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	handleUpdate(w, r, b.h, b.log)
}

func handleUpdate(w http.ResponseWriter, r *http.Request, h *Handlers, log *logrus.Logger) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	if update.Message == nil {
		log.WithField("component", "telegram").Debug("non-message update received")
		w.WriteHeader(http.StatusOK)
		return
	}
	log.WithFields(logrus.Fields{"component": "telegram", "chat_id": update.Message.Chat.ID}).
		Infof("webhook: text=%q", update.Message.Text)
	go h.HandleMessage(update.Message)
	w.WriteHeader(http.StatusOK)
}
