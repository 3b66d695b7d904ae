package notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/speechlab/dubkit/internal/config"
	"github.com/speechlab/dubkit/internal/dubbing"
)

type Infra struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewInfra(cfg config.Telegram) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Infra{bot: bot, chatID: cfg.ChatID}, nil
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf("❗ Dubbing error\n\nError: %v\n\nDetails: %s", err, details)

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.chatID, text)); sendErr != nil {
		log.Printf("[notificator] send fail: %v", sendErr)
		return sendErr
	}
	return nil
}

func (i *Infra) JobDone(ctx context.Context, projectID string, status dubbing.JobStatus) error {
	icon := "✅"
	if status.Status == dubbing.StatusFailed {
		icon = "❌"
	}

	text := fmt.Sprintf("%s Dubbing job %s finished\n\nStatus: %s\nProgress: %d%%",
		icon, projectID, status.Status, status.Progress)
	if status.Detail != "" {
		text += "\nDetail: " + status.Detail
	}

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.chatID, text)); sendErr != nil {
		log.Printf("[notificator] send fail: %v", sendErr)
		return sendErr
	}
	return nil
}
