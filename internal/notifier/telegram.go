package notifier

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/upwork-hunter/internal/events"
	"github.com/maxaizer/upwork-hunter/internal/logger"
	log "github.com/sirupsen/logrus"
)

// Telegram pushes a one-line summary to a chat after each scheduled ingestion
// pass. It only consumes bus events and never reads the jobs file.
type Telegram struct {
	api    *botApi.BotAPI
	bus    EventBus.Bus
	chatID int64
}

func NewTelegram(token string, chatID int64, bus EventBus.Bus) (*Telegram, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("authorized on account %s", api.Self.UserName)

	n := &Telegram{api: api, bus: bus, chatID: chatID}
	if err = bus.Subscribe(events.IngestCompletedTopic, n.onIngestCompleted); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Telegram) Close() {
	n.bus.Unsubscribe(events.IngestCompletedTopic, n.onIngestCompleted)
}

func (n *Telegram) onIngestCompleted(event events.IngestCompleted) {
	msg := botApi.NewMessage(n.chatID,
		fmt.Sprintf("Ingestion finished: %v fetched, %v admitted, saved to %v",
			event.Fetched, event.Admitted, event.Path))
	if _, err := n.api.Send(msg); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("error occured while sending message: %v", err)
	}
}
