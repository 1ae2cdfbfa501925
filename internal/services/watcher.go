package services

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/upwork-hunter/internal/events"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Watcher runs the ingestion pipeline on a schedule and publishes an
// IngestCompleted event after each successful pass. Downstream consumers
// (outreach chaining, notifications) subscribe on the bus; the hand-off
// between the pipelines stays the jobs file itself, the event only carries
// its path.
type Watcher struct {
	bus       EventBus.Bus
	ingestion *IngestionService
	cron      *cron.Cron
	request   IngestionRequest
}

func NewWatcher(bus EventBus.Bus, ingestion *IngestionService,
	request IngestionRequest, schedule string) (*Watcher, error) {

	w := &Watcher{
		bus:       bus,
		ingestion: ingestion,
		cron:      cron.New(),
		request:   request,
	}

	_, err := w.cron.AddFunc(schedule, w.runOnce)
	if err != nil {
		return nil, err
	}

	w.cron.Start()
	log.Infof("watcher started with schedule %q", schedule)

	go w.runOnce()
	return w, nil
}

func (w *Watcher) Stop() {
	w.cron.Stop()
}

func (w *Watcher) runOnce() {

	result, err := w.ingestion.Run(context.Background(), w.request)
	if err != nil {
		// ingestion already logged the typed error, next tick retries
		return
	}

	w.bus.Publish(events.IngestCompletedTopic, events.IngestCompleted{
		Path:     w.request.OutputPath,
		Fetched:  result.Fetched,
		Admitted: result.Admitted,
	})
}
