package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"uct-dashboard/backend-go/internal/logger"
)

// Warmer periodically rebuilds the short-lived live views so requests rarely
// wait on the quote providers.
type Warmer struct {
	scheduler *gocron.Scheduler
	snapshot  *SnapshotService
	movers    *MoversService
	timeout   time.Duration
	log       *logrus.Entry
}

func NewWarmer(snapshot *SnapshotService, movers *MoversService, timeout time.Duration, log *logger.Log) *Warmer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		snapshot:  snapshot,
		movers:    movers,
		timeout:   timeout,
		log:       log.WithComponent("warmer"),
	}
}

// Start schedules a warm every interval, beginning immediately.
func (w *Warmer) Start(interval time.Duration) error {
	secs := int(interval / time.Second)
	if secs < 1 {
		secs = 1
	}
	if _, err := w.scheduler.Every(secs).Seconds().SingletonMode().Do(w.Warm); err != nil {
		return err
	}
	w.scheduler.StartAsync()
	w.log.WithField("interval_s", secs).Info("cache warmer started")
	return nil
}

func (w *Warmer) Stop() {
	w.scheduler.Stop()
}

func (w *Warmer) Warm() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if w.snapshot != nil {
		if _, err := w.snapshot.Refresh(ctx); err != nil {
			w.log.WithError(err).Warn("snapshot warm failed")
		}
	}
	if w.movers != nil {
		w.movers.Refresh(ctx)
	}
}
