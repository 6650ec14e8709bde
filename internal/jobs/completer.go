// Package jobs holds the background housekeeping tasks that run on a
// cron schedule alongside the HTTP server.
package jobs

import (
	"context"
	"time"

	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Completer sweeps approved appointments whose scheduled time has passed
// and marks them completed. Booking never produces the completed status;
// this job is its only writer.
type Completer struct {
	repo     appointment.Repository
	location *time.Location
	log      *zap.Logger
	cron     *cron.Cron
}

func NewCompleter(repo appointment.Repository, location *time.Location, log *zap.Logger) *Completer {
	return &Completer{
		repo:     repo,
		location: location,
		log:      log.Named("completer"),
		cron:     cron.New(cron.WithLocation(location)),
	}
}

// Start schedules the hourly sweep and runs one immediately so a restart
// does not leave stale approved appointments until the next tick.
func (j *Completer) Start() error {
	if _, err := j.cron.AddFunc("@hourly", j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	go j.sweep()
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (j *Completer) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Completer) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().In(j.location)
	updated, err := j.repo.MarkCompletedBefore(ctx, now)
	if err != nil {
		j.log.Error("completion sweep failed", zap.Error(err))
		return
	}
	if updated > 0 {
		j.log.Info("appointments marked completed",
			zap.Int64("count", updated),
			zap.Time("cutoff", now),
		)
	}
}
