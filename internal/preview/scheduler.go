package preview

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// newPoller schedules fn every interval, for filesystems that do not deliver
// change notifications.
func newPoller(interval time.Duration, fn func()) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.RuntimeError("failed to create scheduler").WithCause(err).Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName("poll-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, errors.RuntimeError("failed to schedule periodic rebuild").WithCause(err).
			WithContext("interval", interval.String()).
			Build()
	}
	slog.Info("Periodic rebuild enabled", slog.Duration("interval", interval))
	return s, nil
}
