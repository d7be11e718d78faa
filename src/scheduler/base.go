package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
)

type ScheduledTask struct {
	cronID cron.EntryID
	cron   *cron.Cron
}

// NewScheduledTask runs taskFunc on cronSpec. A run is skipped while the
// previous one is still going.
func NewScheduledTask(cronSpec string, taskFunc func()) (*ScheduledTask, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	id, err := c.AddFunc(cronSpec, taskFunc)
	if err != nil {
		return nil, err
	}

	c.Start()
	return &ScheduledTask{cron: c, cronID: id}, nil
}

// Cancel stops the schedule. The returned context is done once a running
// task has returned.
func (s *ScheduledTask) Cancel() context.Context {
	s.cron.Remove(s.cronID)
	return s.cron.Stop()
}
