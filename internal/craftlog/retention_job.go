package craftlog

import (
	"context"
)

// RetentionJob is the periodic sweep that purges craft attempts older
// than the retention window. It plugs into the maintenance scheduler.
type RetentionJob struct {
	svc           Service
	retentionDays int
}

// NewRetentionJob creates a retention sweep over the given service.
func NewRetentionJob(svc Service, retentionDays int) *RetentionJob {
	return &RetentionJob{svc: svc, retentionDays: retentionDays}
}

func (j *RetentionJob) Name() string {
	return "craft-log-retention"
}

func (j *RetentionJob) Run(ctx context.Context) error {
	_, err := j.svc.CleanupOldAttempts(ctx, j.retentionDays)
	return err
}
