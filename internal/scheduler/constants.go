package scheduler

// Log messages for scheduled job execution
const (
	LogMsgJobFailed    = "Scheduled job failed"
	LogMsgJobCompleted = "Scheduled job completed"
)
