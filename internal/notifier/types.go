package notifier

import "time"

// Config controls the async outbound pipeline.
type Config struct {
	Enabled         bool
	Workers         int
	QueueSize       int
	RatePerSec      int
	RetryMax        int
	RetryBase       time.Duration
	RetryMaxDelay   time.Duration
	DedupWindow     time.Duration
	DedupMaxEntries int
	PersistDedup    bool
}

// HistoryItem is one recently sent message, kept for /status.
type HistoryItem struct {
	At   time.Time
	Text string
}

// DeliveryEvent is published on the event bus for pipeline lifecycle
// ("notifier.queued", "notifier.sent", "notifier.deduped",
// "notifier.dropped", "notifier.failed").
type DeliveryEvent struct {
	ChatID int64     `json:"chat_id"`
	Key    string    `json:"key"`
	At     time.Time `json:"at"`
	Error  string    `json:"error,omitempty"`
}
