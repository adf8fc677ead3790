package config

// Config is the full bot configuration.
//
// Files may be JSON or YAML; both are decoded strictly (unknown keys are
// rejected so typos surface at load time). All durations are Go duration
// strings (e.g. "500ms", "10s", "1m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`

	// Storage is the per-user document store (schedules, reminders, todos).
	// If omitted, the bot runs stateless: uploads still extract, but nothing
	// survives a restart and the dispatcher has nothing to poll.
	Storage *StorageConfig `json:"storage,omitempty"`

	// Notifier controls the async outbound pipeline. If the whole section is
	// omitted, the notifier defaults to enabled with conservative settings.
	Notifier *NotifierConfig `json:"notifier,omitempty"`

	// Dispatch controls the minute-tick reminder dispatcher.
	Dispatch DispatchConfig `json:"dispatch"`

	// Ingest controls timetable text extraction (OCR endpoint, size caps).
	Ingest IngestConfig `json:"ingest"`

	Pprof PprofConfig `json:"pprof,omitempty"`
}

type TelegramConfig struct {
	Token        string  `json:"token"`
	OwnerUserIDs []int64 `json:"owner_user_ids"`
	GroupLog     string  `json:"group_log"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ThreadID   int    `json:"thread_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// StorageConfig selects the persistence driver.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./data/studybot.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

// NotifierConfig controls the async notification pipeline.
type NotifierConfig struct {
	Enabled         bool   `json:"enabled"`
	Workers         int    `json:"workers"`
	QueueSize       int    `json:"queue_size"`
	RatePerSec      int    `json:"rate_per_sec"`
	RetryMax        int    `json:"retry_max"`
	RetryBase       string `json:"retry_base"`
	RetryMaxDelay   string `json:"retry_max_delay"`
	DedupWindow     string `json:"dedup_window"`
	DedupMaxEntries int    `json:"dedup_max_entries"`
	PersistDedup    bool   `json:"persist_dedup,omitempty"`
}

// DispatchConfig controls the class-alert / reminder dispatcher.
//
// LeadMinutes is how long before a class start the alert fires; 0 or
// omitted means the default of 5.
// The tick period itself is fixed at one minute; firing is edge-triggered,
// so a process that is down during the exact minute misses that alert.
type DispatchConfig struct {
	Enabled     bool   `json:"enabled"`
	LeadMinutes int    `json:"lead_minutes,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// IngestConfig controls timetable text extraction.
//
// OCR runs against an external HTTP service (any endpoint accepting a
// multipart image upload and answering {"text": "..."}); PDFs are parsed
// in-process.
type IngestConfig struct {
	OCREndpoint string `json:"ocr_endpoint,omitempty"`
	OCRAPIKey   string `json:"ocr_api_key,omitempty"`
	OCRLanguage string `json:"ocr_language,omitempty"`
	MaxFileMB   int    `json:"max_file_mb,omitempty"` // default 10
	Timeout     string `json:"timeout,omitempty"`     // per-extraction budget, default 30s
}

// PprofConfig controls the optional pprof HTTP server.
//
// Prefer binding to localhost. If you bind to a non-loopback address,
// set a token or explicitly allow_insecure.
type PprofConfig struct {
	Enabled       bool   `json:"enabled"`
	Addr          string `json:"addr,omitempty"`  // default: "127.0.0.1:6060"
	Token         string `json:"token,omitempty"` // optional bearer token (do not log)
	AllowInsecure bool   `json:"allow_insecure,omitempty"`
}
