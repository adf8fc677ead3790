package app

import (
	"fmt"
	"strings"
	"time"

	"studybot/internal/ingest"
	"studybot/internal/notifier"
	"studybot/internal/observability/pprof"
	"studybot/internal/reminder"
	"studybot/internal/storage"
)

func mapStorageConfig(cfg *Config) (storage.Config, bool, error) {
	if cfg == nil || cfg.Storage == nil {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}
	path := strings.TrimSpace(sc.Path)

	switch driver {
	case "file":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=file")
		}
		return storage.Config{Driver: "file", Path: path}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy, err := parseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, false, err
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", sc.Driver)
	}
}

// mapNotifierConfig translates config into the pipeline's settings.
// An omitted section means "enabled with service defaults".
func mapNotifierConfig(cfg *Config) (notifier.Config, error) {
	if cfg == nil || cfg.Notifier == nil {
		return notifier.Config{Enabled: true}, nil
	}
	nc := cfg.Notifier

	retryBase, err := parseDurationOrDefault("notifier.retry_base", nc.RetryBase, 0)
	if err != nil {
		return notifier.Config{}, err
	}
	retryMaxDelay, err := parseDurationOrDefault("notifier.retry_max_delay", nc.RetryMaxDelay, 0)
	if err != nil {
		return notifier.Config{}, err
	}
	dedupWindow, err := parseDurationOrDefault("notifier.dedup_window", nc.DedupWindow, 0)
	if err != nil {
		return notifier.Config{}, err
	}

	return notifier.Config{
		Enabled:         nc.Enabled,
		Workers:         nc.Workers,
		QueueSize:       nc.QueueSize,
		RatePerSec:      nc.RatePerSec,
		RetryMax:        nc.RetryMax,
		RetryBase:       retryBase,
		RetryMaxDelay:   retryMaxDelay,
		DedupWindow:     dedupWindow,
		DedupMaxEntries: nc.DedupMaxEntries,
		PersistDedup:    nc.PersistDedup,
	}, nil
}

func mapDispatchConfig(cfg *Config) (reminder.Config, error) {
	if cfg == nil {
		return reminder.Config{}, nil
	}
	dc := cfg.Dispatch
	lead := dc.LeadMinutes
	if lead < 0 {
		return reminder.Config{}, fmt.Errorf("dispatch.lead_minutes must be >= 0")
	}
	if lead == 0 {
		lead = 5
	}
	if tz := strings.TrimSpace(dc.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return reminder.Config{}, fmt.Errorf("dispatch.timezone: invalid %q: %w", tz, err)
		}
	}
	return reminder.Config{
		Enabled:     dc.Enabled,
		LeadMinutes: lead,
		Timezone:    dc.Timezone,
	}, nil
}

func mapIngestConfig(cfg *Config) (ingest.Config, error) {
	if cfg == nil {
		return ingest.Config{}, nil
	}
	ic := cfg.Ingest
	timeout, err := parseDurationOrDefault("ingest.timeout", ic.Timeout, 30*time.Second)
	if err != nil {
		return ingest.Config{}, err
	}
	maxMB := ic.MaxFileMB
	if maxMB < 0 {
		return ingest.Config{}, fmt.Errorf("ingest.max_file_mb must be >= 0")
	}
	if maxMB == 0 {
		maxMB = 10
	}
	return ingest.Config{
		OCREndpoint: strings.TrimSpace(ic.OCREndpoint),
		OCRAPIKey:   ic.OCRAPIKey,
		OCRLanguage: ic.OCRLanguage,
		MaxFileMB:   maxMB,
		Timeout:     timeout,
	}, nil
}

func mapPprofConfig(cfg *Config) (pprof.Config, error) {
	if cfg == nil {
		return pprof.Config{}, nil
	}
	pc := cfg.Pprof
	return pprof.Config{
		Enabled:       pc.Enabled,
		Addr:          strings.TrimSpace(pc.Addr),
		Token:         pc.Token,
		AllowInsecure: pc.AllowInsecure,
	}, nil
}
