// Package notifier is the single outbound path for bot messages: class
// alerts, due reminders, and command replies all go through it.
//
// It is an async pipeline (queue, worker pool, rate limit, retry with
// backoff) so a slow or flapping Telegram API never blocks the dispatcher
// tick or the command router. An optional dedup window suppresses repeats
// of the same message to the same chat, and can be persisted through
// storage so a restart inside the window does not re-send.
package notifier
