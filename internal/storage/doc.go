package storage

// Package storage persists per-user bot state.
//
// It currently supports:
//   - One document per user (chat binding, schedule, reminders, todos)
//   - Notifier dedup state (to survive restarts)
