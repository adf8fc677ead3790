// Package todo keeps each user's checklist on their stored document.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studybot/internal/storage"
	logx "studybot/pkg/logx"
)

var (
	ErrNoStore   = errors.New("todo: storage disabled")
	ErrEmptyTask = errors.New("todo: empty task")
	ErrBadIndex  = errors.New("todo: invalid task number")
)

type Service struct {
	store storage.Store
	log   logx.Logger
}

func New(store storage.Store, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{store: store, log: log}
}

func (s *Service) Add(ctx context.Context, userID, task string) (storage.Todo, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return storage.Todo{}, ErrEmptyTask
	}
	if s.store == nil {
		return storage.Todo{}, ErrNoStore
	}

	doc, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return storage.Todo{}, err
	}
	t := storage.Todo{ID: uuid.NewString(), Task: task}
	todos := append(doc.Todos, t)
	if err := s.store.PutTodos(ctx, userID, todos); err != nil {
		return storage.Todo{}, err
	}
	s.log.Debug("todo added", logx.String("user", userID), logx.Int("count", len(todos)))
	return t, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]storage.Todo, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	doc, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return doc.Todos, nil
}

// MarkDone completes the n-th task (1-based, list order).
func (s *Service) MarkDone(ctx context.Context, userID string, n int) (storage.Todo, error) {
	if s.store == nil {
		return storage.Todo{}, ErrNoStore
	}
	doc, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return storage.Todo{}, err
	}
	if n < 1 || n > len(doc.Todos) {
		return storage.Todo{}, ErrBadIndex
	}
	doc.Todos[n-1].Done = true
	if err := s.store.PutTodos(ctx, userID, doc.Todos); err != nil {
		return storage.Todo{}, err
	}
	return doc.Todos[n-1], nil
}

// Render formats a checklist the way users see it in chat.
func Render(todos []storage.Todo) string {
	if len(todos) == 0 {
		return "📝 No tasks."
	}
	var b strings.Builder
	b.WriteString("📝 Your To-Do List:")
	for i, t := range todos {
		mark := "❌"
		if t.Done {
			mark = "✔️"
		}
		fmt.Fprintf(&b, "\n%d. %s %s", i+1, mark, t.Task)
	}
	return b.String()
}
