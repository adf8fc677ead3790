package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"studybot/internal/storage"
	"studybot/internal/todo"
	logx "studybot/pkg/logx"
)

// BuiltinCommands is the full slash-command set. Free-text intents in
// intents.go cover the same ground for users who don't type commands.
func (m *CommandManager) BuiltinCommands() []Command {
	return []Command{
		{
			Route:       "schedule",
			Description: "show your saved class schedule",
			Usage:       "/schedule",
			Access:      AccessEveryone,
			Handle:      m.cmdScheduleView,
		},
		{
			Route:       "schedule clear",
			Description: "delete your saved schedule",
			Usage:       "/schedule clear",
			Access:      AccessEveryone,
			Handle:      m.cmdScheduleClear,
		},
		{
			Route:       "todo add",
			Description: "add a task",
			Usage:       "/todo add <task>",
			Access:      AccessEveryone,
			Handle:      m.cmdTodoAdd,
		},
		{
			Route:       "todo list",
			Description: "show your tasks",
			Usage:       "/todo list",
			Access:      AccessEveryone,
			Handle:      m.cmdTodoList,
		},
		{
			Route:       "todo done",
			Aliases:     []string{"done"},
			Description: "mark a task done",
			Usage:       "/todo done <n>",
			Access:      AccessEveryone,
			Handle:      m.cmdTodoDone,
		},
		{
			Route:       "remind",
			Description: "set a one-off reminder",
			Usage:       "/remind me at 5:30 pm to review · /remind me in 20 minutes",
			Access:      AccessEveryone,
			Handle:      m.cmdRemind,
		},
		{
			Route:       "status",
			Description: "bot runtime status",
			Usage:       "/status",
			Access:      AccessOwnerOnly,
			Handle:      m.cmdStatus,
		},
	}
}

func (m *CommandManager) cmdScheduleView(ctx context.Context, req *Request) error {
	if req.Services == nil || req.Services.Timetable == nil {
		return reply(ctx, req, "⚠️ Schedules are not available on this bot.")
	}
	text, err := req.Services.Timetable.View(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return reply(ctx, req, "⚠️ Schedules need storage, which is disabled on this bot.")
		}
		req.Logger.Warn("schedule view", logx.Err(err))
		return reply(ctx, req, "⚠️ Couldn't load your schedule. Please try again.")
	}
	return reply(ctx, req, text)
}

func (m *CommandManager) cmdScheduleClear(ctx context.Context, req *Request) error {
	if req.Services == nil || req.Services.Timetable == nil {
		return reply(ctx, req, "⚠️ Schedules are not available on this bot.")
	}
	if err := req.Services.Timetable.Clear(ctx, req.UserID); err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return reply(ctx, req, "⚠️ Schedules need storage, which is disabled on this bot.")
		}
		req.Logger.Warn("schedule clear", logx.Err(err))
		return reply(ctx, req, "⚠️ Couldn't clear your schedule. Please try again.")
	}
	return reply(ctx, req, "🗑 Schedule cleared.")
}

func (m *CommandManager) cmdTodoAdd(ctx context.Context, req *Request) error {
	if req.Services == nil || req.Services.Todo == nil {
		return reply(ctx, req, "⚠️ Todos are not available on this bot.")
	}
	task := strings.TrimSpace(strings.Join(req.Args, " "))
	return reply(ctx, req, m.addTodo(ctx, req, task))
}

func (m *CommandManager) cmdTodoList(ctx context.Context, req *Request) error {
	if req.Services == nil || req.Services.Todo == nil {
		return reply(ctx, req, "⚠️ Todos are not available on this bot.")
	}
	return reply(ctx, req, m.listTodos(ctx, req))
}

func (m *CommandManager) cmdTodoDone(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		return reply(ctx, req, "Usage: /todo done <n>")
	}
	n, err := strconv.Atoi(req.Args[0])
	if err != nil {
		return reply(ctx, req, "⚠️ Invalid task number.")
	}
	return reply(ctx, req, m.markDone(ctx, req, n))
}

func (m *CommandManager) cmdRemind(ctx context.Context, req *Request) error {
	// Reconstruct the natural phrasing the parser understands.
	text := strings.TrimSpace("remind " + strings.Join(req.Args, " "))
	return reply(ctx, req, m.createReminder(ctx, req, text))
}

func (m *CommandManager) cmdStatus(ctx context.Context, req *Request) error {
	var b strings.Builder
	b.WriteString("🤖 studybot status\n")

	if req.Services != nil && req.Services.Store != nil {
		ids, err := req.Services.Store.ListUserIDs(ctx)
		if err != nil {
			fmt.Fprintf(&b, "storage: error (%v)\n", err)
		} else {
			fmt.Fprintf(&b, "storage: ok, %d user(s)\n", len(ids))
		}
	} else {
		b.WriteString("storage: disabled\n")
	}

	if req.Services != nil && req.Services.AppSupervisor != nil {
		c := req.Services.AppSupervisor.Counters()
		fmt.Fprintf(&b, "app goroutines: %d active / %d started\n", c.Active, c.Started)
	}
	if req.Services != nil && req.Services.RuntimeSupervisors != nil {
		snap := req.Services.RuntimeSupervisors.Snapshot()
		names := make([]string, 0, len(snap))
		for name := range snap {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sup := snap[name]
			if sup == nil {
				continue
			}
			c := sup.Counters()
			fmt.Fprintf(&b, "%s: %d active", name, c.Active)
			if err := sup.Err(); err != nil {
				fmt.Fprintf(&b, " (last err: %v)", err)
			}
			b.WriteString("\n")
		}
	}

	return reply(ctx, req, strings.TrimRight(b.String(), "\n"))
}

func reply(ctx context.Context, req *Request, text string) error {
	_, err := req.Adapter.SendText(ctx, req.Chat, text, nil)
	return err
}

func todoRender(items []storage.Todo) string {
	return todo.Render(items)
}

func todoErrReply(err error, log logx.Logger) string {
	switch {
	case errors.Is(err, todo.ErrBadIndex):
		return "⚠️ Invalid task number."
	case errors.Is(err, todo.ErrEmptyTask):
		return "Usage: todo add <task>"
	case errors.Is(err, todo.ErrNoStore):
		return "⚠️ Todos need storage, which is disabled on this bot."
	default:
		log.Warn("todo operation failed", logx.Err(err))
		return "⚠️ Something went wrong. Please try again."
	}
}
