package router

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"studybot/internal/reminder"
	"studybot/internal/storage"
	"studybot/internal/timetable"
	kit "studybot/internal/transport"
	logx "studybot/pkg/logx"
)

// Plain-text intents, matching what users type at a study bot without
// remembering slash commands.
var (
	reHelpIntent = regexp.MustCompile(`(?i)^!?\s*(help|menu|\?|commands)$`)

	// "can you notify me before class?" and friends get setup guidance.
	reRemindGuide = regexp.MustCompile(`(?i)(notify|remind).*(before|prior)\s*(class|lecture)|remind me before class`)

	reRemindIntent = regexp.MustCompile(`(?i)\bremind me (at|in)\b`)

	reDoneIntent = regexp.MustCompile(`(?i)^done\s+(\d+)$`)
)

const remindGuideText = "I can notify you before each class. To set this up:\n" +
	"1) Send your timetable as an image or PDF (a clear screenshot works).\n" +
	"2) I'll extract times and save your schedule.\n" +
	"3) You'll get a message before each class time on the correct weekday."

func (m *CommandManager) routeFreeText(root context.Context, up kit.Update, text string) {
	msg := up.Message

	switch {
	case reHelpIntent.MatchString(text):
		m.runIntent(root, up, "intent.help", func(ctx context.Context, req *Request) error {
			_, err := req.Adapter.SendText(ctx, req.Chat, m.helpText(nil), &kit.SendOptions{DisablePreview: true, ParseMode: "HTML"})
			return err
		})

	case reRemindIntent.MatchString(text):
		m.runIntent(root, up, "intent.remind", func(ctx context.Context, req *Request) error {
			reply := m.createReminder(ctx, req, text)
			_, err := req.Adapter.SendText(ctx, req.Chat, reply, nil)
			return err
		})

	case reRemindGuide.MatchString(text):
		m.runIntent(root, up, "intent.remind_guide", func(ctx context.Context, req *Request) error {
			_, err := req.Adapter.SendText(ctx, req.Chat, remindGuideText, nil)
			return err
		})

	case strings.HasPrefix(strings.ToLower(text), "todo ") || strings.EqualFold(text, "todo"):
		m.runIntent(root, up, "intent.todo", func(ctx context.Context, req *Request) error {
			reply := m.todoFreeText(ctx, req, text)
			_, err := req.Adapter.SendText(ctx, req.Chat, reply, nil)
			return err
		})

	case reDoneIntent.MatchString(text):
		n, _ := strconv.Atoi(reDoneIntent.FindStringSubmatch(text)[1])
		m.runIntent(root, up, "intent.done", func(ctx context.Context, req *Request) error {
			reply := m.markDone(ctx, req, n)
			_, err := req.Adapter.SendText(ctx, req.Chat, reply, nil)
			return err
		})

	default:
		// Groups stay quiet on chatter; DMs get pointed at help.
		if msg.IsGroup {
			return
		}
		m.runIntent(root, up, "intent.fallback", func(ctx context.Context, req *Request) error {
			_, err := req.Adapter.SendText(ctx, req.Chat, m.helpText(nil), &kit.SendOptions{DisablePreview: true, ParseMode: "HTML"})
			return err
		})
	}
}

// runIntent wraps a free-text handler in the same middleware chain commands use.
func (m *CommandManager) runIntent(root context.Context, up kit.Update, name string, h HandlerFunc) {
	msg := up.Message
	rid := newReqID()
	var cfg *Config
	if m.cfgm != nil {
		cfg = m.cfgm.Get()
	}
	req := &Request{
		Update:   up,
		Chat:     kit.ChatTarget{ChatID: msg.ChatID, ThreadID: msg.ThreadID},
		FromID:   msg.FromID,
		UserID:   userKey(msg.FromID),
		Command:  name,
		ReqID:    rid,
		Adapter:  m.adapter,
		Config:   cfg,
		Logger: m.log.With(
			logx.String("rid", rid),
			logx.Int64("chat_id", msg.ChatID),
			logx.Int64("from_id", msg.FromID),
			logx.String("cmd", name),
		),
		Services: m.serv,
	}
	final := Chain(h, MWPanicRecover(m.log), MWRequestLog(m.log), MWTimeout(30*time.Second))
	if !m.tryEnqueue(func() { _ = final(root, req) }) {
		_, _ = m.adapter.SendText(root, req.Chat, "busy, try again", nil)
	}
}

// createReminder parses "remind me at 5:30 pm ..." / "remind me in 20 minutes ..."
// and stores a one-off reminder on the sender's document.
func (m *CommandManager) createReminder(ctx context.Context, req *Request, text string) string {
	rtext, due, ok := reminder.ParseReminder(text, time.Now())
	if !ok {
		return "⚠️ I couldn't read that time. Try: remind me at 5:30 pm to review · remind me in 20 minutes"
	}
	if req.Services == nil || req.Services.Store == nil {
		return "⚠️ Reminders need storage, which is disabled on this bot."
	}
	st := req.Services.Store

	doc, err := st.GetUser(ctx, req.UserID)
	if err != nil {
		req.Logger.Warn("load user for reminder", logx.Err(err))
		return "⚠️ Couldn't save that reminder. Please try again."
	}
	reminders := append(doc.Reminders, storage.Reminder{
		ID:    uuid.NewString(),
		Text:  rtext,
		DueAt: due.Format(time.RFC3339),
	})
	if err := st.PutChat(ctx, req.UserID, req.Chat.ChatID); err != nil {
		req.Logger.Warn("save chat ref", logx.Err(err))
		return "⚠️ Couldn't save that reminder. Please try again."
	}
	if err := st.PutReminders(ctx, req.UserID, reminders); err != nil {
		req.Logger.Warn("save reminders", logx.Err(err))
		return "⚠️ Couldn't save that reminder. Please try again."
	}
	return "⏰ Reminder set for " + due.Format("Mon 3:04 PM") + ": " + rtext
}

// todoFreeText handles "todo add <task>" and "todo list" typed as plain text.
func (m *CommandManager) todoFreeText(ctx context.Context, req *Request, text string) string {
	if req.Services == nil || req.Services.Todo == nil {
		return "⚠️ Todos are not available on this bot."
	}
	rest := strings.TrimSpace(text[len("todo"):])
	low := strings.ToLower(rest)
	switch {
	case strings.HasPrefix(low, "add "):
		return m.addTodo(ctx, req, rest[len("add "):])
	case low == "list" || low == "":
		return m.listTodos(ctx, req)
	default:
		return "Try: todo add Read ch 3 · todo list · done 1"
	}
}

func (m *CommandManager) addTodo(ctx context.Context, req *Request, task string) string {
	t, err := req.Services.Todo.Add(ctx, req.UserID, task)
	if err != nil {
		return todoErrReply(err, req.Logger)
	}
	return "✅ Added task: " + t.Task
}

func (m *CommandManager) listTodos(ctx context.Context, req *Request) string {
	items, err := req.Services.Todo.List(ctx, req.UserID)
	if err != nil {
		return todoErrReply(err, req.Logger)
	}
	return todoRender(items)
}

func (m *CommandManager) markDone(ctx context.Context, req *Request, n int) string {
	if req.Services == nil || req.Services.Todo == nil {
		return "⚠️ Todos are not available on this bot."
	}
	t, err := req.Services.Todo.MarkDone(ctx, req.UserID, n)
	if err != nil {
		return todoErrReply(err, req.Logger)
	}
	return "👏 Marked task done: " + t.Task
}

// enqueueAttachment runs the timetable upload flow for a photo or document.
func (m *CommandManager) enqueueAttachment(root context.Context, up kit.Update) {
	msg := up.Message
	m.runIntent(root, up, "intent.timetable", func(ctx context.Context, req *Request) error {
		if req.Services == nil || req.Services.Timetable == nil {
			_, err := req.Adapter.SendText(ctx, req.Chat, "⚠️ Timetable uploads are not available on this bot.", nil)
			return err
		}
		dl, _ := req.Adapter.(kit.FileDownloader)
		reply, err := req.Services.Timetable.HandleUpload(ctx, dl, req.UserID, req.Chat.ChatID, *msg.Attachment)
		if err != nil {
			req.Logger.Warn("timetable upload failed", logx.Err(err))
			reply = timetable.FriendlyError(err)
		}
		_, err = req.Adapter.SendText(ctx, req.Chat, reply, nil)
		return err
	})
}
