// Package bot implements the Telegram webhook workflow: parse a caregiver
// message, show a confirmation preview, and upload the events once confirmed.
package bot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/babylog/pkg/output"
	"github.com/ccollicutt/babylog/pkg/parser"
	"github.com/ccollicutt/babylog/pkg/pending"
	"github.com/ccollicutt/babylog/pkg/telegram"
	"github.com/ccollicutt/babylog/pkg/tracker"
)

// Replies sent back to the chat.
const (
	ReplyUploaded  = "✅ Uploaded successfully."
	ReplyFailed    = "❌ Upload failed."
	ReplyCancelled = "❌ Cancelled."
	ReplyExpired   = "⚠️ No pending event found or expired."
)

const maxUpdateSize = 1 << 20

// Messenger sends chat replies. *telegram.Client satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendConfirmation(ctx context.Context, chatID int64, text string) (int64, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Uploader sends confirmed events to the tracker. *tracker.Client satisfies it.
type Uploader interface {
	UploadAll(ctx context.Context, events []parser.Event) ([]*tracker.Response, error)
}

// Key identifies a confirmation preview. Message ids are only unique within a chat.
type Key struct {
	ChatID    int64
	MessageID int64
}

// Pending is a parsed message awaiting confirmation.
type Pending struct {
	UserID int64
	Events []parser.Event
}

// Store holds previews awaiting a Confirm or Cancel press.
type Store = pending.Store[Key, Pending]

// Handler serves the Telegram webhook.
type Handler struct {
	parser    *parser.Parser
	messenger Messenger
	uploader  Uploader
	store     *Store
	location  *time.Location
	allowed   map[int64]struct{}
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithLocation sets the zone message dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) {
		h.location = loc
	}
}

// WithAllowedChats restricts the bot to the given chats. An empty list allows all.
func WithAllowedChats(ids ...int64) Option {
	return func(h *Handler) {
		for _, id := range ids {
			h.allowed[id] = struct{}{}
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// New creates a webhook handler.
func New(p *parser.Parser, m Messenger, u Uploader, store *Store, opts ...Option) *Handler {
	h := &Handler{
		parser:    p,
		messenger: m,
		uploader:  u,
		store:     store,
		location:  time.UTC,
		allowed:   make(map[int64]struct{}),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP decodes one update and handles it. Every POST is acknowledged
// with 200 so Telegram does not redeliver updates the bot cannot use.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update telegram.Update
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateSize))
	if err == nil {
		err = json.Unmarshal(body, &update)
	}
	if err != nil {
		h.logger.Warn("discarding undecodable update", zap.Error(err))
	} else {
		h.HandleUpdate(r.Context(), &update)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// HandleUpdate dispatches a message or a callback query.
func (h *Handler) HandleUpdate(ctx context.Context, u *telegram.Update) {
	switch {
	case u.Message != nil:
		h.handleMessage(ctx, u.Message)
	case u.CallbackQuery != nil:
		h.handleCallback(ctx, u.CallbackQuery)
	default:
		h.logger.Debug("ignoring update", zap.Int64("update_id", u.UpdateID))
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	log := h.logger.With(zap.Int64("chat_id", chatID), zap.Int64("message_id", msg.MessageID))

	if !h.chatAllowed(chatID) {
		log.Warn("message from chat not in allow-list")
		return
	}
	if msg.Text == "" {
		return
	}

	result := h.parser.Parse(msg.Text, h.referenceTime(msg.Date))
	if result.Timestamp == nil || len(result.Events) == 0 {
		log.Info("message not parsed", zap.Strings("errors", result.Errors))
		h.send(ctx, log, chatID, output.FailureText(result))
		return
	}

	previewID, err := h.messenger.SendConfirmation(ctx, chatID, output.Preview(result))
	if err != nil {
		log.Error("sending confirmation", zap.Error(err))
		return
	}

	entry := Pending{Events: result.Events}
	if msg.From != nil {
		entry.UserID = msg.From.ID
	}
	h.store.Put(Key{ChatID: chatID, MessageID: previewID}, entry)
	log.Info("awaiting confirmation",
		zap.Int64("preview_id", previewID),
		zap.Int("events", len(result.Events)),
		zap.Int("errors", len(result.Errors)))
}

func (h *Handler) handleCallback(ctx context.Context, cq *telegram.CallbackQuery) {
	if err := h.messenger.AnswerCallback(ctx, cq.ID, ""); err != nil {
		h.logger.Warn("answering callback", zap.String("callback_id", cq.ID), zap.Error(err))
	}
	if cq.Message == nil {
		return
	}

	chatID := cq.Message.Chat.ID
	key := Key{ChatID: chatID, MessageID: cq.Message.MessageID}
	log := h.logger.With(zap.Int64("chat_id", chatID), zap.Int64("preview_id", key.MessageID))

	if !h.chatAllowed(chatID) {
		log.Warn("callback from chat not in allow-list")
		return
	}

	switch cq.Data {
	case telegram.CallbackConfirm, telegram.CallbackCancel:
	default:
		log.Debug("ignoring callback", zap.String("data", cq.Data))
		return
	}

	entry, ok := h.store.Take(key)
	if !ok {
		h.send(ctx, log, chatID, ReplyExpired)
		return
	}

	if cq.Data == telegram.CallbackCancel {
		log.Info("upload cancelled")
		h.send(ctx, log, chatID, ReplyCancelled)
		return
	}

	responses, err := h.uploader.UploadAll(ctx, entry.Events)
	if err != nil {
		log.Error("upload failed", zap.Int("uploaded", successes(responses)), zap.Error(err))
		h.send(ctx, log, chatID, ReplyFailed)
		return
	}
	log.Info("uploaded", zap.Int("events", len(responses)))
	h.send(ctx, log, chatID, ReplyUploaded)
}

func (h *Handler) send(ctx context.Context, log *zap.Logger, chatID int64, text string) {
	if err := h.messenger.SendMessage(ctx, chatID, text); err != nil {
		log.Error("sending reply", zap.Error(err))
	}
}

func (h *Handler) chatAllowed(chatID int64) bool {
	if len(h.allowed) == 0 {
		return true
	}
	_, ok := h.allowed[chatID]
	return ok
}

// referenceTime is the message date in the configured zone, or now when
// the update carries no date.
func (h *Handler) referenceTime(date int64) time.Time {
	if date <= 0 {
		return h.now().In(h.location)
	}
	return time.Unix(date, 0).In(h.location)
}

func successes(responses []*tracker.Response) int {
	n := 0
	for _, r := range responses {
		if r.Success() {
			n++
		}
	}
	return n
}
