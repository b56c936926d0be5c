package internal

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FailedReplyText replaces a placeholder whose remote call failed
const FailedReplyText = "⚠️ Sorry, I encountered an error. Please try again."

// DefaultRequestTimeout bounds a single completion call
const DefaultRequestTimeout = 60 * time.Second

// Completer produces a reply for a persona and user text
type Completer interface {
	Complete(ctx context.Context, persona, userText string) (string, error)
}

// Result is the outcome of the remote call for a pending placeholder
type Result struct {
	Text string
	Err  error
}

// Manager owns the ordered message list of one conversation and mirrors every
// mutation to a KVStore.
//
// The list is idle or sending. Sending means the last message is a pending
// assistant placeholder; no second send starts until it resolves.
type Manager struct {
	mu       sync.Mutex
	kv       KVStore
	key      string
	truncate int
	timeout  time.Duration
	onReset  []func()
	// gen changes on every Reset so a reply for a discarded turn is dropped
	gen      uint64
	messages []Message
	staged   *Attachment
}

// Option configures a Manager
type Option func(*Manager)

// WithKey stores the snapshot under key instead of HistoryKey
func WithKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

// WithTruncateLength sets how many attachment characters are inlined
func WithTruncateLength(n int) Option {
	return func(m *Manager) { m.truncate = n }
}

// WithTimeout bounds each completion call made by Send
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithResetHook registers fn to run after every Reset
func WithResetHook(fn func()) Option {
	return func(m *Manager) { m.onReset = append(m.onReset, fn) }
}

// NewManager loads the persisted snapshot and returns a ready Manager
func NewManager(kv KVStore, opts ...Option) *Manager {
	m := &Manager{
		kv:       kv,
		key:      HistoryKey,
		truncate: DefaultTruncateLength,
		timeout:  DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.messages = m.load()
	return m
}

func (m *Manager) load() []Message {
	messages := Load[[]Message](m.kv, m.key, nil)
	if messages == nil {
		return []Message{}
	}

	// A placeholder left behind by an interrupted run would block sending forever.
	for i := range messages {
		if messages[i].Pending {
			LogWarn("Recovered stale pending message at position %d", i)
			messages[i] = Message{Sender: SenderAssistant, Text: FailedReplyText, Failed: true}
		}
	}
	LogDebug("Loaded %d message(s) from %s", len(messages), m.key)
	return messages
}

// persistLocked writes the full list; m.mu must be held.
func (m *Manager) persistLocked() {
	Save(m.kv, m.key, m.messages)
}

func (m *Manager) sendingLocked() bool {
	n := len(m.messages)
	return n > 0 && m.messages[n-1].Pending
}

func (m *Manager) snapshotLocked() []Message {
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Messages returns a copy of the current list
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Sending reports whether a reply is pending
func (m *Manager) Sending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendingLocked()
}

// Stage holds an attachment for the next send, replacing any staged one
func (m *Manager) Stage(a *Attachment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = a
}

// Staged returns the staged attachment, or nil
func (m *Manager) Staged() *Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.staged
}

// Unstage discards the staged attachment
func (m *Manager) Unstage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = nil
}

// AppendUserTurn pushes a user message and a pending assistant placeholder.
// A staged attachment takes the place of text and is consumed.
func (m *Manager) AppendUserTurn(text string) ([]Message, error) {
	snapshot, _, err := m.appendUserTurn(text)
	return snapshot, err
}

func (m *Manager) appendUserTurn(text string) ([]Message, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendingLocked() {
		LogWarn("Rejected send: %v", ErrSendInFlight)
		return nil, 0, ErrSendInFlight
	}

	var userText string
	switch {
	case m.staged != nil:
		userText = BuildMessageText(m.staged, m.truncate)
	case strings.TrimSpace(text) == "":
		LogDebug("Rejected send: %v", ErrEmptyMessage)
		return nil, 0, ErrEmptyMessage
	default:
		userText = text
	}

	m.messages = append(m.messages,
		Message{Sender: SenderUser, Text: userText},
		Message{Sender: SenderAssistant, Pending: true},
	)
	m.staged = nil
	m.persistLocked()
	return m.snapshotLocked(), m.gen, nil
}

// ResolvePending replaces the pending placeholder with the reply, or with a
// failed turn when res carries an error or an empty reply.
func (m *Manager) ResolvePending(res Result) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveLocked(res)
}

// resolveFor resolves the placeholder only if no Reset happened since gen
func (m *Manager) resolveFor(gen uint64, res Result) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		LogWarn("Dropped reply for a turn discarded by reset")
		return nil, ErrConversationReset
	}
	return m.resolveLocked(res)
}

func (m *Manager) resolveLocked(res Result) ([]Message, error) {
	if !m.sendingLocked() {
		LogWarn("Rejected resolve: %v", ErrNothingPending)
		return nil, ErrNothingPending
	}

	resolved := Message{Sender: SenderAssistant, Text: res.Text}
	if res.Err != nil || res.Text == "" {
		resolved = Message{Sender: SenderAssistant, Text: FailedReplyText, Failed: true}
	}
	m.messages[len(m.messages)-1] = resolved
	m.persistLocked()
	return m.snapshotLocked(), nil
}

// Send runs one round trip: append the user turn, ask c for a reply under
// the configured timeout, then resolve the placeholder. The resolved assistant
// message is returned along with the completion error, if any.
func (m *Manager) Send(ctx context.Context, c Completer, persona, text string) (Message, error) {
	snapshot, gen, err := m.appendUserTurn(text)
	if err != nil {
		return Message{}, err
	}
	userText := snapshot[len(snapshot)-2].Text

	callCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, callErr := c.Complete(callCtx, persona, userText)
	if callErr != nil {
		LogError("Chat API error: %v", callErr)
	} else {
		LogDebug("Reply received in %s (%d chars)", time.Since(start).Round(time.Millisecond), len(reply))
	}

	snapshot, err = m.resolveFor(gen, Result{Text: reply, Err: callErr})
	if err != nil {
		return Message{}, err
	}
	resolved := snapshot[len(snapshot)-1]
	if callErr == nil && resolved.Failed {
		callErr = ErrEmptyReply
	}
	return resolved, callErr
}

// LastReply returns the text of the latest successful assistant message
func (m *Manager) LastReply() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.Sender == SenderAssistant && !msg.Pending && !msg.Failed {
			return msg.Text, true
		}
	}
	return "", false
}

// Reset empties the conversation and clears persisted storage
func (m *Manager) Reset() {
	m.mu.Lock()
	m.messages = []Message{}
	m.staged = nil
	m.gen++
	Clear(m.kv, m.key)
	hooks := m.onReset
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
