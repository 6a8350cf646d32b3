package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/features/giveaway/timers"
	"giveaway-engine/internal/platform/chat"
	"giveaway-engine/internal/platform/storage"
)

// memStorage is an in-memory storage.Store for tests.
type memStorage struct {
	mu       sync.Mutex
	data     map[string][]byte
	failSave bool
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) key(fileKey, workspaceID string) string {
	return workspaceID + "/" + fileKey
}

func (m *memStorage) Load(_ context.Context, fileKey, workspaceID string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[m.key(fileKey, workspaceID)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memStorage) Save(_ context.Context, fileKey, workspaceID string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("storage down")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[m.key(fileKey, workspaceID)] = raw
	return nil
}

func (m *memStorage) Delete(_ context.Context, fileKey, workspaceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, m.key(fileKey, workspaceID))
	return nil
}

func (m *memStorage) ListWorkspaces(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	out := []string{}
	for key := range m.data {
		for i := 0; i < len(key); i++ {
			if key[i] == '/' {
				ws := key[:i]
				if !seen[ws] {
					seen[ws] = true
					out = append(out, ws)
				}
				break
			}
		}
	}
	return out, nil
}

var _ storage.Store = (*memStorage)(nil)

// fakeChat is an in-memory chat.Client recording every call.
type fakeChat struct {
	mu sync.Mutex

	channels      map[string]*chat.Channel
	users         map[string]chat.User
	reactionUsers map[string][]chat.User

	sent             []chat.Message
	edits            map[string]string
	addedReactions   []string
	strippedMessages []string

	sendErr error
	nextID  int
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		channels:      make(map[string]*chat.Channel),
		users:         make(map[string]chat.User),
		reactionUsers: make(map[string][]chat.User),
		edits:         make(map[string]string),
	}
}

func (f *fakeChat) addChannel(id string, kind chat.ChannelKind) {
	f.channels[id] = &chat.Channel{
		ID:       id,
		Name:     "general",
		Kind:     kind,
		Sendable: kind == chat.ChannelKindText || kind == chat.ChannelKindAnnouncement,
	}
}

func (f *fakeChat) Channel(_ context.Context, channelID string) (*chat.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errors.New("unknown channel")
	}
	return ch, nil
}

func (f *fakeChat) Message(_ context.Context, channelID, messageID string) (*chat.Message, error) {
	return &chat.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeChat) SendMessage(_ context.Context, channelID, content string) (*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	msg := chat.Message{ID: fmt.Sprintf("msg-%d", f.nextID), ChannelID: channelID, Content: content}
	f.sent = append(f.sent, msg)
	return &msg, nil
}

func (f *fakeChat) EditMessage(_ context.Context, _, messageID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[messageID] = content
	return nil
}

func (f *fakeChat) AddReaction(_ context.Context, _, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addedReactions = append(f.addedReactions, messageID+":"+emoji)
	return nil
}

func (f *fakeChat) RemoveAllReactions(_ context.Context, _, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strippedMessages = append(f.strippedMessages, messageID)
	return nil
}

func (f *fakeChat) ReactionUsers(_ context.Context, _, messageID, emoji string) ([]chat.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reactionUsers[messageID+":"+emoji], nil
}

func (f *fakeChat) User(_ context.Context, userID string) (*chat.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		return &u, nil
	}
	return &chat.User{ID: userID, Username: "user-" + userID}, nil
}

func (f *fakeChat) sentMessages() []chat.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Message(nil), f.sent...)
}

var _ chat.Client = (*fakeChat)(nil)

// testEnv wires the full service stack over in-memory collaborators.
type testEnv struct {
	storage   *memStorage
	store     *repository.Store
	registry  *timers.Registry
	observers *chat.ReactionObservers
	chat      *fakeChat
	ending    *EndingProcessor
	entries   *EntryService
	scheduler *Scheduler
	pending   *PendingService
	lifecycle *LifecycleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := newMemStorage()
	reg := timers.NewRegistry()
	t.Cleanup(reg.StopAll)

	records := repository.NewStore(st, reg)
	fc := newFakeChat()
	fc.addChannel("chan1", chat.ChannelKindText)
	observers := chat.NewReactionObservers()

	ending := NewEndingProcessor(records, fc, observers)
	entries := NewEntryService(records, ending)
	scheduler := NewScheduler(records, reg, ending, entries, observers)
	pending := NewPendingService(records, fc, observers, scheduler, entries)
	lifecycle := NewLifecycleService(records, fc, reg, observers, ending)

	return &testEnv{
		storage:   st,
		store:     records,
		registry:  reg,
		observers: observers,
		chat:      fc,
		ending:    ending,
		entries:   entries,
		scheduler: scheduler,
		pending:   pending,
		lifecycle: lifecycle,
	}
}

func (e *testEnv) addGiveaway(t *testing.T, g *models.Giveaway) {
	t.Helper()
	ok, err := e.store.Add(context.Background(), g)
	require.NoError(t, err)
	require.True(t, ok)
}

func (e *testEnv) mustGet(t *testing.T, workspaceID, id string) *models.Giveaway {
	t.Helper()
	g, err := e.store.Get(context.Background(), workspaceID, id)
	require.NoError(t, err)
	return g
}

func liveGiveaway(id string, mode models.EntryMode) *models.Giveaway {
	g := &models.Giveaway{
		ID:          id,
		WorkspaceID: "ws1",
		ChannelID:   "chan1",
		MessageID:   "msg-" + id,
		Title:       "Keyboard drop",
		Prizes:      []string{"keyboard"},
		StartTime:   time.Now().Add(-time.Minute),
		EndTime:     time.Now().Add(time.Hour),
		CreatorID:   "creator",
		EntryMode:   mode,
		WinnerCount: 1,
	}
	switch mode {
	case models.EntryModeReaction:
		g.ReactionEmoji = "🎉"
	case models.EntryModeTrivia:
		g.Question = "2+2?"
		g.Answer = "4"
	case models.EntryModeCompetition:
		g.Question = "2+2?"
		g.Answer = "4"
		g.Placements = map[string]int{}
	}
	return g
}

func member(userID string, roleIDs ...string) chat.Member {
	return chat.Member{
		User:    chat.User{ID: userID, Username: "user-" + userID},
		RoleIDs: roleIDs,
	}
}

func reactionEvent(messageID, emoji string, m chat.Member) chat.ReactionEvent {
	return chat.ReactionEvent{
		WorkspaceID: "ws1",
		ChannelID:   "chan1",
		MessageID:   messageID,
		Emoji:       emoji,
		Member:      m,
	}
}
