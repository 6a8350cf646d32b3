package chat

import (
	"context"
	"sync"
	"time"
)

// ReactionEvent is a live reaction add observed on the platform gateway.
type ReactionEvent struct {
	WorkspaceID string
	ChannelID   string
	MessageID   string
	Emoji       string
	Member      Member
}

// ReactionHandler consumes a live reaction event.
type ReactionHandler func(ctx context.Context, ev ReactionEvent)

type reactionObserver struct {
	handler ReactionHandler
	expires time.Time
}

// ReactionObservers routes gateway reaction events to per-message handlers.
// At most one handler is registered per message id; registering again
// replaces the previous handler.
type ReactionObservers struct {
	mu        sync.Mutex
	byMessage map[string]reactionObserver
}

func NewReactionObservers() *ReactionObservers {
	return &ReactionObservers{byMessage: make(map[string]reactionObserver)}
}

// Register installs a handler for a message. expires is a hint for gateway
// implementations that prune stale registrations; dispatch itself does not
// enforce it, the engine releases observers explicitly.
func (o *ReactionObservers) Register(messageID string, expires time.Time, handler ReactionHandler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byMessage[messageID] = reactionObserver{handler: handler, expires: expires}
}

// Release removes the handler for a message, if any.
func (o *ReactionObservers) Release(messageID string) {
	if messageID == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.byMessage, messageID)
}

// Registered reports whether a handler exists for the message.
func (o *ReactionObservers) Registered(messageID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.byMessage[messageID]
	return ok
}

// Dispatch delivers an event to the registered handler, if any.
func (o *ReactionObservers) Dispatch(ctx context.Context, ev ReactionEvent) {
	o.mu.Lock()
	obs, ok := o.byMessage[ev.MessageID]
	o.mu.Unlock()
	if !ok {
		return
	}
	obs.handler(ctx, ev)
}
