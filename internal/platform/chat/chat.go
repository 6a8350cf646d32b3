package chat

import "context"

// ChannelKind classifies a channel by what the bot can do with it. The kind
// is resolved once when the channel is fetched, not probed at call sites.
type ChannelKind string

const (
	ChannelKindText         ChannelKind = "text"
	ChannelKindAnnouncement ChannelKind = "announcement"
	ChannelKindVoice        ChannelKind = "voice"
	ChannelKindCategory     ChannelKind = "category"
)

// Channel is a reference to a chat-platform channel.
type Channel struct {
	ID          string      `json:"id"`
	WorkspaceID string      `json:"workspace_id"`
	Name        string      `json:"name"`
	Kind        ChannelKind `json:"kind"`
	Sendable    bool        `json:"sendable"`
}

// Message is a message posted in a channel.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

// User is a chat-platform account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Member is a user together with their workspace role ids.
type Member struct {
	User    User     `json:"user"`
	RoleIDs []string `json:"role_ids"`
}

// HasRole reports whether the member holds the given role.
func (m Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the member holds at least one of the roles.
func (m Member) HasAnyRole(roleIDs []string) bool {
	for _, id := range roleIDs {
		if m.HasRole(id) {
			return true
		}
	}
	return false
}

// Client is the chat-platform collaborator consumed by the engine. All
// calls are network calls and may fail; callers decide which failures are
// fatal.
type Client interface {
	Channel(ctx context.Context, channelID string) (*Channel, error)
	Message(ctx context.Context, channelID, messageID string) (*Message, error)
	SendMessage(ctx context.Context, channelID, content string) (*Message, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	RemoveAllReactions(ctx context.Context, channelID, messageID string) error
	ReactionUsers(ctx context.Context, channelID, messageID, emoji string) ([]User, error)
	User(ctx context.Context, userID string) (*User, error)
}
