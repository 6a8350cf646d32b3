package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/platform/chat"
)

func newGatewayStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret")
}

func ok(w http.ResponseWriter, result interface{}) {
	raw, _ := json.Marshal(result)
	json.NewEncoder(w).Encode(Response{Ok: true, Result: raw})
}

func TestChannel_ResolvesSendable(t *testing.T) {
	client := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/chan1", r.URL.Path)
		assert.Equal(t, "Bot secret", r.Header.Get("Authorization"))
		ok(w, chat.Channel{ID: "chan1", Kind: chat.ChannelKindText})
	})

	ch, err := client.Channel(context.Background(), "chan1")
	require.NoError(t, err)
	assert.True(t, ch.Sendable)
}

func TestChannel_VoiceIsNotSendable(t *testing.T) {
	client := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		ok(w, chat.Channel{ID: "v1", Kind: chat.ChannelKindVoice})
	})

	ch, err := client.Channel(context.Background(), "v1")
	require.NoError(t, err)
	assert.False(t, ch.Sendable)
}

func TestSendMessage(t *testing.T) {
	client := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/chan1/messages", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello", payload["content"])

		ok(w, chat.Message{ID: "m1", ChannelID: "chan1", Content: "hello"})
	})

	msg, err := client.SendMessage(context.Background(), "chan1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
}

func TestReactionUsers(t *testing.T) {
	client := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/chan1/messages/m1/reactions/%F0%9F%8E%89/users", r.URL.EscapedPath())
		ok(w, []chat.User{{ID: "u1"}, {ID: "u2", Bot: true}})
	})

	users, err := client.ReactionUsers(context.Background(), "chan1", "m1", "🎉")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[1].Bot)
}

func TestCall_GatewayErrorEnvelope(t *testing.T) {
	client := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(Response{Ok: false, Description: "missing permissions"})
	})

	_, err := client.User(context.Background(), "u1")
	require.Error(t, err)

	appErr, isApp := apperrors.AsAppError(err)
	require.True(t, isApp)
	assert.True(t, appErr.IsCollaborator())
	assert.Contains(t, err.Error(), "missing permissions")
}
