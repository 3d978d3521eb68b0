package sse

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/matchqueue/internal/model"
	"github.com/mcoot/matchqueue/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "match-found",
			data:      "{\n  \"id\": \"m1\"\n}",
			expected:  "event: match-found\ndata: {\ndata:   \"id\": \"m1\"\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func receive(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case msg := <-c.send:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return ""
	}
}

func TestHubPublishTargetsOneAccount(t *testing.T) {
	hub := newRunningHub(t)

	alice1 := NewClient("alice")
	alice2 := NewClient("alice")
	bob := NewClient("bob")
	require.True(t, hub.Register(alice1))
	require.True(t, hub.Register(alice2))
	require.True(t, hub.Register(bob))

	assert.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 10*time.Millisecond)

	hub.Publish("alice", "hello", "hi")

	assert.Equal(t, "event: hello\ndata: hi\n\n", receive(t, alice1))
	assert.Equal(t, "event: hello\ndata: hi\n\n", receive(t, alice2))

	select {
	case msg := <-bob.send:
		t.Fatalf("bob received %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregister(t *testing.T) {
	hub := newRunningHub(t)

	c := NewClient("alice")
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open)

	// Unregistering twice is harmless
	hub.Unregister(c)
}

func TestHubCloseEndsStreams(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	c := NewClient("alice")
	require.True(t, hub.Register(c))

	hub.Close()
	hub.Close()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, open := <-c.send
	assert.False(t, open)
	assert.False(t, hub.Register(NewClient("bob")))
}

func TestHubMatchFoundNotifiesBothPlayers(t *testing.T) {
	hub := newRunningHub(t)

	alice := NewClient("alice")
	bob := NewClient("bob")
	require.True(t, hub.Register(alice))
	require.True(t, hub.Register(bob))

	match := model.Match{
		ID:   "m1",
		Kind: model.QueueQuick,
		Players: [2]model.AccountView{
			{Username: "alice", Region: "NA", MMR: 1500},
			{Username: "bob", Region: "NA", MMR: 1505},
		},
		MMRDifference: 5,
	}
	hub.MatchFound(match)

	for _, c := range []*Client{alice, bob} {
		msg := receive(t, c)
		require.True(t, strings.HasPrefix(msg, "event: match-found\ndata: "))

		var payload struct {
			ID            string `json:"id"`
			MMRDifference int    `json:"mmr_difference"`
		}
		data := strings.TrimSuffix(strings.TrimPrefix(msg, "event: match-found\ndata: "), "\n\n")
		require.NoError(t, json.Unmarshal([]byte(data), &payload))
		assert.Equal(t, "m1", payload.ID)
		assert.Equal(t, 5, payload.MMRDifference)
	}
}

func TestServeSSE(t *testing.T) {
	hub := newRunningHub(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, hub, "alice")
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// Skip the rest of the connected event
	_, _ = reader.ReadString('\n')
	_, _ = reader.ReadString('\n')

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish("alice", "ping", "pong")

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: pong\n", line)
}
