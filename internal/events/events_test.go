package events

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

func waitForClients(t *testing.T, b *Broker, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d; want %d", b.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBrokerPublishDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	for i := 0; i < subscriberBufSize+5; i++ {
		b.Publish("state", map[string]int{"i": i})
	}
	if got := len(ch); got != subscriberBufSize {
		t.Fatalf("buffered = %d; want %d", got, subscriberBufSize)
	}
	if b.Dropped() != 5 {
		t.Fatalf("Dropped() = %d; want 5", b.Dropped())
	}
	b.Unsubscribe(id)
	b.Unsubscribe(id)
	if b.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d; want 0", b.ClientCount())
	}
}

func TestSSEHandlerFiltersTopics(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(SSEHandler(b))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?topics=state")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	waitForClients(t, b, 1)

	b.Publish("log", map[string]string{"msg": "skip me"})
	b.Publish("state", map[string]string{"state": "ready"})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if lines[0] != "event: state" || lines[1] != `data: {"state":"ready"}` {
		t.Fatalf("lines = %q", lines)
	}
}

func TestWSHandlerStreamsEvents(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(WSHandler(b))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("ws.Dial() failed: %v", err)
	}
	defer conn.Close()
	waitForClients(t, b, 1)

	b.Publish("state", map[string]string{"state": "submitting"})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	data, op, err := wsutil.ReadServerData(conn)
	if err != nil {
		t.Fatalf("ReadServerData() failed: %v", err)
	}
	if op != ws.OpText {
		t.Fatalf("opcode = %v; want text", op)
	}
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if evt.Topic != "state" || string(evt.Data) != `{"state":"submitting"}` {
		t.Fatalf("event = %+v", evt)
	}
}
