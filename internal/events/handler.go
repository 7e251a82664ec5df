package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

func topicFilter(r *http.Request) map[string]bool {
	q := r.URL.Query().Get("topics")
	if q == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, t := range strings.Split(q, ",") {
		if t = strings.TrimSpace(t); t != "" {
			filter[t] = true
		}
	}
	return filter
}

// SSEHandler streams events as server-sent events. ?topics=a,b filters.
func SSEHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		filter := topicFilter(r)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if filter != nil && !filter[evt.Topic] {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Topic, evt.Data)
				flusher.Flush()
			}
		}
	}
}

// WSHandler upgrades to a WebSocket and writes each event as a JSON text frame.
func WSHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := topicFilter(r)
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		// The reader only watches for the client going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if filter != nil && !filter[evt.Topic] {
					continue
				}
				frame, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				if err := wsutil.WriteServerMessage(conn, ws.OpText, frame); err != nil {
					slog.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
