package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/docquiz/docquiz-backend/internal/websocket"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// wsPipe upgrades a loopback HTTP connection and returns both ends.
func wsPipe(t *testing.T) (client, server *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverConns:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never upgraded")
	}
	t.Cleanup(func() { server.Close() })

	return client, server
}

func TestReadLoopStopsWhenStreamEnds(t *testing.T) {
	clientConn, serverConn := wsPipe(t)

	h := &WSHandler{log: zerolog.Nop()}

	// Unbuffered and never drained, like a writer that has already returned:
	// the reader's pending send must not pin the goroutine.
	actions := make(chan ws.ClientMessage)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	go h.readLoop(serverConn, zerolog.Nop(), actions, done, writerDone)

	if err := clientConn.WriteJSON(ws.ClientMessage{Action: ws.ActionPing}); err != nil {
		t.Fatalf("client write: %v", err)
	}

	// Give the reader time to park on the send, then end the stream.
	time.Sleep(50 * time.Millisecond)
	close(writerDone)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("read loop still running after the writer exited")
	}
}
