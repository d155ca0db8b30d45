package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const testWriterToken = "writer-secret"

func newTestServer(t *testing.T) (*Relay, *httptest.Server) {
	t.Helper()
	relay := NewRelay(testWriterToken, nil, slog.New(slog.DiscardHandler))
	srv := httptest.NewServer(http.HandlerFunc(relay.Handle))
	t.Cleanup(srv.Close)
	return relay, srv
}

// waitForReaders blocks until count readers are registered for the booking.
// Registration happens on the server goroutine after the upgrade, so a dial
// returning does not yet guarantee the subscription is live.
func waitForReaders(t *testing.T, relay *Relay, bookingID string, count int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		relay.mu.Lock()
		n := len(relay.readers[bookingID])
		relay.mu.Unlock()
		if n >= count {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("reader for %s never registered", bookingID)
}

func dialRelay(t *testing.T, srvURL, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + "?" + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func statusMessage(t *testing.T, bookingUID, status string) []byte {
	t.Helper()
	var msg relayMessage
	msg.MetaData.BookingUID = bookingUID
	msg.Status = status
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return raw
}

func TestRelayRejectsReaderWithoutBookingID(t *testing.T) {
	_, srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 400, resp.StatusCode)
}

func TestRelayForwardsToSubscribedReader(t *testing.T) {
	relay, srv := newTestServer(t)

	reader := dialRelay(t, srv.URL, "bookingId=bk-1")
	waitForReaders(t, relay, "bk-1", 1)
	writer := dialRelay(t, srv.URL, "token="+testWriterToken)

	sent := statusMessage(t, "bk-1", "confirmed")
	require.NoError(t, writer.WriteMessage(websocket.TextMessage, sent))

	require.NoError(t, reader.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, got, err := reader.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, string(sent), string(got))
}

func TestRelayConcurrentWritersSingleReader(t *testing.T) {
	relay, srv := newTestServer(t)

	const writers = 4
	const perWriter = 50

	reader := dialRelay(t, srv.URL, "bookingId=bk-load")
	waitForReaders(t, relay, "bk-load", 1)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		conn := dialRelay(t, srv.URL, "token="+testWriterToken)
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			msg := statusMessage(t, "bk-load", "pending-payment")
			for i := 0; i < perWriter; i++ {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}(conn)
	}

	require.NoError(t, reader.SetReadDeadline(time.Now().Add(10*time.Second)))
	for i := 0; i < writers*perWriter; i++ {
		_, _, err := reader.ReadMessage()
		require.NoError(t, err, "message %d", i+1)
	}
	wg.Wait()
}
