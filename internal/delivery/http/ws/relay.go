package ws

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// relayMessage is the wire shape pushed by writers and forwarded to readers
// subscribed to the same booking.
type relayMessage struct {
	MetaData struct {
		BookingUID string `json:"booking_uid"`
	} `json:"meta_data"`
	Status string `json:"status,omitempty"`
}

// Relay forwards booking-status messages from authenticated writer
// connections to reader connections subscribed by booking id.
type Relay struct {
	writerToken string
	upgrader    websocket.Upgrader
	logger      *slog.Logger

	mu      sync.Mutex
	readers map[string]map[*reader]struct{}
}

// reader wraps a subscriber connection with a write lock. The websocket
// library allows only one concurrent writer per connection, and multiple
// writer connections may relay to the same booking at once.
type reader struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (r *reader) send(messageType int, data []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.conn.WriteMessage(messageType, data)
}

func NewRelay(writerToken string, allowedOrigins []string, logger *slog.Logger) *Relay {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Relay{
		writerToken: writerToken,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		logger:  logger,
		readers: map[string]map[*reader]struct{}{},
	}
}

// Handle upgrades the connection. Writers present the shared token via the
// token query parameter and push status messages; readers subscribe with a
// bookingId query parameter and receive forwarded messages for that booking.
func (rl *Relay) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	bookingID := r.URL.Query().Get("bookingId")

	isWriter := token != "" &&
		len(token) == len(rl.writerToken) &&
		subtle.ConstantTimeCompare([]byte(token), []byte(rl.writerToken)) == 1
	if !isWriter && bookingID == "" {
		http.Error(w, "bookingId required", http.StatusBadRequest)
		return
	}

	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rl.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	if isWriter {
		rl.runWriter(conn)
		return
	}
	rl.runReader(bookingID, conn)
}

func (rl *Relay) runWriter(conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg relayMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.MetaData.BookingUID == "" {
			rl.logger.Warn("relay message without booking uid dropped")
			continue
		}
		rl.broadcast(msg.MetaData.BookingUID, raw)
	}
}

func (rl *Relay) runReader(bookingID string, conn *websocket.Conn) {
	rd := &reader{conn: conn}

	rl.mu.Lock()
	if rl.readers[bookingID] == nil {
		rl.readers[bookingID] = map[*reader]struct{}{}
	}
	rl.readers[bookingID][rd] = struct{}{}
	rl.mu.Unlock()

	defer func() {
		rl.mu.Lock()
		delete(rl.readers[bookingID], rd)
		if len(rl.readers[bookingID]) == 0 {
			delete(rl.readers, bookingID)
		}
		rl.mu.Unlock()
		conn.Close()
	}()

	// Readers only listen; the read loop exists to detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (rl *Relay) broadcast(bookingID string, raw []byte) {
	rl.mu.Lock()
	targets := make([]*reader, 0, len(rl.readers[bookingID]))
	for rd := range rl.readers[bookingID] {
		targets = append(targets, rd)
	}
	rl.mu.Unlock()

	for _, rd := range targets {
		if err := rd.send(websocket.TextMessage, raw); err != nil {
			rl.logger.Warn("relay write failed", "booking_uid", bookingID, "error", err)
		}
	}
}
