/*
Package live pushes new comments to browsers that have a photo open. One
hub serves every photo; subscribers are grouped by photo id.
*/
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/gorilla/websocket"
)

const (
	MessageCommentAdded = "commentAdded"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16

	DefaultSessionCheckInterval = 30 * time.Second
)

type Message struct {
	Type      string         `json:"type"`
	PhotoID   int            `json:"photoId"`
	Comment   CommentMessage `json:"comment"`
	Timestamp time.Time      `json:"timestamp"`
}

type CommentMessage struct {
	UserID    int       `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type subscriber struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	photoID    int
	userID     int
	sessionKey string
}

type broadcastItem struct {
	photo   models.Photo
	message Message
}

type HubConfig struct {
	Access               services.AccessService
	SessionService       services.SessionServicer
	SessionCheckInterval time.Duration
}

/*
Hub fans comments out to the connections watching a photo. Read access is
checked again for every message against the photo as it was when the
comment was stored. Each connection's session is looked up again before
every send and on a timer; a failed lookup closes the connection.
*/
type Hub struct {
	access               services.AccessService
	sessionService       services.SessionServicer
	sessionCheckInterval time.Duration

	subscribers map[int]map[*subscriber]struct{}
	broadcast   chan broadcastItem
	register    chan *subscriber
	unregister  chan *subscriber
	done        chan struct{}
	mu          sync.RWMutex
}

func NewHub(config HubConfig) *Hub {
	if config.SessionCheckInterval <= 0 {
		config.SessionCheckInterval = DefaultSessionCheckInterval
	}

	return &Hub{
		access:               config.Access,
		sessionService:       config.SessionService,
		sessionCheckInterval: config.SessionCheckInterval,
		subscribers:          make(map[int]map[*subscriber]struct{}),
		broadcast:            make(chan broadcastItem, 256),
		register:             make(chan *subscriber),
		unregister:           make(chan *subscriber),
		done:                 make(chan struct{}),
	}
}

/*
Run processes subscriptions and broadcasts until ctx is cancelled. Every
open connection is closed on the way out.
*/
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()

			for photoID, subs := range h.subscribers {
				for sub := range subs {
					close(sub.send)
				}

				delete(h.subscribers, photoID)
			}

			h.mu.Unlock()
			return

		case sub := <-h.register:
			h.mu.Lock()

			if h.subscribers[sub.photoID] == nil {
				h.subscribers[sub.photoID] = make(map[*subscriber]struct{})
			}

			h.subscribers[sub.photoID][sub] = struct{}{}
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			h.remove(sub)
			h.mu.Unlock()

		case item := <-h.broadcast:
			b, err := json.Marshal(item.message)

			if err != nil {
				slog.Error("error encoding live message", "error", err, "photoID", item.photo.ID)
				continue
			}

			h.mu.Lock()

			for sub := range h.subscribers[item.photo.ID] {
				if !h.access.CanRead(sub.userID, item.photo) {
					slog.Debug("dropping live subscriber without read access", "photoID", item.photo.ID, "userID", sub.userID)
					h.remove(sub)
					continue
				}

				select {
				case sub.send <- b:
				default:
					// Too slow to keep up; drop the connection.
					h.remove(sub)
				}
			}

			h.mu.Unlock()
		}
	}
}

/*
CommentAdded queues a commentAdded message for everyone watching the photo.
It never blocks the request that stored the comment.
*/
func (h *Hub) CommentAdded(ctx context.Context, photo models.Photo, comment models.Comment) {
	message := Message{
		Type:    MessageCommentAdded,
		PhotoID: photo.ID,
		Comment: CommentMessage{
			UserID:    comment.UserID,
			UserName:  comment.UserName,
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
		},
		Timestamp: time.Now().UTC(),
	}

	select {
	case h.broadcast <- broadcastItem{photo: photo, message: message}:
	default:
		slog.Warn("live broadcast queue is full. dropping message", "photoID", photo.ID)
	}
}

func (h *Hub) SubscriberCount(photoID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[photoID])
}

/*
Subscribe attaches an upgraded connection to the photo's feed on behalf of
a user and their session, and pumps messages until either side goes away.
It blocks for the life of the connection.
*/
func (h *Hub) Subscribe(conn *websocket.Conn, photoID, userID int, sessionKey string) {
	sub := &subscriber{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		photoID:    photoID,
		userID:     userID,
		sessionKey: sessionKey,
	}

	select {
	case h.register <- sub:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go sub.writePump()
	sub.readPump()
}

// remove must be called with mu held.
func (h *Hub) remove(sub *subscriber) {
	subs, ok := h.subscribers[sub.photoID]

	if !ok {
		return
	}

	if _, ok = subs[sub]; !ok {
		return
	}

	delete(subs, sub)
	close(sub.send)

	if len(subs) == 0 {
		delete(h.subscribers, sub.photoID)
	}
}

/*
readPump only watches for the client going away. The feed is one way, so
anything the browser sends is discarded.
*/
func (s *subscriber) readPump() {
	defer func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}

		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("live connection closed", "error", err, "photoID", s.photoID)
			}

			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	sessionTicker := time.NewTicker(s.hub.sessionCheckInterval)

	defer func() {
		ticker.Stop()
		sessionTicker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if !s.sessionIsValid() {
				s.closeForSession()
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-sessionTicker.C:
			if !s.sessionIsValid() {
				s.closeForSession()
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *subscriber) sessionIsValid() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.hub.sessionService.Lookup(ctx, s.sessionKey)
	return err == nil
}

func (s *subscriber) closeForSession() {
	slog.Debug("closing live connection for ended session", "photoID", s.photoID, "userID", s.userID)

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended"))
}
