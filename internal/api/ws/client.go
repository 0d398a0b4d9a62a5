package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 瀏覽器端網域不固定, origin交給前面的reverse proxy把關
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client 一條ws連線
// userID為0代表匿名, 可以進房觀看但不能出價
type Client struct {
	id     string
	userID uint

	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	rooms  map[uint]bool
	closed bool
}

func newClient(conn *websocket.Conn, userID uint) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[uint]bool),
	}
}

// trySend 送不進buffer代表client落後太多, 直接關閉
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.closed = true
		close(c.send)
		return false
	}
}

func (c *Client) sendEvent(event string, data any) {
	c.trySend(mustEnvelope(event, data))
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) trackRoom(auctionID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[auctionID] = true
}

func (c *Client) untrackRoom(auctionID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, auctionID)
}

func (c *Client) joinedRooms() []uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := make([]uint, 0, len(c.rooms))
	for id := range c.rooms {
		rooms = append(rooms, id)
	}
	return rooms
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.RemoveClient(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		hub.HandleMessage(context.Background(), c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WSHandler 處理ws升級與握手認證
type WSHandler struct {
	hub        *Hub
	tokenMaker auth.Maker
	logger     *zerolog.Logger
}

func NewWSHandler(hub *Hub, tokenMaker auth.Maker, logger *zerolog.Logger) *WSHandler {
	if hub == nil || tokenMaker == nil {
		panic("ws handler missing required dependency")
	}
	return &WSHandler{
		hub:        hub,
		tokenMaker: tokenMaker,
		logger:     logger,
	}
}

// resolveUserID 握手時解析一次token, 之後整條連線沿用
// 瀏覽器ws api不能帶自訂header, 所以也接受query string的token
func (h *WSHandler) resolveUserID(r *http.Request) uint {
	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get(string(constants.AuthorizationHeaderKey))
		fields := strings.Fields(header)
		if len(fields) == 2 && strings.ToLower(fields[0]) == string(constants.AuthorizationTypeBearer) {
			token = fields[1]
		}
	}
	if token == "" {
		return 0
	}

	claims, err := h.tokenMaker.VerifyToken(token)
	if err != nil {
		return 0
	}
	return claims.UserID
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := h.resolveUserID(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn().Err(err).Msg("ws upgrade failed")
		}
		return
	}

	client := newClient(conn, userID)
	go client.writePump()
	go client.readPump(h.hub)
}
