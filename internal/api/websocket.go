package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSConnection maintains one chat client's WebSocket connection. Each
// connection is pinned to a single session; turns from the socket queue
// behind each other like any other same-session traffic.
type WSConnection struct {
	conn      *websocket.Conn
	send      chan []byte
	turns     chan wsTurn
	mu        sync.Mutex
	closed    bool
	sessionID string
	api       *ChatAPI
}

// wsTurn is one inbound user message.
type wsTurn struct {
	Text string `json:"text"`
}

// wsReply is one outbound assistant message.
type wsReply struct {
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id"`
}

// handleWebSocket upgrades the connection and starts the pumps. The
// session comes from a bearer token, a session_id query parameter, or is
// minted fresh for the connection.
func (a *ChatAPI) handleWebSocket(c *gin.Context) {
	sessionID, ok := a.resolveSession(c, c.Query("session_id"))
	if !ok {
		return
	}
	if sessionID == "default" {
		sessionID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := &WSConnection{
		conn:      conn,
		send:      make(chan []byte, 16),
		turns:     make(chan wsTurn, 16),
		sessionID: sessionID,
		api:       a,
	}

	go wsConn.writePump()
	go wsConn.turnPump()
	go wsConn.readPump()
}

// readPump pumps messages from the WebSocket connection to the orchestrator
func (c *WSConnection) readPump() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		close(c.turns)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps replies to the WebSocket connection
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage parses one inbound turn and queues it for the connection's
// worker. Queuing off the read loop keeps slow model calls from stalling
// pings; the turns buffer applies backpressure to the read loop when full.
func (c *WSConnection) handleMessage(message []byte) {
	var turn wsTurn
	if err := json.Unmarshal(message, &turn); err != nil {
		c.sendReply(wsReply{Error: "invalid message", SessionID: c.sessionID})
		return
	}

	c.turns <- turn
}

// turnPump runs the connection's turns one at a time, so replies arrive
// in submission order.
func (c *WSConnection) turnPump() {
	for turn := range c.turns {
		reply, err := c.api.chef.SubmitTurn(context.Background(), c.sessionID, turn.Text)
		if err != nil {
			c.sendReply(wsReply{Error: err.Error(), SessionID: c.sessionID})
			continue
		}
		c.sendReply(wsReply{Response: reply, SessionID: c.sessionID})
	}
}

func (c *WSConnection) sendReply(reply wsReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		log.Printf("Error marshaling reply: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Dropping reply for session %s: send buffer full", c.sessionID)
	}
}
