// Package realtime pushes server events to connected browsers over
// websockets. Clients only listen; all writes go through the REST API.
package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"connectly/helper"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer is how many frames may queue for one connection before it
	// is treated as stalled and dropped.
	sendBuffer = 256
)

// Event is the frame sent to clients.
type Event struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// client is one websocket connection. gorilla allows a single concurrent
// writer per connection, so frames are queued on send and written in order
// by writeLoop. send is closed by remove, under the hub lock.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	mut      sync.Mutex
	conns    map[primitive.ObjectID]map[*client]bool
	upgrader websocket.Upgrader
}

// NewHub accepts upgrades from the given origins; an empty list accepts any.
func NewHub(allowedOrigins []string) *Hub {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		conns: make(map[primitive.ObjectID]map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWS upgrades an authenticated request and keeps the connection until
// the client goes away.
func (h *Hub) HandleWS(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("Failed to upgrade connection:", err)
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(userID, cl)
	log.Printf("websocket connected: user %s from %s", userID.Hex(), conn.RemoteAddr())

	go h.writeLoop(userID, cl)

	h.readLoop(conn)

	h.remove(userID, cl)
	_ = conn.Close()
}

// Publish sends an event to every connection of the given users.
func (h *Hub) Publish(users []primitive.ObjectID, action string, payload any) {
	frame, err := json.Marshal(Event{Action: action, Payload: payload})
	if err != nil {
		log.Println("Error marshalling event:", err)
		return
	}

	h.mut.Lock()
	defer h.mut.Unlock()
	for _, u := range users {
		for cl := range h.conns[u] {
			select {
			case cl.send <- frame:
			default:
				log.Printf("websocket send buffer full: dropping user %s connection", u.Hex())
				h.removeLocked(u, cl)
			}
		}
	}
}

// Connected reports how many live connections a user has.
func (h *Hub) Connected(userID primitive.ObjectID) int {
	h.mut.Lock()
	defer h.mut.Unlock()
	return len(h.conns[userID])
}

func (h *Hub) add(userID primitive.ObjectID, cl *client) {
	h.mut.Lock()
	defer h.mut.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*client]bool)
	}
	h.conns[userID][cl] = true
}

func (h *Hub) remove(userID primitive.ObjectID, cl *client) {
	h.mut.Lock()
	defer h.mut.Unlock()
	h.removeLocked(userID, cl)
}

// removeLocked unregisters cl and closes its queue. Only a registered client
// is closed, so the queue is closed exactly once.
func (h *Hub) removeLocked(userID primitive.ObjectID, cl *client) {
	if !h.conns[userID][cl] {
		return
	}
	delete(h.conns[userID], cl)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
	close(cl.send)
}

// readLoop drains client frames so close and ping frames are processed.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Read error:", err)
			}
			return
		}
	}
}

// writeLoop is the only writer for cl. It exits when the queue is closed
// or a write fails, and closes the connection so readLoop returns too.
func (h *Hub) writeLoop(userID primitive.ObjectID, cl *client) {
	defer cl.conn.Close()
	for frame := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Println("Write error:", err)
			h.remove(userID, cl)
			return
		}
	}
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
