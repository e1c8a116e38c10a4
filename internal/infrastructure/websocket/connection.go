package websocket

import (
	"sync"

	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/gorilla/websocket"
)

// Connection wraps a gorilla websocket with a write lock; gorilla allows
// only one concurrent writer per connection.
type Connection struct {
	conn      *websocket.Conn
	userID    string
	auctionID string
	writeMu   sync.Mutex
	log       logger.Logger
}

func NewConnection(conn *websocket.Conn, userID, auctionID string, log logger.Logger) *Connection {
	return &Connection{
		conn:      conn,
		userID:    userID,
		auctionID: auctionID,
		log:       log,
	}
}

func (c *Connection) Send(message interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	switch payload := message.(type) {
	case []byte:
		return c.conn.WriteMessage(websocket.TextMessage, payload)
	default:
		return c.conn.WriteJSON(message)
	}
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) UserID() string {
	return c.userID
}

func (c *Connection) AuctionID() string {
	return c.auctionID
}
