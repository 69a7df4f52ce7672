package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 256 * 1024 // object.create can carry a full vector path
	sendBuffer = 256
)

// Client is one websocket connection to a project room. The hub owns the
// send channel and closes it when the client leaves.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	dropped     atomic.Int64
	UserID      string
	DisplayName string
	ProjectID   string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, projectID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		ProjectID:   projectID,
		ClientID:    clientID,
	}
}

// ReadPump feeds inbound messages to the hub until the connection fails or
// ctx ends, then unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if !isExpectedClose(err) {
				slog.Debug("read error", "error", err, "user", c.UserID)
			}
			return
		}

		msg, err := c.decode(data)
		if err != nil {
			slog.Warn("invalid message", "error", err, "user", c.UserID)
			continue
		}
		c.hub.handleMessage(c, msg)
	}
}

// decode parses an inbound frame and stamps it with the connection's
// identity, overriding anything the client claimed.
func (c *Client) decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, errors.New("missing message type")
	}
	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.ProjectID = c.ProjectID
	return &msg, nil
}

// WritePump drains the send channel to the connection and keeps it alive
// with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, message); err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				slog.Debug("ping failed", "error", err, "user", c.UserID)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, message []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, message)
}

// Send queues msg without blocking; it is dropped when the buffer is full.
// Only the hub calls it, while the client is still registered.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}

	select {
	case c.send <- data:
	default:
		n := c.dropped.Add(1)
		slog.Warn("client send buffer full, dropping message", "user", c.UserID, "type", msg.Type, "dropped", n)
	}
}

// Dropped reports how many messages were discarded for this client.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

func isExpectedClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}
