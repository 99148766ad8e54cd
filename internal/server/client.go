package server

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ndallagnol/go-tabletop/internal/session"
	"github.com/ndallagnol/go-tabletop/internal/state"
	"github.com/ndallagnol/go-tabletop/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
)

type Client struct {
	conn        *websocket.Conn
	tableServer *TableServer
	log         *log.Logger
	sess        *session.Session
	send        chan *ServerMessage
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewClient(user types.User, conn *websocket.Conn, ts *TableServer, ch state.Channel, l *log.Logger) *Client {
	c := &Client{
		conn:        conn,
		tableServer: ts,
		log:         l,
		send:        make(chan *ServerMessage, 256),
		stop:        make(chan struct{}),
	}
	c.sess = session.New(l, ch, user, c)
	return c
}

func (c *Client) Session() *session.Session { return c.sess }

// RoomSnapshot implements session.Notifier.
func (c *Client) RoomSnapshot(view session.RoomView) {
	c.queueMessage(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Snapshot:    &view,
	})
}

// RoomList implements session.Notifier.
func (c *Client) RoomList(rooms []types.Room) {
	c.queueMessage(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		RoomList:    &RoomList{Rooms: rooms},
	})
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		c.dispatch(&msg)
	}
}

// dispatch routes one client message to the session. Pointer moves get
// no ack, they are too frequent to be worth one.
func (c *Client) dispatch(msg *ClientMessage) {
	switch {
	case msg.Join != nil:
		c.sess.JoinRoom(msg.Join.RoomId)
		c.queueMessage(NoErrOK(msg.Id))
	case msg.Leave != nil:
		c.sess.LeaveRoom()
		c.queueMessage(NoErrOK(msg.Id))
	case msg.WatchRooms != nil:
		c.sess.WatchRooms()
		c.queueMessage(NoErrOK(msg.Id))
	case msg.ClaimSeat != nil:
		c.ack(msg.Id, c.sess.ClaimSeat(msg.ClaimSeat.SeatId))
	case msg.ReleaseSeat != nil:
		c.ack(msg.Id, c.sess.ReleaseSeat(msg.ReleaseSeat.SeatId))
	case msg.FlipCard != nil:
		c.ack(msg.Id, c.sess.FlipCard(msg.FlipCard.CardId))
	case msg.PointerDown != nil:
		c.sess.PointerDown(msg.PointerDown.CardId, msg.PointerDown.X, msg.PointerDown.Y)
	case msg.PointerMove != nil:
		c.sess.PointerMove(msg.PointerMove.X, msg.PointerMove.Y)
	case msg.PointerUp != nil:
		c.ack(msg.Id, c.sess.PointerUp())
	case msg.AddSeat != nil:
		c.ack(msg.Id, c.sess.AddSeat())
	case msg.RemoveSeat != nil:
		c.ack(msg.Id, c.sess.RemoveSeat())
	case msg.Reset != nil:
		c.ack(msg.Id, c.sess.Reset())
	case msg.ToggleEdit != nil:
		c.ack(msg.Id, c.sess.ToggleEdit())
	default:
		c.queueMessage(ErrInvalidMessage(msg.Id))
	}
}

func (c *Client) ack(id int, err error) {
	switch {
	case err == nil:
		c.queueMessage(NoErrOK(id))
	case errors.Is(err, session.ErrNotAllowed):
		c.queueMessage(ErrNotAllowed(id))
	default:
		c.log.Println("session op:", err)
		c.queueMessage(ErrInternalError(id))
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Println("failed to send message to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Client) cleanup() {
	c.sess.Close()
	c.tableServer.DeregisterClient(c)
	c.stopClient()
}
