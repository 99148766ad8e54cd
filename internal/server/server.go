package server

import (
	"context"
	"log"
	"sync"

	"github.com/ndallagnol/go-tabletop/internal/stats"
)

// TableServer tracks the connected websocket clients. Room state lives
// in the state store; the server only owns connection lifecycle.
type TableServer struct {
	log   *log.Logger
	stats stats.StatsProvider

	clientsLock sync.Mutex
	clients     map[*Client]struct{}
}

func NewTableServer(logger *log.Logger, su stats.StatsProvider) *TableServer {
	su.RegisterMetric(stats.ActiveConnections)

	return &TableServer{
		log:     logger,
		stats:   su,
		clients: make(map[*Client]struct{}),
	}
}

func (ts *TableServer) RegisterClient(c *Client) {
	ts.clientsLock.Lock()
	defer ts.clientsLock.Unlock()

	ts.clients[c] = struct{}{}
	ts.stats.Incr(stats.ActiveConnections)
	ts.log.Printf("adding connection from %q", c.sess.User().Username)
}

func (ts *TableServer) DeregisterClient(c *Client) {
	ts.clientsLock.Lock()
	defer ts.clientsLock.Unlock()

	if _, ok := ts.clients[c]; !ok {
		return
	}

	delete(ts.clients, c)
	ts.stats.Decr(stats.ActiveConnections)
	ts.log.Printf("removing connection from %q", c.sess.User().Username)
}

// Shutdown stops every connected client and tears down its session.
func (ts *TableServer) Shutdown(ctx context.Context) error {
	ts.log.Println("received shutdown signal")

	ts.clientsLock.Lock()
	clients := make([]*Client, 0, len(ts.clients))
	for c := range ts.clients {
		clients = append(clients, c)
	}
	ts.clientsLock.Unlock()

	for _, c := range clients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.sess.Close()
		c.stopClient()
		ts.DeregisterClient(c)
	}

	return nil
}
