package main

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// The live feed pushes the full scoreboard to every connected client on
// connect and after each scoring change, so the venue projector never polls.

type scoreboardFrame struct {
	Type        string                `json:"type"` // "scoreboard"
	Leaderboard []LeaderboardEntry    `json:"leaderboard"`
	TeamScores  map[string]*TeamScore `json:"teamScores"`
}

type liveClient struct {
	conn *websocket.Conn
	send chan any
}

type liveHub struct {
	mu      sync.Mutex
	clients map[*liveClient]bool
}

func newLiveHub() *liveHub {
	return &liveHub{
		clients: make(map[*liveClient]bool),
	}
}

func (h *liveHub) add(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = true
}

func (h *liveHub) remove(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast fans a frame out to every client, dropping clients whose send
// buffer is full rather than blocking the caller.
func (h *liveHub) broadcast(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ScoreboardFrame snapshots the current leaderboard and team scores.
func (g *Game) ScoreboardFrame() scoreboardFrame {
	teams, err := g.TeamScores()
	if err != nil {
		logf(g.cfg, "ERROR: building scoreboard frame: %v", err)
		teams = make(map[string]*TeamScore)
	}

	g.mu.Lock()
	leaderboard := leaderboardFrom(g.scores)
	g.mu.Unlock()

	return scoreboardFrame{
		Type:        "scoreboard",
		Leaderboard: leaderboard,
		TeamScores:  teams,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveLive(cfg *Config, g *Game, hub *liveHub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		client := &liveClient{
			conn: conn,
			send: make(chan any, 8),
		}

		hub.add(client)
		client.send <- g.ScoreboardFrame()

		logf(cfg, "SERVE: Live scoreboard feed to %s", realIP(r))

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *liveClient) readPump(hub *liveHub) {
	defer func() {
		hub.remove(c)
		_ = c.conn.Close()
	}()

	// Clients only listen; drain until the connection drops.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
