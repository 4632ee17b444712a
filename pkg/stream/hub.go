// Package stream serves simulation frames to websocket viewers and lets them edit
// the live parameters.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

// Message types exchanged with viewers.
const (
	TypeConfig          = "config"
	TypeFrame           = "frame"
	TypeAck             = "ack"
	TypeError           = "error"
	TypeParams          = "params"
	TypeSwarm           = "swarm"
	TypeCount           = "count"
	TypePredators       = "predators"
	TypeTogglePredators = "toggle_predators"
)

// Command is a viewer request. Which fields matter depends on Type.
type Command struct {
	Type     string             `json:"type"`
	Group    int                `json:"group,omitempty"`
	Count    *int               `json:"count,omitempty"`
	Enabled  *bool              `json:"enabled,omitempty"`
	Swarm    *flock.SwarmParams `json:"swarm,omitempty"`
	Snapshot *flock.Snapshot    `json:"snapshot,omitempty"`
}

// Message is everything the hub sends.
type Message struct {
	Type     string            `json:"type"`
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
	Snapshot *flock.Snapshot   `json:"snapshot,omitempty"`
	Frame    *simulation.Frame `json:"frame,omitempty"`
	Enabled  *bool             `json:"enabled,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans frames out to every connected viewer.
type Hub struct {
	control  *simulation.Control
	bounds   flock.Bounds
	logger   golog.Logger
	upgrader websocket.Upgrader
	frames   chan *simulation.Frame

	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHub(control *simulation.Control, bounds flock.Bounds, logger golog.Logger) *Hub {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	return &Hub{
		control:  control,
		bounds:   bounds,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		frames:   make(chan *simulation.Frame, 4),
		clients:  make(map[*Client]struct{}),
	}
}

// Publish queues a frame for broadcast. Frames are dropped while viewers lag behind.
func (h *Hub) Publish(f *simulation.Frame) {
	select {
	case h.frames <- f:
	default:
	}
}

// Len is the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run broadcasts published frames until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.conn.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case f := <-h.frames:
			h.broadcast(&Message{Type: TypeFrame, Frame: f})
		}
	}
}

func (h *Hub) broadcast(msg *Message) {
	h.mu.Lock()
	list := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		if err := c.Send(msg); err != nil {
			h.logger.Warnf("client send error: %v", err)
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

// ServeHTTP upgrades the request and serves one viewer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("upgrade: %v", err)
		return
	}
	client := &Client{conn: conn}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Infof("viewer connected from %s", r.RemoteAddr)

	if err := h.welcome(client); err != nil {
		h.logger.Warnf("client send error: %v", err)
		h.remove(client)
		return
	}

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			break
		}
		reply := h.apply(cmd)
		if err := client.Send(reply); err != nil {
			break
		}
	}

	h.remove(client)
	h.logger.Infof("viewer %s disconnected", r.RemoteAddr)
}

// welcome sends the world size and the current parameters to a new viewer.
func (h *Hub) welcome(c *Client) error {
	snap, _ := h.control.Snapshot()
	return c.Send(&Message{Type: TypeConfig, Width: h.bounds.Width, Height: h.bounds.Height, Snapshot: &snap})
}

// apply runs one command against the control store and builds the reply.
func (h *Hub) apply(cmd Command) *Message {
	var err error
	switch cmd.Type {
	case TypeParams:
		if cmd.Snapshot == nil {
			err = errors.New("params without snapshot")
			break
		}
		h.control.Set(*cmd.Snapshot)
	case TypeSwarm:
		if cmd.Swarm == nil {
			err = errors.New("swarm without parameters")
			break
		}
		err = h.control.UpdateSwarm(cmd.Group, func(p *flock.SwarmParams) { *p = *cmd.Swarm })
	case TypeCount:
		if cmd.Count == nil {
			err = errors.New("count without value")
			break
		}
		err = h.control.SetCount(cmd.Group, *cmd.Count)
	case TypePredators:
		if cmd.Enabled == nil {
			err = errors.New("predators without enabled flag")
			break
		}
		h.control.SetPredatorsEnabled(*cmd.Enabled)
	case TypeTogglePredators:
		on := h.control.TogglePredators()
		return &Message{Type: TypeAck, Enabled: &on}
	default:
		err = fmt.Errorf("unknown command %q", cmd.Type)
	}
	if err != nil {
		h.logger.Debugf("rejected viewer command: %v", err)
		return &Message{Type: TypeError, Error: err.Error()}
	}
	return &Message{Type: TypeAck}
}
