package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/OCharnyshevich/voxel-sandbox/internal/sim"
	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

type frame struct {
	kind int // websocket.TextMessage or websocket.BinaryMessage
	data []byte
}

type client struct {
	id  string
	out chan frame
}

// Hub serves the websocket viewer. It observes the world on the simulation
// goroutine and keeps the encoded frames of every resident chunk so that late
// joiners can catch up without touching world state.
type Hub struct {
	params terrain.Params
	input  chan<- sim.Input
	log    *slog.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	world   uuid.UUID
	clients map[*client]struct{}
	chunks  map[terrain.ChunkPos][]frame // chunk frame then its block edits
	closed  bool
}

// NewHub creates a Hub that forwards viewer input to input.
func NewHub(params terrain.Params, input chan<- sim.Input, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		params: params,
		input:  input,
		log:    log.With("component", "viewer"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: make(map[*client]struct{}),
		chunks:  make(map[terrain.ChunkPos][]frame),
	}
}

// ChunkAdded implements world.Observer.
func (h *Hub) ChunkAdded(id uuid.UUID, c *terrain.Chunk) {
	f := frame{kind: websocket.BinaryMessage, data: EncodeChunk(c)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.world = id
	h.chunks[c.Pos] = []frame{f}
	h.broadcast(f)
}

// ChunkRemoved implements world.Observer.
func (h *Hub) ChunkRemoved(id uuid.UUID, pos terrain.ChunkPos) {
	f := textFrame(Event{Type: EventChunkRemoved, World: id, X: pos.X, Z: pos.Z})
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.chunks, pos)
	h.broadcast(f)
}

// BlockRemoved implements world.Observer.
func (h *Hub) BlockRemoved(id uuid.UUID, b terrain.Block) {
	f := textFrame(Event{
		Type:     EventBlockRemoved,
		World:    id,
		X:        b.X,
		Y:        b.Y,
		Z:        b.Z,
		Material: b.Material.String(),
	})
	pos := terrain.ChunkAt(b.X, b.Z, h.params.ChunkSize)
	h.mu.Lock()
	defer h.mu.Unlock()
	if frames, ok := h.chunks[pos]; ok {
		h.chunks[pos] = append(frames, f)
	}
	h.broadcast(f)
}

// WorldReset implements world.Observer.
func (h *Hub) WorldReset(id uuid.UUID, status string) {
	f := textFrame(Event{Type: EventReset, World: id, Status: status})
	h.mu.Lock()
	defer h.mu.Unlock()
	h.world = id
	clear(h.chunks)
	h.broadcast(f)
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.drop(c)
	}
}

// Handler returns the HTTP routes: the websocket at /ws and a JSON health
// probe at /healthz.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.serveWS)
	mux.HandleFunc("GET /healthz", h.serveHealth)
	return mux
}

func (h *Hub) serveHealth(rw http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	resp := struct {
		Status  string    `json:"status"`
		World   uuid.UUID `json:"world"`
		Clients int       `json:"clients"`
		Chunks  int       `json:"chunks"`
	}{"ok", h.world, len(h.clients), len(h.chunks)}
	h.mu.Unlock()

	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(resp)
}

func (h *Hub) serveWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	c, ok := h.join()
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
		return
	}
	log := h.log.With("client", c.id, "remote", r.RemoteAddr)
	log.Info("viewer connected")
	defer h.leave(c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writeErr := make(chan error, 1)
	go func() { writeErr <- h.writeLoop(ctx, conn, c) }()

	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Debug("viewer read ended", "error", err)
			break
		}
		in, err := DecodeInput(msg)
		if err != nil {
			log.Debug("bad viewer message", "error", err)
			continue
		}
		select {
		case h.input <- in:
		default:
			// Drop input under load; the viewer resends key state on change.
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	log.Info("viewer disconnected")
}

func (h *Hub) writeLoop(ctx context.Context, conn *websocket.Conn, c *client) error {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-c.out:
			if !ok {
				// Dropped by the hub; unblock the reader.
				_ = conn.Close()
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(f.kind, f.data); err != nil {
				return err
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// join registers a client and queues the hello frame and every resident chunk.
func (h *Hub) join() (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}

	keys := make([]terrain.ChunkPos, 0, len(h.chunks))
	backlog := 1
	for pos, frames := range h.chunks {
		keys = append(keys, pos)
		backlog += len(frames)
	}
	slices.SortFunc(keys, terrain.ChunkPos.Compare)

	c := &client{
		id:  fmt.Sprintf("V%d", h.nextID.Add(1)),
		out: make(chan frame, backlog+sendBuffer),
	}
	c.out <- textFrame(Event{
		Type:        EventHello,
		World:       h.world,
		ChunkSize:   h.params.ChunkSize,
		ChunkHeight: h.params.ChunkHeight,
	})
	for _, pos := range keys {
		for _, f := range h.chunks[pos] {
			c.out <- f
		}
	}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.drop(c)
	}
}

// broadcast sends f to every client, dropping those that cannot keep up.
// h.mu must be held.
func (h *Hub) broadcast(f frame) {
	for c := range h.clients {
		select {
		case c.out <- f:
		default:
			h.log.Warn("viewer too slow, dropping", "client", c.id)
			h.drop(c)
		}
	}
}

// drop must be called with h.mu held.
func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.out)
}

func textFrame(e Event) frame {
	return frame{kind: websocket.TextMessage, data: encodeEvent(e)}
}

// DecodeInput parses a viewer message into a simulation input.
func DecodeInput(msg []byte) (sim.Input, error) {
	var m ClientMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return sim.Input{}, fmt.Errorf("decode input: %w", err)
	}
	switch m.Type {
	case "keys":
		return sim.Input{Kind: sim.InputKeys, Keys: m.Keys}, nil
	case "look":
		return sim.Input{Kind: sim.InputLook, Yaw: m.Yaw, Pitch: m.Pitch}, nil
	case "reset":
		return sim.Input{Kind: sim.InputReset}, nil
	case "break":
		return sim.Input{Kind: sim.InputBreak}, nil
	default:
		return sim.Input{}, fmt.Errorf("decode input: unknown type %q", m.Type)
	}
}
