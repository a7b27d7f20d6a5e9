package viewer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCharnyshevich/voxel-sandbox/internal/sim"
	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

func testChunk(pos terrain.ChunkPos) *terrain.Chunk {
	hf := terrain.NewHeightField(terrain.NewSimplex(3), terrain.DefaultParams())
	return terrain.Build(hf, pos)
}

func TestChunkCodecRoundTrip(t *testing.T) {
	c := testChunk(terrain.ChunkPos{X: 1, Z: -2})
	data := EncodeChunk(c)
	require.Equal(t, FrameChunk, data[0])

	f, err := DecodeChunk(data)
	require.NoError(t, err)
	assert.Equal(t, c.Pos, f.Pos)
	assert.Equal(t, c.Size(), f.Size)
	for lz := 0; lz < c.Size(); lz++ {
		for lx := 0; lx < c.Size(); lx++ {
			require.Equal(t, c.Column(lx, lz), f.Column(lx, lz), "column %d,%d", lx, lz)
		}
	}
}

func TestDecodeChunkRejectsGarbage(t *testing.T) {
	_, err := DecodeChunk(nil)
	require.Error(t, err)
	_, err = DecodeChunk([]byte{FrameChunk, 1, 2, 3})
	require.Error(t, err)
	_, err = DecodeChunk([]byte{7})
	require.Error(t, err)
}

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		msg  string
		want sim.Input
	}{
		{`{"type":"keys","keys":["KeyW","Space"]}`, sim.Input{Kind: sim.InputKeys, Keys: []string{"KeyW", "Space"}}},
		{`{"type":"look","yaw":1.5,"pitch":-0.25}`, sim.Input{Kind: sim.InputLook, Yaw: 1.5, Pitch: -0.25}},
		{`{"type":"reset"}`, sim.Input{Kind: sim.InputReset}},
		{`{"type":"break"}`, sim.Input{Kind: sim.InputBreak}},
	}
	for _, tt := range tests {
		got, err := DecodeInput([]byte(tt.msg))
		require.NoError(t, err, tt.msg)
		assert.Equal(t, tt.want, got, tt.msg)
	}

	_, err := DecodeInput([]byte(`{"type":"fly"}`))
	require.Error(t, err)
	_, err = DecodeInput([]byte(`not json`))
	require.Error(t, err)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestHubCatchUpAndEvents(t *testing.T) {
	input := make(chan sim.Input, 4)
	h := NewHub(terrain.DefaultParams(), input, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	defer h.Close()

	id := uuid.New()
	resident := testChunk(terrain.ChunkPos{X: 0, Z: 0})
	h.ChunkAdded(id, resident)

	conn := dial(t, srv)
	hello := readEvent(t, conn)
	assert.Equal(t, EventHello, hello.Type)
	assert.Equal(t, id, hello.World)
	assert.Equal(t, 16, hello.ChunkSize)
	assert.Equal(t, 16, hello.ChunkHeight)

	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	f, err := DecodeChunk(data)
	require.NoError(t, err)
	assert.Equal(t, resident.Pos, f.Pos)

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)

	h.BlockRemoved(id, terrain.Block{X: 3, Y: 2, Z: 4, Material: terrain.Dirt})
	e := readEvent(t, conn)
	assert.Equal(t, Event{Type: EventBlockRemoved, World: id, X: 3, Y: 2, Z: 4, Material: "dirt"}, e)

	h.ChunkRemoved(id, resident.Pos)
	e = readEvent(t, conn)
	assert.Equal(t, EventChunkRemoved, e.Type)

	next := uuid.New()
	h.WorldReset(next, "World reset with seed 9")
	e = readEvent(t, conn)
	assert.Equal(t, Event{Type: EventReset, World: next, Status: "World reset with seed 9"}, e)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"keys","keys":["KeyW"]}`)))
	select {
	case in := <-input:
		assert.Equal(t, sim.Input{Kind: sim.InputKeys, Keys: []string{"KeyW"}}, in)
	case <-time.After(5 * time.Second):
		t.Fatal("input not forwarded")
	}
}

func TestHubReplaysBlockEdits(t *testing.T) {
	h := NewHub(terrain.DefaultParams(), make(chan sim.Input, 1), nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	defer h.Close()

	id := uuid.New()
	h.ChunkAdded(id, testChunk(terrain.ChunkPos{X: -1, Z: 0}))
	h.BlockRemoved(id, terrain.Block{X: -1, Y: 0, Z: 5, Material: terrain.Stone})

	conn := dial(t, srv)
	assert.Equal(t, EventHello, readEvent(t, conn).Type)
	kind, _, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	e := readEvent(t, conn)
	assert.Equal(t, EventBlockRemoved, e.Type)
	assert.Equal(t, -1, e.X)
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub(terrain.DefaultParams(), make(chan sim.Input), nil)
	c := &client{id: "slow", out: make(chan frame, 1)}
	h.clients[c] = struct{}{}

	id := uuid.New()
	h.ChunkRemoved(id, terrain.ChunkPos{})
	assert.Equal(t, 1, h.Clients())
	h.ChunkRemoved(id, terrain.ChunkPos{X: 1})
	assert.Equal(t, 0, h.Clients())

	<-c.out
	_, ok := <-c.out
	assert.False(t, ok, "dropped client channel is closed")
}

func TestHealthz(t *testing.T) {
	h := NewHub(terrain.DefaultParams(), make(chan sim.Input), nil)
	h.ChunkAdded(uuid.New(), testChunk(terrain.ChunkPos{}))
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Chunks int    `json:"chunks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Chunks)
}

func TestClosedHubRefusesViewers(t *testing.T) {
	h := NewHub(terrain.DefaultParams(), make(chan sim.Input), nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	h.Close()

	conn := dial(t, srv)
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
}
