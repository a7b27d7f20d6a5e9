package viewer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

// FrameChunk is the leading byte of a binary chunk frame.
const FrameChunk byte = 1

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	if encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest)); err != nil {
		panic(err)
	}
	if decoder, err = zstd.NewReader(nil); err != nil {
		panic(err)
	}
}

var errShortFrame = errors.New("short chunk frame")

// EncodeChunk serializes c as a binary frame: the kind byte followed by a zstd
// block holding the chunk position, its size and every column bottom-up.
func EncodeChunk(c *terrain.Chunk) []byte {
	size := c.Size()
	var raw bytes.Buffer
	raw.Grow(10 + size*size*8)
	_ = binary.Write(&raw, binary.BigEndian, int32(c.Pos.X))
	_ = binary.Write(&raw, binary.BigEndian, int32(c.Pos.Z))
	_ = binary.Write(&raw, binary.BigEndian, uint16(size))
	for lz := 0; lz < size; lz++ {
		for lx := 0; lx < size; lx++ {
			col := c.Column(lx, lz)
			_ = binary.Write(&raw, binary.BigEndian, uint16(len(col)))
			for _, m := range col {
				raw.WriteByte(byte(m))
			}
		}
	}
	return encoder.EncodeAll(raw.Bytes(), []byte{FrameChunk})
}

// ChunkFrame is a decoded chunk frame.
type ChunkFrame struct {
	Pos     terrain.ChunkPos
	Size    int
	Columns [][]terrain.Material // index lz*Size+lx
}

// Column returns the materials of local column (lx, lz).
func (f *ChunkFrame) Column(lx, lz int) []terrain.Material {
	return f.Columns[lz*f.Size+lx]
}

// DecodeChunk parses a frame produced by EncodeChunk.
func DecodeChunk(frame []byte) (*ChunkFrame, error) {
	if len(frame) == 0 || frame[0] != FrameChunk {
		return nil, errShortFrame
	}
	raw, err := decoder.DecodeAll(frame[1:], nil)
	if err != nil {
		return nil, fmt.Errorf("decompress chunk: %w", err)
	}
	r := bytes.NewReader(raw)

	var hdr struct {
		X, Z int32
		Size uint16
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("chunk header: %w", err)
	}
	f := &ChunkFrame{
		Pos:     terrain.ChunkPos{X: int(hdr.X), Z: int(hdr.Z)},
		Size:    int(hdr.Size),
		Columns: make([][]terrain.Material, int(hdr.Size)*int(hdr.Size)),
	}
	for i := range f.Columns {
		var n uint16
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		col := make([]byte, n)
		if _, err := io.ReadFull(r, col); err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		f.Columns[i] = make([]terrain.Material, n)
		for y, b := range col {
			f.Columns[i][y] = terrain.Material(b)
		}
	}
	return f, nil
}

// Event is a JSON text frame sent to viewers.
type Event struct {
	Type        string    `json:"type"`
	World       uuid.UUID `json:"world"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Z           int       `json:"z"`
	Material    string    `json:"material,omitempty"`
	Status      string    `json:"status,omitempty"`
	ChunkSize   int       `json:"chunk_size,omitempty"`
	ChunkHeight int       `json:"chunk_height,omitempty"`
}

// Event types.
const (
	EventHello        = "hello"
	EventChunkRemoved = "chunk_removed"
	EventBlockRemoved = "block_removed"
	EventReset        = "reset"
)

func encodeEvent(e Event) []byte {
	b, err := json.Marshal(e)
	if err != nil {
		// Event holds only plain values.
		panic(err)
	}
	return b
}

// ClientMessage is a JSON text frame sent by a viewer.
type ClientMessage struct {
	Type  string   `json:"type"` // keys, look, reset, break
	Keys  []string `json:"keys,omitempty"`
	Yaw   float64  `json:"yaw,omitempty"`
	Pitch float64  `json:"pitch,omitempty"`
}
