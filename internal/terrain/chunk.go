package terrain

import "fmt"

// ChunkPos identifies a chunk by its X and Z coordinates.
type ChunkPos struct{ X, Z int }

func (p ChunkPos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Z)
}

// Compare orders positions by X then Z.
func (p ChunkPos) Compare(q ChunkPos) int {
	if p.X != q.X {
		return p.X - q.X
	}
	return p.Z - q.Z
}

// ChunkAt returns the position of the chunk holding block column (x, z).
func ChunkAt(x, z, size int) ChunkPos {
	return ChunkPos{X: floorDiv(x, size), Z: floorDiv(z, size)}
}

func floorDiv(value, size int) int {
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

// Block is a single terrain cell in world coordinates.
type Block struct {
	X, Y, Z  int
	Material Material
}

// Chunk holds the generated terrain columns for one ChunkPos.
// Column index = lz*size + lx; each column lists materials from y=0 upward.
type Chunk struct {
	Pos     ChunkPos
	size    int
	columns [][]Material
}

// Build generates the chunk at pos from the height field.
func Build(hf *HeightField, pos ChunkPos) *Chunk {
	size := hf.params.ChunkSize
	c := &Chunk{
		Pos:     pos,
		size:    size,
		columns: make([][]Material, size*size),
	}
	for lz := 0; lz < size; lz++ {
		for lx := 0; lx < size; lx++ {
			top := hf.SurfaceAt(pos.X*size+lx, pos.Z*size+lz)
			col := make([]Material, top+1)
			for y := range col {
				col[y] = hf.MaterialAt(y, top)
			}
			c.columns[lz*size+lx] = col
		}
	}
	return c
}

// Size returns the chunk edge length in blocks.
func (c *Chunk) Size() int {
	return c.size
}

// Origin returns the world coordinates of local (0, 0).
func (c *Chunk) Origin() (x, z int) {
	return c.Pos.X * c.size, c.Pos.Z * c.size
}

// Column returns the layers of local column (lx, lz). The slice is shared.
func (c *Chunk) Column(lx, lz int) []Material {
	if lx < 0 || lz < 0 || lx >= c.size || lz >= c.size {
		return nil
	}
	return c.columns[lz*c.size+lx]
}

// Height returns the index of the highest non-air layer in a column, or -1.
func (c *Chunk) Height(lx, lz int) int {
	col := c.Column(lx, lz)
	for y := len(col) - 1; y >= 0; y-- {
		if col[y] != Air {
			return y
		}
	}
	return -1
}

// MaterialAt returns the material at local (lx, y, lz).
func (c *Chunk) MaterialAt(lx, y, lz int) Material {
	col := c.Column(lx, lz)
	if y < 0 || y >= len(col) {
		return Air
	}
	return col[y]
}

// Clear sets local (lx, y, lz) to air and returns what was there.
func (c *Chunk) Clear(lx, y, lz int) (Material, bool) {
	col := c.Column(lx, lz)
	if y < 0 || y >= len(col) || col[y] == Air {
		return Air, false
	}
	m := col[y]
	col[y] = Air
	// Drop trailing air so Height stays cheap.
	end := len(col)
	for end > 0 && col[end-1] == Air {
		end--
	}
	c.columns[lz*c.size+lx] = col[:end]
	return m, true
}

// ForEachBlock calls fn for every non-air block in world coordinates until fn
// returns false.
func (c *Chunk) ForEachBlock(fn func(Block) bool) {
	ox, oz := c.Origin()
	for idx, col := range c.columns {
		lx, lz := idx%c.size, idx/c.size
		for y, m := range col {
			if m == Air {
				continue
			}
			if !fn(Block{X: ox + lx, Y: y, Z: oz + lz, Material: m}) {
				return
			}
		}
	}
}

// BlockCount returns the number of non-air blocks.
func (c *Chunk) BlockCount() int {
	n := 0
	c.ForEachBlock(func(Block) bool {
		n++
		return true
	})
	return n
}
