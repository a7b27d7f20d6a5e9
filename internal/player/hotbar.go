package player

import "github.com/OCharnyshevich/voxel-sandbox/internal/terrain"

// HotbarSize is the number of hotbar slots.
const HotbarSize = 9

// MaxStack is the largest count a single slot holds.
const MaxStack = 64

// Slot is one stack of broken blocks.
type Slot struct {
	Material terrain.Material
	Count    int
}

// IsEmpty returns true if the slot holds nothing.
func (s Slot) IsEmpty() bool {
	return s.Count == 0
}

// Hotbar collects broken blocks. World resets clear it.
type Hotbar struct {
	slots [HotbarSize]Slot
}

// NewHotbar creates an empty hotbar.
func NewHotbar() *Hotbar {
	return &Hotbar{}
}

// Add stacks one block of m, preferring a partly filled slot of the same
// material. It returns false when no slot can take it.
func (h *Hotbar) Add(m terrain.Material) bool {
	if m == terrain.Air {
		return false
	}
	for i := range h.slots {
		if s := &h.slots[i]; s.Material == m && s.Count > 0 && s.Count < MaxStack {
			s.Count++
			return true
		}
	}
	for i := range h.slots {
		if h.slots[i].IsEmpty() {
			h.slots[i] = Slot{Material: m, Count: 1}
			return true
		}
	}
	return false
}

// Clear empties every slot.
func (h *Hotbar) Clear() {
	h.slots = [HotbarSize]Slot{}
}

// Slots returns a copy of the slots.
func (h *Hotbar) Slots() [HotbarSize]Slot {
	return h.slots
}

// Total returns the number of blocks held.
func (h *Hotbar) Total() int {
	n := 0
	for _, s := range h.slots {
		n += s.Count
	}
	return n
}
